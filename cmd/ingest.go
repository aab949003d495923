package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/agentic-research/csvfeed/api"
	"github.com/agentic-research/csvfeed/internal/consume"
	"github.com/agentic-research/csvfeed/internal/ingest"
	"github.com/agentic-research/csvfeed/internal/logger"
	"github.com/agentic-research/csvfeed/internal/render"
	"github.com/agentic-research/csvfeed/internal/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

type ingestOptions struct {
	root       string
	consumer   string
	schemaPath string
	table      string
	header     bool
	dbPath     string
	column     int
	outer      int
	inner      int
	value      int
	selector   string
	metrics    bool
	logLevel   string
}

func newIngestCommand(stdout, stderr io.Writer) *cobra.Command {
	o := &ingestOptions{}
	c := &cobra.Command{
		Use:   "ingest <resource>",
		Short: "Run a consumer over a delimited line file and print its result as JSON",
		Example: `  csvfeed ingest npanxx.csv --consumer tally
  csvfeed ingest lrn.csv.gz --consumer bucket --outer 0 --inner 1 --value 2
  csvfeed ingest npanxx.csv --consumer sqlite --schema npanxx.toml --db npac.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(o, args[0], stdout, stderr)
		},
	}

	flags := c.Flags()
	flags.StringVar(&o.root, "root", ".", "Directory relative resource paths are resolved against")
	flags.StringVar(&o.consumer, "consumer", "tally", fmt.Sprintf("Consumer kind, one of %v", consume.Kinds()))
	flags.StringVarP(&o.schemaPath, "schema", "s", "", "TOML or HCL (.hcl) schema naming the columns (records, sqlite)")
	flags.StringVar(&o.table, "table", "", "Override the schema table name (sqlite)")
	flags.BoolVar(&o.header, "header", false, "Treat the first accepted line as a header")
	flags.StringVar(&o.dbPath, "db", "", "SQLite database to load into (sqlite)")
	flags.IntVar(&o.column, "column", 0, "0-based column of integers to collect (bitmap)")
	flags.IntVar(&o.outer, "outer", 0, "0-based outer key column (bucket)")
	flags.IntVar(&o.inner, "inner", 1, "0-based inner key column (bucket)")
	flags.IntVar(&o.value, "value", 2, "0-based value column (bucket)")
	flags.StringVar(&o.selector, "select", "", "JSONPath applied to the result before printing")
	flags.BoolVar(&o.metrics, "metrics", false, "Print driver metrics to stderr after the run")
	flags.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	return c
}

func runIngest(o *ingestOptions, resource string, stdout, stderr io.Writer) (err error) {
	level, err := logger.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	log := logger.NewLevelLogger(stderr, level)

	var schema *api.Schema
	if o.schemaPath != "" {
		if schema, err = api.LoadSchema(o.schemaPath); err != nil {
			return err
		}
		if o.table != "" {
			schema.Table = o.table
		}
	}

	c, err := consume.New(o.consumer, consume.Options{
		Schema: schema,
		Header: o.header,
		DBPath: o.dbPath,
		Column: o.column,
		Outer:  o.outer,
		Inner:  o.inner,
		Value:  o.value,
		Logger: log.WithPrefix(o.consumer + ": "),
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.(io.Closer).Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	reg := prometheus.NewRegistry()
	d := ingest.NewDriver(source.NewPaths(o.root, log), log)
	d.Metrics = ingest.NewMetrics(reg)

	start := time.Now()
	result, err := ingest.Run(d, c, resource)
	if o.metrics {
		if merr := writeMetrics(stderr, reg); merr != nil {
			log.Warnf("metrics: %v", merr)
		}
	}
	if err != nil {
		return err
	}
	log.Debugf("ingest %s: done in %v", resource, time.Since(start))

	return render.JSON(stdout, result, o.selector)
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
