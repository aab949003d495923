package consume

import (
	"fmt"
	"io"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/csvfeed/api"
	"github.com/agentic-research/csvfeed/internal/ingest"
	"github.com/agentic-research/csvfeed/internal/logger"
)

// Options configures a consumer built by New. Each kind reads only the
// fields it needs.
type Options struct {
	Schema *api.Schema // records, sqlite
	Header bool        // records, sqlite
	DBPath string      // sqlite
	Column int         // bitmap
	Outer  int         // bucket
	Inner  int         // bucket
	Value  int         // bucket
	Logger logger.Logger
}

type factory func(opts Options) (ingest.Consumer[any], error)

var kinds = map[string]factory{
	"tally": func(Options) (ingest.Consumer[any], error) {
		return Erase[TallyResult](&Tally{}), nil
	},
	"records": func(o Options) (ingest.Consumer[any], error) {
		if o.Schema == nil && !o.Header {
			return nil, fmt.Errorf("records: a schema or a header line is required")
		}
		return Erase[[]api.Record](&Records{Schema: o.Schema, Header: o.Header, Logger: o.Logger}), nil
	},
	"sqlite": func(o Options) (ingest.Consumer[any], error) {
		if o.DBPath == "" {
			return nil, fmt.Errorf("sqlite: a database path is required")
		}
		l, err := NewSQLiteLoader(o.DBPath, o.Schema, o.Logger)
		if err != nil {
			return nil, err
		}
		l.Header = o.Header
		return Erase[int64](l), nil
	},
	"bitmap": func(o Options) (ingest.Consumer[any], error) {
		return Erase[*roaring.Bitmap](&BitmapCollector{Column: o.Column}), nil
	},
	"bucket": func(o Options) (ingest.Consumer[any], error) {
		return Erase[*BucketTable](&Bucketer{Outer: o.Outer, Inner: o.Inner, Value: o.Value, Logger: o.Logger}), nil
	},
}

// Kinds lists the consumer names accepted by New, sorted.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// New builds the consumer registered under kind. The result always
// implements io.Closer; callers must Close it once the run is over,
// whether it succeeded or not.
func New(kind string, opts Options) (ingest.Consumer[any], error) {
	f, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown consumer %q (want one of %v)", kind, Kinds())
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger
	}
	return f(opts)
}

// Erase hides the result type of c so consumers of different kinds can be
// handled uniformly. The returned consumer forwards Close when c has one.
func Erase[R any](c ingest.Consumer[R]) ingest.Consumer[any] {
	return &erased[R]{c: c}
}

type erased[R any] struct {
	c ingest.Consumer[R]
}

func (e *erased[R]) Initialize()                       { e.c.Initialize() }
func (e *erased[R]) ProcessLine(tokens []string) error { return e.c.ProcessLine(tokens) }
func (e *erased[R]) DoneProcessing() any               { return e.c.DoneProcessing() }

func (e *erased[R]) Close() error {
	if cl, ok := e.c.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
