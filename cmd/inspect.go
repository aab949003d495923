package cmd

import (
	"io"

	"github.com/agentic-research/csvfeed/api"
	"github.com/agentic-research/csvfeed/internal/consume"
	"github.com/agentic-research/csvfeed/internal/render"
	"github.com/spf13/cobra"
)

func newInspectCommand(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <db> <table>",
		Short: "Print the rows of a table loaded by the sqlite consumer, one JSON object per line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return consume.StreamRows(args[0], args[1], func(rec api.Record) error {
				return render.Line(stdout, rec)
			})
		},
	}
}
