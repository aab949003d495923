package consume

import (
	"github.com/agentic-research/csvfeed/api"
	"github.com/agentic-research/csvfeed/internal/ingest"
	"github.com/agentic-research/csvfeed/internal/logger"
)

var _ ingest.Consumer[[]api.Record] = (*Records)(nil)

// Records maps every accepted line onto named columns.
//
// Column names come from Schema. When Header is set the first accepted line
// is treated as a header: it supplies the names if Schema is nil and is
// skipped otherwise. A line whose token count differs from the column count
// is malformed.
type Records struct {
	Schema *api.Schema
	Header bool
	Logger logger.Logger

	names   []string
	pending bool // header line not yet seen
	out     []api.Record
}

func (r *Records) Initialize() {
	if r.Logger == nil {
		r.Logger = logger.NopLogger
	}
	r.names = nil
	if r.Schema != nil {
		r.names = r.Schema.Names()
	}
	r.pending = r.Header
	r.out = nil
}

func (r *Records) ProcessLine(tokens []string) error {
	if r.pending {
		r.pending = false
		if r.names == nil {
			r.names = append([]string(nil), tokens...)
			r.Logger.Debugf("records: columns from header: %v", r.names)
		} else {
			r.Logger.Debugf("records: skipping header %v", tokens)
		}
		return nil
	}
	if r.names == nil {
		return ingest.Malformed("no columns defined")
	}
	if len(tokens) != len(r.names) {
		return ingest.Malformed("want %d tokens, got %d", len(r.names), len(tokens))
	}
	rec := make(api.Record, len(tokens))
	for i, name := range r.names {
		rec[name] = tokens[i]
	}
	r.out = append(r.out, rec)
	return nil
}

func (r *Records) DoneProcessing() []api.Record {
	return r.out
}

// Columns returns the column names in effect, including names taken from a
// header line.
func (r *Records) Columns() []string {
	return r.names
}
