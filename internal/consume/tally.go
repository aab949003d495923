// Package consume holds the ingest.Consumer implementations shipped with
// csvfeed.
package consume

import (
	"github.com/agentic-research/csvfeed/internal/ingest"
)

var _ ingest.Consumer[TallyResult] = (*Tally)(nil)

// TallyResult summarizes the shape of a resource.
type TallyResult struct {
	Lines    int `json:"lines"`
	Tokens   int `json:"tokens"`
	MinWidth int `json:"min_width"`
	MaxWidth int `json:"max_width"`
}

// Simplify returns a generic map for JSON rendering.
func (r TallyResult) Simplify() any {
	return map[string]any{
		"lines":     r.Lines,
		"tokens":    r.Tokens,
		"min_width": r.MinWidth,
		"max_width": r.MaxWidth,
	}
}

// Tally counts accepted lines and tokens. It never rejects a line.
type Tally struct {
	res TallyResult
}

func (t *Tally) Initialize() {
	t.res = TallyResult{}
}

func (t *Tally) ProcessLine(tokens []string) error {
	n := len(tokens)
	if t.res.Lines == 0 || n < t.res.MinWidth {
		t.res.MinWidth = n
	}
	if n > t.res.MaxWidth {
		t.res.MaxWidth = n
	}
	t.res.Lines++
	t.res.Tokens += n
	return nil
}

func (t *Tally) DoneProcessing() TallyResult {
	return t.res
}
