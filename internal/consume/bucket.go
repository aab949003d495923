package consume

import (
	"github.com/agentic-research/csvfeed/internal/ingest"
	"github.com/agentic-research/csvfeed/internal/logger"
	"github.com/agentic-research/csvfeed/internal/lookup"
)

// BucketTable is the result of a Bucketer run.
type BucketTable = lookup.Table[string, string, string]

var _ ingest.Consumer[*BucketTable] = (*Bucketer)(nil)

// Bucketer files the Value column of every line under the (Outer, Inner)
// column pair, e.g. LRN by NPA then NXX. A repeated pair keeps the last value
// and logs the one it replaced.
type Bucketer struct {
	Outer, Inner, Value int
	Logger              logger.Logger

	table *BucketTable
}

func (b *Bucketer) Initialize() {
	if b.Logger == nil {
		b.Logger = logger.NopLogger
	}
	b.table = lookup.New[string, string, string]()
}

func (b *Bucketer) ProcessLine(tokens []string) error {
	for _, col := range []int{b.Outer, b.Inner, b.Value} {
		if col < 0 || col >= len(tokens) {
			return ingest.Malformed("no column %d in %d tokens", col, len(tokens))
		}
	}
	outer, inner, v := tokens[b.Outer], tokens[b.Inner], tokens[b.Value]
	if prev, ok := b.table.Put(outer, inner, v); ok && prev != v {
		b.Logger.Warnf("bucket: %s/%s: %q replaces %q", outer, inner, v, prev)
	}
	return nil
}

func (b *Bucketer) DoneProcessing() *BucketTable {
	return b.table
}
