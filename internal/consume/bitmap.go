package consume

import (
	"strconv"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/csvfeed/internal/ingest"
)

var _ ingest.Consumer[*roaring.Bitmap] = (*BitmapCollector)(nil)

// BitmapCollector gathers the distinct unsigned 32-bit integers found in one
// column, for example the NPA-NXX codes or SPIDs listed in a download file.
type BitmapCollector struct {
	// Column is the 0-based token index to read.
	Column int

	bm *roaring.Bitmap
}

func (c *BitmapCollector) Initialize() {
	c.bm = roaring.New()
}

func (c *BitmapCollector) ProcessLine(tokens []string) error {
	if c.Column < 0 || c.Column >= len(tokens) {
		return ingest.Malformed("no column %d in %d tokens", c.Column, len(tokens))
	}
	n, err := strconv.ParseUint(tokens[c.Column], 10, 32)
	if err != nil {
		return ingest.Malformed("column %d: %q is not an unsigned 32-bit integer", c.Column, tokens[c.Column])
	}
	c.bm.Add(uint32(n))
	return nil
}

func (c *BitmapCollector) DoneProcessing() *roaring.Bitmap {
	c.bm.RunOptimize()
	return c.bm
}
