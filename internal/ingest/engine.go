// Package ingest drives a Consumer over the comma-separated lines of a
// text resource.
package ingest

import (
	"strings"

	"github.com/agentic-research/csvfeed/internal/logger"
	"github.com/agentic-research/csvfeed/internal/source"
)

const (
	// Delimiter separates tokens within an accepted line.
	Delimiter = ","
	// CommentPrefix marks a trimmed line as a comment.
	CommentPrefix = "#"

	byteOrderMark = "\ufeff"
)

// Skip reasons reported to Metrics.
const (
	skipBlank   = "blank"
	skipComment = "comment"
)

// Driver reads resources from a Source and feeds them to consumers.
// A Driver is not safe for concurrent use.
type Driver struct {
	Source  source.Source
	Logger  logger.Logger
	Metrics *Metrics
}

// NewDriver returns a Driver reading from src. A nil log discards diagnostics.
func NewDriver(src source.Source, log logger.Logger) *Driver {
	if log == nil {
		log = logger.NopLogger
	}
	return &Driver{
		Source: src,
		Logger: log,
	}
}

// Run ingests the resource identified by id into c and returns the result of
// c.DoneProcessing.
//
// c.Initialize is always called first, even when the resource cannot be read.
// A read failure yields a *ResourceError and a rejected line a *FormatError;
// in both cases c.DoneProcessing is not called and the zero R is returned.
func Run[R any](d *Driver, c Consumer[R], id string) (R, error) {
	var zero R
	log := d.Logger
	if log == nil {
		log = logger.NopLogger
	}

	c.Initialize()

	text, err := d.Source.ReadAll(id)
	if err != nil {
		log.Errorf("ingest %s: read failed: %v", id, err)
		d.Metrics.runDone(OutcomeResourceError)
		return zero, &ResourceError{Resource: id, Err: err}
	}
	log.Debugf("ingest %s: processing started", id)

	processed := 0
	text = strings.TrimPrefix(text, byteOrderMark)
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			d.Metrics.lineSkipped(skipBlank)
			continue
		}
		if strings.HasPrefix(line, CommentPrefix) {
			d.Metrics.lineSkipped(skipComment)
			continue
		}

		processed++
		d.Metrics.lineAccepted()
		if err := c.ProcessLine(Tokenize(line)); err != nil {
			ferr := &FormatError{
				Resource: id,
				Line:     processed,
				FileLine: i + 1,
				Raw:      line,
				Err:      err,
			}
			log.Errorf("%v", ferr)
			d.Metrics.runDone(OutcomeFormatError)
			return zero, ferr
		}
	}

	result := c.DoneProcessing()
	d.Metrics.runDone(OutcomeOK)
	log.Infof("ingest %s: processed %d lines", id, processed)
	return result, nil
}

// Tokenize splits a line on Delimiter. Empty tokens are kept and tokens are
// not trimmed.
func Tokenize(line string) []string {
	return strings.Split(line, Delimiter)
}
