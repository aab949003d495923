// Package render writes ingestion results as JSON.
package render

import (
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/csvfeed/api"
	"github.com/agentic-research/csvfeed/internal/lookup"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/alt"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var jsonOpts = ojg.Options{Indent: 2, Sort: true}

// Generic converts a consumer result into plain maps, slices and scalars.
func Generic(v any) any {
	switch r := v.(type) {
	case nil:
		return nil
	case *roaring.Bitmap:
		vals := r.ToArray()
		out := make([]any, len(vals))
		for i, n := range vals {
			out[i] = int64(n)
		}
		return out
	case *lookup.Table[string, string, string]:
		out := make(map[string]any, r.Len())
		for _, k := range r.Keys() {
			out[k] = map[string]any{}
		}
		r.Each(func(outer, inner, v string) bool {
			out[outer].(map[string]any)[inner] = v
			return true
		})
		return out
	case []api.Record:
		out := make([]any, len(r))
		for i, rec := range r {
			m := make(map[string]any, len(rec))
			for k, s := range rec {
				m[k] = s
			}
			out[i] = m
		}
		return out
	case api.Record:
		return Generic([]api.Record{r}).([]any)[0]
	case int64:
		return r
	}
	return alt.Decompose(v, &ojg.Options{UseTags: true})
}

// Select applies a JSONPath expression to a generic value and returns the
// matches.
func Select(data any, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return x.Get(data), nil
}

// JSON writes v as indented JSON with sorted keys. When selector is not empty
// only the JSONPath matches are written, as an array.
func JSON(w io.Writer, v any, selector string) error {
	data := Generic(v)
	if selector != "" {
		matches, err := Select(data, selector)
		if err != nil {
			return err
		}
		data = matches
	}
	_, err := io.WriteString(w, oj.JSON(data, &jsonOpts)+"\n")
	return err
}

// Line writes a record as a single line of JSON with sorted keys.
func Line(w io.Writer, rec api.Record) error {
	_, err := io.WriteString(w, oj.JSON(Generic(rec), &ojg.Options{Sort: true})+"\n")
	return err
}
