// Package transformer defines the record-level transformation contract used by
// the cleaners. A Transformer takes a slice of records and returns the slice
// to hand to the next step; it may filter, rewrite values in place, or add
// derived fields.
package transformer

import (
	"fmt"

	"retailetl/pkg/records"
)

// Transformer is a single cleaning step.
type Transformer interface {
	Apply([]records.Record) ([]records.Record, error)
}

// Func adapts a plain function to the Transformer interface.
type Func func([]records.Record) ([]records.Record, error)

// Apply calls f.
func (f Func) Apply(in []records.Record) ([]records.Record, error) { return f(in) }

// Chain is an ordered list of transformers. Steps run strictly in sequence and
// the first error aborts the chain.
type Chain []Transformer

// Apply runs every step in order.
func (c Chain) Apply(in []records.Record) ([]records.Record, error) {
	out := in
	for i, t := range c {
		var err error
		out, err = t.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("step %d (%T): %w", i, t, err)
		}
	}
	return out, nil
}
