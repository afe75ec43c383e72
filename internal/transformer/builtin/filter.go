package builtin

import (
	"fmt"

	"retailetl/pkg/records"
)

// Op is a numeric comparison used by Filter.
type Op string

const (
	OpGE Op = ">="
	OpGT Op = ">"
)

// Filter keeps only records whose numeric Field satisfies Field <Op> Value.
// Null and non-numeric values never satisfy the predicate, so such rows are
// dropped, not corrected.
type Filter struct {
	Field string
	Op    Op
	Value float64
}

// Apply returns the surviving records; the input slice is not modified.
func (f Filter) Apply(in []records.Record) ([]records.Record, error) {
	var keep func(float64) bool
	switch f.Op {
	case OpGE:
		keep = func(v float64) bool { return v >= f.Value }
	case OpGT:
		keep = func(v float64) bool { return v > f.Value }
	default:
		return nil, fmt.Errorf("filter: unsupported op %q", f.Op)
	}

	out := make([]records.Record, 0, len(in))
	for _, r := range in {
		v, ok := r.Float(f.Field)
		if ok && keep(v) {
			out = append(out, r)
		}
	}
	return out, nil
}
