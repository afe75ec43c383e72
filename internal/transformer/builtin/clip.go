package builtin

import (
	"math"

	"retailetl/internal/stats"
	"retailetl/pkg/records"
)

// ClipUpper caps Field at its Quantile-th value over the records it is given.
// Values are only ever lowered; nulls are left alone.
type ClipUpper struct {
	Field    string
	Quantile float64

	// Cap, when non-nil, receives the threshold that was applied.
	Cap *float64
}

// Apply clips in place.
func (c ClipUpper) Apply(in []records.Record) ([]records.Record, error) {
	vals := make([]float64, 0, len(in))
	for _, r := range in {
		if v, ok := r.Float(c.Field); ok {
			vals = append(vals, v)
		}
	}
	limit := stats.Quantile(vals, c.Quantile)
	if c.Cap != nil {
		*c.Cap = limit
	}
	if math.IsNaN(limit) {
		return in, nil
	}
	for _, r := range in {
		v, ok := r.Float(c.Field)
		if !ok {
			continue
		}
		if v > limit {
			r[c.Field] = limit
		} else {
			r[c.Field] = v
		}
	}
	return in, nil
}
