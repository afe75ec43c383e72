package builtin

import (
	"math"

	"retailetl/internal/stats"
	"retailetl/pkg/records"
)

// FillNull replaces nulls in Field with Value.
type FillNull struct {
	Field string
	Value any
}

// Apply fills in place.
func (f FillNull) Apply(in []records.Record) ([]records.Record, error) {
	for _, r := range in {
		if r.IsNull(f.Field) {
			r[f.Field] = f.Value
		}
	}
	return in, nil
}

// FillMedian replaces nulls in Field with the median of the non-null values of
// the records it is given. Run it after any filtering so the median reflects
// the surviving rows. When no value is present the nulls stay null.
type FillMedian struct {
	Field string

	// Filled, when non-nil, receives the median that was used.
	Filled *float64
}

// Apply fills in place.
func (f FillMedian) Apply(in []records.Record) ([]records.Record, error) {
	vals := make([]float64, 0, len(in))
	for _, r := range in {
		if v, ok := r.Float(f.Field); ok {
			vals = append(vals, v)
		}
	}
	m := stats.Median(vals)
	if f.Filled != nil {
		*f.Filled = m
	}
	if math.IsNaN(m) {
		return in, nil
	}
	return FillNull{Field: f.Field, Value: m}.Apply(in)
}
