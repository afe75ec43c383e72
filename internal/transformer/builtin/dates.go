package builtin

import (
	"fmt"

	"retailetl/pkg/records"
)

// ParseDates converts Fields to time.Time. Unlike a lenient loader, a value
// that cannot be parsed is an error: the cleaners rely on every surviving date
// being a real calendar date. Nulls are left untouched.
type ParseDates struct {
	Fields []string
}

// Apply parses every configured field in place.
func (p ParseDates) Apply(in []records.Record) ([]records.Record, error) {
	for i, r := range in {
		for _, field := range p.Fields {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			t, err := records.ToTime(v)
			if err != nil {
				return nil, fmt.Errorf("parse dates: row %d field %s: %w", i, field, err)
			}
			if t.IsZero() {
				r[field] = nil
			} else {
				r[field] = t
			}
		}
	}
	return in, nil
}
