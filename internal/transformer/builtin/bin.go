package builtin

import (
	"fmt"
	"math"

	"retailetl/internal/stats"
	"retailetl/pkg/records"
)

// Cut writes Labels[i] to Target when Field falls in the right-closed interval
// (Edges[i], Edges[i+1]]. Values outside the edges, and nulls, get a null
// label.
type Cut struct {
	Field         string
	Target        string
	Edges         []float64
	Labels        []any
	IncludeLowest bool
}

// Apply bins in place.
func (c Cut) Apply(in []records.Record) ([]records.Record, error) {
	if len(c.Labels) != len(c.Edges)-1 {
		return nil, fmt.Errorf("cut: %d labels for %d edges", len(c.Labels), len(c.Edges))
	}
	for _, r := range in {
		v, ok := r.Float(c.Field)
		if !ok {
			r[c.Target] = nil
			continue
		}
		if i := stats.Cut(v, c.Edges, c.IncludeLowest); i != stats.NoBin {
			r[c.Target] = c.Labels[i]
		} else {
			r[c.Target] = nil
		}
	}
	return in, nil
}

// QCut writes a quantile-bin label for Field into Target. The number of
// requested bins is len(Labels). When the distribution is too degenerate to
// form that many distinct bins, duplicate edges are dropped and the first k
// labels are used; Bins reports k.
//
// With Rank set, values are replaced by their first-occurrence rank before
// binning, which always yields distinct edges when there are enough rows.
type QCut struct {
	Field  string
	Target string
	Labels []any
	Rank   bool

	// Bins, when non-nil, receives the resulting bin count.
	Bins *int
}

// Apply bins in place.
func (q QCut) Apply(in []records.Record) ([]records.Record, error) {
	if len(q.Labels) == 0 {
		return nil, fmt.Errorf("qcut: no labels for %s", q.Field)
	}
	vals := make([]float64, len(in))
	for i, r := range in {
		if v, ok := r.Float(q.Field); ok {
			vals[i] = v
		} else {
			vals[i] = math.NaN()
		}
	}
	if q.Rank {
		vals = stats.RankFirst(vals)
	}

	bins, k := stats.QCut(vals, len(q.Labels))
	if q.Bins != nil {
		*q.Bins = k
	}
	for i, r := range in {
		if bins[i] == stats.NoBin {
			r[q.Target] = nil
			continue
		}
		r[q.Target] = q.Labels[bins[i]]
	}
	return in, nil
}
