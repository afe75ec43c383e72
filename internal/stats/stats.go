// Package stats holds the small set of order statistics the cleaners need:
// linear-interpolated quantiles, quantile binning with duplicate-edge
// fallback, fixed-edge binning and first-occurrence ranking.
//
// Null values are represented as NaN throughout and are skipped by every
// aggregate; binning functions assign them bin -1.
package stats

import (
	"math"
	"sort"
)

// NoBin is the bin index assigned to nulls and out-of-range values.
const NoBin = -1

// Quantile returns the q-th quantile (0 <= q <= 1) of xs using linear
// interpolation between the two nearest ranks. NaNs are ignored; an empty
// input yields NaN.
func Quantile(xs []float64, q float64) float64 {
	s := sortedValid(xs)
	return quantileSorted(s, q)
}

func quantileSorted(s []float64, q float64) float64 {
	n := len(s)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return s[0]
	}
	if q >= 1 {
		return s[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if frac == 0 || lo+1 >= n {
		return s[lo]
	}
	return s[lo] + frac*(s[lo+1]-s[lo])
}

// Median is Quantile(xs, 0.5).
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Mean returns the arithmetic mean of the non-NaN values, or NaN when none.
func Mean(xs []float64) float64 {
	var sum float64
	n := 0
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// QuantileEdges returns n+1 bin edges splitting xs into n equal-frequency
// bins. The first edge is the minimum and the last the maximum.
func QuantileEdges(xs []float64, n int) []float64 {
	s := sortedValid(xs)
	if len(s) == 0 || n <= 0 {
		return nil
	}
	edges := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		edges[i] = quantileSorted(s, float64(i)/float64(n))
	}
	return edges
}

// UniqueEdges drops repeated boundaries from an ascending edge list.
func UniqueEdges(edges []float64) []float64 {
	out := make([]float64, 0, len(edges))
	for i, e := range edges {
		if i > 0 && e == out[len(out)-1] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// QCut assigns each value to one of up to n quantile bins (0-based). Bins are
// right-closed with the lowest edge included. When the distribution has too
// few distinct boundaries the duplicate edges are dropped and fewer bins are
// produced; k reports how many. A distribution with a single distinct value
// puts every non-null value in bin 0 (k == 1).
func QCut(values []float64, n int) (bins []int, k int) {
	bins = make([]int, len(values))
	edges := UniqueEdges(QuantileEdges(values, n))
	switch {
	case len(edges) == 0:
		for i := range bins {
			bins[i] = NoBin
		}
		return bins, 0
	case len(edges) == 1:
		for i, v := range values {
			if math.IsNaN(v) {
				bins[i] = NoBin
			} else {
				bins[i] = 0
			}
		}
		return bins, 1
	}

	k = len(edges) - 1
	for i, v := range values {
		bins[i] = Cut(v, edges, true)
	}
	return bins, k
}

// Cut returns the 0-based index of the right-closed interval (edges[i],
// edges[i+1]] containing v, or NoBin when v is NaN or outside the edges. With
// includeLowest the first interval is closed on the left as well.
func Cut(v float64, edges []float64, includeLowest bool) int {
	if math.IsNaN(v) || len(edges) < 2 {
		return NoBin
	}
	if v == edges[0] {
		if includeLowest {
			return 0
		}
		return NoBin
	}
	if v < edges[0] || v > edges[len(edges)-1] {
		return NoBin
	}
	// First edge >= v closes the interval v belongs to.
	i := sort.SearchFloat64s(edges, v)
	return i - 1
}

// RankFirst returns 1-based ranks where ties are ranked in order of
// appearance. NaN values keep a NaN rank.
func RankFirst(values []float64) []float64 {
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})
	ranks := make([]float64, len(values))
	for i := range ranks {
		ranks[i] = math.NaN()
	}
	for r, i := range idx {
		ranks[i] = float64(r + 1)
	}
	return ranks
}

func sortedValid(xs []float64) []float64 {
	s := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			s = append(s, x)
		}
	}
	sort.Float64s(s)
	return s
}
