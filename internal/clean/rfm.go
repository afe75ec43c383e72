package clean

import (
	"fmt"
	"log"

	"retailetl/internal/transformer"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// RFM score and segment columns.
const (
	ColRScore   = "R_score"
	ColFScore   = "F_score"
	ColMScore   = "M_score"
	ColRFMScore = "RFM_score"
	ColSegment  = "rfm_segment"
)

// Segment labels, best first.
const (
	SegmentChampions = "Champions"
	SegmentLoyal     = "Loyal Customers"
	SegmentPotential = "Potential Loyalists"
	SegmentAtRisk    = "At Risk"
	SegmentLost      = "Lost Customers"
)

// Segments lists the segment labels, best first.
var Segments = []string{SegmentChampions, SegmentLoyal, SegmentPotential, SegmentAtRisk, SegmentLost}

// Segment maps a composite RFM score onto its segment label.
func Segment(score int64) string {
	switch {
	case score >= 10:
		return SegmentChampions
	case score >= 8:
		return SegmentLoyal
	case score >= 6:
		return SegmentPotential
	case score >= 4:
		return SegmentAtRisk
	default:
		return SegmentLost
	}
}

var (
	recencyScores = []any{int64(4), int64(3), int64(2), int64(1)}
	ascScores     = []any{int64(1), int64(2), int64(3), int64(4)}
)

// RFM scores recency, frequency and monetary value 1-4 by quartile and maps
// their sum to a segment. Recency is inverted so the most recent customers
// score 4. Frequency is ranked first-occurrence before binning because many
// customers share the same order count. A customer with no recorded revenue
// has monetary 0.
func RFM(t *records.Table) (*records.Table, Report, error) {
	var rBins, fBins, mBins int
	steps := transformer.Chain{
		builtin.FillNull{Field: "monetary", Value: 0.0},
		builtin.QCut{Field: "recency_days", Target: ColRScore, Labels: recencyScores, Bins: &rBins},
		builtin.QCut{Field: "frequency", Target: ColFScore, Labels: ascScores, Rank: true, Bins: &fBins},
		builtin.QCut{Field: "monetary", Target: ColMScore, Labels: ascScores, Bins: &mBins},
		transformer.Func(scoreSegments),
	}
	out, rep, err := run(t, steps)
	if err != nil {
		return nil, rep, err
	}
	for _, c := range []string{ColRScore, ColFScore, ColMScore, ColRFMScore, ColSegment} {
		out.AddColumn(c)
	}
	rep.ScoreBins = map[string]int{ColRScore: rBins, ColFScore: fBins, ColMScore: mBins}
	rep.Bins = min(rBins, fBins, mBins)
	if out.Len() > 0 {
		for _, c := range []string{ColRScore, ColFScore, ColMScore} {
			if n := rep.ScoreBins[c]; n < len(ascScores) {
				log.Printf("clean: %s %s distribution supports only %d of %d scores", rep.Table, c, n, len(ascScores))
			}
		}
	}
	rep.NullsRemaining = out.NullCount()
	rep.Distribution = distribution(out.Records, ColSegment)
	log.Printf("clean: %s segments: %s", rep.Table, formatDistribution(rep.Distribution, Segments))
	logReport(rep)
	return out, rep, nil
}

func scoreSegments(in []records.Record) ([]records.Record, error) {
	for _, r := range in {
		var total int64
		for _, c := range []string{ColRScore, ColFScore, ColMScore} {
			s, ok := r.Int(c)
			if !ok {
				id, _ := r.String("customer_id")
				return nil, fmt.Errorf("customer %q has no %s", id, c)
			}
			total += s
		}
		r[ColRFMScore] = total
		r[ColSegment] = Segment(total)
	}
	return in, nil
}
