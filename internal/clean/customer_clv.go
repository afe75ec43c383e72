package clean

import (
	"log"

	"retailetl/internal/transformer"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// Tiers are the CLV tier labels from lowest to highest.
var Tiers = []string{"Bronze", "Silver", "Gold", "Platinum"}

// ColCLVTier is the derived tier column.
const ColCLVTier = "clv_tier"

// CustomerCLV parses the order date range, zero-fills the CLV estimate and
// lifespan and assigns a quartile tier of clv_estimate. A degenerate CLV
// distribution yields fewer tiers, never an error.
func CustomerCLV(t *records.Table) (*records.Table, Report, error) {
	var bins int
	steps := transformer.Chain{
		builtin.ParseDates{Fields: []string{"first_order_date", "last_order_date"}},
		builtin.FillNull{Field: "clv_estimate", Value: 0.0},
		builtin.FillNull{Field: "customer_lifespan_days", Value: int64(0)},
		builtin.QCut{Field: "clv_estimate", Target: ColCLVTier, Labels: labels(Tiers), Bins: &bins},
	}
	out, rep, err := run(t, steps)
	if err != nil {
		return nil, rep, err
	}
	out.AddColumn(ColCLVTier)
	rep.Bins = bins
	rep.NullsRemaining = out.NullCount()
	rep.Distribution = distribution(out.Records, ColCLVTier)
	if bins < len(Tiers) && out.Len() > 0 {
		log.Printf("clean: %s clv distribution supports only %d of %d tiers", rep.Table, bins, len(Tiers))
	}
	log.Printf("clean: %s tiers: %s", rep.Table, formatDistribution(rep.Distribution, Tiers))
	logReport(rep)
	return out, rep, nil
}

func labels(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
