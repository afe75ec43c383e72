package clean

import (
	"github.com/shopspring/decimal"

	"retailetl/internal/transformer"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// CategoricalColumns are trimmed and title-cased in the sales fact.
var CategoricalColumns = []string{
	"gender", "segment", "region", "ship_mode",
	"category", "sub_category", "order_status",
}

// Age bins: [0,25] (25,35] (35,45] (45,60] (60,100].
var (
	AgeEdges  = []float64{0, 25, 35, 45, 60, 100}
	AgeGroups = []any{"18-25", "26-35", "36-45", "46-60", "60+"}
)

// ProfitMarginCap is the quantile profit_margin_pct is clipped to.
const ProfitMarginCap = 0.99

// Derived sales fact columns, appended in this order.
const (
	ColDiscountPct = "discount_pct"
	ColAgeGroup    = "age_group"
	ColIsReturned  = "is_returned"
	ColMonthYear   = "month_year"
)

// SalesFact cleans the raw sales fact. The steps run in a fixed order: the
// shipping_days median and the profit margin cap are computed over the rows
// that survived deduplication and the revenue/quantity filters.
func SalesFact(t *records.Table) (*records.Table, Report, error) {
	var median, limit float64
	steps := transformer.Chain{
		builtin.ParseDates{Fields: []string{"order_date", "ship_date"}},
		builtin.DeDup{},
		builtin.Filter{Field: "revenue", Op: builtin.OpGE, Value: 0},
		builtin.Filter{Field: "quantity", Op: builtin.OpGT, Value: 0},
		builtin.FillNull{Field: "discount", Value: 0.0},
		builtin.FillMedian{Field: "shipping_days", Filled: &median},
		builtin.ClipUpper{Field: "profit_margin_pct", Quantile: ProfitMarginCap, Cap: &limit},
		builtin.TitleCase{Fields: CategoricalColumns},
		builtin.Cut{Field: "age", Target: ColAgeGroup, Edges: AgeEdges, Labels: AgeGroups, IncludeLowest: true},
		transformer.Func(deriveSalesColumns),
	}
	out, rep, err := run(t, steps)
	if err != nil {
		return nil, rep, err
	}
	for _, c := range []string{ColDiscountPct, ColAgeGroup, ColIsReturned, ColMonthYear} {
		out.AddColumn(c)
	}
	rep.NullsRemaining = out.NullCount()
	logReport(rep)
	return out, rep, nil
}

func deriveSalesColumns(in []records.Record) ([]records.Record, error) {
	for _, r := range in {
		r[ColDiscountPct] = DiscountPct(r)

		status, _ := r.String("order_status")
		if status == "Returned" {
			r[ColIsReturned] = int64(1)
		} else {
			r[ColIsReturned] = int64(0)
		}

		if d, ok := r.Time("order_date"); ok {
			r[ColMonthYear] = d.Format("2006-01")
		} else {
			r[ColMonthYear] = nil
		}
	}
	return in, nil
}

// DiscountPct is discount × 100 rounded to one decimal, ties to even. The
// product is taken in float64 first so values that land just off a tie round
// the same way a float computation would. A null discount reads as 0.
func DiscountPct(r records.Record) float64 {
	d, ok := r.Float("discount")
	if !ok {
		return 0
	}
	f, _ := decimal.NewFromFloat(d * 100).RoundBank(1).Float64()
	return f
}
