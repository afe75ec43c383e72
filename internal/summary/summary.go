// Package summary computes the operator-facing run summary from the cleaned
// sales fact and customer CLV tables.
package summary

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"retailetl/internal/stats"
	"retailetl/pkg/records"
)

// Summary holds the aggregate figures of one run. Means are NaN when the
// sales fact is empty.
type Summary struct {
	FirstOrder    time.Time
	LastOrder     time.Time
	Orders        int
	Customers     int
	Revenue       float64
	Profit        float64
	MeanMarginPct float64
	TopCLV        float64
	ReturnRatePct float64
	Categories    []string
}

// Compute reads sales and clv without modifying them.
func Compute(sales, clv *records.Table) Summary {
	s := Summary{
		MeanMarginPct: math.NaN(),
		ReturnRatePct: math.NaN(),
		TopCLV:        math.NaN(),
	}
	orders := map[string]struct{}{}
	customers := map[string]struct{}{}
	seenCat := map[string]struct{}{}
	for _, r := range sales.Records {
		if d, ok := r.Time("order_date"); ok {
			if s.FirstOrder.IsZero() || d.Before(s.FirstOrder) {
				s.FirstOrder = d
			}
			if d.After(s.LastOrder) {
				s.LastOrder = d
			}
		}
		if id, ok := r.String("order_id"); ok {
			orders[id] = struct{}{}
		}
		if id, ok := r.String("customer_id"); ok {
			customers[id] = struct{}{}
		}
		if c, ok := r.String("category"); ok {
			if _, dup := seenCat[c]; !dup {
				seenCat[c] = struct{}{}
				s.Categories = append(s.Categories, c)
			}
		}
		if v, ok := r.Float("revenue"); ok {
			s.Revenue += v
		}
		if v, ok := r.Float("profit"); ok {
			s.Profit += v
		}
	}
	s.Orders = len(orders)
	s.Customers = len(customers)
	s.MeanMarginPct = stats.Mean(sales.Floats("profit_margin_pct"))
	if rr := stats.Mean(sales.Floats("is_returned")); !math.IsNaN(rr) {
		s.ReturnRatePct = rr * 100
	}
	if clv != nil {
		for _, v := range clv.Floats("clv_estimate") {
			if math.IsNaN(s.TopCLV) || v > s.TopCLV {
				s.TopCLV = v
			}
		}
	}
	return s
}

const rule = "======================================================="

// Write prints the report. Money is rounded to whole units with thousands
// separators and prefixed with currency.
func (s Summary) Write(w io.Writer, currency string) error {
	dateRange := "n/a"
	if !s.FirstOrder.IsZero() {
		dateRange = s.FirstOrder.Format(records.DateLayout) + " → " + s.LastOrder.Format(records.DateLayout)
	}
	lines := []struct{ label, value string }{
		{"Date Range", dateRange},
		{"Total Orders", humanize.Comma(int64(s.Orders))},
		{"Total Revenue", money(currency, s.Revenue)},
		{"Total Profit", money(currency, s.Profit)},
		{"Avg Profit Margin", percent(s.MeanMarginPct)},
		{"Total Customers", humanize.Comma(int64(s.Customers))},
		{"Top Customer CLV", money(currency, s.TopCLV)},
		{"Return Rate", percent(s.ReturnRatePct)},
		{"Categories", strings.Join(s.Categories, ", ")},
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n  DATA SUMMARY\n%s\n", rule, rule)
	for _, l := range lines {
		fmt.Fprintf(&b, "  %-17s: %s\n", l.label, l.value)
	}
	b.WriteString(rule + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func money(currency string, v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return currency + humanize.Comma(int64(math.Round(v)))
}

func percent(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v)
}
