package summary

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"retailetl/pkg/records"
)

func day(s string) time.Time {
	t, _ := time.Parse(records.DateLayout, s)
	return t
}

func fixture() (*records.Table, *records.Table) {
	sales := records.NewTable("sales_fact")
	sales.Records = []records.Record{
		{"order_id": "O1", "order_date": day("2024-03-05"), "customer_id": "C1", "category": "Technology",
			"revenue": 1800000.4, "profit": 800.0, "profit_margin_pct": 80.0, "is_returned": int64(0)},
		{"order_id": "O1", "order_date": day("2024-03-05"), "customer_id": "C1", "category": "Furniture",
			"revenue": 40.0, "profit": 20.0, "profit_margin_pct": 100.0, "is_returned": int64(0)},
		{"order_id": "O2", "order_date": day("2024-01-10"), "customer_id": "C2", "category": "Technology",
			"revenue": 90.0, "profit": -30.5, "profit_margin_pct": 30.0, "is_returned": int64(1)},
		{"order_id": "O3", "order_date": day("2024-12-01"), "customer_id": "C2", "category": "Office Supplies",
			"revenue": 100.0, "profit": 50.0, "profit_margin_pct": 50.0, "is_returned": int64(1)},
	}
	clv := records.NewTable("customer_clv")
	clv.Records = []records.Record{
		{"customer_id": "C1", "clv_estimate": 155.0},
		{"customer_id": "C2", "clv_estimate": 1234567.6},
	}
	return sales, clv
}

func TestCompute(t *testing.T) {
	sales, clv := fixture()
	s := Compute(sales, clv)
	if !s.FirstOrder.Equal(day("2024-01-10")) || !s.LastOrder.Equal(day("2024-12-01")) {
		t.Fatalf("date range %v..%v", s.FirstOrder, s.LastOrder)
	}
	if s.Orders != 3 || s.Customers != 2 {
		t.Fatalf("orders=%d customers=%d; want 3 and 2", s.Orders, s.Customers)
	}
	if math.Abs(s.Revenue-1800230.4) > 1e-6 || math.Abs(s.Profit-839.5) > 1e-9 {
		t.Fatalf("revenue=%v profit=%v", s.Revenue, s.Profit)
	}
	if s.MeanMarginPct != 65 || s.ReturnRatePct != 50 || s.TopCLV != 1234567.6 {
		t.Fatalf("margin=%v returns=%v topclv=%v", s.MeanMarginPct, s.ReturnRatePct, s.TopCLV)
	}
	if got := strings.Join(s.Categories, ", "); got != "Technology, Furniture, Office Supplies" {
		t.Fatalf("categories = %s", got)
	}
	if sales.Len() != 4 {
		t.Fatalf("input modified")
	}
}

func TestWrite(t *testing.T) {
	sales, clv := fixture()
	var buf bytes.Buffer
	if err := Compute(sales, clv).Write(&buf, "₹"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Date Range       : 2024-01-10 → 2024-12-01",
		"Total Orders     : 3",
		"Total Revenue    : ₹1,800,230",
		"Total Profit     : ₹840",
		"Avg Profit Margin: 65.0%",
		"Total Customers  : 2",
		"Top Customer CLV : ₹1,234,568",
		"Return Rate      : 50.0%",
		"Categories       : Technology, Furniture, Office Supplies",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestWrite_EmptySales(t *testing.T) {
	var buf bytes.Buffer
	s := Compute(records.NewTable("sales_fact"), records.NewTable("customer_clv"))
	if err := s.Write(&buf, "$"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "Date Range       : n/a") || !strings.Contains(buf.String(), "Return Rate      : n/a") {
		t.Fatalf("empty report:\n%s", buf.String())
	}
}
