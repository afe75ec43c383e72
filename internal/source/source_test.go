package source

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"testing"

	"retailetl/internal/config"
	"retailetl/internal/source/sourcetest"
	"retailetl/pkg/records"
)

func openFixture(t *testing.T) (*sql.DB, Dialect) {
	t.Helper()
	ctx := context.Background()
	db, dialect, err := Open(ctx, config.Source{Kind: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sourcetest.Seed(ctx, db); err != nil {
		t.Fatalf("%v", err)
	}
	return db, dialect
}

func find(t *testing.T, tbl *records.Table, match func(records.Record) bool) records.Record {
	t.Helper()
	for _, r := range tbl.Records {
		if match(r) {
			return r
		}
	}
	t.Fatalf("%s: no matching row", tbl.Name)
	return nil
}

func str(r records.Record, field string) string {
	s, _ := r.String(field)
	return s
}

func byField(field, want string) func(records.Record) bool {
	return func(r records.Record) bool { return str(r, field) == want }
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestExtract_SQLiteFixture(t *testing.T) {
	db, dialect := openFixture(t)
	tables, err := Extract(context.Background(), db, dialect, "2024-12-31")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, name := range TableOrder {
		if tables[name] == nil {
			t.Fatalf("missing table %s", name)
		}
	}

	sf := tables[SalesFact]
	if sf.Len() != 4 {
		t.Fatalf("sales_fact rows = %d; want 4 (one per order line)", sf.Len())
	}
	row := find(t, sf, func(r records.Record) bool {
		return str(r, "order_id") == "O1" && str(r, "product_id") == "P1"
	})
	checks := map[string]float64{
		"net_price":         90,
		"revenue":           180,
		"total_cost":        100,
		"profit":            80,
		"profit_margin_pct": 80,
		"shipping_days":     4,
		"order_year":        2024,
		"order_quarter":     1,
	}
	for col, want := range checks {
		got, ok := row.Float(col)
		if !ok || !approx(got, want) {
			t.Fatalf("O1/P1 %s = %v; want %v", col, row[col], want)
		}
	}
	if str(row, "month_name") != "January" || str(row, "order_status") != "Completed" {
		t.Fatalf("O1/P1 month/status = %q/%q", str(row, "month_name"), str(row, "order_status"))
	}
	returned := find(t, sf, func(r records.Record) bool { return str(r, "order_id") == "O2" })
	if str(returned, "order_status") != "Returned" {
		t.Fatalf("O2 status = %q; want Returned", str(returned, "order_status"))
	}

	clv := tables[CustomerCLV]
	if clv.Len() != 2 {
		t.Fatalf("customer_clv rows = %d; want 2 (customers without orders excluded)", clv.Len())
	}
	if first := str(clv.Records[0], "customer_id"); first != "C1" {
		t.Fatalf("customer_clv not ordered by clv desc: first=%s", first)
	}
	alice := find(t, clv, byField("customer_id", "C1"))
	for col, want := range map[string]float64{
		"total_orders":           2,
		"total_revenue":          310,
		"clv_estimate":           155,
		"customer_lifespan_days": 55,
	} {
		if got, _ := alice.Float(col); !approx(got, want) {
			t.Fatalf("C1 %s = %v; want %v", col, alice[col], want)
		}
	}

	rfm := tables[RFMSegmentation]
	bob := find(t, rfm, byField("customer_id", "C2"))
	if got, _ := bob.Float("recency_days"); got != 30 {
		t.Fatalf("C2 recency = %v; want 30", bob["recency_days"])
	}
	alice = find(t, rfm, byField("customer_id", "C1"))
	if got, _ := alice.Float("recency_days"); got != 301 {
		t.Fatalf("C1 recency = %v; want 301", alice["recency_days"])
	}
	if got, _ := alice.Float("frequency"); got != 2 {
		t.Fatalf("C1 frequency = %v; want 2", alice["frequency"])
	}

	pp := tables[ProductPerformance]
	widget := find(t, pp, byField("product_id", "P1"))
	for col, want := range map[string]float64{
		"total_units_sold":  3,
		"total_revenue":     280,
		"total_profit":      130,
		"profit_margin_pct": 46.43,
	} {
		if got, _ := widget.Float(col); !approx(got, want) {
			t.Fatalf("P1 %s = %v; want %v", col, widget[col], want)
		}
	}
}

func TestExtract_ReferenceDateIsBound(t *testing.T) {
	db, dialect := openFixture(t)
	tables, err := Extract(context.Background(), db, dialect, "2025-01-31")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	bob := find(t, tables[RFMSegmentation], byField("customer_id", "C2"))
	if got, _ := bob.Float("recency_days"); got != 61 {
		t.Fatalf("C2 recency = %v; want 61", bob["recency_days"])
	}
}

type failingQuerier struct{}

func (failingQuerier) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("connection reset")
}

func TestExtract_QueryErrorNamesTable(t *testing.T) {
	_, err := Extract(context.Background(), failingQuerier{}, MySQL, "2024-12-31")
	if err == nil || !strings.Contains(err.Error(), SalesFact) {
		t.Fatalf("err = %v; want failure naming %s", err, SalesFact)
	}
}

func TestOpen_UnknownKind(t *testing.T) {
	if _, _, err := Open(context.Background(), config.Source{Kind: "oracle"}); err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
}

func TestKinds(t *testing.T) {
	got := strings.Join(Kinds(), ",")
	if got != "mysql,postgres,sqlite" {
		t.Fatalf("Kinds() = %s", got)
	}
}

func TestDSNBuilders(t *testing.T) {
	s := config.Source{Host: "db", Port: 3306, User: "etl", Password: "p@ss", Database: "retail_analytics"}
	my, err := mysqlDSN(s)
	if err != nil {
		t.Fatalf("mysqlDSN: %v", err)
	}
	if !strings.HasPrefix(my, "etl:p@ss@tcp(db:3306)/retail_analytics") || !strings.Contains(my, "parseTime=true") {
		t.Fatalf("mysql dsn = %s", my)
	}

	s.Port = 0
	pg, err := postgresDSN(s)
	if err != nil {
		t.Fatalf("postgresDSN: %v", err)
	}
	if pg != "postgres://etl:p%40ss@db:5432/retail_analytics" {
		t.Fatalf("postgres dsn = %s", pg)
	}

	if _, err := sqliteDSN(config.Source{}); err == nil {
		t.Fatalf("sqliteDSN without path should fail")
	}
}

func TestNormalize(t *testing.T) {
	if got := normalize([]byte("12.50"), kindFloat); got != 12.5 {
		t.Fatalf("decimal text -> %v (%T)", got, got)
	}
	if got := normalize("42", kindInt); got != int64(42) {
		t.Fatalf("int text -> %v (%T)", got, got)
	}
	if got := normalize([]byte("Mumbai"), kindText); got != "Mumbai" {
		t.Fatalf("text bytes -> %v (%T)", got, got)
	}
	if got := normalize(nil, kindFloat); got != nil {
		t.Fatalf("nil -> %v", got)
	}
}
