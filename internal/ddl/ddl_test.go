package ddl

import (
	"strings"
	"testing"
	"time"

	"retailetl/pkg/records"
)

var testDialect = Dialect{
	Quote: DoubleQuote,
	Types: map[Kind]string{
		KindText:  "TEXT",
		KindFloat: "DOUBLE PRECISION",
		KindDate:  "DATE",
	},
	IfNotExists: CreateIfNotExists,
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN",
			def:         TableDef{Columns: []ColumnDef{{Name: "id"}}},
			errContains: "FQN must not be empty",
		},
		{
			name:        "no columns",
			def:         TableDef{FQN: "t"},
			errContains: "at least one column",
		},
		{
			name:        "empty column name",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: " "}}},
			errContains: "empty name",
		},
		{
			name:        "unmapped kind",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "ts", Kind: KindTimestamp}}},
			errContains: "no SQL type for kind timestamp",
		},
		{
			name: "kinds and quoting",
			def: TableDef{FQN: "bi.sales_fact", Columns: []ColumnDef{
				{Name: "order_id", Kind: KindText},
				{Name: "quantity", Kind: KindFloat},
				{Name: `odd"name`, Kind: KindDate},
			}},
			wantSQL: "CREATE TABLE IF NOT EXISTS \"bi\".\"sales_fact\" (\n" +
				"  \"order_id\" TEXT,\n" +
				"  \"quantity\" DOUBLE PRECISION,\n" +
				"  \"odd\"\"name\" DATE\n" +
				")",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(testDialect, tt.def)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("err = %v; want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("SQL =\n%s\nwant\n%s", got, tt.wantSQL)
			}
		})
	}
}

func TestQuoteFQN(t *testing.T) {
	if got := testDialect.QuoteFQN(".public..users."); got != `"public"."users"` {
		t.Fatalf("QuoteFQN = %s", got)
	}
}

func TestInfer(t *testing.T) {
	tbl := records.NewTable("t", "qty", "price", "day", "at", "name", "empty")
	tbl.Records = []records.Record{
		{"qty": int64(1), "price": int64(3), "day": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			"at": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "name": "a"},
		{"qty": nil, "price": 2.5, "day": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			"at": time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), "name": int64(7)},
	}
	def := Infer("bi_t", tbl)
	want := []Kind{KindFloat, KindFloat, KindDate, KindTimestamp, KindText, KindText}
	if def.FQN != "bi_t" || len(def.Columns) != len(want) {
		t.Fatalf("def = %+v", def)
	}
	for i, c := range def.Columns {
		if c.Name != tbl.Columns[i] || c.Kind != want[i] {
			t.Fatalf("column %d = %+v; want %s %s", i, c, tbl.Columns[i], want[i])
		}
	}
}

func TestInfer_NumericKindStableAcrossRuns(t *testing.T) {
	ints := records.NewTable("t", "n")
	ints.Records = []records.Record{{"n": int64(1)}, {"n": int64(2)}}
	floats := records.NewTable("t", "n")
	floats.Records = []records.Record{{"n": 1.5}}

	a, b := Infer("t", ints), Infer("t", floats)
	if a.Columns[0].Kind != b.Columns[0].Kind {
		t.Fatalf("kinds differ: %s vs %s", a.Columns[0].Kind, b.Columns[0].Kind)
	}
	sa, _ := BuildCreateTableSQL(testDialect, a)
	sb, _ := BuildCreateTableSQL(testDialect, b)
	if sa != sb {
		t.Fatalf("DDL differs:\n%s\n%s", sa, sb)
	}
}
