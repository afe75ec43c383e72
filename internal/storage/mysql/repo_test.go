package mysql

import (
	"context"
	"strings"
	"testing"
)

func TestInsertSQL(t *testing.T) {
	q, args, err := insertSQL("bi.sales_fact", []string{"order_id", "qty"}, [][]any{
		{"O1", int64(2)},
		{"O2", int64(3)},
	})
	if err != nil {
		t.Fatalf("insertSQL: %v", err)
	}
	want := "INSERT INTO `bi`.`sales_fact` (`order_id`,`qty`) VALUES (?,?),(?,?)"
	if q != want {
		t.Fatalf("query =\n%s\nwant\n%s", q, want)
	}
	if len(args) != 4 || args[0] != "O1" || args[3] != int64(3) {
		t.Fatalf("args = %#v", args)
	}
}

func TestInsertSQL_RowWidthMismatch(t *testing.T) {
	if _, _, err := insertSQL("t", []string{"a", "b"}, [][]any{{"x"}}); err == nil {
		t.Fatalf("expected width mismatch error")
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent("we`ird"); got != "`we``ird`" {
		t.Fatalf("quoteIdent = %q", got)
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	_, err := NewRepository(context.Background(), "not a dsn", "t")
	if err == nil || !strings.Contains(err.Error(), "mysql dsn") {
		t.Fatalf("want dsn error, got %v", err)
	}
}
