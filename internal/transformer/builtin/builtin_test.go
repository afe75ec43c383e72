package builtin

import (
	"reflect"
	"testing"
	"time"

	"retailetl/internal/transformer"
	"retailetl/pkg/records"
)

func TestParseDates(t *testing.T) {
	in := []records.Record{
		{"d": "2024-02-29", "e": []byte("2024-03-01"), "n": nil},
	}
	out, err := ParseDates{Fields: []string{"d", "e", "n"}}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, ok := out[0]["d"].(time.Time); !ok || got.Day() != 29 {
		t.Fatalf("d = %#v; want time.Time", out[0]["d"])
	}
	if got, ok := out[0]["e"].(time.Time); !ok || got.Month() != time.March {
		t.Fatalf("e = %#v; want time.Time", out[0]["e"])
	}
	if out[0]["n"] != nil {
		t.Fatalf("null date must stay null")
	}
}

func TestParseDates_InvalidDateIsError(t *testing.T) {
	in := []records.Record{{"d": "2024-13-45"}}
	if _, err := (ParseDates{Fields: []string{"d"}}).Apply(in); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}

func TestTitleCase(t *testing.T) {
	in := []records.Record{
		{"a": "  standard class ", "b": "FURNITURE", "c": nil, "d": 5.0},
		{"a": "returned ", "b": []byte("home office"), "c": "x", "d": "untouched"},
	}
	out, err := TitleCase{Fields: []string{"a", "b", "c"}}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []records.Record{
		{"a": "Standard Class", "b": "Furniture", "c": nil, "d": 5.0},
		{"a": "Returned", "b": "Home Office", "c": "X", "d": "untouched"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v want %#v", out, want)
	}
}

func TestFilter(t *testing.T) {
	in := []records.Record{
		{"q": 1.0}, {"q": 0.0}, {"q": -1.0}, {"q": nil}, {"q": "3"},
	}
	gt, err := Filter{Field: "q", Op: OpGT, Value: 0}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(gt) != 2 {
		t.Fatalf("q > 0 kept %d rows; want 2", len(gt))
	}
	ge, _ := Filter{Field: "q", Op: OpGE, Value: 0}.Apply(in)
	if len(ge) != 3 {
		t.Fatalf("q >= 0 kept %d rows; want 3", len(ge))
	}
	if _, err := (Filter{Field: "q", Op: "<"}).Apply(in); err == nil {
		t.Fatalf("expected error for unsupported op")
	}
}

func TestFillMedian(t *testing.T) {
	in := []records.Record{
		{"s": 2.0}, {"s": nil}, {"s": 4.0}, {"s": 10.0},
	}
	var m float64
	out, err := FillMedian{Field: "s", Filled: &m}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m != 4 {
		t.Fatalf("median = %v; want 4", m)
	}
	if out[1]["s"] != 4.0 {
		t.Fatalf("filled = %#v; want 4", out[1]["s"])
	}
}

func TestFillMedian_AllNullStaysNull(t *testing.T) {
	in := []records.Record{{"s": nil}}
	out, _ := FillMedian{Field: "s"}.Apply(in)
	if out[0]["s"] != nil {
		t.Fatalf("expected null to remain")
	}
}

func TestClipUpper_NeverInflates(t *testing.T) {
	in := make([]records.Record, 0, 101)
	for i := 1; i <= 100; i++ {
		in = append(in, records.Record{"m": float64(i)})
	}
	in = append(in, records.Record{"m": nil})

	var limit float64
	out, err := ClipUpper{Field: "m", Quantile: 0.99, Cap: &limit}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i, r := range out[:100] {
		v, _ := r.Float("m")
		if v > limit {
			t.Fatalf("row %d = %v exceeds cap %v", i, v, limit)
		}
		if orig := float64(i + 1); orig <= limit && v != orig {
			t.Fatalf("row %d changed from %v to %v", i, orig, v)
		}
	}
	if v, _ := out[99].Float("m"); v != limit {
		t.Fatalf("max clipped to %v; want %v", v, limit)
	}
	if out[100]["m"] != nil {
		t.Fatalf("null must stay null")
	}
}

func TestCut_AgeGroups(t *testing.T) {
	in := []records.Record{{"age": 18.0}, {"age": 35.0}, {"age": 70.0}, {"age": 120.0}, {"age": nil}}
	c := Cut{
		Field:         "age",
		Target:        "g",
		Edges:         []float64{0, 25, 35, 45, 60, 100},
		Labels:        []any{"18-25", "26-35", "36-45", "46-60", "60+"},
		IncludeLowest: true,
	}
	out, err := c.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []any{"18-25", "26-35", "60+", nil, nil}
	for i, w := range want {
		if out[i]["g"] != w {
			t.Fatalf("row %d group = %#v; want %#v", i, out[i]["g"], w)
		}
	}
}

func TestQCut_RankBreaksTies(t *testing.T) {
	in := []records.Record{{"f": 1.0}, {"f": 1.0}, {"f": 1.0}, {"f": 1.0}}
	var k int
	out, err := QCut{Field: "f", Target: "s", Labels: []any{1, 2, 3, 4}, Rank: true, Bins: &k}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if k != 4 {
		t.Fatalf("bins = %d; want 4", k)
	}
	for i, want := range []int{1, 2, 3, 4} {
		if out[i]["s"] != want {
			t.Fatalf("row %d score = %#v; want %d", i, out[i]["s"], want)
		}
	}
}

func TestChain_StopsOnError(t *testing.T) {
	calls := 0
	count := transformer.Func(func(in []records.Record) ([]records.Record, error) {
		calls++
		return in, nil
	})
	chain := transformer.Chain{
		count,
		ParseDates{Fields: []string{"d"}},
		count,
	}
	if _, err := chain.Apply([]records.Record{{"d": "bad"}}); err == nil {
		t.Fatalf("expected chain error")
	}
	if calls != 1 {
		t.Fatalf("steps after the failure ran: calls=%d", calls)
	}
}
