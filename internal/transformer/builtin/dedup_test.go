package builtin

import (
	"reflect"
	"testing"
	"time"

	"retailetl/pkg/records"
)

func mk(id string, fields map[string]any) records.Record {
	r := records.Record{"order_id": id}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func TestDeDupFullRow_CollapsesIdenticalRows(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	in := []records.Record{
		mk("A", map[string]any{"qty": 1.0, "date": day, "discount": nil}),
		mk("A", map[string]any{"qty": 1.0, "date": day, "discount": nil}),
		mk("A", map[string]any{"qty": 2.0, "date": day, "discount": nil}),
		mk("B", map[string]any{"qty": 1.0, "date": day, "discount": nil}),
	}
	got, err := DeDup{}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []records.Record{in[0], in[2], in[3]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("full-row dedup: got %#v want %#v", got, want)
	}
}

func TestDeDupFullRow_TypeSensitive(t *testing.T) {
	in := []records.Record{
		{"v": "1"},
		{"v": 1.0},
	}
	got, err := DeDup{}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("string and float values must not collapse: got %d rows", len(got))
	}
}

func TestDeDup_KeepsFirstOccurrence(t *testing.T) {
	first := records.Record{"order_id": "A", "qty": 1.0}
	second := records.Record{"order_id": "A", "qty": 1.0}
	got, err := DeDup{}.Apply([]records.Record{first, second})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows; want 1", len(got))
	}
	// Same values, so identity is the only way to tell which one survived.
	got[0]["marker"] = true
	if first["marker"] != true {
		t.Fatalf("dedup kept a later occurrence")
	}
}
