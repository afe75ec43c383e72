// Package clean turns the raw extracted tables into the analysis-ready tables
// that are exported and summarized.
//
// Every cleaner is a pure function of its input table: the input is cloned,
// the clone is run through a transformer.Chain, and the result is returned
// together with a Report. Nothing here touches the database or the
// filesystem; the only side effect is diagnostic logging.
package clean

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"retailetl/internal/source"
	"retailetl/internal/transformer"
	"retailetl/pkg/records"
)

// Report describes what a cleaner did to one table.
type Report struct {
	Table      string
	RowsBefore int
	RowsAfter  int
	// NullsRemaining counts null cells across the cleaned table.
	NullsRemaining int
	// Bins is the number of quantile bins the cleaner produced, when it bins.
	// For RFM it is the smallest of the three score bin counts.
	Bins int
	// ScoreBins holds the bin count per RFM score column.
	ScoreBins map[string]int
	// Distribution counts rows per label of the cleaner's categorical output
	// (clv_tier or rfm_segment).
	Distribution map[string]int
}

// Dropped is the number of rows removed.
func (r Report) Dropped() int { return r.RowsBefore - r.RowsAfter }

// Cleaner cleans one table.
type Cleaner func(*records.Table) (*records.Table, Report, error)

// Cleaners maps table names to their cleaner. Tables without an entry pass
// through unchanged.
var Cleaners = map[string]Cleaner{
	source.SalesFact:       SalesFact,
	source.CustomerCLV:     CustomerCLV,
	source.RFMSegmentation: RFM,
}

// All cleans every table in source.TableOrder. product_performance has no
// cleaner and is returned as extracted. The first cleaner error aborts the
// run.
func All(in source.Tables) (source.Tables, []Report, error) {
	out := make(source.Tables, len(in))
	var reports []Report
	for _, name := range source.TableOrder {
		t, ok := in[name]
		if !ok {
			return nil, nil, fmt.Errorf("clean: missing table %s", name)
		}
		c, ok := Cleaners[name]
		if !ok {
			out[name] = t
			continue
		}
		cleaned, rep, err := c(t)
		if err != nil {
			return nil, nil, fmt.Errorf("clean %s: %w", name, err)
		}
		out[name] = cleaned
		reports = append(reports, rep)
	}
	return out, reports, nil
}

// run clones t, applies steps and fills in the row and null counts of a
// Report.
func run(t *records.Table, steps transformer.Chain) (*records.Table, Report, error) {
	out := t.Clone()
	rep := Report{Table: t.Name, RowsBefore: t.Len()}
	recs, err := steps.Apply(out.Records)
	if err != nil {
		return nil, rep, err
	}
	out.Records = recs
	rep.RowsAfter = out.Len()
	return out, rep, nil
}

// distribution counts rows per value of field.
func distribution(recs []records.Record, field string) map[string]int {
	m := map[string]int{}
	for _, r := range recs {
		if r.IsNull(field) {
			continue
		}
		m[records.Format(r[field])]++
	}
	return m
}

// formatDistribution renders m in labels order, then any other keys sorted.
func formatDistribution(m map[string]int, labels []string) string {
	var parts []string
	seen := map[string]bool{}
	for _, l := range labels {
		seen[l] = true
		if n, ok := m[l]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", l, n))
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func logReport(rep Report) {
	log.Printf("clean: %s rows_before=%d rows_after=%d nulls_remaining=%d",
		rep.Table, rep.RowsBefore, rep.RowsAfter, rep.NullsRemaining)
}
