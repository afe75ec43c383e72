// Package csv reads delimited files back into records. The exporter uses it to
// verify that a written snapshot round-trips to the same shape as the
// in-memory table.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"retailetl/pkg/records"
)

// Options configures the CSV parser behavior.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	// Without one, columns are named col_0, col_1, ...
	HasHeader bool
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// skipLogLimit bounds how many skipped rows are logged individually.
const skipLogLimit = 400

// Parse consumes CSV records from r and returns them as a table named name,
// along with the number of rows that were skipped due to parse errors or
// field-count mismatches. Empty cells become nil.
func (p *Parser) Parse(name string, r io.Reader) (*records.Table, int, error) {
	cr := csv.NewReader(r)
	// Width is enforced below so a bad row is skipped instead of aborting.
	cr.FieldsPerRecord = -1

	var headers []string
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h)
	}
	width := len(headers)

	t := records.NewTable(name, headers...)
	var skipped int
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("Skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if width > 0 && len(row) != width {
			if skipped < skipLogLimit {
				log.Printf("Skipping row %d: incorrect number of fields (expected %d, got %d)", line, width, len(row))
			}
			skipped++
			continue
		}

		// Without a header the first row fixes the width.
		if !p.opt.HasHeader && width == 0 {
			for i := range row {
				t.AddColumn(keyFor(i, nil))
			}
			width = len(row)
		}
		rec := make(records.Record, len(row))
		for i, val := range row {
			rec[keyFor(i, headers)] = emptyToNil(val)
		}
		t.Records = append(t.Records, rec)
	}
	return t, skipped, nil
}

// keyFor returns the column key for index idx, using headers when available,
// otherwise synthesizing a "col_N" name.
func keyFor(idx int, headers []string) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders strips a UTF-8 BOM from the first cell and trims
// surrounding space from every header.
func normalizeHeaders(h []string) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	for i, col := range h {
		res[i] = strings.TrimSpace(col)
	}
	return res
}
