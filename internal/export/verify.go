package export

import (
	"fmt"
	"os"
	"strings"

	pcsv "retailetl/internal/parser/csv"
	"retailetl/internal/source"
	"retailetl/pkg/records"
)

// Verify reads every file back and checks that it reproduces the row count
// and column list of the in-memory table it was written from.
func Verify(files []File, tables source.Tables) error {
	p := pcsv.NewParser(pcsv.Options{HasHeader: true})
	for _, f := range files {
		want, ok := tables[f.Table]
		if !ok {
			return fmt.Errorf("verify: no table %s for %s", f.Table, f.Path)
		}
		got, err := readBack(p, f)
		if err != nil {
			return err
		}
		if err := sameShape(want, got); err != nil {
			return fmt.Errorf("verify %s: %w", f.Path, err)
		}
	}
	return nil
}

func readBack(p *pcsv.Parser, f File) (*records.Table, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	defer fh.Close()
	t, skipped, err := p.Parse(f.Table, fh)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", f.Path, err)
	}
	if skipped > 0 {
		return nil, fmt.Errorf("verify %s: %d malformed rows", f.Path, skipped)
	}
	return t, nil
}

func sameShape(want, got *records.Table) error {
	if strings.Join(want.Columns, ",") != strings.Join(got.Columns, ",") {
		return fmt.Errorf("columns %v, want %v", got.Columns, want.Columns)
	}
	if got.Len() != want.Len() {
		return fmt.Errorf("%d rows, want %d", got.Len(), want.Len())
	}
	return nil
}
