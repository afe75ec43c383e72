// Package export writes cleaned tables to dated CSV snapshots and can read
// them back to verify the round trip.
//
// Files are named <table>_<YYYYMMDD>.csv. Each run overwrites the snapshot
// for the same day; earlier days are left untouched.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"retailetl/internal/source"
	"retailetl/pkg/records"
)

// File describes one written snapshot.
type File struct {
	Table string
	Path  string
	Rows  int
	Bytes int64
}

// FileName returns the snapshot name for table on the run date.
func FileName(table string, runDate time.Time) string {
	return fmt.Sprintf("%s_%s.csv", table, runDate.Format("20060102"))
}

// Write creates dir if needed and writes every table in source.TableOrder to
// its dated snapshot. The first write error aborts.
func Write(dir string, tables source.Tables, runDate time.Time) ([]File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", dir, err)
	}
	files := make([]File, 0, len(source.TableOrder))
	for _, name := range source.TableOrder {
		t, ok := tables[name]
		if !ok {
			return nil, fmt.Errorf("export: missing table %s", name)
		}
		path := filepath.Join(dir, FileName(name, runDate))
		n, err := WriteTable(path, t)
		if err != nil {
			return nil, err
		}
		log.Printf("export: saved %s (%d rows, %s)", path, t.Len(), humanize.Bytes(uint64(n)))
		files = append(files, File{Table: name, Path: path, Rows: t.Len(), Bytes: n})
	}
	log.Printf("export: all files saved to %s", dir)
	return files, nil
}

// WriteTable writes t as CSV with a header row and returns the file size.
// The file is written under a temporary name and renamed into place so a
// failed run never leaves a truncated snapshot behind.
func WriteTable(path string, t *records.Table) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriterSize(tmp, 64*1024)
	cw := csv.NewWriter(bw)
	if err := cw.Write(t.Columns); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("export: %s header: %w", t.Name, err)
	}
	row := make([]string, len(t.Columns))
	for _, r := range t.Records {
		for i, c := range t.Columns {
			row[i] = records.Format(r[c])
		}
		if err := cw.Write(row); err != nil {
			tmp.Close()
			return 0, fmt.Errorf("export: %s: %w", t.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("export: %s: %w", t.Name, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("export: %s: %w", t.Name, err)
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	return info.Size(), nil
}
