package source

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"retailetl/pkg/records"
)

// valueKind is the normalized shape a column's driver values are converted to.
type valueKind int

const (
	kindAny valueKind = iota
	kindInt
	kindFloat
	kindText
)

// kindOf maps a driver-reported database type name onto a valueKind. Unknown
// names (sqlite expressions report "") fall back to kindAny, which keeps the
// driver's own Go type and only turns []byte into string.
func kindOf(dbType string) valueKind {
	t := strings.ToUpper(dbType)
	switch {
	case t == "":
		return kindAny
	case strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "FLOAT"), strings.Contains(t, "DOUBLE"), t == "REAL":
		return kindFloat
	case strings.Contains(t, "INT"):
		return kindInt
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"), t == "ENUM", t == "NAME":
		return kindText
	}
	return kindAny
}

// scanTable drains rows into a records.Table, normalizing driver values:
// DECIMAL/NUMERIC arrive as text from most drivers and become float64,
// integer types become int64, text becomes string, dates stay time.Time (or
// text for stores without a date type; the cleaners parse those).
func scanTable(name string, rows *sql.Rows) (*records.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	kinds := make([]valueKind, len(cols))
	for i, ct := range types {
		kinds[i] = kindOf(ct.DatabaseTypeName())
	}

	t := records.NewTable(name, cols...)
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			rec[c] = normalize(vals[i], kinds[i])
		}
		t.Records = append(t.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func normalize(v any, k valueKind) any {
	if v == nil {
		return nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch k {
	case kindFloat:
		if f, ok := records.ToFloat(v); ok {
			return f
		}
	case kindInt:
		switch t := v.(type) {
		case int64:
			return t
		case string:
			if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
				return i
			}
		case float64:
			return int64(t)
		}
	case kindText:
		if s, ok := v.(string); ok {
			return s
		}
	}
	switch t := v.(type) {
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t
	}
	return v
}
