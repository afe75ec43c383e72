package records

// Table is a named set of records with an ordered column list. The column list
// drives export order; records may carry values for every listed column.
type Table struct {
	Name    string
	Columns []string
	Records []Record
}

// NewTable returns an empty table with the given columns.
func NewTable(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: append([]string(nil), columns...)}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HasColumn reports whether name is part of the column list.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the column list if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Clone deep-copies the table so callers can transform it without touching
// the input.
func (t *Table) Clone() *Table {
	out := &Table{
		Name:    t.Name,
		Columns: append([]string(nil), t.Columns...),
		Records: make([]Record, len(t.Records)),
	}
	for i, r := range t.Records {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Records[i] = cp
	}
	return out
}

// Rows returns the records as positional rows aligned to Columns.
func (t *Table) Rows() [][]any {
	rows := make([][]any, len(t.Records))
	for i, r := range t.Records {
		row := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = r[c]
		}
		rows[i] = row
	}
	return rows
}

// NullCount counts null cells across the listed columns.
func (t *Table) NullCount() int {
	n := 0
	for _, r := range t.Records {
		for _, c := range t.Columns {
			if r.IsNull(c) {
				n++
			}
		}
	}
	return n
}

// Floats collects the non-null numeric values of a column, in record order.
func (t *Table) Floats(col string) []float64 {
	out := make([]float64, 0, len(t.Records))
	for _, r := range t.Records {
		if f, ok := r.Float(col); ok {
			out = append(out, f)
		}
	}
	return out
}
