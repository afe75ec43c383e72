package ddl

// Kind is the logical type of a column, independent of any SQL dialect.
type Kind int

const (
	KindText Kind = iota
	KindFloat
	KindDate
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	}
	return "text"
}

// ColumnDef describes a single column: its unquoted name and logical type.
// Every column is rendered nullable.
type ColumnDef struct {
	Name string
	Kind Kind
}

// TableDef holds the table name and an ordered list of columns. The name may
// be schema-qualified ("schema.table"); renderers quote each segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
