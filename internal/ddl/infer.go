package ddl

import (
	"time"

	"retailetl/pkg/records"
)

// Infer derives a TableDef from the values a table actually holds. Any
// numeric column is KindFloat, whether a given run saw integers or not, so a
// table created by an earlier run keeps accepting later loads. Dates (midnight
// times) are KindDate and other times KindTimestamp. Anything else, and
// columns that are entirely null, are KindText.
func Infer(fqn string, t *records.Table) TableDef {
	def := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(t.Columns))}
	for _, c := range t.Columns {
		def.Columns = append(def.Columns, ColumnDef{Name: c, Kind: inferKind(t.Records, c)})
	}
	return def
}

func inferKind(recs []records.Record, col string) Kind {
	var seen, nums, dates, stamps int
	for _, r := range recs {
		if r.IsNull(col) {
			continue
		}
		seen++
		switch v := r[col].(type) {
		case int, int32, int64, float32, float64:
			nums++
		case time.Time:
			if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
				dates++
			} else {
				stamps++
			}
		}
	}
	switch {
	case seen == 0:
		return KindText
	case nums == seen:
		return KindFloat
	case dates == seen:
		return KindDate
	case dates+stamps == seen:
		return KindTimestamp
	}
	return KindText
}
