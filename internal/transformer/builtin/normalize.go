package builtin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"retailetl/pkg/records"
)

// TitleCase trims surrounding whitespace (including NBSP) from text fields
// and converts them to title case: the first letter of each word upper, the
// rest lower. Null and non-text values are left unchanged.
type TitleCase struct {
	Fields []string
}

// Apply rewrites the configured fields in place.
func (n TitleCase) Apply(in []records.Record) ([]records.Record, error) {
	caser := cases.Title(language.Und)
	for _, r := range in {
		for _, f := range n.Fields {
			var s string
			switch t := r[f].(type) {
			case string:
				s = t
			case []byte:
				s = string(t)
			default:
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
			r[f] = caser.String(s)
		}
	}
	return in, nil
}
