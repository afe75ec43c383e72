// Package builtin contains reusable cleaning transformers.
//
// DeDup collapses fully identical records, keeping the first occurrence. The
// key is the whole row (every field, in sorted field order). Keys are
// fingerprinted with xxh3; colliding fingerprints are resolved by comparing
// the encoded keys.
package builtin

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"retailetl/pkg/records"
)

// DeDup drops records that equal an earlier record in every field.
type DeDup struct{}

// Apply returns the first occurrence of each distinct row, in input order.
func (DeDup) Apply(in []records.Record) ([]records.Record, error) {
	if len(in) == 0 {
		return in, nil
	}

	// fingerprint -> encoded keys seen (more than one only on hash collision)
	seen := make(map[uint64][]string, len(in))
	out := make([]records.Record, 0, len(in))

	for _, r := range in {
		key := encodeKey(r)
		h := xxh3.HashString(key)
		dup := false
		for _, k := range seen[h] {
			if k == key {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[h] = append(seen[h], key)
		out = append(out, r)
	}
	return out, nil
}

// encodeKey builds a canonical string for r. Values are rendered with their
// type so that "1" and 1 stay distinct.
func encodeKey(r records.Record) string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(k)
		b.WriteByte('=')
		switch t := r[k].(type) {
		case nil:
			b.WriteByte('\x00')
		case float64:
			if math.IsNaN(t) {
				b.WriteByte('\x00')
			} else {
				fmt.Fprintf(&b, "f:%v", t)
			}
		case time.Time:
			b.WriteString("t:")
			b.WriteString(t.UTC().Format(time.RFC3339Nano))
		case string:
			b.WriteString("s:")
			b.WriteString(t)
		case []byte:
			b.WriteString("s:")
			b.Write(t)
		default:
			fmt.Fprintf(&b, "%T:%v", t, t)
		}
	}
	return b.String()
}
