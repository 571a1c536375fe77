package fixedwidth

import (
	"strings"
	"time"
)

// DefaultDateLayouts are tried in order when coercing date columns.
var DefaultDateLayouts = []string{
	DateLayout,
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate parses s strictly against each layout in turn.
func ParseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Coerce turns the named columns of t into Date cells in place and returns
// t. Empty cells and values that fail to parse become Null. Columns missing
// from the table are skipped. When layouts is empty DefaultDateLayouts is
// used.
func Coerce(t *Table, dateColumns []string, layouts ...string) *Table {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	for _, name := range dateColumns {
		ci, ok := t.Schema.Index(name)
		if !ok {
			continue
		}
		for _, r := range t.Rows {
			r[ci] = coerceDate(r[ci], layouts)
		}
	}
	return t
}

func coerceDate(v Value, layouts []string) Value {
	switch v.Kind() {
	case Date:
		return v
	case String:
		if d, ok := ParseDate(v.str, layouts); ok {
			return DateOf(d)
		}
	}
	return NullValue()
}
