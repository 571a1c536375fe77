package fixedwidth

import (
	"fmt"
	"strings"

	"github.com/avaropoint/flatsynth/parsers/layout"
)

// Encoder renders rows of a table back into fixed-width lines.
type Encoder struct {
	fields []layout.Field
	cols   []int
	dates  []bool
	width  int
	unit   Unit
}

// NewEncoder binds fields to the columns of schema. Every field must be
// present in the schema. Columns listed in dateColumns are rendered as
// YYYYMMDD when they hold a date or a parseable date string.
func NewEncoder(fields []layout.Field, schema *Schema, dateColumns []string, opts ...Option) (*Encoder, error) {
	isDate := make(map[string]bool, len(dateColumns))
	for _, c := range dateColumns {
		isDate[c] = true
	}
	e := &Encoder{
		fields: append([]layout.Field(nil), fields...),
		cols:   make([]int, len(fields)),
		dates:  make([]bool, len(fields)),
		unit:   apply(opts).unit,
	}
	for i, f := range fields {
		ci, ok := schema.Index(f.Name)
		if !ok {
			return nil, fmt.Errorf("column %q missing from table", f.Name)
		}
		e.cols[i] = ci
		e.dates[i] = isDate[f.Name]
		e.width += f.Length
	}
	return e, nil
}

// Width returns the length of every encoded line in the encoder's Unit.
func (e *Encoder) Width() int { return e.width }

// Encode renders one row. The result is always exactly Width units long.
func (e *Encoder) Encode(row Row) string {
	var b strings.Builder
	b.Grow(e.width)
	for i, f := range e.fields {
		var v Value
		if e.cols[i] < len(row) {
			v = row[e.cols[i]]
		}
		b.WriteString(formatValue(v, f.Length, e.dates[i], e.unit))
	}
	return b.String()
}

// EncodeAll renders every row of t.
func (e *Encoder) EncodeAll(t *Table) []string {
	lines := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		lines[i] = e.Encode(r)
	}
	return lines
}

// formatValue pads or truncates one cell to length units.
func formatValue(v Value, length int, dateColumn bool, u Unit) string {
	if v.IsBlank() {
		return strings.Repeat(" ", length)
	}
	s := v.String()
	if dateColumn && v.Kind() == String {
		if t, ok := ParseDate(s, DefaultDateLayouts); ok {
			s = t.Format(DateLayout)
		}
	}
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)
	return padRight(truncate(s, length, u), length, ' ', u)
}

// padRight pads a string on the right to reach length units.
func padRight(s string, length int, pad byte, u Unit) string {
	n := length - Len(s, u)
	if n <= 0 {
		return s
	}
	padding := make([]byte, n)
	for i := range padding {
		padding[i] = pad
	}
	return s + string(padding)
}
