// Package fixedwidth decodes fixed-width lines into tables and encodes
// tables back into fixed-width lines.
package fixedwidth

import (
	"fmt"
	"time"
)

// Kind identifies what a Value holds.
type Kind uint8

const (
	Null Kind = iota
	String
	Date
)

// Value is a single table cell.
type Value struct {
	kind Kind
	str  string
	date time.Time
}

// Str returns a string cell. An empty string is a blank cell, not Null.
func Str(s string) Value { return Value{kind: String, str: s} }

// DateOf returns a date cell.
func DateOf(t time.Time) Value { return Value{kind: Date, date: t} }

// NullValue returns a null cell.
func NullValue() Value { return Value{} }

func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is Null.
func (v Value) IsNull() bool { return v.kind == Null }

// IsBlank reports whether the cell is Null or an empty string. Blank cells
// encode as spaces.
func (v Value) IsBlank() bool {
	return v.kind == Null || (v.kind == String && v.str == "")
}

// Date returns the date of a Date cell.
func (v Value) Date() (time.Time, bool) {
	return v.date, v.kind == Date
}

// String returns the text form of the cell: "" for Null, YYYYMMDD for Date.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.str
	case Date:
		return v.date.Format(DateLayout)
	default:
		return ""
	}
}

// DateLayout is the on-disk date representation.
const DateLayout = "20060102"

// Schema is an ordered column set with a validated name index.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema builds a schema. Names must be unique.
func NewSchema(names []string) (*Schema, error) {
	s := &Schema{names: append([]string(nil), names...), index: make(map[string]int, len(names))}
	for i, n := range names {
		if _, dup := s.index[n]; dup {
			return nil, fmt.Errorf("duplicate column %q", n)
		}
		s.index[n] = i
	}
	return s, nil
}

// Names returns a copy of the column names in order.
func (s *Schema) Names() []string { return append([]string(nil), s.names...) }

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.names) }

// Index returns the position of a column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Equal reports whether both schemas have the same columns in the same order.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.names) != len(o.names) {
		return false
	}
	for i := range s.names {
		if s.names[i] != o.names[i] {
			return false
		}
	}
	return true
}

// Row holds one value per schema column, in schema order.
type Row []Value

// Table is an ordered list of rows sharing one schema.
type Table struct {
	Schema *Schema
	Rows   []Row
}

// NewTable returns an empty table over schema.
func NewTable(schema *Schema) *Table {
	return &Table{Schema: schema}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row. The row length must match the schema.
func (t *Table) Append(r Row) error {
	if len(r) != t.Schema.Len() {
		return fmt.Errorf("row has %d values, schema has %d columns", len(r), t.Schema.Len())
	}
	t.Rows = append(t.Rows, r)
	return nil
}

// Get returns the value of a named column in row i.
func (t *Table) Get(i int, column string) (Value, bool) {
	ci, ok := t.Schema.Index(column)
	if !ok || i < 0 || i >= len(t.Rows) {
		return Value{}, false
	}
	return t.Rows[i][ci], true
}

// Column returns every value of a named column.
func (t *Table) Column(name string) ([]Value, bool) {
	ci, ok := t.Schema.Index(name)
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[ci]
	}
	return out, true
}

// Clone returns a deep copy of the table's rows sharing the schema.
func (t *Table) Clone() *Table {
	out := &Table{Schema: t.Schema, Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = append(Row(nil), r...)
	}
	return out
}
