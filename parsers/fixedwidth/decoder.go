package fixedwidth

import (
	"strings"

	"github.com/avaropoint/flatsynth/parsers/layout"
)

// Decoder slices lines according to one record-type group.
type Decoder struct {
	fields []layout.Field
	schema *Schema
	unit   Unit
}

// NewDecoder returns a decoder for fields. Field names are assumed unique,
// which layout.New guarantees.
func NewDecoder(fields []layout.Field, opts ...Option) (*Decoder, error) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	schema, err := NewSchema(names)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		fields: append([]layout.Field(nil), fields...),
		schema: schema,
		unit:   apply(opts).unit,
	}, nil
}

// Schema returns the column set every decoded row follows.
func (d *Decoder) Schema() *Schema { return d.schema }

// Decode slices line into trimmed string values. Positions are counted in
// the decoder's Unit. Characters missing from a short line decode as empty
// strings; extra characters are ignored.
func (d *Decoder) Decode(line string) Row {
	line = strings.TrimRight(line, "\r\n")
	row := make(Row, len(d.fields))
	var runes []rune
	if d.unit == Chars {
		runes = []rune(line)
	}
	pos := 0
	for i, f := range d.fields {
		var cell string
		if d.unit == Chars {
			cell = string(sliceRunes(runes, pos, f.Length))
		} else {
			cell = slice(line, pos, f.Length)
		}
		row[i] = Str(strings.TrimSpace(cell))
		pos += f.Length
	}
	return row
}

// DecodeAll decodes every line into a table.
func (d *Decoder) DecodeAll(lines []string) *Table {
	t := &Table{Schema: d.schema, Rows: make([]Row, 0, len(lines))}
	for _, line := range lines {
		t.Rows = append(t.Rows, d.Decode(line))
	}
	return t
}

// slice returns line[start:start+n] clipped to the line bounds.
func slice(line string, start, n int) string {
	if start >= len(line) {
		return ""
	}
	end := start + n
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}
