// Package layout describes fixed-width record layouts: ordered field
// descriptors grouped by record type. Offsets are never stored; a field's
// offset is the sum of the lengths before it in its group.
package layout

import json "github.com/goccy/go-json"

// Field describes a single column in a fixed-width record.
type Field struct {
	Name        string `json:"name"`
	Length      int    `json:"length"`
	RecordType  string `json:"record_type,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts "type" as an alias of "record_type", matching the
// Type column of tabular layouts.
func (f *Field) UnmarshalJSON(data []byte) error {
	type plain Field
	var aux struct {
		plain
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = Field(aux.plain)
	if f.RecordType == "" {
		f.RecordType = aux.Type
	}
	return nil
}

// Group is the ordered field list for one record type.
type Group struct {
	RecordType string
	Fields     []Field
}

// Width returns the physical line width of the group.
func (g Group) Width() int {
	n := 0
	for _, f := range g.Fields {
		n += f.Length
	}
	return n
}

// Names returns the column names in layout order.
func (g Group) Names() []string {
	names := make([]string, len(g.Fields))
	for i, f := range g.Fields {
		names[i] = f.Name
	}
	return names
}

// Layout is an immutable set of record-type groups in first-seen order.
type Layout struct {
	groups []Group
	index  map[string]int
}
