package layout

import (
	"fmt"
	"strings"
)

// New builds a Layout from descriptors. Fields sharing a RecordType form
// a group in the order given; groups keep the order of their first field.
func New(fields []Field) (*Layout, error) {
	if len(fields) == 0 {
		return nil, &MalformedLayoutError{Reason: "no fields"}
	}
	l := &Layout{index: make(map[string]int)}
	seen := make(map[string]map[string]bool)
	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		f.RecordType = strings.TrimSpace(f.RecordType)
		if err := check(f, seen, i+1); err != nil {
			return nil, err
		}
		gi, ok := l.index[f.RecordType]
		if !ok {
			gi = len(l.groups)
			l.index[f.RecordType] = gi
			l.groups = append(l.groups, Group{RecordType: f.RecordType})
		}
		l.groups[gi].Fields = append(l.groups[gi].Fields, f)
	}
	return l, nil
}

func check(f Field, seen map[string]map[string]bool, row int) error {
	if f.Name == "" {
		return &MalformedLayoutError{RecordType: f.RecordType, Row: row, Reason: "empty column name"}
	}
	if f.Length <= 0 {
		return &MalformedLayoutError{
			RecordType: f.RecordType,
			Field:      f.Name,
			Row:        row,
			Reason:     fmt.Sprintf("length must be positive, got %d", f.Length),
		}
	}
	names := seen[f.RecordType]
	if names == nil {
		names = make(map[string]bool)
		seen[f.RecordType] = names
	}
	if names[f.Name] {
		return &MalformedLayoutError{RecordType: f.RecordType, Field: f.Name, Row: row, Reason: "duplicate column name"}
	}
	names[f.Name] = true
	return nil
}

// Merge concatenates layouts into one. A record type may appear in only
// one of the inputs.
func Merge(layouts ...*Layout) (*Layout, error) {
	var all []Field
	owner := make(map[string]int)
	for i, l := range layouts {
		for _, g := range l.groups {
			if prev, ok := owner[g.RecordType]; ok && prev != i {
				return nil, &MalformedLayoutError{RecordType: g.RecordType, Reason: "record type defined in more than one layout"}
			}
			owner[g.RecordType] = i
			all = append(all, g.Fields...)
		}
	}
	return New(all)
}

// WithRecordType tags every field of a single-group layout with rt. It is
// used for layouts kept in their own file without a type column.
func (l *Layout) WithRecordType(rt string) (*Layout, error) {
	if len(l.groups) != 1 {
		return nil, &MalformedLayoutError{RecordType: rt, Reason: fmt.Sprintf("cannot retag layout with %d groups", len(l.groups))}
	}
	fields := make([]Field, len(l.groups[0].Fields))
	for i, f := range l.groups[0].Fields {
		f.RecordType = rt
		fields[i] = f
	}
	return New(fields)
}

// RecordTypes returns the group tags in layout order.
func (l *Layout) RecordTypes() []string {
	out := make([]string, len(l.groups))
	for i, g := range l.groups {
		out[i] = g.RecordType
	}
	return out
}

// Groups returns a copy of every group.
func (l *Layout) Groups() []Group {
	out := make([]Group, len(l.groups))
	for i, g := range l.groups {
		out[i] = Group{RecordType: g.RecordType, Fields: append([]Field(nil), g.Fields...)}
	}
	return out
}

// Group returns the group for a record type.
func (l *Layout) Group(rt string) (Group, bool) {
	gi, ok := l.index[rt]
	if !ok {
		return Group{}, false
	}
	g := l.groups[gi]
	return Group{RecordType: g.RecordType, Fields: append([]Field(nil), g.Fields...)}, true
}

// Has reports whether the layout defines rt.
func (l *Layout) Has(rt string) bool {
	_, ok := l.index[rt]
	return ok
}

// Fields returns the ordered descriptors of rt, or nil when undefined.
func (l *Layout) Fields(rt string) []Field {
	g, _ := l.Group(rt)
	return g.Fields
}

// LineWidth returns the sum of the field lengths of rt.
func (l *Layout) LineWidth(rt string) int {
	gi, ok := l.index[rt]
	if !ok {
		return 0
	}
	return l.groups[gi].Width()
}

// Offset returns the derived start offset of a named field in rt.
func (l *Layout) Offset(rt, name string) (int, bool) {
	gi, ok := l.index[rt]
	if !ok {
		return 0, false
	}
	off := 0
	for _, f := range l.groups[gi].Fields {
		if f.Name == name {
			return off, true
		}
		off += f.Length
	}
	return 0, false
}
