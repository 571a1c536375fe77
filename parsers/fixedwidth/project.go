package fixedwidth

import "fmt"

// Sideband holds columns removed by Project, keyed by row index.
type Sideband struct {
	Full    *Schema
	Columns []string
	Rows    map[int]Row
}

// Project removes the excluded columns from t and returns the reduced
// table plus the removed values. Unknown column names are ignored.
func Project(t *Table, excluded []string) (*Table, *Sideband, error) {
	drop := make(map[int]bool)
	for _, name := range excluded {
		if ci, ok := t.Schema.Index(name); ok {
			drop[ci] = true
		}
	}
	var keptNames, droppedNames []string
	var kept, dropped []int
	for i, n := range t.Schema.names {
		if drop[i] {
			droppedNames = append(droppedNames, n)
			dropped = append(dropped, i)
		} else {
			keptNames = append(keptNames, n)
			kept = append(kept, i)
		}
	}
	schema, err := NewSchema(keptNames)
	if err != nil {
		return nil, nil, err
	}
	side := &Sideband{Full: t.Schema, Columns: droppedNames, Rows: make(map[int]Row, len(t.Rows))}
	out := &Table{Schema: schema, Rows: make([]Row, len(t.Rows))}
	for ri, r := range t.Rows {
		nr := make(Row, len(kept))
		for j, ci := range kept {
			nr[j] = r[ci]
		}
		out.Rows[ri] = nr
		if len(dropped) > 0 {
			sr := make(Row, len(dropped))
			for j, ci := range dropped {
				sr[j] = r[ci]
			}
			side.Rows[ri] = sr
		}
	}
	return out, side, nil
}

// Reinsert restores side-band columns into t, producing a table with the
// original full schema. Rows without a side-band entry get Null cells.
func Reinsert(t *Table, side *Sideband) (*Table, error) {
	if side == nil || len(side.Columns) == 0 {
		return t, nil
	}
	src := make([]int, side.Full.Len())
	for i, n := range side.Full.names {
		if ci, ok := t.Schema.Index(n); ok {
			src[i] = ci
			continue
		}
		src[i] = -1
	}
	sideIdx := make(map[string]int, len(side.Columns))
	for j, n := range side.Columns {
		sideIdx[n] = j
	}
	out := &Table{Schema: side.Full, Rows: make([]Row, len(t.Rows))}
	for ri, r := range t.Rows {
		nr := make(Row, side.Full.Len())
		for i, n := range side.Full.names {
			if src[i] >= 0 {
				nr[i] = r[src[i]]
				continue
			}
			j, ok := sideIdx[n]
			if !ok {
				return nil, fmt.Errorf("column %q missing from both table and side band", n)
			}
			if sr, ok := side.Rows[ri]; ok {
				nr[i] = sr[j]
			}
		}
		out.Rows[ri] = nr
	}
	return out, nil
}
