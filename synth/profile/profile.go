// Package profile detects the structural profile of a table (column
// kinds) and keeps versioned copies of it on disk so repeated runs can
// synthesize against the same metadata.
package profile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
)

// Kind is the statistical type of a column.
type Kind string

const (
	Categorical Kind = "categorical"
	Numerical   Kind = "numerical"
	Datetime    Kind = "datetime"
	ID          Kind = "id"
	Text        Kind = "text"
)

// Column is the profile of one column.
type Column struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"sdtype"`
	Width int    `json:"width,omitempty"`
}

// Profile is the metadata handed to a synthesis provider.
type Profile struct {
	Dataset     string    `json:"dataset"`
	Version     int       `json:"version"`
	Columns     []Column  `json:"columns"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

// Column returns the profile of a named column.
func (p *Profile) Column(name string) (Column, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// KindOf returns the kind of a column, Categorical when unknown.
func (p *Profile) KindOf(name string) Kind {
	if p != nil {
		if c, ok := p.Column(name); ok {
			return c.Kind
		}
	}
	return Categorical
}

// categoricalRatio is the distinct/non-blank ratio at or below which a
// string column is treated as categorical.
const categoricalRatio = 0.5

// Detect infers a profile from the cells of t.
func Detect(dataset string, t *fixedwidth.Table) *Profile {
	p := &Profile{Dataset: dataset, CreatedAt: time.Now().UTC()}
	for ci, name := range t.Schema.Names() {
		p.Columns = append(p.Columns, detectColumn(name, t, ci))
	}
	p.Fingerprint = Fingerprint(p.Columns)
	return p
}

func detectColumn(name string, t *fixedwidth.Table, ci int) Column {
	col := Column{Name: name, Kind: Categorical}
	var (
		nonBlank, dates int
		numeric         = true
		idLike          = true
		sameWidth       = true
		distinct        = make(map[string]struct{})
	)
	for _, r := range t.Rows {
		v := r[ci]
		if v.IsBlank() {
			continue
		}
		s := v.String()
		if nonBlank > 0 && len(s) != col.Width {
			sameWidth = false
		}
		if len(s) > col.Width {
			col.Width = len(s)
		}
		nonBlank++
		if v.Kind() == fixedwidth.Date {
			dates++
		}
		if !isNumber(s) {
			numeric = false
		}
		if strings.ContainsRune(s, ' ') || !strings.ContainsAny(s, "0123456789") {
			idLike = false
		}
		distinct[s] = struct{}{}
	}
	switch {
	case nonBlank == 0:
	case dates == nonBlank:
		col.Kind = Datetime
	case idLike && sameWidth && nonBlank > 1 && len(distinct) == nonBlank:
		col.Kind = ID
	case numeric:
		col.Kind = Numerical
	case float64(len(distinct)) <= categoricalRatio*float64(nonBlank) || len(distinct) == 1:
		col.Kind = Categorical
	default:
		col.Kind = Text
	}
	return col
}

func isNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// Fingerprint hashes column names and kinds. Two profiles with the same
// fingerprint describe the same structure.
func Fingerprint(cols []Column) string {
	var b strings.Builder
	for _, c := range cols {
		b.WriteString(c.Name)
		b.WriteByte(':')
		b.WriteString(string(c.Kind))
		b.WriteByte(';')
	}
	return fmt.Sprintf("%016x", xxh3.HashString(b.String()))
}
