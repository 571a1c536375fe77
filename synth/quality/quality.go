// Package quality scores synthetic tables against their source. The
// report is informational: it never changes the pipeline output.
package quality

import (
	"context"
	"math"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/synth/profile"
)

// Pair is one source table and its synthetic counterpart.
type Pair struct {
	Dataset   string
	Real      *fixedwidth.Table
	Synthetic *fixedwidth.Table
	Profile   *profile.Profile
}

// ColumnScore holds the diagnostics of one column. Scores are in [0, 1].
type ColumnScore struct {
	Column     string
	Kind       profile.Kind
	RealBlank  float64 // share of blank cells in the source
	SynthBlank float64 // share of blank cells in the synthetic table
	Validity   float64 // share of synthetic values inside the source domain
	Score      float64
}

// GroupReport is the report of one dataset.
type GroupReport struct {
	Dataset string
	Rows    int
	Columns []ColumnScore
	Score   float64
}

// Report aggregates every dataset.
type Report struct {
	Groups []GroupReport
	Score  float64
}

// Evaluate scores each pair. Pairs are independent and read-only, so they
// are scored in parallel.
func Evaluate(ctx context.Context, pairs []Pair) (*Report, error) {
	groups := make([]GroupReport, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			groups[i] = evaluatePair(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r := &Report{Groups: groups}
	var total float64
	for _, gr := range groups {
		total += gr.Score
	}
	if len(groups) > 0 {
		r.Score = total / float64(len(groups))
	}
	return r, nil
}

func evaluatePair(p Pair) GroupReport {
	gr := GroupReport{Dataset: p.Dataset, Rows: p.Real.Len()}
	var total float64
	for _, name := range p.Real.Schema.Names() {
		src, _ := p.Real.Column(name)
		syn, ok := p.Synthetic.Column(name)
		if !ok {
			continue
		}
		cs := scoreColumn(name, p.Profile.KindOf(name), src, syn)
		gr.Columns = append(gr.Columns, cs)
		total += cs.Score
	}
	if len(gr.Columns) > 0 {
		gr.Score = total / float64(len(gr.Columns))
	}
	return gr
}

func scoreColumn(name string, kind profile.Kind, src, syn []fixedwidth.Value) ColumnScore {
	cs := ColumnScore{
		Column:     name,
		Kind:       kind,
		RealBlank:  blankRate(src),
		SynthBlank: blankRate(syn),
	}
	in := domain(kind, src)
	valid, n := 0, 0
	for _, v := range syn {
		if v.IsBlank() {
			continue
		}
		n++
		if in(v) {
			valid++
		}
	}
	cs.Validity = 1
	if n > 0 {
		cs.Validity = float64(valid) / float64(n)
	}
	cs.Score = (cs.Validity + 1 - math.Abs(cs.RealBlank-cs.SynthBlank)) / 2
	return cs
}

func blankRate(col []fixedwidth.Value) float64 {
	if len(col) == 0 {
		return 0
	}
	n := 0
	for _, v := range col {
		if v.IsBlank() {
			n++
		}
	}
	return float64(n) / float64(len(col))
}

// domain returns a membership test for the source column: observed bounds
// for numbers and dates, same length for ids, observed set otherwise.
func domain(kind profile.Kind, src []fixedwidth.Value) func(fixedwidth.Value) bool {
	switch kind {
	case profile.Numerical:
		lo, hi, ok := numberBounds(src)
		if ok {
			return func(v fixedwidth.Value) bool {
				n, err := strconv.ParseFloat(v.String(), 64)
				return err == nil && n >= lo && n <= hi
			}
		}
	case profile.Datetime:
		lo, hi, ok := dateBounds(src)
		if ok {
			return func(v fixedwidth.Value) bool {
				d, isDate := v.Date()
				return isDate && !d.Before(lo) && !d.After(hi)
			}
		}
	case profile.ID:
		widths := map[int]bool{}
		for _, v := range src {
			if !v.IsBlank() {
				widths[len(v.String())] = true
			}
		}
		return func(v fixedwidth.Value) bool { return widths[len(v.String())] }
	}
	seen := map[string]bool{}
	for _, v := range src {
		if !v.IsBlank() {
			seen[v.String()] = true
		}
	}
	return func(v fixedwidth.Value) bool { return seen[v.String()] }
}

func numberBounds(col []fixedwidth.Value) (lo, hi float64, ok bool) {
	for _, v := range col {
		if v.IsBlank() {
			continue
		}
		n, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, 0, false
		}
		if !ok || n < lo {
			lo = n
		}
		if !ok || n > hi {
			hi = n
		}
		ok = true
	}
	return lo, hi, ok
}

func dateBounds(col []fixedwidth.Value) (lo, hi time.Time, ok bool) {
	for _, v := range col {
		d, isDate := v.Date()
		if !isDate {
			continue
		}
		if !ok || d.Before(lo) {
			lo = d
		}
		if !ok || d.After(hi) {
			hi = d
		}
		ok = true
	}
	return lo, hi, ok
}
