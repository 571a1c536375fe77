// Package sampler implements an empirical resampling provider. Each
// column is synthesized independently from the values observed in the
// source column, guided by the column kind in the profile:
//
//   - categorical and text columns draw from the observed values;
//   - numerical columns draw uniformly between the observed bounds,
//     keeping the zero padding of the source value;
//   - id columns replace every digit and letter with a random one of the
//     same class, preserving length and punctuation;
//   - datetime columns draw a day uniformly between the observed bounds.
//
// Cells that are blank in the source stay blank in the same row.
package sampler

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/synth"
	"github.com/avaropoint/flatsynth/synth/profile"
)

// Name is the registry key.
const Name = "sampler"

func init() {
	synth.Register(&Provider{})
}

// Provider resamples columns. A zero seed draws a random seed per call.
type Provider struct {
	seed uint64
}

// New returns a provider seeded for reproducible output.
func New(seed uint64) *Provider {
	return &Provider{seed: seed}
}

func (p *Provider) Name() string { return Name }

// WithSeed implements synth.Seedable.
func (p *Provider) WithSeed(seed uint64) synth.Provider {
	return New(seed)
}

func (p *Provider) rng() *rand.Rand {
	seed := p.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (p *Provider) Generate(ctx context.Context, t *fixedwidth.Table, prof *profile.Profile) (*fixedwidth.Table, error) {
	rng := p.rng()
	out := &fixedwidth.Table{Schema: t.Schema, Rows: make([]fixedwidth.Row, len(t.Rows))}
	for i := range out.Rows {
		out.Rows[i] = make(fixedwidth.Row, t.Schema.Len())
	}
	for ci, name := range t.Schema.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col, _ := t.Column(name)
		gen := newColumn(prof.KindOf(name), col, rng)
		for ri, v := range col {
			if v.IsBlank() {
				out.Rows[ri][ci] = v
				continue
			}
			out.Rows[ri][ci] = gen(v)
		}
	}
	return out, nil
}

// newColumn returns a generator for one column. The generator receives
// the source cell of the row being produced.
func newColumn(kind profile.Kind, col []fixedwidth.Value, rng *rand.Rand) func(fixedwidth.Value) fixedwidth.Value {
	var pool []fixedwidth.Value
	for _, v := range col {
		if !v.IsBlank() {
			pool = append(pool, v)
		}
	}
	resample := func(fixedwidth.Value) fixedwidth.Value {
		return pool[rng.IntN(len(pool))]
	}
	switch kind {
	case profile.Datetime:
		if gen, ok := dateRange(pool, rng); ok {
			return gen
		}
	case profile.Numerical:
		if gen, ok := numberRange(pool, rng); ok {
			return gen
		}
	case profile.ID:
		return func(v fixedwidth.Value) fixedwidth.Value {
			return fixedwidth.Str(scramble(v.String(), rng))
		}
	}
	return resample
}

func dateRange(pool []fixedwidth.Value, rng *rand.Rand) (func(fixedwidth.Value) fixedwidth.Value, bool) {
	var lo, hi time.Time
	n := 0
	for _, v := range pool {
		d, ok := v.Date()
		if !ok {
			return nil, false
		}
		if n == 0 || d.Before(lo) {
			lo = d
		}
		if n == 0 || d.After(hi) {
			hi = d
		}
		n++
	}
	if n == 0 {
		return nil, false
	}
	days := int(hi.Sub(lo).Hours()/24) + 1
	return func(fixedwidth.Value) fixedwidth.Value {
		return fixedwidth.DateOf(lo.AddDate(0, 0, rng.IntN(days)))
	}, true
}

func numberRange(pool []fixedwidth.Value, rng *rand.Rand) (func(fixedwidth.Value) fixedwidth.Value, bool) {
	var lo, hi int64
	for i, v := range pool {
		n, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return nil, false
		}
		if i == 0 || n < lo {
			lo = n
		}
		if i == 0 || n > hi {
			hi = n
		}
	}
	if len(pool) == 0 || hi-lo < 0 || hi-lo == math.MaxInt64 {
		return nil, false
	}
	return func(src fixedwidth.Value) fixedwidth.Value {
		n := lo + rng.Int64N(hi-lo+1)
		return fixedwidth.Str(padLike(n, src.String()))
	}, true
}

// padLike formats n zero-padded to the width of template when the
// template itself carries leading zeros.
func padLike(n int64, template string) string {
	s := strconv.FormatInt(n, 10)
	digits := strings.TrimPrefix(template, "-")
	if len(digits) > 1 && digits[0] == '0' && n >= 0 && len(s) < len(template) {
		s = strings.Repeat("0", len(template)-len(s)) + s
	}
	return s
}

// scramble replaces digits and letters with random ones of the same class.
func scramble(s string, rng *rand.Rand) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= '0' && c <= '9':
			b[i] = '0' + byte(rng.IntN(10))
		case c >= 'A' && c <= 'Z':
			b[i] = 'A' + byte(rng.IntN(26))
		case c >= 'a' && c <= 'z':
			b[i] = 'a' + byte(rng.IntN(26))
		}
	}
	return string(b)
}
