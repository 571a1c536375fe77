// Package pipeline runs one synthesis batch: it reads a fixed-width file,
// splits it by record role, synthesizes the decoded tables through a
// provider and writes the result back in the original layout.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/avaropoint/flatsynth/internal/config"
	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/parsers/layout"
	"github.com/avaropoint/flatsynth/synth"
	"github.com/avaropoint/flatsynth/synth/profile"
	"github.com/avaropoint/flatsynth/synth/quality"
)

// Result summarizes a finished run.
type Result struct {
	Input  string
	Output string
	Digest string // hex blake2b-256 of the output file

	// Input line counts per record role.
	Header, Detail, Sentinel, Trailer int
	// Lines is the number of lines written.
	Lines int

	Quality *quality.Report
	Elapsed time.Duration
}

// LoadLayout loads and merges every layout source.
func LoadLayout(sources []config.LayoutSource) (*layout.Layout, error) {
	var all []*layout.Layout
	for _, src := range sources {
		l, err := layout.LoadFile(src.Path)
		if err != nil {
			return nil, err
		}
		if src.RecordType != "" {
			if l, err = l.WithRecordType(src.RecordType); err != nil {
				return nil, fmt.Errorf("%s: %w", src.Path, err)
			}
		}
		all = append(all, l)
	}
	return layout.Merge(all...)
}

// ResolveLayout loads cfg.Layouts. A layout with one untyped group
// describes the detail records only: it is tagged with the detail group
// and header or trailer lines the configuration would synthesize are
// copied verbatim instead. The returned Config carries those changes.
func ResolveLayout(cfg config.Config, logger *slog.Logger) (*layout.Layout, config.Config, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	lay, err := LoadLayout(cfg.Layouts)
	if err != nil {
		return nil, cfg, err
	}
	rts := lay.RecordTypes()
	if len(rts) != 1 || rts[0] != "" {
		return lay, cfg, nil
	}
	if lay, err = lay.WithRecordType(cfg.Records.DetailGroup); err != nil {
		return nil, cfg, err
	}
	logger.Info("untyped layout used for detail records", "record_type", cfg.Records.DetailGroup)
	if cfg.Records.HeaderMode == config.HeaderSynthesize && cfg.Records.HeaderLines > 0 {
		cfg.Records.HeaderMode = config.HeaderVerbatim
		logger.Info("header lines copied verbatim", "reason", "no header layout")
	}
	if cfg.Records.TrailerMode == config.TrailerSynthesize && cfg.Records.TrailerLines > 0 {
		cfg.Records.TrailerMode = config.TrailerVerbatim
		logger.Info("trailer lines copied verbatim", "reason", "no trailer layout")
	}
	return lay, cfg, nil
}

type runner struct {
	cfg      config.Config
	layout   *layout.Layout
	provider synth.Provider
	store    profile.Store
	rng      *rand.Rand
	logger   *slog.Logger
	pairs    []quality.Pair
	datasets map[string]int
}

// Run executes one batch described by cfg. Configuration errors wrap
// config.ErrInvalid; every later fatal error is a *StageError. A failed
// run leaves no output file behind.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &Result{Input: cfg.Input, Output: cfg.OutputPath()}

	t := time.Now()
	lay, cfg, err := ResolveLayout(cfg, logger)
	if err != nil {
		return nil, fail(StageLayout, err)
	}
	logger.Debug("layout loaded", "record_types", lay.RecordTypes(), "elapsed", time.Since(t))

	provider, err := synth.Lookup(cfg.Provider)
	if err != nil {
		return nil, fail(StageSynthesize, err)
	}
	if s, ok := provider.(synth.Seedable); ok && cfg.Seed != 0 {
		provider = s.WithSeed(cfg.Seed)
	}
	r := &runner{
		cfg:      cfg,
		layout:   lay,
		provider: provider,
		store:    profile.Store{Base: cfg.Metadata.Base},
		rng:      newRand(cfg.Seed),
		logger:   logger,
		datasets: make(map[string]int),
	}

	t = time.Now()
	lines, err := ReadLines(cfg.Input)
	if err == nil && len(lines) == 0 {
		err = errEmptyInput
	}
	if err != nil {
		return nil, fail(StageRead, err)
	}
	classifier, err := cfg.Classifier()
	if err != nil {
		return nil, fail(StageRead, err)
	}
	split := classifier.Split(lines)
	res.Header, res.Detail = len(split.Header), len(split.Detail)
	res.Sentinel, res.Trailer = len(split.Sentinel), len(split.Trailer)
	logger.Info("input read", "path", cfg.Input, "lines", len(lines),
		"header", res.Header, "detail", res.Detail, "sentinel", res.Sentinel, "trailer", res.Trailer,
		"elapsed", time.Since(t))

	t = time.Now()
	sections := Sections{
		Detail:   Part{Group: cfg.Records.DetailGroup, Lines: split.Detail},
		Sentinel: split.Sentinel,
	}
	if cfg.Records.SentinelPolicy == config.SentinelDrop {
		sections.Sentinel = nil
	}
	if err := r.decode(&sections.Detail); err != nil {
		return nil, fail(StageDecode, err)
	}
	synthHeader := cfg.Records.HeaderMode == config.HeaderSynthesize
	if sections.Header, err = r.decodeParts(split.Header, cfg.Records.HeaderGroups, synthHeader); err != nil {
		return nil, fail(StageDecode, err)
	}
	synthTrailer := cfg.Records.TrailerMode == config.TrailerSynthesize
	if sections.Trailer, err = r.decodeParts(split.Trailer, cfg.Records.TrailerGroups, synthTrailer); err != nil {
		return nil, fail(StageDecode, err)
	}
	logger.Debug("decoded", "elapsed", time.Since(t))

	t = time.Now()
	if synthHeader {
		for i := range sections.Header {
			if err := r.synthesize(ctx, &sections.Header[i]); err != nil {
				return nil, err
			}
		}
	}
	if err := r.synthesize(ctx, &sections.Detail); err != nil {
		return nil, err
	}
	if synthTrailer {
		for i := range sections.Trailer {
			if err := r.synthesize(ctx, &sections.Trailer[i]); err != nil {
				return nil, err
			}
		}
	}
	logger.Info("synthesized", "provider", provider.Name(), "elapsed", time.Since(t))

	t = time.Now()
	asm := NewAssembler(lay, cfg)
	var counter lineCounter
	res.Digest, err = WriteFile(res.Output, func(w io.Writer) error {
		return asm.Assemble(io.MultiWriter(w, &counter), sections)
	})
	if err != nil {
		return nil, fail(StageWrite, err)
	}
	res.Lines = int(counter)
	logger.Info("output written", "path", res.Output, "lines", res.Lines, "blake2b", res.Digest, "elapsed", time.Since(t))

	if cfg.Quality.Enabled {
		res.Quality = r.evaluate(ctx)
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// decodeParts splits lines into contiguous runs of the same group. Line i
// belongs to groups[i]; lines past the end reuse the last group. Tables
// are decoded only when decode is set.
func (r *runner) decodeParts(lines, groups []string, decode bool) ([]Part, error) {
	var parts []Part
	for i, line := range lines {
		g := GroupAt(groups, i)
		if n := len(parts); n > 0 && parts[n-1].Group == g {
			parts[n-1].Lines = append(parts[n-1].Lines, line)
			continue
		}
		parts = append(parts, Part{Group: g, Lines: []string{line}})
	}
	if !decode {
		return parts, nil
	}
	for i := range parts {
		if err := r.decode(&parts[i]); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// GroupAt returns the record-type group of the i-th line of a section.
// Lines past the end of groups reuse the last group.
func GroupAt(groups []string, i int) string {
	switch {
	case len(groups) == 0:
		return ""
	case i >= len(groups):
		return groups[len(groups)-1]
	default:
		return groups[i]
	}
}

// decode fills p.Table from p.Lines and coerces the group's date columns.
func (r *runner) decode(p *Part) error {
	if !r.layout.Has(p.Group) {
		return fmt.Errorf("no layout for record type %q", p.Group)
	}
	dec, err := fixedwidth.NewDecoder(r.layout.Fields(p.Group), fixedwidth.WithUnit(r.cfg.Unit()))
	if err != nil {
		return err
	}
	p.Table = fixedwidth.Coerce(dec.DecodeAll(p.Lines), r.cfg.Group(p.Group).DateColumns, r.cfg.DateLayouts...)
	return nil
}

// synthesize replaces p.Table with a synthetic table of the same shape.
func (r *runner) synthesize(ctx context.Context, p *Part) error {
	opts := r.cfg.Group(p.Group)
	if opts.Passthrough || p.Table == nil || p.Table.Len() == 0 {
		return nil
	}
	dataset := r.dataset(p.Group)

	src := p.Table
	if len(opts.RandomDigits) > 0 {
		src = src.Clone()
		randomDigits(src, opts.RandomDigits, r.rng)
	}
	projected, side, err := fixedwidth.Project(src, opts.Exclude)
	if err != nil {
		return fail(StageSynthesize, err)
	}
	prof, err := r.store.Resolve(dataset, projected, profile.Options{
		Reuse:       r.cfg.Metadata.Reuse,
		SaveOnDrift: r.cfg.Metadata.SaveOnDrift,
	}, r.logger)
	if err != nil {
		return fail(StageProfile, err)
	}
	out, err := synth.Generate(ctx, r.provider, projected, prof)
	if err != nil {
		return fail(StageSynthesize, fmt.Errorf("%s: %w", dataset, err))
	}
	if r.cfg.PreserveBlanks {
		keepBlanks(projected, out)
	}
	full, err := fixedwidth.Reinsert(out, side)
	if err != nil {
		return fail(StageSynthesize, err)
	}
	p.Table = full
	r.pairs = append(r.pairs, quality.Pair{Dataset: dataset, Real: projected, Synthetic: out, Profile: prof})
	return nil
}

// dataset names the profile of a group. A group synthesized more than once
// gets a numeric suffix from its second occurrence on.
func (r *runner) dataset(group string) string {
	n := r.datasets[group]
	r.datasets[group] = n + 1
	name := group
	if name == "" {
		name = "records"
	}
	if n > 0 {
		name = fmt.Sprintf("%s_%d", name, n+1)
	}
	return name
}

func (r *runner) evaluate(ctx context.Context) *quality.Report {
	t := time.Now()
	report, err := quality.Evaluate(ctx, r.pairs)
	if err != nil {
		r.logger.Warn("quality report failed", "error", err)
		return nil
	}
	r.logger.Info("quality report", "score", report.Score, "datasets", len(report.Groups), "elapsed", time.Since(t))
	if path := r.cfg.Quality.Report; path != "" {
		if err := report.SaveExcel(path); err != nil {
			r.logger.Warn("quality export failed", "path", path, "error", err)
		} else {
			r.logger.Info("quality report saved", "path", path)
		}
	}
	return report
}

// randomDigits replaces each non-blank cell of the named columns with a
// random number of the same length and no leading zero.
func randomDigits(t *fixedwidth.Table, columns []string, rng *rand.Rand) {
	for _, name := range columns {
		ci, ok := t.Schema.Index(name)
		if !ok {
			continue
		}
		for _, row := range t.Rows {
			if row[ci].IsBlank() {
				continue
			}
			row[ci] = fixedwidth.Str(digits(len(row[ci].String()), rng))
		}
	}
}

func digits(n int, rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(n)
	for i := range n {
		d := rng.IntN(10)
		if i == 0 {
			d = 1 + rng.IntN(9)
		}
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

// keepBlanks blanks every cell of syn whose counterpart in src is blank.
func keepBlanks(src, syn *fixedwidth.Table) {
	for ci, name := range syn.Schema.Names() {
		si, ok := src.Schema.Index(name)
		if !ok {
			continue
		}
		for ri := range min(len(src.Rows), len(syn.Rows)) {
			if src.Rows[ri][si].IsBlank() {
				syn.Rows[ri][ci] = fixedwidth.NullValue()
			}
		}
	}
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, ^seed))
}

// lineCounter counts newline bytes written through it.
type lineCounter int

func (c *lineCounter) Write(p []byte) (int, error) {
	*c += lineCounter(bytes.Count(p, []byte{'\n'}))
	return len(p), nil
}
