package pipeline

import (
	"bufio"
	"fmt"
	"io"

	"github.com/avaropoint/flatsynth/internal/config"
	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/parsers/layout"
	"github.com/avaropoint/flatsynth/parsers/trailer"
)

// Part is a contiguous run of lines decoded against one record-type
// group. Lines keeps the original text for verbatim output.
type Part struct {
	Group string
	Lines []string
	Table *fixedwidth.Table
}

// Sections is the content of one output file in output order.
type Sections struct {
	Header   []Part
	Detail   Part
	Sentinel []string
	Trailer  []Part
}

// Assembler writes Sections back into the fixed-width layout.
type Assembler struct {
	Layout      *layout.Layout
	DateColumns map[string][]string
	HeaderMode  string
	TrailerMode string
	Plan        trailer.Plan
	Unit        fixedwidth.Unit
}

// NewAssembler returns an Assembler configured from cfg.
func NewAssembler(l *layout.Layout, cfg config.Config) *Assembler {
	dates := make(map[string][]string, len(cfg.Groups))
	for name, g := range cfg.Groups {
		dates[name] = g.DateColumns
	}
	return &Assembler{
		Layout:      l,
		DateColumns: dates,
		HeaderMode:  cfg.Records.HeaderMode,
		TrailerMode: cfg.Records.TrailerMode,
		Plan:        cfg.Trailer,
		Unit:        cfg.Unit(),
	}
}

// Assemble writes headers, detail records, sentinel lines and trailer
// lines, each terminated by a newline.
func (a *Assembler) Assemble(w io.Writer, s Sections) error {
	bw := bufio.NewWriter(w)
	emit := func(lines []string) error {
		for _, line := range lines {
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		return nil
	}

	for _, p := range s.Header {
		lines := p.Lines
		if a.HeaderMode != config.HeaderVerbatim {
			var err error
			if lines, err = a.encode(p); err != nil {
				return err
			}
		}
		if err := emit(lines); err != nil {
			return err
		}
	}

	detail, err := a.encode(s.Detail)
	if err != nil {
		return err
	}
	if err := emit(detail); err != nil {
		return err
	}
	if err := emit(s.Sentinel); err != nil {
		return err
	}

	switch a.TrailerMode {
	case config.TrailerBuild:
		line, err := trailer.Build(s.Detail.Table, a.Plan)
		if err != nil {
			return fail(StageTrailer, err)
		}
		if err := emit([]string{line}); err != nil {
			return err
		}
	case config.TrailerSynthesize:
		for _, p := range s.Trailer {
			lines, err := a.encode(p)
			if err != nil {
				return err
			}
			if err := emit(lines); err != nil {
				return err
			}
		}
	case config.TrailerVerbatim:
		for _, p := range s.Trailer {
			if err := emit(p.Lines); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// encode renders the rows of p against its group.
func (a *Assembler) encode(p Part) ([]string, error) {
	if p.Table == nil {
		return nil, nil
	}
	if !a.Layout.Has(p.Group) {
		return nil, fmt.Errorf("no layout for record type %q", p.Group)
	}
	enc, err := fixedwidth.NewEncoder(a.Layout.Fields(p.Group), p.Table.Schema, a.DateColumns[p.Group], fixedwidth.WithUnit(a.Unit))
	if err != nil {
		return nil, fmt.Errorf("encoding %q records: %w", p.Group, err)
	}
	return enc.EncodeAll(p.Table), nil
}
