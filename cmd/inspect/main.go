// Inspect is a low-level diagnostic tool that prints the role of every
// line of a fixed-width batch file and the raw slice of each field.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/avaropoint/flatsynth/internal/config"
	"github.com/avaropoint/flatsynth/internal/pipeline"
	"github.com/avaropoint/flatsynth/parsers/classify"
	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/parsers/layout"
)

func main() {
	cfgPath := flag.String("config", "", "YAML run configuration")
	layoutPath := flag.String("layout", "", "layout file")
	limit := flag.Int("n", 0, "stop after n lines (0 = all)")
	dump := flag.Bool("dump", false, "dump decoded rows")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: inspect [-config file] [-layout file] [-n lines] [-dump] <file>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *layoutPath != "" {
		cfg.Layouts = []config.LayoutSource{{Path: *layoutPath}}
	}
	l, cfg, err := pipeline.ResolveLayout(cfg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cl, err := cfg.Classifier()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	lines, err := pipeline.ReadLines(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	u := cfg.Unit()
	fmt.Printf("File: %s (%d lines, widths in %s)\n\n", flag.Arg(0), len(lines), u)
	dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true}
	headers, trailers := 0, 0
	for i, line := range lines {
		if *limit > 0 && i >= *limit {
			fmt.Printf("  [STOPPED after %d lines]\n", *limit)
			break
		}
		role := cl.Classify(line, i, len(lines))
		group := ""
		switch role {
		case classify.Header:
			group = pipeline.GroupAt(cfg.Records.HeaderGroups, headers)
			headers++
		case classify.Trailer:
			group = pipeline.GroupAt(cfg.Records.TrailerGroups, trailers)
			trailers++
		case classify.Detail:
			group = cfg.Records.DetailGroup
		}
		n := fixedwidth.Len(line, u)
		fmt.Printf("[%5d] %-8s %-4s len=%d\n", i+1, role, group, n)
		if role == classify.Sentinel || !l.Has(group) {
			fmt.Printf("        %q\n", line)
			continue
		}
		if w := l.LineWidth(group); w != n {
			fmt.Printf("        width mismatch: layout %d, line %d %s\n", w, n, u)
		}
		dumpFields(line, l.Fields(group), u)
		if *dump {
			dec, err := fixedwidth.NewDecoder(l.Fields(group), fixedwidth.WithUnit(u))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			dumper.Dump(dec.Decode(line))
		}
	}
}

// dumpFields prints the offset, length and raw slice of every field.
// Slices past the end of a short line are marked.
func dumpFields(line string, fields []layout.Field, u fixedwidth.Unit) {
	n := fixedwidth.Len(line, u)
	off := 0
	for _, f := range fields {
		end := off + f.Length
		raw := ""
		switch {
		case off >= n:
			raw = "<missing>"
		case end > n:
			raw = fmt.Sprintf("%q <short>", fixedwidth.Slice(line, off, f.Length, u))
		default:
			raw = fmt.Sprintf("%q", fixedwidth.Slice(line, off, f.Length, u))
		}
		fmt.Printf("        %4d %3d  %-30s %s\n", off, f.Length, f.Name, raw)
		off = end
	}
}
