// trailer.go implements the CLI "trailer" command that computes the
// trailer record of a batch file and compares it with the one on disk.

package main

import (
	"flag"
	"fmt"

	"github.com/avaropoint/flatsynth/internal/pipeline"
	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/parsers/trailer"
)

// cmdTrailer prints the trailer built from the detail records of a file.
func cmdTrailer(args []string) {
	fs := flag.NewFlagSet("trailer", flag.ExitOnError)
	fs.Usage = usage
	var c common
	c.register(fs)
	fs.Parse(args)
	requireFile(fs.Args())

	l, cfg := resolveLayout(c.load())
	lines, err := pipeline.ReadLines(fs.Arg(0))
	if err != nil {
		fatal("reading %s: %v", fs.Arg(0), err)
	}
	classifier, err := cfg.Classifier()
	if err != nil {
		fatal("%v", err)
	}
	sec := classifier.Split(lines)

	group := cfg.Records.DetailGroup
	if !l.Has(group) {
		fatal("no layout for record type %q", group)
	}
	dec, err := fixedwidth.NewDecoder(l.Fields(group), fixedwidth.WithUnit(cfg.Unit()))
	if err != nil {
		fatal("%v", err)
	}
	t := dec.DecodeAll(sec.Detail)

	built, err := trailer.Build(t, cfg.Trailer)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Records:     %d\n", t.Len())
	for _, s := range cfg.Trailer.Sums {
		total, err := trailer.SumColumn(t, s)
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("  %-28s %-10s %.0f\n", s.Column, s.Decode, total)
	}
	fmt.Printf("Computed:    %q\n", built)
	if n := len(sec.Trailer); n > 0 {
		last := sec.Trailer[n-1]
		fmt.Printf("In file:     %q\n", last)
		if last == built {
			fmt.Println("Match:       yes")
		} else {
			fmt.Println("Match:       no")
		}
	}
}
