// view.go implements the CLI "view" command that classifies the lines of
// a batch file and prints the first records of each role.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avaropoint/flatsynth/internal/pipeline"
	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/parsers/layout"
)

// cmdView prints a summary of a batch file and its first records.
func cmdView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = usage
	var c common
	c.register(fs)
	n := fs.Int("n", 3, "records to show per role")
	fs.Parse(args)
	requireFile(fs.Args())

	l, cfg := resolveLayout(c.load())
	path := fs.Arg(0)
	lines, err := pipeline.ReadLines(path)
	if err != nil {
		fatal("reading %s: %v", path, err)
	}
	classifier, err := cfg.Classifier()
	if err != nil {
		fatal("%v", err)
	}
	sec := classifier.Split(lines)

	if fi, err := os.Stat(path); err == nil {
		fmt.Printf("File:        %s (%s)\n", filepath.Base(path), humanSize(int(fi.Size())))
	} else {
		fmt.Printf("File:        %s\n", filepath.Base(path))
	}
	fmt.Printf("Lines:       %d\n", len(lines))
	fmt.Printf("Roles:       %d header, %d detail, %d sentinel, %d trailer\n",
		len(sec.Header), len(sec.Detail), len(sec.Sentinel), len(sec.Trailer))
	fmt.Println(strings.Repeat("─", 60))

	for i, line := range sec.Header {
		printRecord(l, cfg.Unit(), "Header", pipeline.GroupAt(cfg.Records.HeaderGroups, i), line)
	}
	for i, line := range sec.Detail {
		if i >= *n {
			fmt.Printf("... %d more detail records\n\n", len(sec.Detail)-i)
			break
		}
		printRecord(l, cfg.Unit(), "Detail", cfg.Records.DetailGroup, line)
	}
	for i, line := range sec.Sentinel {
		if i >= *n {
			fmt.Printf("... %d more sentinel records\n\n", len(sec.Sentinel)-i)
			break
		}
		fmt.Printf("Sentinel:    %q\n\n", line)
	}
	for i, line := range sec.Trailer {
		printRecord(l, cfg.Unit(), "Trailer", pipeline.GroupAt(cfg.Records.TrailerGroups, i), line)
	}
}

// printRecord decodes line against group and prints one field per line.
func printRecord(l *layout.Layout, u fixedwidth.Unit, role, group, line string) {
	if !l.Has(group) {
		fmt.Printf("%-13s%q (no layout for %q)\n\n", role+":", line, group)
		return
	}
	width := l.LineWidth(group)
	fmt.Printf("%-13s%s, %d of %d %s\n", role+":", group, fixedwidth.Len(line, u), width, u)
	dec, err := fixedwidth.NewDecoder(l.Fields(group), fixedwidth.WithUnit(u))
	if err != nil {
		fatal("%v", err)
	}
	row := dec.Decode(line)
	for i, name := range dec.Schema().Names() {
		fmt.Printf("  %-30s %q\n", name, row[i].String())
	}
	fmt.Println()
}
