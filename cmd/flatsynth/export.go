// export.go implements the CLI "export" command that writes the decoded
// records of one record type as CSV or Excel.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avaropoint/flatsynth/internal/pipeline"
	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
)

// cmdExport decodes one record type of a batch file and writes it as a
// table. The format follows the output extension: .xlsx or .csv.
func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = usage
	var c common
	c.register(fs)
	group := fs.String("type", "", "record type to export (default the detail group)")
	output := fs.String("output", "", "output file, .csv or .xlsx (default <input>.csv)")
	fs.StringVar(output, "o", "", "alias for -output")
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

	g := *group
	if g == "" {
		g = cfg.Records.DetailGroup
	}
	if !l.Has(g) {
		fatal("no layout for record type %q", g)
	}
	var selected []string
	if g == cfg.Records.DetailGroup {
		selected = sec.Detail
	}
	for i, line := range sec.Header {
		if pipeline.GroupAt(cfg.Records.HeaderGroups, i) == g {
			selected = append(selected, line)
		}
	}
	for i, line := range sec.Trailer {
		if pipeline.GroupAt(cfg.Records.TrailerGroups, i) == g {
			selected = append(selected, line)
		}
	}

	dec, err := fixedwidth.NewDecoder(l.Fields(g), fixedwidth.WithUnit(cfg.Unit()))
	if err != nil {
		fatal("%v", err)
	}
	table := dec.DecodeAll(selected)

	out := *output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
	}
	f, err := os.Create(out)
	if err != nil {
		fatal("%v", err)
	}
	w := bufio.NewWriter(f)
	switch strings.ToLower(filepath.Ext(out)) {
	case ".xlsx":
		err = table.WriteExcel(w, g)
	case ".csv":
		err = table.WriteCSV(w)
	default:
		f.Close()
		os.Remove(out)
		fatal("unsupported export format %q (use .csv or .xlsx)", filepath.Ext(out))
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out)
		fatal("writing %s: %v", out, err)
	}
	fmt.Printf("Exported %d %s records to %s\n", table.Len(), g, out)
}
