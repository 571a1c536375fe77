// layout.go implements the CLI "layout" command that prints the record
// types of a layout with derived offsets and widths.

package main

import (
	"flag"
	"fmt"
	"strings"
)

// cmdLayout prints every group of the given layout files.
func cmdLayout(args []string) {
	fs := flag.NewFlagSet("layout", flag.ExitOnError)
	fs.Usage = usage
	var c common
	c.register(fs)
	only := fs.String("type", "", "show a single record type")
	fs.Parse(args)
	for _, a := range fs.Args() {
		if err := c.layouts.Set(a); err != nil {
			fatal("%v", err)
		}
	}

	l := loadLayout(c.load())
	for _, g := range l.Groups() {
		if *only != "" && g.RecordType != *only {
			continue
		}
		name := g.RecordType
		if name == "" {
			name = "(untyped)"
		}
		fmt.Printf("Record type: %s (%d fields, width %d)\n", name, len(g.Fields), g.Width())
		fmt.Println(strings.Repeat("─", 60))
		off := 0
		for i, f := range g.Fields {
			fmt.Printf("  %3d. %-30s %5d %5d  %s\n", i+1, f.Name, off, f.Length, f.Description)
			off += f.Length
		}
		fmt.Println()
	}
}
