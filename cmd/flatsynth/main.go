// Flatsynth is a CLI tool that replaces the records of a fixed-width
// batch file with synthetic ones while keeping its layout, its header
// records, its sentinel records and a consistent trailer.
package main

import (
	"fmt"
	"os"
	"strings"

	_ "github.com/avaropoint/flatsynth/synth/identity"
	_ "github.com/avaropoint/flatsynth/synth/sampler"
)

// version is the application version.
const version = "1.0.0"

// usage prints command-line help to stderr.
func usage() {
	fmt.Fprintf(os.Stderr, `flatsynth v%s
Fixed-width flat file synthesizer

Usage:
  flatsynth run     [options] [input]   Synthesize a batch file
  flatsynth layout  [options] <layout>  Show record types, offsets and widths
  flatsynth view    [options] <input>   Classify a batch file and show records
  flatsynth trailer [options] <input>   Compute the trailer of a batch file
  flatsynth export  [options] <input>   Write one record type as CSV or XLSX
  flatsynth providers                   List synthesis providers
  flatsynth version                     Show the version
  flatsynth help                        Show this help message

Common options:
  -config <file>       YAML run configuration
  -layout <file>       Layout file (CSV, XLSX or JSON); TYPE=<file> retags
                       a single-type layout. Repeatable.

Run options:
  -output <file>       Output path (default <input>_syn<ext>)
  -provider <name>     Synthesis provider (default sampler)
  -seed <n>            Seed for reproducible output
  -metadata <base>     Profile side-file base path
  -no-reuse            Detect and save a new profile version
  -quality <file.xlsx> Write the quality report
  -log-level <level>   debug, info, warn or error

Export options:
  -type <record type>  Record type to export (default the detail group)
  -o, -output <file>   Output path, .csv or .xlsx (default <input>.csv)

Examples:
  flatsynth run -config claims.yaml
  flatsynth run -layout layout.xlsx -seed 42 claims.txt
  flatsynth layout layout.csv
  flatsynth view -layout layout.csv -n 3 claims.txt
  flatsynth trailer -layout layout.csv claims.txt
  flatsynth export -layout layout.csv -o claims.xlsx claims.txt
`, version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := strings.ToLower(os.Args[1])
	args := os.Args[2:]

	switch cmd {
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		fmt.Println(version)
	case "run":
		cmdRun(args)
	case "layout":
		cmdLayout(args)
	case "view":
		cmdView(args)
	case "trailer":
		cmdTrailer(args)
	case "export":
		cmdExport(args)
	case "providers":
		cmdProviders()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

// requireFile exits with an error if no file argument was provided.
func requireFile(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: file path required")
		usage()
		os.Exit(1)
	}
}
