// run.go implements the CLI "run" command that synthesizes a batch file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/avaropoint/flatsynth/internal/pipeline"
)

// cmdRun loads the configuration, applies flag overrides and runs the
// pipeline.
func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Usage = usage
	var c common
	c.register(fs)
	var (
		output   = fs.String("output", "", "output path")
		provider = fs.String("provider", "", "synthesis provider")
		seed     = fs.Uint64("seed", 0, "seed for reproducible output")
		metadata = fs.String("metadata", "", "profile side-file base path")
		noReuse  = fs.Bool("no-reuse", false, "detect and save a new profile version")
		report   = fs.String("quality", "", "quality report path (.xlsx)")
		level    = fs.String("log-level", "", "log level")
	)
	fs.Parse(args)

	cfg := c.load()
	if fs.NArg() > 0 {
		cfg.Input = fs.Arg(0)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Output = *output
		case "provider":
			cfg.Provider = *provider
		case "seed":
			cfg.Seed = *seed
		case "metadata":
			cfg.Metadata.Base = *metadata
		case "no-reuse":
			cfg.Metadata.Reuse = !*noReuse
		case "quality":
			cfg.Quality.Enabled = true
			cfg.Quality.Report = *report
		case "log-level":
			cfg.LogLevel = *level
		}
	})
	if cfg.Input == "" {
		requireFile(nil)
	}
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.Run(ctx, cfg, logger)
	if err != nil {
		stop()
		fatal("%v", err)
	}

	size := 0
	if fi, err := os.Stat(res.Output); err == nil {
		size = int(fi.Size())
	}
	fmt.Printf("Input:       %s (%d header, %d detail, %d sentinel, %d trailer)\n",
		filepath.Base(res.Input), res.Header, res.Detail, res.Sentinel, res.Trailer)
	fmt.Printf("Output:      %s (%d lines, %s)\n", res.Output, res.Lines, humanSize(size))
	fmt.Printf("BLAKE2b-256: %s\n", res.Digest)
	if res.Quality != nil {
		fmt.Printf("Quality:     %.3f\n", res.Quality.Score)
		for _, g := range res.Quality.Groups {
			fmt.Printf("  %-12s %.3f (%d rows)\n", g.Dataset, g.Score, g.Rows)
		}
	}
	fmt.Printf("Elapsed:     %s\n", res.Elapsed.Round(time.Millisecond))
}
