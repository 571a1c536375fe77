// helpers.go provides shared utility functions for the CLI commands.

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/avaropoint/flatsynth/internal/config"
	"github.com/avaropoint/flatsynth/internal/pipeline"
	"github.com/avaropoint/flatsynth/parsers/layout"
	"github.com/avaropoint/flatsynth/synth"
)

// humanSize formats a byte count as a human-readable string (e.g. "1.2 KB").
func humanSize(b int) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := unit, 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// fatal prints an error and exits.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// layoutFlag collects repeated -layout values. A value of the form
// TYPE=path retags a single-type layout file.
type layoutFlag []config.LayoutSource

func (l *layoutFlag) String() string {
	parts := make([]string, len(*l))
	for i, s := range *l {
		parts[i] = s.Path
	}
	return strings.Join(parts, ",")
}

func (l *layoutFlag) Set(v string) error {
	src := config.LayoutSource{Path: v}
	if rt, path, ok := strings.Cut(v, "="); ok {
		src = config.LayoutSource{Path: path, RecordType: rt}
	}
	if src.Path == "" {
		return fmt.Errorf("empty layout path")
	}
	*l = append(*l, src)
	return nil
}

// common holds the options shared by every data command.
type common struct {
	config  string
	layouts layoutFlag
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "YAML run configuration")
	fs.Var(&c.layouts, "layout", "layout file, or TYPE=file (repeatable)")
}

// load returns the configuration file, or the defaults, with -layout
// applied on top.
func (c *common) load() config.Config {
	cfg := config.Default()
	if c.config != "" {
		var err error
		if cfg, err = config.Load(c.config); err != nil {
			fatal("%v", err)
		}
	}
	if len(c.layouts) > 0 {
		cfg.Layouts = c.layouts
	}
	if len(cfg.Layouts) == 0 {
		fatal("a layout is required (-layout or -config)")
	}
	return cfg
}

// loadLayout loads the configured layouts or exits.
func loadLayout(cfg config.Config) *layout.Layout {
	l, err := pipeline.LoadLayout(cfg.Layouts)
	if err != nil {
		fatal("%v", err)
	}
	return l
}

// resolveLayout loads the layouts the way a run does: a single untyped
// layout describes the detail records.
func resolveLayout(cfg config.Config) (*layout.Layout, config.Config) {
	l, cfg, err := pipeline.ResolveLayout(cfg, nil)
	if err != nil {
		fatal("%v", err)
	}
	return l, cfg
}

// newLogger returns a text logger on stderr at the named level.
func newLogger(level string) *slog.Logger {
	l, err := config.ParseLevel(level)
	if err != nil {
		fatal("%v", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// cmdProviders lists the registered synthesis providers.
func cmdProviders() {
	for _, name := range synth.Names() {
		fmt.Println(name)
	}
}
