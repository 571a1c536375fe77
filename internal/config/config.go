// Package config holds the run configuration of the synthesis pipeline.
// A configuration is loaded from YAML over Default() and then validated.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/avaropoint/flatsynth/parsers/classify"
	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/parsers/trailer"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Sentinel policies: what happens to lines carrying a sentinel prefix.
const (
	SentinelPassthrough = "passthrough" // re-emitted verbatim after the detail records
	SentinelDrop        = "drop"        // removed from the output
	SentinelDetail      = "detail"      // decoded and synthesized with the detail records
)

// Header modes.
const (
	HeaderSynthesize = "synthesize"
	HeaderVerbatim   = "verbatim"
)

// Trailer modes.
const (
	TrailerBuild      = "build"
	TrailerSynthesize = "synthesize"
	TrailerVerbatim   = "verbatim"
	TrailerDrop       = "drop"
)

// LayoutSource is one layout file. RecordType retags a layout that has no
// type column, for layouts kept one record type per file.
type LayoutSource struct {
	Path       string `yaml:"path"`
	RecordType string `yaml:"record_type,omitempty"`
}

// Metadata configures the profile side-file cache.
type Metadata struct {
	Base        string `yaml:"base"`
	Reuse       bool   `yaml:"reuse"`
	SaveOnDrift bool   `yaml:"save_on_drift"`
}

// Records maps physical lines onto record-type groups.
type Records struct {
	HeaderLines      int      `yaml:"header_lines"`
	TrailerLines     int      `yaml:"trailer_lines"`
	HeaderGroups     []string `yaml:"header_groups"`
	DetailGroup      string   `yaml:"detail_group"`
	TrailerGroups    []string `yaml:"trailer_groups"`
	SentinelPrefixes []string `yaml:"sentinel_prefixes"`
	SentinelPolicy   string   `yaml:"sentinel_policy"`
	Precedence       string   `yaml:"precedence"`
	HeaderMode       string   `yaml:"header_mode"`
	TrailerMode      string   `yaml:"trailer_mode"`
	WidthUnit        string   `yaml:"width_unit"` // chars (default) or bytes
}

// Group holds per-record-type options.
type Group struct {
	DateColumns []string `yaml:"date_columns"`
	// Exclude lists columns kept out of synthesis and restored afterwards.
	Exclude []string `yaml:"exclude"`
	// RandomDigits lists columns replaced by random digits of the same
	// length before synthesis.
	RandomDigits []string `yaml:"random_digits"`
	// Passthrough copies the group unchanged instead of synthesizing it.
	Passthrough bool `yaml:"passthrough"`
}

// Quality configures the informational quality report.
type Quality struct {
	Enabled bool   `yaml:"enabled"`
	Report  string `yaml:"report"`
}

// Config is the full run configuration.
type Config struct {
	Layouts     []LayoutSource   `yaml:"layouts"`
	Input       string           `yaml:"input"`
	Output      string           `yaml:"output"`
	Suffix      string           `yaml:"suffix"`
	Metadata    Metadata         `yaml:"metadata"`
	Records     Records          `yaml:"records"`
	Groups      map[string]Group `yaml:"groups"`
	DateLayouts []string         `yaml:"date_layouts"`
	Trailer     trailer.Plan     `yaml:"trailer"`
	Provider    string           `yaml:"provider"`
	Seed        uint64           `yaml:"seed"`
	Quality     Quality          `yaml:"quality"`
	LogLevel    string           `yaml:"log_level"`

	// PreserveBlanks blanks every synthetic cell whose source cell was
	// blank in the same row.
	PreserveBlanks bool `yaml:"preserve_blanks"`
}

// Default returns the configuration of the reference claims layout:
// one HDR line, DET records, CD sentinels passed through and a built
// page trailer replacing one TLR line.
func Default() Config {
	return Config{
		Suffix:   "_syn",
		Metadata: Metadata{Reuse: true},
		Records: Records{
			HeaderLines:      1,
			TrailerLines:     1,
			HeaderGroups:     []string{"HDR"},
			DetailGroup:      "DET",
			TrailerGroups:    []string{"TLR"},
			SentinelPrefixes: []string{"CD"},
			SentinelPolicy:   SentinelPassthrough,
			Precedence:       "header_first",
			HeaderMode:       HeaderSynthesize,
			TrailerMode:      TrailerBuild,
		},
		Groups:         map[string]Group{},
		Trailer:        trailer.DefaultPlan(),
		PreserveBlanks: true,
		Provider:       "sampler",
		LogLevel:       "info",
	}
}

// Load reads a YAML configuration file over Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", filepath.Base(path), err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML over Default().
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if cfg.Groups == nil {
		cfg.Groups = map[string]Group{}
	}
	return cfg, nil
}

// resolvePaths makes relative paths relative to the config file directory.
func (c *Config) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range c.Layouts {
		c.Layouts[i].Path = abs(c.Layouts[i].Path)
	}
	c.Input = abs(c.Input)
	c.Output = abs(c.Output)
	c.Metadata.Base = abs(c.Metadata.Base)
	c.Quality.Report = abs(c.Quality.Report)
}

// Validate checks the configuration and reports every problem found.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if len(c.Layouts) == 0 {
		bad("at least one layout is required")
	}
	for i, l := range c.Layouts {
		if l.Path == "" {
			bad("layout %d: path is required", i+1)
		}
	}
	if c.Input == "" {
		bad("input is required")
	}
	r := c.Records
	if r.HeaderLines < 0 || r.TrailerLines < 0 {
		bad("header_lines and trailer_lines must not be negative")
	}
	if !oneOf(r.SentinelPolicy, SentinelPassthrough, SentinelDrop, SentinelDetail) {
		bad("unknown sentinel_policy %q", r.SentinelPolicy)
	}
	if !oneOf(r.HeaderMode, HeaderSynthesize, HeaderVerbatim) {
		bad("unknown header_mode %q", r.HeaderMode)
	}
	if !oneOf(r.TrailerMode, TrailerBuild, TrailerSynthesize, TrailerVerbatim, TrailerDrop) {
		bad("unknown trailer_mode %q", r.TrailerMode)
	}
	if _, err := classify.ParsePrecedence(r.Precedence); err != nil {
		errs = append(errs, err)
	}
	if _, err := fixedwidth.ParseUnit(r.WidthUnit); err != nil {
		errs = append(errs, err)
	}
	if r.HeaderLines > 0 && r.HeaderMode == HeaderSynthesize && len(r.HeaderGroups) == 0 {
		bad("header_groups is required to synthesize header lines")
	}
	if r.TrailerLines > 0 && r.TrailerMode == TrailerSynthesize && len(r.TrailerGroups) == 0 {
		bad("trailer_groups is required to synthesize trailer lines")
	}
	if r.TrailerMode == TrailerBuild {
		if err := c.Trailer.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Provider == "" {
		bad("provider is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Classifier returns the line classifier described by Records.
func (c Config) Classifier() (classify.Classifier, error) {
	p, err := classify.ParsePrecedence(c.Records.Precedence)
	if err != nil {
		return classify.Classifier{}, err
	}
	prefixes := c.Records.SentinelPrefixes
	if c.Records.SentinelPolicy == SentinelDetail {
		prefixes = nil
	}
	return classify.Classifier{
		HeaderLines:      c.Records.HeaderLines,
		TrailerLines:     c.Records.TrailerLines,
		SentinelPrefixes: prefixes,
		Precedence:       p,
	}, nil
}

// Unit returns the configured width unit, Chars when unset or invalid.
func (c Config) Unit() fixedwidth.Unit {
	u, _ := fixedwidth.ParseUnit(c.Records.WidthUnit)
	return u
}

// Group returns the options for a record type.
func (c Config) Group(recordType string) Group {
	return c.Groups[recordType]
}

// OutputPath returns Output, or a sibling of Input named
// <base><Suffix><ext>. A trailing .zst is kept after the new name.
func (c Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	dir, base := filepath.Split(c.Input)
	zst := ""
	if strings.EqualFold(filepath.Ext(base), ".zst") {
		zst = filepath.Ext(base)
		base = strings.TrimSuffix(base, zst)
	}
	ext := filepath.Ext(base)
	suffix := c.Suffix
	if suffix == "" {
		suffix = "_syn"
	}
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+suffix+ext+zst)
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
