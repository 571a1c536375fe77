package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
)

// ErrNoProfile is returned by Load when the requested version is absent.
var ErrNoProfile = errors.New("profile not found")

// Store keeps profiles as {Base}_{dataset}_v{n}.json side files. Versions
// are discovered by probing n = 1, 2, ... until a file is missing. There
// is no locking; concurrent writers against one Base may race.
type Store struct {
	Base string
}

// Options controls Resolve.
type Options struct {
	// Reuse loads the latest saved version instead of detecting anew.
	Reuse bool
	// SaveOnDrift saves a new version when a reused profile no longer
	// matches the detected structure.
	SaveOnDrift bool
}

// Path returns the side-file path of a dataset version.
func (s Store) Path(dataset string, version int) string {
	return fmt.Sprintf("%s_%s_v%d.json", s.Base, SanitizeName(dataset), version)
}

// Latest returns the highest saved version, or 0 when none exists.
func (s Store) Latest(dataset string) (int, error) {
	v := 0
	for {
		_, err := os.Stat(s.Path(dataset, v+1))
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("probing profile %s: %w", s.Path(dataset, v+1), err)
		}
		v++
	}
}

// Load reads one saved version.
func (s Store) Load(dataset string, version int) (*Profile, error) {
	path := s.Path(dataset, version)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoProfile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", path, err)
	}
	return &p, nil
}

// Save writes p as the next version of its dataset and returns the path.
func (s Store) Save(p *Profile) (string, error) {
	latest, err := s.Latest(p.Dataset)
	if err != nil {
		return "", err
	}
	p.Version = latest + 1
	path := s.Path(p.Dataset, p.Version)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating profile directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding profile: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating profile %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return "", fmt.Errorf("writing profile %s: %w", path, err)
	}
	return path, f.Close()
}

// Resolve returns the profile to synthesize t with. Without a Base the
// detected profile is returned and nothing is persisted.
func (s Store) Resolve(dataset string, t *fixedwidth.Table, opts Options, logger *slog.Logger) (*Profile, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	detected := Detect(dataset, t)
	if s.Base == "" {
		return detected, nil
	}
	latest, err := s.Latest(dataset)
	if err != nil {
		return nil, err
	}
	if latest > 0 && opts.Reuse {
		p, err := s.Load(dataset, latest)
		if err != nil {
			return nil, err
		}
		logger.Info("using existing profile", "dataset", dataset, "path", s.Path(dataset, latest))
		if p.Fingerprint == detected.Fingerprint {
			return p, nil
		}
		logger.Warn("profile drift", "dataset", dataset, "saved", p.Fingerprint, "detected", detected.Fingerprint)
		if !opts.SaveOnDrift {
			return p, nil
		}
	}
	path, err := s.Save(detected)
	if err != nil {
		return nil, err
	}
	logger.Info("saved new profile version", "dataset", dataset, "path", path, "version", detected.Version)
	return detected, nil
}

// SanitizeName replaces characters that are unsafe in file paths and
// strips control characters so a dataset name can be embedded in a path.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "} {
		name = strings.ReplaceAll(name, c, "_")
	}
	if name == "" {
		name = "unnamed"
	}
	return strings.ToLower(name)
}
