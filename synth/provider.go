// Package synth defines the Provider interface and a registry for
// pluggable synthesis providers. To add a provider, create a package that
// implements Provider and calls Register from its init function.
package synth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/synth/profile"
)

var (
	// ErrUnknownProvider is returned by Lookup for unregistered names.
	ErrUnknownProvider = errors.New("unknown synthesis provider")
	// ErrProvider wraps any error returned by a provider.
	ErrProvider = errors.New("synthesis provider failed")
	// ErrShapeMismatch reports a result whose columns or row count differ
	// from the input table.
	ErrShapeMismatch = errors.New("synthetic table shape mismatch")
)

// Provider generates a synthetic table with the same columns and row count
// as its input, approximating the input's statistical shape.
type Provider interface {
	// Name returns the registry key.
	Name() string

	// Generate returns a new table. It must not modify t.
	Generate(ctx context.Context, t *fixedwidth.Table, p *profile.Profile) (*fixedwidth.Table, error)
}

// Seedable is implemented by providers whose output can be made
// reproducible.
type Seedable interface {
	WithSeed(seed uint64) Provider
}

var (
	mu       sync.RWMutex
	registry = map[string]Provider{}
)

// Register adds a provider to the global registry, replacing any provider
// with the same name.
func Register(p Provider) {
	mu.Lock()
	defer mu.Unlock()
	registry[p.Name()] = p
}

// Lookup returns the provider registered under name.
func Lookup(name string) (Provider, error) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns every registered provider name, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Generate calls p and checks the result keeps the input's shape.
func Generate(ctx context.Context, p Provider, t *fixedwidth.Table, prof *profile.Profile) (*fixedwidth.Table, error) {
	out, err := p.Generate(ctx, t, prof)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProvider, p.Name(), err)
	}
	if err := CheckShape(t, out); err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}
	return out, nil
}

// CheckShape verifies out has the columns and row count of in.
func CheckShape(in, out *fixedwidth.Table) error {
	if out == nil {
		return fmt.Errorf("%w: nil table", ErrShapeMismatch)
	}
	if !in.Schema.Equal(out.Schema) {
		return fmt.Errorf("%w: columns %v, want %v", ErrShapeMismatch, out.Schema.Names(), in.Schema.Names())
	}
	if out.Len() != in.Len() {
		return fmt.Errorf("%w: %d rows, want %d", ErrShapeMismatch, out.Len(), in.Len())
	}
	for i, r := range out.Rows {
		if len(r) != in.Schema.Len() {
			return fmt.Errorf("%w: row %d has %d values", ErrShapeMismatch, i, len(r))
		}
	}
	return nil
}
