// Package identity implements a provider that returns a copy of its input.
// It is registered with the synth registry on import.
package identity

import (
	"context"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/synth"
	"github.com/avaropoint/flatsynth/synth/profile"
)

// Name is the registry key.
const Name = "identity"

func init() {
	synth.Register(Provider{})
}

// Provider passes rows through unchanged.
type Provider struct{}

func (Provider) Name() string { return Name }

func (Provider) Generate(ctx context.Context, t *fixedwidth.Table, _ *profile.Profile) (*fixedwidth.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}
