package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/synth/profile"
)

type funcProvider struct {
	name string
	fn   func(*fixedwidth.Table) (*fixedwidth.Table, error)
}

func (f funcProvider) Name() string { return f.name }

func (f funcProvider) Generate(_ context.Context, t *fixedwidth.Table, _ *profile.Profile) (*fixedwidth.Table, error) {
	return f.fn(t)
}

func table(t *testing.T, rows int) *fixedwidth.Table {
	t.Helper()
	schema, err := fixedwidth.NewSchema([]string{"a", "b"})
	require.NoError(t, err)
	out := fixedwidth.NewTable(schema)
	for i := 0; i < rows; i++ {
		require.NoError(t, out.Append(fixedwidth.Row{fixedwidth.Str("x"), fixedwidth.Str("y")}))
	}
	return out
}

func TestRegistry(t *testing.T) {
	Register(funcProvider{name: "test-echo", fn: func(t *fixedwidth.Table) (*fixedwidth.Table, error) { return t.Clone(), nil }})

	p, err := Lookup("test-echo")
	require.NoError(t, err)
	assert.Equal(t, "test-echo", p.Name())
	assert.Contains(t, Names(), "test-echo")

	_, err = Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestGenerateChecksShape(t *testing.T) {
	in := table(t, 3)
	ctx := context.Background()

	short := funcProvider{name: "short", fn: func(*fixedwidth.Table) (*fixedwidth.Table, error) {
		return table(t, 2), nil
	}}
	_, err := Generate(ctx, short, in, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	renamed := funcProvider{name: "renamed", fn: func(*fixedwidth.Table) (*fixedwidth.Table, error) {
		schema, _ := fixedwidth.NewSchema([]string{"a", "c"})
		return &fixedwidth.Table{Schema: schema, Rows: make([]fixedwidth.Row, 3)}, nil
	}}
	_, err = Generate(ctx, renamed, in, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	failing := funcProvider{name: "failing", fn: func(*fixedwidth.Table) (*fixedwidth.Table, error) {
		return nil, errors.New("out of memory")
	}}
	_, err = Generate(ctx, failing, in, nil)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "out of memory")

	ok := funcProvider{name: "ok", fn: func(t *fixedwidth.Table) (*fixedwidth.Table, error) { return t.Clone(), nil }}
	out, err := Generate(ctx, ok, in, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
}
