package sampler

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/synth"
	"github.com/avaropoint/flatsynth/synth/profile"
)

func source(t *testing.T) *fixedwidth.Table {
	t.Helper()
	schema, err := fixedwidth.NewSchema([]string{"claim_id", "plan", "units", "dos", "note"})
	require.NoError(t, err)
	day := func(d int) fixedwidth.Value {
		return fixedwidth.DateOf(time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC))
	}
	s := fixedwidth.Str
	table := fixedwidth.NewTable(schema)
	rows := []fixedwidth.Row{
		{s("AB0001"), s("GOLD"), s("005"), day(1), s("")},
		{s("AB0002"), s("GOLD"), s("010"), day(10), fixedwidth.NullValue()},
		{s("AB0003"), s("SILVER"), s("010"), fixedwidth.NullValue(), s("call back")},
		{s("AB0004"), s(""), s("020"), day(5), s("")},
	}
	for _, r := range rows {
		require.NoError(t, table.Append(r))
	}
	return table
}

func TestGenerateShapeAndBlanks(t *testing.T) {
	in := source(t)
	prof := profile.Detect("det", in)
	out, err := synth.Generate(context.Background(), New(42), in, prof)
	require.NoError(t, err)

	for ri, row := range out.Rows {
		for ci, v := range row {
			assert.Equal(t, in.Rows[ri][ci].IsBlank(), v.IsBlank(), "row %d col %d", ri, ci)
			if in.Rows[ri][ci].IsNull() {
				assert.True(t, v.IsNull())
			}
		}
	}
}

func TestGenerateRespectsKinds(t *testing.T) {
	in := source(t)
	prof := profile.Detect("det", in)
	require.Equal(t, profile.Numerical, prof.KindOf("units"))
	require.Equal(t, profile.Datetime, prof.KindOf("dos"))

	out, err := New(7).Generate(context.Background(), in, prof)
	require.NoError(t, err)

	lo := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, row := range out.Rows {
		id := row[0].String()
		assert.Len(t, id, 6)
		assert.Regexp(t, `^[A-Z]{2}[0-9]{4}$`, id)

		if !row[1].IsBlank() {
			assert.Contains(t, []string{"GOLD", "SILVER"}, row[1].String())
		}

		units := row[2].String()
		assert.Len(t, units, 3)
		n, err := strconv.Atoi(units)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 5)
		assert.LessOrEqual(t, n, 20)

		if d, ok := row[3].Date(); ok {
			assert.False(t, d.Before(lo))
			assert.False(t, d.After(hi))
		}
	}
}

func TestSeedIsReproducible(t *testing.T) {
	in := source(t)
	prof := profile.Detect("det", in)
	a, err := New(99).Generate(context.Background(), in, prof)
	require.NoError(t, err)
	b, err := New(99).Generate(context.Background(), in, prof)
	require.NoError(t, err)
	assert.Equal(t, a.Rows, b.Rows)

	seeded := (&Provider{}).WithSeed(99)
	c, err := seeded.Generate(context.Background(), in, prof)
	require.NoError(t, err)
	assert.Equal(t, a.Rows, c.Rows)
}

func TestGenerateWithoutProfile(t *testing.T) {
	in := source(t)
	out, err := New(1).Generate(context.Background(), in, nil)
	require.NoError(t, err)
	for _, row := range out.Rows {
		assert.Contains(t, []string{"AB0001", "AB0002", "AB0003", "AB0004"}, row[0].String())
	}
}

func TestPadLike(t *testing.T) {
	assert.Equal(t, "007", padLike(7, "010"))
	assert.Equal(t, "7", padLike(7, "10"))
	assert.Equal(t, "-7", padLike(-7, "-010"))
	assert.Equal(t, "1234", padLike(1234, "010"))
}

func TestRegistered(t *testing.T) {
	p, err := synth.Lookup(Name)
	require.NoError(t, err)
	_, ok := p.(synth.Seedable)
	assert.True(t, ok)
}
