package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
)

func claims(t *testing.T) *fixedwidth.Table {
	t.Helper()
	schema, err := fixedwidth.NewSchema([]string{"claim_id", "plan", "amount", "dos", "empty", "memo"})
	require.NoError(t, err)
	d := fixedwidth.DateOf(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	s := fixedwidth.Str
	return &fixedwidth.Table{Schema: schema, Rows: []fixedwidth.Row{
		{s("000001"), s("GOLD"), s("10"), d, s(""), s("first visit")},
		{s("000002"), s("GOLD"), s("200"), d, s(""), s("follow up")},
		{s("000003"), s("GOLD"), s("10"), fixedwidth.NullValue(), s(""), s("x-ray")},
		{s("000004"), s("SILVER"), s("-5"), d, s(""), s("lab")},
	}}
}

func TestDetectKinds(t *testing.T) {
	p := Detect("det", claims(t))
	require.Len(t, p.Columns, 6)

	assert.Equal(t, ID, p.KindOf("claim_id"))
	assert.Equal(t, Categorical, p.KindOf("plan"))
	assert.Equal(t, Numerical, p.KindOf("amount"))
	assert.Equal(t, Datetime, p.KindOf("dos"))
	assert.Equal(t, Categorical, p.KindOf("empty"))
	assert.Equal(t, Text, p.KindOf("memo"))
	assert.Equal(t, Categorical, p.KindOf("unknown"))

	c, ok := p.Column("plan")
	require.True(t, ok)
	assert.Equal(t, 6, c.Width)
	assert.Len(t, p.Fingerprint, 16)
}

func TestFingerprintStable(t *testing.T) {
	a := Detect("det", claims(t))
	b := Detect("other", claims(t))
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	cols := append([]Column(nil), a.Columns...)
	cols[1].Kind = Text
	assert.NotEqual(t, a.Fingerprint, Fingerprint(cols))
}

func TestStoreVersions(t *testing.T) {
	s := Store{Base: filepath.Join(t.TempDir(), "meta", "claims")}

	v, err := s.Latest("det")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	_, err = s.Load("det", 1)
	assert.ErrorIs(t, err, ErrNoProfile)

	p := Detect("det", claims(t))
	path, err := s.Save(p)
	require.NoError(t, err)
	assert.Equal(t, s.Path("det", 1), path)
	assert.Equal(t, 1, p.Version)

	_, err = s.Save(Detect("det", claims(t)))
	require.NoError(t, err)
	v, err = s.Latest("det")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	loaded, err := s.Load("det", 1)
	require.NoError(t, err)
	assert.Equal(t, p.Columns, loaded.Columns)
	assert.Equal(t, p.Fingerprint, loaded.Fingerprint)
}

func TestResolve(t *testing.T) {
	s := Store{Base: filepath.Join(t.TempDir(), "claims")}
	table := claims(t)

	p, err := s.Resolve("det", table, Options{Reuse: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)

	p, err = s.Resolve("det", table, Options{Reuse: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)

	p, err = s.Resolve("det", table, Options{Reuse: false}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Version)

	// Change the structure: the plan column becomes free text.
	table.Rows[1][1] = fixedwidth.Str("PLATINUM")
	table.Rows[2][1] = fixedwidth.Str("BRONZE")
	p, err = s.Resolve("det", table, Options{Reuse: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Version)
	assert.Equal(t, Categorical, p.KindOf("plan"))

	p, err = s.Resolve("det", table, Options{Reuse: true, SaveOnDrift: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Version)
	assert.Equal(t, Text, p.KindOf("plan"))
}

func TestResolveWithoutBase(t *testing.T) {
	dir := t.TempDir()
	p, err := Store{}.Resolve("det", claims(t), Options{Reuse: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Version)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"DET", "det"},
		{"a/b", "a_b"},
		{"", "unnamed"},
		{"a:b*c?d", "a_b_c_d"},
		{"hdr\x00", "hdr"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.input), tt.input)
	}
}
