package pipeline

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaropoint/flatsynth/internal/config"
	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
	"github.com/avaropoint/flatsynth/parsers/layout"
	"github.com/avaropoint/flatsynth/parsers/trailer"
)

func testLayout(t *testing.T) *layout.Layout {
	t.Helper()
	l, err := layout.Parse(strings.NewReader(layoutCSV))
	require.NoError(t, err)
	return l
}

func part(t *testing.T, l *layout.Layout, group string, lines ...string) Part {
	t.Helper()
	dec, err := fixedwidth.NewDecoder(l.Fields(group))
	require.NoError(t, err)
	return Part{Group: group, Lines: lines, Table: dec.DecodeAll(lines)}
}

func TestAssemble(t *testing.T) {
	l := testLayout(t)
	a := &Assembler{
		Layout:      l,
		HeaderMode:  config.HeaderVerbatim,
		TrailerMode: config.TrailerBuild,
		Plan:        trailer.Plan{Tag: "PT", CountWidth: 4, Width: 10},
	}
	s := Sections{
		Header:   []Part{{Group: "HDR", Lines: []string{"HDR raw header"}}},
		Detail:   part(t, l, "DET", "DET000001", "DET000002"),
		Sentinel: []string{"CD note"},
	}

	var buf bytes.Buffer
	require.NoError(t, a.Assemble(&buf, s))
	want := "HDR raw header\n" +
		"DET000001" + strings.Repeat(" ", 16) + "\n" +
		"DET000002" + strings.Repeat(" ", 16) + "\n" +
		"CD note\n" +
		"PT0002    \n"
	assert.Equal(t, want, buf.String())
}

func TestAssembleTrailerError(t *testing.T) {
	l := testLayout(t)
	a := &Assembler{Layout: l, TrailerMode: config.TrailerBuild, Plan: trailer.Plan{Tag: "PT"}}
	err := a.Assemble(io.Discard, Sections{Detail: part(t, l, "DET", "DET000001")})
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageTrailer, se.Stage)
	require.ErrorIs(t, err, trailer.ErrInvalidPlan)
}

func TestAssembleUnknownGroup(t *testing.T) {
	l := testLayout(t)
	a := &Assembler{Layout: l, TrailerMode: config.TrailerDrop}
	p := part(t, l, "DET", "DET000001")
	p.Group = "BTR"
	require.Error(t, a.Assemble(io.Discard, Sections{Detail: p}))
}

func TestWriteFileDigestMatchesDisk(t *testing.T) {
	for _, name := range []string{"out.txt", "out.txt.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			digest, err := WriteFile(path, func(w io.Writer) error {
				_, err := io.WriteString(w, "a\nb\n")
				return err
			})
			require.NoError(t, err)

			onDisk, err := Digest(path)
			require.NoError(t, err)
			assert.Equal(t, onDisk, digest)

			lines, err := ReadLines(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, lines)

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestReadLinesStripsCarriageReturns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo"), 0o644))
	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}
