package fixedwidth

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaropoint/flatsynth/parsers/layout"
)

var detFields = []layout.Field{
	{Name: "rec_type", Length: 2},
	{Name: "claim_id", Length: 6},
	{Name: "service_date", Length: 8},
	{Name: "member", Length: 10},
	{Name: "net_amount_due", Length: 8},
}

func mustDecoder(t *testing.T, fields []layout.Field) *Decoder {
	t.Helper()
	d, err := NewDecoder(fields)
	require.NoError(t, err)
	return d
}

func TestDecodeSlicesAndTrims(t *testing.T) {
	d := mustDecoder(t, detFields)
	row := d.Decode("DT000123202401 5SMITH J   0015083H\n")

	assert.Equal(t, []string{"rec_type", "claim_id", "service_date", "member", "net_amount_due"}, d.Schema().Names())
	require.Len(t, row, 5)
	assert.Equal(t, "DT", row[0].String())
	assert.Equal(t, "000123", row[1].String())
	assert.Equal(t, "202401 5", row[2].String())
	assert.Equal(t, "SMITH J", row[3].String())
	assert.Equal(t, "0015083H", row[4].String())
}

func TestDecodeShortLine(t *testing.T) {
	d := mustDecoder(t, detFields)
	row := d.Decode("DT0001")
	assert.Equal(t, "DT", row[0].String())
	assert.Equal(t, "0001", row[1].String())
	for _, v := range row[2:] {
		assert.Equal(t, Str(""), v)
		assert.True(t, v.IsBlank())
	}

	row = d.Decode("")
	for _, v := range row {
		assert.True(t, v.IsBlank())
	}
}

func TestRoundTrip(t *testing.T) {
	d := mustDecoder(t, detFields)
	lines := []string{
		"DT000123202401150000SMITH10015083H",
		"DT000124202402290000JONES20000450}",
		"DT000125202403010000DOE  30000012{",
	}
	table := d.DecodeAll(lines)
	require.Equal(t, 3, table.Len())

	e, err := NewEncoder(detFields, table.Schema, nil)
	require.NoError(t, err)
	for i, line := range lines {
		got := e.Encode(table.Rows[i])
		assert.Len(t, got, e.Width())
		assert.Equal(t, strings.TrimRight(line, " "), strings.TrimRight(got, " "))
	}
}

func TestEncodeNullAndBlank(t *testing.T) {
	fields := []layout.Field{{Name: "a", Length: 10}, {Name: "b", Length: 3}}
	schema, err := NewSchema([]string{"a", "b"})
	require.NoError(t, err)
	e, err := NewEncoder(fields, schema, nil)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat(" ", 13), e.Encode(Row{NullValue(), Str("")}))
	assert.Equal(t, "          xyz", e.Encode(Row{NullValue(), Str("xyz")}))
}

func TestEncodeTruncatesAndStripsNewlines(t *testing.T) {
	fields := []layout.Field{{Name: "a", Length: 4}, {Name: "b", Length: 4}}
	schema, err := NewSchema([]string{"a", "b"})
	require.NoError(t, err)
	e, err := NewEncoder(fields, schema, nil)
	require.NoError(t, err)

	assert.Equal(t, "abcda b ", e.Encode(Row{Str("abcdefgh"), Str("a\nb")}))
}

func TestEncodeDates(t *testing.T) {
	d := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	schema, err := NewSchema([]string{"long", "short", "text"})
	require.NoError(t, err)
	fields := []layout.Field{
		{Name: "long", Length: 10},
		{Name: "short", Length: 6},
		{Name: "text", Length: 8},
	}
	e, err := NewEncoder(fields, schema, []string{"long", "short", "text"})
	require.NoError(t, err)

	got := e.Encode(Row{DateOf(d), DateOf(d), Str("2024-03-01")})
	assert.Equal(t, "20240229  "+"202402"+"20240301", got)
}

func TestEncoderMissingColumn(t *testing.T) {
	schema, err := NewSchema([]string{"a"})
	require.NoError(t, err)
	_, err = NewEncoder([]layout.Field{{Name: "b", Length: 1}}, schema, nil)
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	schema, err := NewSchema([]string{"id", "dob"})
	require.NoError(t, err)
	table := &Table{Schema: schema, Rows: []Row{
		{Str("1"), Str("20240131")},
		{Str("2"), Str("")},
		{Str("3"), Str("20241340")},
		{Str("4"), Str("2023-07-04")},
	}}

	Coerce(table, []string{"dob", "not_there"})

	d, ok := table.Rows[0][1].Date()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), d)
	assert.True(t, table.Rows[1][1].IsNull())
	assert.True(t, table.Rows[2][1].IsNull())
	assert.Equal(t, Date, table.Rows[3][1].Kind())
	assert.Equal(t, "20230704", table.Rows[3][1].String())
	assert.Equal(t, String, table.Rows[0][0].Kind())
}

func TestProjectReinsert(t *testing.T) {
	schema, err := NewSchema([]string{"a", "b", "c"})
	require.NoError(t, err)
	table := &Table{Schema: schema, Rows: []Row{
		{Str("a1"), Str("b1"), Str("c1")},
		{Str("a2"), Str("b2"), Str("c2")},
	}}

	proj, side, err := Project(table, []string{"b", "zzz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, proj.Schema.Names())
	assert.Equal(t, []string{"b"}, side.Columns)
	assert.Equal(t, Row{Str("a2"), Str("c2")}, proj.Rows[1])

	proj.Rows[0][0] = Str("x1")
	back, err := Reinsert(proj, side)
	require.NoError(t, err)
	assert.True(t, back.Schema.Equal(schema))
	assert.Equal(t, Row{Str("x1"), Str("b1"), Str("c1")}, back.Rows[0])
	assert.Equal(t, Row{Str("a2"), Str("b2"), Str("c2")}, back.Rows[1])
}

func TestProjectNothing(t *testing.T) {
	schema, err := NewSchema([]string{"a"})
	require.NoError(t, err)
	table := &Table{Schema: schema, Rows: []Row{{Str("1")}}}
	proj, side, err := Project(table, nil)
	require.NoError(t, err)
	back, err := Reinsert(proj, side)
	require.NoError(t, err)
	assert.Equal(t, table.Rows, back.Rows)
}

func TestTableHelpers(t *testing.T) {
	_, err := NewSchema([]string{"a", "a"})
	assert.Error(t, err)

	schema, err := NewSchema([]string{"a", "b"})
	require.NoError(t, err)
	table := NewTable(schema)
	require.NoError(t, table.Append(Row{Str("1"), Str("2")}))
	assert.Error(t, table.Append(Row{Str("1")}))

	v, ok := table.Get(0, "b")
	require.True(t, ok)
	assert.Equal(t, "2", v.String())
	_, ok = table.Get(1, "b")
	assert.False(t, ok)

	clone := table.Clone()
	clone.Rows[0][0] = Str("changed")
	assert.Equal(t, "1", table.Rows[0][0].String())

	col, ok := table.Column("a")
	require.True(t, ok)
	assert.Equal(t, []Value{Str("1")}, col)
}

var nameID = []layout.Field{{Name: "name", Length: 5}, {Name: "id", Length: 5}}

func TestDecodeCountsCharacters(t *testing.T) {
	d := mustDecoder(t, nameID)
	row := d.Decode("José 12345")
	assert.Equal(t, "José", row[0].String())
	assert.Equal(t, "12345", row[1].String())

	row = d.Decode("Zoë")
	assert.Equal(t, "Zoë", row[0].String())
	assert.True(t, row[1].IsBlank())
}

func TestDecodeCountsBytes(t *testing.T) {
	d, err := NewDecoder(nameID, WithUnit(Bytes))
	require.NoError(t, err)
	row := d.Decode("José12345")
	assert.Equal(t, "José", row[0].String())
	assert.Equal(t, "12345", row[1].String())
}

func TestEncodeCountsCharacters(t *testing.T) {
	fields := []layout.Field{{Name: "name", Length: 4}, {Name: "id", Length: 3}}
	schema, err := NewSchema([]string{"name", "id"})
	require.NoError(t, err)

	e, err := NewEncoder(fields, schema, nil)
	require.NoError(t, err)
	got := e.Encode(Row{Str("Renée"), Str("é")})
	assert.Equal(t, "René"+"é  ", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, e.Width(), utf8.RuneCountInString(got))

	e, err = NewEncoder(fields, schema, nil, WithUnit(Bytes))
	require.NoError(t, err)
	got = e.Encode(Row{Str("Renée"), Str("é")})
	assert.Equal(t, "Ren "+"é ", got, "a split character is replaced by padding")
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, e.Width())
}

func TestCharacterRoundTrip(t *testing.T) {
	d := mustDecoder(t, nameID)
	line := "Ñoño 00042"
	table := d.DecodeAll([]string{line})
	e, err := NewEncoder(nameID, table.Schema, nil)
	require.NoError(t, err)
	assert.Equal(t, line, e.Encode(table.Rows[0]))
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"": Chars, "chars": Chars, "Runes": Chars, "bytes": Bytes} {
		u, err := ParseUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, u, in)
	}
	_, err := ParseUnit("words")
	assert.Error(t, err)
	assert.Equal(t, "bytes", Bytes.String())
}

func TestSlice(t *testing.T) {
	assert.Equal(t, "é1", Slice("abé12", 2, 2, Chars))
	assert.Equal(t, "\xa91", Slice("abé12", 3, 2, Bytes))
	assert.Equal(t, "", Slice("ab", 5, 2, Chars))
	assert.Equal(t, 3, Len("abé", Chars))
	assert.Equal(t, 4, Len("abé", Bytes))
}
