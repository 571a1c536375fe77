package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRules(t *testing.T) {
	c := Classifier{HeaderLines: 1, TrailerLines: 1, SentinelPrefixes: []string{"CD"}}
	tests := []struct {
		line     string
		position int
		total    int
		want     RecordType
	}{
		{"HD0001", 0, 5, Header},
		{"DT0001", 1, 5, Detail},
		{"CD100 passthrough", 2, 5, Sentinel},
		{"DT0002", 3, 5, Detail},
		{"PT0000000003", 4, 5, Trailer},
		{"CD at the end", 4, 5, Sentinel},
		{"only line", 0, 1, Header},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.line, tt.position, tt.total), "%q@%d", tt.line, tt.position)
	}
}

func TestClassifyPrecedence(t *testing.T) {
	c := Classifier{HeaderLines: 1, SentinelPrefixes: []string{"CD"}}
	assert.Equal(t, Header, c.Classify("CD header", 0, 3))

	c.Precedence = SentinelFirst
	assert.Equal(t, Sentinel, c.Classify("CD header", 0, 3))
	assert.Equal(t, Header, c.Classify("HD header", 0, 3))
}

func TestClassifyIsPure(t *testing.T) {
	c := Classifier{HeaderLines: 2, TrailerLines: 2, SentinelPrefixes: []string{"CD100", "XX"}}
	for pos := 0; pos < 6; pos++ {
		first := c.Classify("CD100 line", pos, 6)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, c.Classify("CD100 line", pos, 6))
		}
	}
}

func TestClassifyNoTrailer(t *testing.T) {
	c := Classifier{HeaderLines: 1}
	assert.Equal(t, Detail, c.Classify("last", 3, 4))
	assert.Equal(t, Detail, Classifier{}.Classify("x", 0, 1))
}

func TestSplit(t *testing.T) {
	c := Classifier{HeaderLines: 1, TrailerLines: 1, SentinelPrefixes: []string{"CD"}}
	s := c.Split([]string{"HDR\n", "D1\r\n", "CD100 keep  \n", "D2", "TLR"})

	assert.Equal(t, []string{"HDR"}, s.Header)
	assert.Equal(t, []string{"D1", "D2"}, s.Detail)
	assert.Equal(t, []string{"CD100 keep  "}, s.Sentinel)
	assert.Equal(t, []string{"TLR"}, s.Trailer)
}

func TestParsePrecedence(t *testing.T) {
	p, err := ParsePrecedence("sentinel_first")
	require.NoError(t, err)
	assert.Equal(t, SentinelFirst, p)
	p, err = ParsePrecedence("")
	require.NoError(t, err)
	assert.Equal(t, HeaderFirst, p)
	_, err = ParsePrecedence("random")
	assert.Error(t, err)
	assert.Equal(t, "sentinel", Sentinel.String())
}
