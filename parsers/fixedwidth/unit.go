package fixedwidth

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Unit is what a field length counts.
type Unit uint8

const (
	// Chars counts Unicode characters. A multi-byte character such as
	// "é" occupies one position.
	Chars Unit = iota
	// Bytes counts raw bytes, for files produced by byte-oriented
	// writers. Truncation never splits a UTF-8 sequence.
	Bytes
)

func (u Unit) String() string {
	if u == Bytes {
		return "bytes"
	}
	return "chars"
}

// ParseUnit maps a configuration value to a Unit. Empty means Chars.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "chars", "characters", "runes":
		return Chars, nil
	case "bytes":
		return Bytes, nil
	default:
		return Chars, fmt.Errorf("unknown width unit %q", s)
	}
}

// Option configures a Decoder or an Encoder.
type Option func(*options)

type options struct {
	unit Unit
}

// WithUnit sets how field lengths are counted. The default is Chars.
func WithUnit(u Unit) Option {
	return func(o *options) { o.unit = u }
}

func apply(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Len returns the length of s in u.
func Len(s string, u Unit) int {
	if u == Bytes {
		return len(s)
	}
	return utf8.RuneCountInString(s)
}

// Slice returns n units of line starting at unit offset start, clipped to
// the line bounds.
func Slice(line string, start, n int, u Unit) string {
	if u == Bytes {
		return slice(line, start, n)
	}
	return string(sliceRunes([]rune(line), start, n))
}

// truncate cuts s to at most n units. In Bytes mode the cut backs off to
// the start of a UTF-8 sequence.
func truncate(s string, n int, u Unit) string {
	if u == Bytes {
		if len(s) <= n {
			return s
		}
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		return s[:n]
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func sliceRunes(rs []rune, start, n int) []rune {
	if start >= len(rs) {
		return nil
	}
	return rs[start:min(start+n, len(rs))]
}
