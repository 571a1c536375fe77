package trailer

import (
	"math"
	"strconv"
	"strings"
)

// punch is the sign and replacement digit encoded by a trailing character.
type punch struct {
	sign  float64
	digit byte
}

// overpunch maps the final character of a signed field. Plain digits are
// handled separately and keep the value unsigned.
var overpunch = map[byte]punch{
	'{': {+1, '0'},
	'}': {-1, '0'},
	'A': {-1, '1'}, 'B': {-1, '2'}, 'C': {-1, '3'},
	'D': {-1, '4'}, 'E': {-1, '5'}, 'F': {-1, '6'},
	'G': {-1, '7'}, 'H': {-1, '8'}, 'I': {-1, '9'},
	'J': {+1, '1'}, 'K': {+1, '2'}, 'L': {+1, '3'},
	'M': {+1, '4'}, 'N': {+1, '5'}, 'O': {+1, '6'},
	'P': {+1, '7'}, 'Q': {+1, '8'}, 'R': {+1, '9'},
}

// Overpunch decodes a signed-overpunch number such as "0015083H"
// (-150838). The final character selects the sign and digit, and every
// occurrence of that character is replaced, so "1H2H" is -1828. Values
// that cannot be decoded yield 0.
func Overpunch(s string) float64 {
	if s == "" {
		return 0
	}
	last := s[len(s)-1]
	if last >= '0' && last <= '9' {
		return parse(s)
	}
	p, ok := overpunch[last]
	if !ok {
		return 0
	}
	return p.sign * parse(strings.ReplaceAll(s, string(last), string(p.digit)))
}

// Numeric parses a plain decimal value; failures yield 0.
func Numeric(s string) float64 {
	return parse(s)
}

func parse(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
