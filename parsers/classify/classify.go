// Package classify routes physical lines of a flat file to header,
// detail, sentinel or trailer handling.
package classify

import (
	"fmt"
	"strings"
)

// RecordType is the role of one physical line.
type RecordType uint8

const (
	Detail RecordType = iota
	Header
	Sentinel
	Trailer
)

func (t RecordType) String() string {
	switch t {
	case Header:
		return "header"
	case Sentinel:
		return "sentinel"
	case Trailer:
		return "trailer"
	default:
		return "detail"
	}
}

// Precedence orders the header and sentinel rules.
type Precedence uint8

const (
	// HeaderFirst classifies the first HeaderLines lines as headers even
	// when they carry a sentinel prefix.
	HeaderFirst Precedence = iota
	// SentinelFirst lets a sentinel prefix win over header position.
	SentinelFirst
)

// ParsePrecedence maps a configuration value to a Precedence.
func ParsePrecedence(s string) (Precedence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "header", "header_first":
		return HeaderFirst, nil
	case "sentinel", "sentinel_first":
		return SentinelFirst, nil
	default:
		return HeaderFirst, fmt.Errorf("unknown precedence %q", s)
	}
}

// Classifier holds the line-role rules for one file shape.
type Classifier struct {
	HeaderLines      int
	TrailerLines     int
	SentinelPrefixes []string
	Precedence       Precedence
}

// Classify returns the role of line at zero-based position in a file of
// total lines. Header wins over trailer when both apply.
func (c Classifier) Classify(line string, position, total int) RecordType {
	header := position < c.HeaderLines
	sentinel := c.isSentinel(line)
	switch {
	case header && (c.Precedence == HeaderFirst || !sentinel):
		return Header
	case sentinel:
		return Sentinel
	case c.TrailerLines > 0 && position >= total-c.TrailerLines:
		return Trailer
	default:
		return Detail
	}
}

func (c Classifier) isSentinel(line string) bool {
	for _, p := range c.SentinelPrefixes {
		if p != "" && strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Sections is a file split by record role. Header and Trailer keep their
// physical order; Sentinel lines are stored verbatim.
type Sections struct {
	Header   []string
	Detail   []string
	Sentinel []string
	Trailer  []string
}

// Split classifies every line. Line terminators are removed.
func (c Classifier) Split(lines []string) Sections {
	var s Sections
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")
		switch c.Classify(line, i, len(lines)) {
		case Header:
			s.Header = append(s.Header, line)
		case Sentinel:
			s.Sentinel = append(s.Sentinel, line)
		case Trailer:
			s.Trailer = append(s.Trailer, line)
		default:
			s.Detail = append(s.Detail, line)
		}
	}
	return s
}
