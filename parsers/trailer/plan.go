package trailer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPlan is returned for trailer plans that cannot produce a record.
var ErrInvalidPlan = errors.New("invalid trailer plan")

// Decoding names how a column's text becomes a number before summing.
type Decoding string

const (
	DecodeOverpunch Decoding = "overpunch"
	DecodeNumeric   Decoding = "numeric"
	DecodeZero      Decoding = "zero"
)

// Func returns the decoder for d.
func (d Decoding) Func() (func(string) float64, error) {
	switch Decoding(strings.ToLower(string(d))) {
	case DecodeOverpunch, "":
		return Overpunch, nil
	case DecodeNumeric:
		return Numeric, nil
	case DecodeZero:
		return func(string) float64 { return 0 }, nil
	default:
		return nil, fmt.Errorf("%w: unknown decoding %q", ErrInvalidPlan, d)
	}
}

// Sum is one summed column in the trailer, followed by a delimiter.
type Sum struct {
	Column    string   `yaml:"column" json:"column"`
	Decode    Decoding `yaml:"decode" json:"decode"`
	Width     int      `yaml:"width" json:"width"`
	Delimiter string   `yaml:"delimiter" json:"delimiter"`
}

// Plan describes the trailer record layout.
type Plan struct {
	Tag        string `yaml:"tag" json:"tag"`
	CountWidth int    `yaml:"count_width" json:"count_width"`
	Sums       []Sum  `yaml:"sums" json:"sums"`
	Width      int    `yaml:"width" json:"width"`
}

// DefaultPlan is the page trailer of the claims batch layout:
// PT + count(10) + net(11) A + gross(11) G + patient pay(11) D, 48 wide.
func DefaultPlan() Plan {
	return Plan{
		Tag:        "PT",
		CountWidth: 10,
		Sums: []Sum{
			{Column: "net_amount_due", Decode: DecodeOverpunch, Width: 11, Delimiter: "A"},
			{Column: "gross_amount_due", Decode: DecodeOverpunch, Width: 11, Delimiter: "G"},
			{Column: "patient_pay_amount", Decode: DecodeOverpunch, Width: 11, Delimiter: "D"},
		},
		Width: 48,
	}
}

// Validate checks the plan's fixed-width constraints.
func (p Plan) Validate() error {
	if len(p.Tag) != 2 {
		return fmt.Errorf("%w: tag %q must be 2 characters", ErrInvalidPlan, p.Tag)
	}
	if p.CountWidth <= 0 {
		return fmt.Errorf("%w: count width must be positive", ErrInvalidPlan)
	}
	if p.Width <= 0 {
		return fmt.Errorf("%w: record width must be positive", ErrInvalidPlan)
	}
	for _, s := range p.Sums {
		if s.Width <= 0 {
			return fmt.Errorf("%w: sum %q width must be positive", ErrInvalidPlan, s.Column)
		}
		if len(s.Delimiter) > 1 {
			return fmt.Errorf("%w: sum %q delimiter %q longer than 1 character", ErrInvalidPlan, s.Column, s.Delimiter)
		}
		if _, err := s.Decode.Func(); err != nil {
			return err
		}
	}
	return nil
}
