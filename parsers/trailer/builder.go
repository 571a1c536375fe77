// Package trailer computes the summary record written after the detail
// records of a batch file.
package trailer

import (
	"math"
	"strconv"
	"strings"

	"github.com/avaropoint/flatsynth/parsers/fixedwidth"
)

// Build renders the trailer for the detail rows of t. Columns named by the
// plan but absent from the table sum to zero.
func Build(t *fixedwidth.Table, p Plan) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(p.Tag)
	b.WriteString(zfill(int64(t.Len()), p.CountWidth))
	for _, s := range p.Sums {
		total, err := SumColumn(t, s)
		if err != nil {
			return "", err
		}
		b.WriteString(zfill(int64(math.Trunc(total)), s.Width))
		b.WriteString(s.Delimiter)
	}
	return fit(b.String(), p.Width), nil
}

// SumColumn decodes and sums one column in floating point.
func SumColumn(t *fixedwidth.Table, s Sum) (float64, error) {
	decode, err := s.Decode.Func()
	if err != nil {
		return 0, err
	}
	values, ok := t.Column(s.Column)
	if !ok {
		return 0, nil
	}
	var total float64
	for _, v := range values {
		if v.IsBlank() {
			continue
		}
		total += decode(v.String())
	}
	return total, nil
}

// zfill pads n with zeros to width, keeping a minus sign in front.
// Numbers wider than width are not truncated.
func zfill(n int64, width int) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	if pad := width - len(sign) - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return sign + digits
}

// fit pads with spaces or truncates s to exactly width characters.
func fit(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
