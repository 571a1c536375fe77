package layout

import (
	"errors"
	"fmt"
)

// ErrMalformedLayout matches every *MalformedLayoutError via errors.Is.
var ErrMalformedLayout = errors.New("malformed layout")

// MalformedLayoutError reports a layout that cannot be used for decoding.
// Row is the 1-based data row in the source file, or 0 when not known.
type MalformedLayoutError struct {
	RecordType string
	Field      string
	Row        int
	Reason     string
}

func (e *MalformedLayoutError) Error() string {
	msg := "malformed layout"
	if e.RecordType != "" {
		msg += fmt.Sprintf(" [%s]", e.RecordType)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" (row %d)", e.Row)
	}
	return msg + ": " + e.Reason
}

func (e *MalformedLayoutError) Is(target error) bool {
	return target == ErrMalformedLayout
}
