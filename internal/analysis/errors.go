package analysis

import (
	"errors"
	"fmt"
)

// ErrInvalidEnergyMode is returned when the requested energy mode is not one
// of auto, gaz, electricite or dual.
var ErrInvalidEnergyMode = errors.New("invalid energy mode: use auto | gaz | electricite | dual")

// MismatchError reports a confident contradiction between the requested
// energy type and the evidence in the invoice text. It is deliberately a hard
// failure: comparing offers for the wrong energy is worse than refusing.
type MismatchError struct {
	Requested  string
	Detected   string
	Confidence float64
}

func (e *MismatchError) Error() string {
	if e.Detected != "" {
		return fmt.Sprintf("requested energy %q but the invoice looks like %q (confidence %.2f)",
			e.Requested, e.Detected, e.Confidence)
	}
	return fmt.Sprintf("requested energy %q but the invoice evidence is insufficient (confidence %.2f)",
		e.Requested, e.Confidence)
}
