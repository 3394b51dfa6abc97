package schedule

import (
	"errors"
	"fmt"
)

// Sentinel errors for schedule construction.
var (
	ErrOutOfRange = errors.New("schedule: value out of range")
	ErrInvalid    = errors.New("schedule: invalid expression")
)

// RangeError reports a schedule parameter outside its allowed bounds.
type RangeError struct {
	Param string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("schedule: %s must be within range of %d-%d, got %d", e.Param, e.Min, e.Max, e.Value)
}

// Is reports whether target is ErrOutOfRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

func checkRange(param string, value, lo, hi int) error {
	if value < lo || value > hi {
		return &RangeError{Param: param, Value: value, Min: lo, Max: hi}
	}
	return nil
}
