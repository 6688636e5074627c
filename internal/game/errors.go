package game

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is matched (via errors.Is) by every rejected guess.
var ErrOutOfRange = errors.New("guess out of range")

// OutOfRangeError reports a guess outside [1, Max].
type OutOfRangeError struct {
	Value int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("guess %d out of range [1, %d]", e.Value, e.Max)
}

// Is lets errors.Is(err, ErrOutOfRange) match.
func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }
