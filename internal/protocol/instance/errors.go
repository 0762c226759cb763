package instance

import (
	"errors"
	"fmt"
)

var (
	ErrUnterminated = errors.New("instance: payload not terminated by ;;")
	ErrOddTokens    = errors.New("instance: key without value")
	ErrNoRecords    = errors.New("instance: no records")
	ErrInvalidPort  = errors.New("instance: invalid tcp port")
)

// MissingFieldError indicates a required key was not present in a record.
type MissingFieldError struct {
	Key string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("instance: missing required field %q", e.Key)
}
