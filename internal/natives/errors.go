package natives

import (
	"errors"
	"fmt"
)

var (
	// ErrArithmetic reports overflow, division by zero and invalid
	// exponents.
	ErrArithmetic = errors.New("arithmetic error")
	// ErrInvalidArguments reports argument values of the wrong shape. A
	// checked program never produces it.
	ErrInvalidArguments = errors.New("invalid arguments")
)

func arithmeticf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrArithmetic, fmt.Sprintf(format, args...))
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArguments, fmt.Sprintf(format, args...))
}
