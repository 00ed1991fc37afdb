package colour

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports structurally invalid input such as a malformed
	// hex string, a mis-sized pixel buffer or a NaN parameter.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfRange reports a value outside its domain where clamping does not
	// apply, for example a negative sample target or unparsable numeric text.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidFormat reports a hex colour string that cannot be parsed.
	ErrInvalidFormat = fmt.Errorf("%w: invalid hex colour format", ErrInvalidInput)
)
