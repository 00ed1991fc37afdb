package colour

import (
	"fmt"
	"strconv"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// ToHex clamps v to [0, 255] and formats it as two uppercase hex digits.
func ToHex(v int) string {
	c := ClampChannel(v)
	return string([]byte{hexDigits[c>>4], hexDigits[c&0x0f]})
}

// FormatHex formats a colour as "#RRGGBB", clamping each channel first.
func FormatHex(r, g, b int) string {
	return "#" + ToHex(r) + ToHex(g) + ToHex(b)
}

// ParseHex parses "#RRGGBB" or "RRGGBB" in either case.
func ParseHex(s string) (RGB, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(digits) != 6 {
		return RGB{}, fmt.Errorf("%w: %q must have 6 hex digits", ErrInvalidFormat, s)
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// MustParseHex is like ParseHex but panics on malformed input.
// It is intended for constant colours in tests and defaults.
func MustParseHex(s string) RGB {
	rgb, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return rgb
}
