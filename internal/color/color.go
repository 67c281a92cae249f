package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RGBA is an 8-bit-per-channel color.
type RGBA struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// Black is the fallback for input that cannot be parsed.
var Black = RGBA{A: 0xff}

// ErrInvalidHex is returned by ParseHexStrict for input that is not a 3, 6 or 8 digit hex color.
var ErrInvalidHex = errors.New("invalid hex color")

// ParseHex converts a hex color string into RGBA.
// Non-alphanumeric characters are trimmed from both ends, so "#0072b2" and "0072b2" are
// equivalent, while separators inside the digits make the input invalid.
// Supported forms are RGB (12-bit), RRGGBB (24-bit) and AARRGGBB (32-bit, leading alpha).
// Anything else yields opaque black.
func ParseHex(s string) RGBA {
	c, err := ParseHexStrict(s)
	if err != nil {
		return Black
	}
	return c
}

// ParseHexStrict is ParseHex without the fallback: invalid input returns ErrInvalidHex.
func ParseHexStrict(s string) (RGBA, error) {
	digits := strings.TrimFunc(s, func(r rune) bool { return !isAlphanumeric(r) })

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	switch len(digits) {
	case 3:
		return RGBA{
			R: uint8(v>>8) * 17,
			G: uint8(v>>4&0xf) * 17,
			B: uint8(v&0xf) * 17,
			A: 0xff,
		}, nil
	case 6:
		return RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	case 8:
		return RGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	default:
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
}

// Hex renders the color as #rrggbb, or #aarrggbb when it is not opaque.
func (c RGBA) Hex() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}

func (c RGBA) String() string {
	return c.Hex()
}

// MarshalText encodes the color as its hex form so JSON and YAML carry "#rrggbb".
func (c RGBA) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes a hex string. Invalid input decodes to opaque black.
func (c *RGBA) UnmarshalText(text []byte) error {
	*c = ParseHex(string(text))
	return nil
}

func isAlphanumeric(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
