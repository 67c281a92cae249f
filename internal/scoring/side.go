package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSide is returned when a side name is neither home nor away.
var ErrUnknownSide = errors.New("unknown side")

// Side identifies one of the two competing parties.
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	switch s {
	case Home:
		return "home"
	case Away:
		return "away"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide accepts "home" or "away" in any case.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "home":
		return Home, nil
	case "away":
		return Away, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSide, raw)
	}
}
