// Package appearance owns team colors and names for a match.
package appearance

import (
	"github.com/preston-bernstein/scorekeeper-service/internal/color"
	"github.com/preston-bernstein/scorekeeper-service/internal/palette"
	"github.com/preston-bernstein/scorekeeper-service/internal/scoring"
)

const (
	DefaultHomeName = "Home"
	DefaultAwayName = "Away"
)

// MatchAppearance is the display state for both sides.
type MatchAppearance struct {
	HomeColor    color.RGBA `json:"homeColor"`
	AwayColor    color.RGBA `json:"awayColor"`
	HomeTeamName string     `json:"homeTeamName"`
	AwayTeamName string     `json:"awayTeamName"`
}

// Option customises a new Controller.
type Option func(*Controller)

// WithTeamNames overrides the initial names. Empty values keep the defaults.
func WithTeamNames(home, away string) Option {
	return func(c *Controller) {
		if home != "" {
			c.state.HomeTeamName = home
		}
		if away != "" {
			c.state.AwayTeamName = away
		}
	}
}

// Controller mutates a MatchAppearance against a fixed palette catalogue.
// Like scoring.Controller it expects callers to serialize access.
type Controller struct {
	catalogue palette.Catalogue
	state     MatchAppearance
}

// NewController starts from the catalogue's default pair and the default names.
func NewController(catalogue palette.Catalogue, opts ...Option) *Controller {
	c := &Controller{
		catalogue: catalogue.Clone(),
		state: MatchAppearance{
			HomeColor:    catalogue.Default.Home,
			AwayColor:    catalogue.Default.Away,
			HomeTeamName: DefaultHomeName,
			AwayTeamName: DefaultAwayName,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectPalette applies the entry's pair to both sides. Unknown keys leave the colors
// unchanged and report false.
func (c *Controller) SelectPalette(key string) bool {
	entry, ok := c.catalogue.Lookup(key)
	if !ok {
		return false
	}
	c.state.HomeColor = entry.Home
	c.state.AwayColor = entry.Away
	return true
}

// SetHomeTeamName stores the name verbatim; empty is allowed.
func (c *Controller) SetHomeTeamName(name string) {
	c.state.HomeTeamName = name
}

// SetAwayTeamName stores the name verbatim; empty is allowed.
func (c *Controller) SetAwayTeamName(name string) {
	c.state.AwayTeamName = name
}

// SetTeamName dispatches to the side's setter.
func (c *Controller) SetTeamName(side scoring.Side, name string) {
	if side == scoring.Away {
		c.SetAwayTeamName(name)
		return
	}
	c.SetHomeTeamName(name)
}

func (c *Controller) HomeColor() color.RGBA { return c.state.HomeColor }
func (c *Controller) AwayColor() color.RGBA { return c.state.AwayColor }
func (c *Controller) HomeTeamName() string  { return c.state.HomeTeamName }
func (c *Controller) AwayTeamName() string  { return c.state.AwayTeamName }

// Snapshot returns a copy of the current appearance.
func (c *Controller) Snapshot() MatchAppearance {
	return c.state
}

// Palettes returns a copy of the catalogue the controller selects from.
func (c *Controller) Palettes() palette.Catalogue {
	return c.catalogue.Clone()
}
