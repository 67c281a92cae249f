// Package scoring owns the home/away score counters and their quick-set pickers.
package scoring

import (
	"errors"
	"fmt"
)

const (
	QuickSetMin = 0
	QuickSetMax = 4
)

// ErrQuickSetRange is returned when a quick-set value falls outside [QuickSetMin, QuickSetMax].
var ErrQuickSetRange = errors.New("quick-set value out of range")

// MatchScore is the score state for one match.
type MatchScore struct {
	HomeScore    int `json:"homeScore"`
	AwayScore    int `json:"awayScore"`
	HomeQuickSet int `json:"homeQuickSetValue"`
	AwayQuickSet int `json:"awayQuickSetValue"`
}

// Controller mutates a MatchScore. It is not safe for concurrent use;
// callers serialize access per match (see match.Session).
type Controller struct {
	score MatchScore
}

// NewController returns a controller with every field at zero.
func NewController() *Controller {
	return &Controller{}
}

// Increment adds one to the side's score. There is no upper bound.
func (c *Controller) Increment(side Side) {
	*c.scoreFor(side)++
}

// Decrement subtracts one when the score is above zero and reports whether it changed.
func (c *Controller) Decrement(side Side) bool {
	v := c.scoreFor(side)
	if *v <= 0 {
		return false
	}
	*v--
	return true
}

// ResetSide zeroes one side's score and leaves everything else alone.
func (c *Controller) ResetSide(side Side) {
	*c.scoreFor(side) = 0
}

// ResetAll starts a new match: both scores and both quick-set values go to zero.
func (c *Controller) ResetAll() {
	c.score = MatchScore{}
}

// SetQuickSetValue records the picker selection for a side. The value never changes the score.
func (c *Controller) SetQuickSetValue(side Side, value int) error {
	if value < QuickSetMin || value > QuickSetMax {
		return fmt.Errorf("%w: %d", ErrQuickSetRange, value)
	}
	if side == Away {
		c.score.AwayQuickSet = value
	} else {
		c.score.HomeQuickSet = value
	}
	return nil
}

// Score returns the side's current score.
func (c *Controller) Score(side Side) int {
	return *c.scoreFor(side)
}

// QuickSetValue returns the side's current picker selection.
func (c *Controller) QuickSetValue(side Side) int {
	if side == Away {
		return c.score.AwayQuickSet
	}
	return c.score.HomeQuickSet
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() MatchScore {
	return c.score
}

func (c *Controller) scoreFor(side Side) *int {
	if side == Away {
		return &c.score.AwayScore
	}
	return &c.score.HomeScore
}
