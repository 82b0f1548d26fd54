package sim

import (
	"errors"
	"fmt"
)

// EpisodeConfig groups the per-episode budget and phase timing.
type EpisodeConfig struct {
	MaxSteps       int // step budget of one episode (must be > 0)
	GreenDuration  int // steps a green phase is held (must be > 0)
	YellowDuration int // steps a yellow phase is held (must be > 0)
}

// Validate rejects budgets and durations that would stall or skip the loop.
func (c EpisodeConfig) Validate() error {
	var errs []error
	if c.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("max steps must be > 0, got %d", c.MaxSteps))
	}
	if c.GreenDuration <= 0 {
		errs = append(errs, fmt.Errorf("green duration must be > 0, got %d", c.GreenDuration))
	}
	if c.YellowDuration <= 0 {
		errs = append(errs, fmt.Errorf("yellow duration must be > 0, got %d", c.YellowDuration))
	}
	return errors.Join(errs...)
}

// DurationFor returns how many steps the given phase is held.
func (c EpisodeConfig) DurationFor(p Phase) int {
	if p.IsYellow() {
		return c.YellowDuration
	}
	return c.GreenDuration
}
