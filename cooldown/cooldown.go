package cooldown

import (
	"math"
	"time"
)

// Config tunes how the wait between rounds reacts to outcomes.
type Config struct {
	Base time.Duration
	Min  time.Duration
	Max  time.Duration
	// Growth multiplies the cooldown after each unanswered round.
	Growth float64
	// SleepAfter consecutive misses jump straight to Max.
	SleepAfter int
	// Announce is the wait shown to players while sleeping at Max.
	Announce time.Duration
}

var DefaultConfig = Config{
	Base:       240 * time.Second,
	Min:        15 * time.Second,
	Max:        900 * time.Second,
	Growth:     1.3,
	SleepAfter: 3,
	Announce:   60 * time.Second,
}

// State is one community's cooldown. The zero value is not usable; call New.
type State struct {
	cfg     Config
	Current time.Duration
	Misses  int
}

func New(cfg Config) *State {
	return &State{cfg: cfg, Current: cfg.Base}
}

// Adjust folds the outcome of a finished round into the cooldown and returns
// the wait before the next one.
func (s *State) Adjust(correct bool) time.Duration {
	if correct {
		if s.Current >= s.cfg.Max {
			// waking from sleep mode goes back to base, not straight to Min
			s.Misses = 2
			s.Current = s.cfg.Base
			return s.Current
		}
		s.Current = s.Current / time.Second / 2 * time.Second
		if s.Current < s.cfg.Min {
			s.Current = s.cfg.Min
		}
		s.Misses = 0
		return s.Current
	}

	s.Misses++
	if s.Misses > s.cfg.SleepAfter {
		s.Current = s.cfg.Max
		return s.Current
	}
	// whole seconds, like the announced waits
	next := time.Duration(math.Floor(s.Current.Seconds()*s.cfg.Growth+1e-9)) * time.Second
	if next > s.cfg.Max {
		next = s.cfg.Max
	}
	s.Current = next
	return s.Current
}

// Sleeping reports whether the cooldown sits at its maximum.
func (s *State) Sleeping() bool {
	return s.Current >= s.cfg.Max
}

// Announced is the wait to tell players. Sleep-mode waits are shortened so
// the channel does not advertise a long dead period.
func (s *State) Announced(d time.Duration) time.Duration {
	if d >= s.cfg.Max {
		return s.cfg.Announce
	}
	return d
}
