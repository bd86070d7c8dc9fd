// Package acumen models how quick a community's players are and turns that
// into the difficulty tier of the next word.
package acumen

import (
	"math"
	"math/rand"
	"time"
)

// Acumen is kept in [Min, Max]. New players start at store.InitialAcumen.
const (
	Min = 1
	Max = 100
)

// Source yields the acumen used to pick the next round's tier.
type Source interface {
	Acumen(r *rand.Rand) int
}

// Tier maps an acumen value onto a corpus tier in [1, 5].
func Tier(acumen int) int {
	t := acumen / 20
	if t < 1 {
		return 1
	}
	if t > 5 {
		return 5
	}
	return t
}

// Gaussian draws acumen from a fixed normal distribution, skewing rounds
// toward the middle tiers.
type Gaussian struct {
	Mean   float64
	StdDev float64
}

// DefaultGaussian centers on 40 so most rounds land in tiers 2 and 3.
var DefaultGaussian = Gaussian{Mean: 40, StdDev: 20}

func (g Gaussian) Acumen(r *rand.Rand) int {
	return Clamp(int(math.Round(r.NormFloat64()*g.StdDev + g.Mean)))
}

// Update recomputes a player's acumen after a correct answer that took
// elapsed since the round started. Fast answers raise it, slow ones lower it,
// with the penalty saturating at 30.
func Update(prev int, elapsed time.Duration) int {
	secs := elapsed.Seconds()
	if secs < 0 {
		secs = 0
	}
	p := float64(prev)
	next := p + 11 - p/10 - 30*(1-math.Exp(-0.025*secs))
	if prev < 30 && secs < 30 {
		next += 6
	}
	return Clamp(int(math.Round(next)))
}

// Clamp limits v to [Min, Max].
func Clamp(v int) int {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}
