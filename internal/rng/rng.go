// Package rng implements the linear-congruential generator the town
// pipeline depends on for reproducibility. A single Rng value is
// threaded explicitly through Build(); it is never a package global,
// so two Citys never share state.
package rng

import (
	"math"
	"time"
)

const (
	lcgMul = 48271.0
	lcgMod = 2147483647
)

// Rng is a seeded LCG: x <- x*48271 mod 2^31-1.
type Rng struct {
	seed  int64
	saved int64
}

// New returns a Rng seeded with seed. A seed <= 0 derives a seed from
// the current time.
func New(seed int64) *Rng {
	if seed <= 0 {
		seed = time.Now().UnixNano() % lcgMod
		if seed <= 0 {
			seed = 1
		}
	}
	return &Rng{seed: seed}
}

// Seed returns the current internal state (the CLI echoes the
// starting value on success for reproducibility).
func (r *Rng) Seed() int64 { return r.seed }

// Save snapshots the current state so a caller can sample extra values
// and then Restore() to continue as though they never happened.
func (r *Rng) Save() { r.saved = r.seed }

// Restore undoes every draw made since the matching Save().
func (r *Rng) Restore() { r.seed = r.saved }

// next advances the LCG and returns the raw state.
func (r *Rng) next() int64 {
	r.seed = int64(float64(r.seed)*lcgMul) % lcgMod
	if r.seed < 0 {
		r.seed += lcgMod
	}
	return r.seed
}

// Float returns a uniform value in [0, 1).
func (r *Rng) Float() float64 {
	return float64(r.next()) / float64(lcgMod)
}

// N3 is the sum of three uniforms divided by 3 - a cheap discrete
// approximation to a bell curve over [0,1), used throughout the
// group/block parameterization.
func (r *Rng) N3() float64 {
	return (r.Float() + r.Float() + r.Float()) / 3.0
}

// N4 is the sum of four uniforms divided by 2: a bell over [0,2)
// centered at 1, so |N4-1| is a one-sided bell and 1-N4 swings both
// ways. Consumers rely on the center being 1, not 0.5.
func (r *Rng) N4() float64 {
	return (r.Float() + r.Float() + r.Float() + r.Float()) / 2.0
}

// Int returns a value in [min, max).
func (r *Rng) Int(min, max int) int {
	return min + int(r.Float()*float64(max-min))
}

// Bool returns true with the given probability.
func (r *Rng) Bool(chance float64) bool {
	return r.Float() < chance
}

// Fuzzy blends between a constant 0.5 and the N3 bell distribution.
func (r *Rng) Fuzzy(f float64) float64 {
	if f == 0 {
		return 0.5
	}
	return (1-f)/2 + f*r.N3()
}

// Angle returns a uniform angle in [0, 2pi).
func (r *Rng) Angle() float64 {
	return r.Float() * 2 * math.Pi
}
