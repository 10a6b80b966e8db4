package testutil

import (
	"fmt"
	"math"
)

// Accumulator collects raw returns one at a time (Welford's update) the same
// way an experiment run does before writing its result row.
// The zero value is ready to use.
type Accumulator struct {
	count int
	mean  float64
	m2    float64

	durCount int
	durMean  float64
}

// Add records one episodic return.
func (a *Accumulator) Add(v float64) {
	a.count++
	delta := v - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (v - a.mean)
}

// AddDuration records one step duration.
func (a *Accumulator) AddDuration(d float64) {
	a.durCount++
	a.durMean += (d - a.durMean) / float64(a.durCount)
}

// Count returns the number of returns added.
func (a *Accumulator) Count() int { return a.count }

// Mean returns the running mean, or 0 before any return is added.
func (a *Accumulator) Mean() float64 { return a.mean }

// Var returns the unbiased sample variance; 0 when fewer than two returns were added.
func (a *Accumulator) Var() float64 {
	if a.count < 2 {
		return 0
	}
	return a.m2 / float64(a.count-1)
}

// Stder returns sqrt(Var / Count); 0 when fewer than two returns were added.
func (a *Accumulator) Stder() float64 {
	if a.count < 2 {
		return 0
	}
	return math.Sqrt(a.Var() / float64(a.count))
}

// Duration returns the mean step duration added so far.
func (a *Accumulator) Duration() float64 { return a.durMean }

// Row formats the accumulated statistics as a result row:
// mean, var, count, stder, duration.
func (a *Accumulator) Row() string {
	return fmt.Sprintf("%v, %v, %d, %v, %v", a.mean, a.Var(), a.count, a.Stder(), a.durMean)
}
