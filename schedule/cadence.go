// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schedule decides on which simulation ticks inference runs.
package schedule

import "fmt"

// Cadence is a fixed tick budget: it admits one tick out of every N,
// starting with the first one.
//
// A Cadence counts simulation ticks only; it is independent of any
// rendering frame counter.
type Cadence struct {
	every int
	ticks uint64
}

// NewCadence returns a Cadence admitting one tick every "every" ticks.
func NewCadence(every int) (*Cadence, error) {
	if every < 1 {
		return nil, fmt.Errorf("invalid cadence %d: must be at least 1", every)
	}
	return &Cadence{every: every}, nil
}

// Tick advances the tick counter and reports whether the tick is due.
func (c *Cadence) Tick() bool {
	due := c.ticks%uint64(c.every) == 0
	c.ticks++
	return due
}

// Every returns the period of the cadence, in ticks.
func (c *Cadence) Every() int {
	return c.every
}

// Ticks returns the number of ticks counted so far.
func (c *Cadence) Ticks() uint64 {
	return c.ticks
}

// Reset restarts counting, so that the next tick is due.
func (c *Cadence) Reset() {
	c.ticks = 0
}
