// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package policynet

import (
	"github.com/nlpodyssey/policynet/schedule"
	"github.com/nlpodyssey/policynet/tensor"
)

// Environment is the simulation driven by the policy.
type Environment interface {
	// Observations returns the packed observations of every agent for the
	// current tick, as expected by Engine.Forward.
	Observations() []float32
	// Act applies a [BatchSize, ActionDim] action tensor to the agents and
	// advances the simulation by one tick. The tensor must not be retained.
	Act(actions tensor.View)
}

// Throttled drives an Environment with an Engine under a fixed tick
// budget: inference runs only on the ticks admitted by the cadence, and
// the most recent actions are applied again on the other ones.
type Throttled struct {
	engine  *Engine
	cadence *schedule.Cadence
	actions tensor.View
	ready   bool
}

// NewThrottled returns a Throttled controller.
func NewThrottled(engine *Engine, cadence *schedule.Cadence) *Throttled {
	return &Throttled{engine: engine, cadence: cadence}
}

// Step advances env by one tick and reports whether inference ran.
func (t *Throttled) Step(env Environment) bool {
	due := t.cadence.Tick() || !t.ready
	if due {
		t.actions = t.engine.Forward(env.Observations())
		t.ready = true
	}
	env.Act(t.actions)
	return due
}

// Reset restarts the cadence and zeroes the recurrent state of the engine.
func (t *Throttled) Reset() {
	t.cadence.Reset()
	t.engine.ResetState()
	t.ready = false
}
