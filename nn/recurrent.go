// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/nlpodyssey/policynet/activation"
	"github.com/nlpodyssey/policynet/tensor"
)

// Recurrent is a single-gate recurrent cell.
//
// The new hidden state is tanh(input·Wiᵀ + bi + prior·Whᵀ + bh). There is
// no separate cell memory and no input, forget or output gate: the hidden
// state is the only output of the cell.
type Recurrent struct {
	// InputWeights Wi, shape [H, I].
	InputWeights tensor.View
	// StateWeights Wh, shape [H, H].
	StateWeights tensor.View
	// InputBias bi, shape [H].
	InputBias tensor.View
	// StateBias bh, shape [H].
	StateBias tensor.View
}

// InputSize returns the number of input features I.
func (r Recurrent) InputSize() int { return r.InputWeights.Dim(1) }

// HiddenSize returns the size of the hidden state H.
func (r Recurrent) HiddenSize() int { return r.InputWeights.Dim(0) }

// Validate returns an error if the weight shapes are not consistent
// with each other.
func (r Recurrent) Validate() error {
	if r.InputWeights.Rank() != 2 {
		return fmt.Errorf("recurrent input weights must have rank 2, actual shape %v", r.InputWeights.Shape())
	}
	h := r.InputWeights.Dim(0)
	if s := r.StateWeights.Shape(); !s.Equal(tensor.Shape{h, h}) {
		return fmt.Errorf("recurrent state weights: expected shape [%d %d], actual %v", h, h, s)
	}
	if s := r.InputBias.Shape(); !s.Equal(tensor.Shape{h}) {
		return fmt.Errorf("recurrent input bias: expected shape [%d], actual %v", h, s)
	}
	if s := r.StateBias.Shape(); !s.Equal(tensor.Shape{h}) {
		return fmt.Errorf("recurrent state bias: expected shape [%d], actual %v", h, s)
	}
	return nil
}

// Step computes the new hidden state from input [B, I] and prior [B, H],
// writing it to next [B, H].
//
// Step is a pure function of its arguments. next must not alias input or
// prior; keeping the state across calls is up to the caller.
func (r Recurrent) Step(next, input, prior tensor.View) {
	Linear(next, input, r.InputWeights, r.InputBias)
	LinearAccumulate(next, prior, r.StateWeights, r.StateBias)
	for i, n := 0, next.Dim(0); i < n; i++ {
		activation.Tanh(next.Row(i))
	}
}
