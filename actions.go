// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package policynet

import "fmt"

// MultiDiscrete describes an action space made of independent discrete
// choices. Each value is the number of options of one choice; the logits
// of all choices are concatenated in an action row.
type MultiDiscrete []int

// MOBAActions is the action space of the MOBA policy: two 7-way movement
// choices followed by one 3-way and three binary choices.
var MOBAActions = MultiDiscrete{7, 7, 3, 2, 2, 2}

// Size returns the number of logits of an action row.
func (m MultiDiscrete) Size() int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// Validate returns an error if some choice has no options, or if the
// action space does not fit an action row of actionDim logits.
func (m MultiDiscrete) Validate(actionDim int) error {
	for i, v := range m {
		if v < 1 {
			return fmt.Errorf("choice %d has %d options", i, v)
		}
	}
	if n := m.Size(); n != actionDim {
		return fmt.Errorf("action space has %d logits, expected %d", n, actionDim)
	}
	return nil
}

// Decode selects the option with the largest logit for every choice,
// writing the index of the option within the choice to dst. On ties the
// first option wins; NaN logits are never selected unless every logit of
// the choice is NaN.
//
// logits must hold exactly Size() values and dst len(m) values.
func (m MultiDiscrete) Decode(dst []int, logits []float32) {
	if len(logits) != m.Size() || len(dst) != len(m) {
		panic(fmt.Sprintf("policynet: decoding %d logits into %d choices, expected %d and %d", len(logits), len(dst), m.Size(), len(m)))
	}
	offset := 0
	for i, n := range m {
		seg := logits[offset : offset+n]
		best := 0
		for j := 1; j < n; j++ {
			if seg[j] > seg[best] || (seg[best] != seg[best] && seg[j] == seg[j]) {
				best = j
			}
		}
		dst[i] = best
		offset += n
	}
}
