// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package policynet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiDiscrete_Validate(t *testing.T) {
	assert.NoError(t, MOBAActions.Validate(MOBA().ActionDim))
	assert.Equal(t, 23, MOBAActions.Size())

	assert.Error(t, MOBAActions.Validate(22))
	assert.Error(t, MultiDiscrete{3, 0, 2}.Validate(5))
}

func TestMultiDiscrete_Decode(t *testing.T) {
	nan := float32(math.NaN())
	m := MultiDiscrete{3, 2, 4}

	testCases := []struct {
		name     string
		logits   []float32
		expected []int
	}{
		{"argmax", []float32{0.1, 0.9, 0.3, -1, -2, 0, 0, 5, 1}, []int{1, 0, 2}},
		{"ties pick first", []float32{1, 1, 1, 2, 2, 3, 3, 3, 3}, []int{0, 0, 0}},
		{"NaN skipped", []float32{nan, 0, 1, 1, nan, nan, nan, nan, -1}, []int{2, 0, 3}},
		{"all NaN", []float32{nan, nan, nan, 1, 2, 0, 0, 0, 0}, []int{0, 1, 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dst := make([]int, len(m))
			m.Decode(dst, tc.logits)
			assert.Equal(t, tc.expected, dst)
		})
	}

	assert.Panics(t, func() { m.Decode(make([]int, 3), make([]float32, 8)) })
	assert.Panics(t, func() { m.Decode(make([]int, 2), make([]float32, 9)) })
}
