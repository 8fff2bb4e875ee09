// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShape_Size(t *testing.T) {
	testCases := []struct {
		shape Shape
		want  int
	}{
		{nil, 1},
		{Shape{}, 1},
		{Shape{0}, 0},
		{Shape{3}, 3},
		{Shape{2, 3}, 6},
		{Shape{16, 32, 3, 3}, 4608},
		{Shape{4, 0, 2}, 0},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.shape.Size(), tc.shape)
	}
}

func TestShape_Validate(t *testing.T) {
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.NoError(t, Shape(nil).Validate())
	assert.EqualError(t, Shape{2, -1}.Validate(), "shape contains negative value -1")
	assert.Error(t, Shape{math.MaxInt, 2}.Validate())
	assert.Error(t, Shape{math.MaxInt / 2, math.MaxInt / 2}.Validate())
}

func TestShape_Strides(t *testing.T) {
	assert.Nil(t, Shape(nil).Strides())
	assert.Equal(t, []int{1}, Shape{5}.Strides())
	assert.Equal(t, []int{3, 1}, Shape{2, 3}.Strides())
	assert.Equal(t, []int{288, 9, 3, 1}, Shape{16, 32, 3, 3}.Strides())
	assert.Equal(t, []int{475, 25, 5, 1}, Shape{32, 19, 5, 5}.Strides())
}

func TestShape_Equal(t *testing.T) {
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.True(t, Shape(nil).Equal(Shape{}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
	assert.False(t, Shape{2, 3}.Equal(Shape{2, 3, 1}))
}

func TestShape_Clone(t *testing.T) {
	assert.Nil(t, Shape{}.Clone())
	s := Shape{1, 2}
	c := s.Clone()
	c[0] = 9
	assert.Equal(t, Shape{1, 2}, s)
}

func TestShape_String(t *testing.T) {
	assert.Equal(t, "[2 3]", Shape{2, 3}.String())
	assert.Equal(t, "[]", Shape(nil).String())
}
