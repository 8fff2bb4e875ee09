// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

import (
	"fmt"
	"math"
	"math/bits"
)

// The Shape of a tensor: the size of each dimension, outermost first.
//
// An empty or nil Shape describes a scalar.
type Shape []int

// Size returns the number of elements described by the shape.
// An empty shape counts as 1 scalar value.
//
// Size does not check for negative values or overflow; see Validate.
func (s Shape) Size() int {
	n := 1
	for _, v := range s {
		n *= v
	}
	return n
}

// Validate returns an error if the shape contains negative values, or if
// its size does not fit within the int type.
func (s Shape) Validate() error {
	_, err := checkedSize(s)
	return err
}

// Strides returns the row-major ("C") contiguous strides of the shape,
// in elements.
func (s Shape) Strides() []int {
	if len(s) == 0 {
		return nil
	}
	strides := make([]int, len(s))
	acc := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= s[i]
	}
	return strides
}

// Equal reports whether s and o have the same dimensions.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i, v := range s {
		if o[i] != v {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape, or nil if the shape is zero-length.
func (s Shape) Clone() Shape {
	if len(s) == 0 {
		return nil
	}
	c := make(Shape, len(s))
	copy(c, s)
	return c
}

func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}

func checkedSize(s Shape) (int, error) {
	size := uint(1)
	for _, v := range s {
		if v < 0 {
			return 0, fmt.Errorf("shape contains negative value %d", v)
		}
		var hi uint
		if hi, size = bits.Mul(size, uint(v)); hi != 0 {
			return 0, fmt.Errorf("int overflow computing tensor size from shape %v", s)
		}
	}
	if size > math.MaxInt {
		return 0, fmt.Errorf("tensor size computed from shape %v is too large for int type", s)
	}
	return int(size), nil
}
