// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package activation provides elementwise activation functions, applied
// in place over float32 buffers.
//
// The functions have no error conditions and perform no sanitization:
// NaN and infinite values are propagated as the underlying float32 math
// dictates.
package activation

import (
	"math"

	"github.com/chewxy/math32"
)

var (
	// sigmoidMax and sigmoidMin are the float32 values closest to 1 and 0
	// within the open interval (0, 1).
	sigmoidMax = math.Nextafter32(1, 0)
	sigmoidMin = float32(math.SmallestNonzeroFloat32)
)

// ReLU applies the rectified-linear function max(0, x) to every element.
// As with C fmaxf, NaN values become 0.
func ReLU(x []float32) {
	for i, v := range x {
		if !(v > 0) {
			x[i] = 0
		}
	}
}

// Tanh applies the hyperbolic tangent to every element.
func Tanh(x []float32) {
	for i, v := range x {
		x[i] = math32.Tanh(v)
	}
}

// Sigmoid applies the logistic function 1 / (1 + exp(-x)) to every element.
//
// For finite input the result always lies within the open interval (0, 1):
// where float32 rounding would saturate to exactly 0 or 1, the nearest
// representable value inside the interval is stored instead.
func Sigmoid(x []float32) {
	for i, v := range x {
		var y float32
		if v < 0 {
			// math32.Exp overflows to 0 for huge arguments, so exp(-v) is
			// never computed for negative v.
			e := math32.Exp(v)
			y = e / (1 + e)
		} else {
			y = 1 / (1 + math32.Exp(-v))
		}
		switch {
		case y >= 1:
			y = sigmoidMax
		case y <= 0:
			y = sigmoidMin
		}
		x[i] = y
	}
}
