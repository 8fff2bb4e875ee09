// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"

	"github.com/nlpodyssey/policynet/tensor"
)

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("nn: " + fmt.Sprintf(format, args...))
	}
}

// assertRows checks that v has the given rank and that everything but the
// leading dimension is contiguous.
func assertRows(op, name string, v tensor.View, rank int) {
	assertf(v.Rank() == rank, "%s: %s must have rank %d, actual shape %v", op, name, rank, v.Shape())
	acc := 1
	for i := rank - 1; i >= 1; i-- {
		assertf(v.Dim(i) == 1 || v.Stride(i) == acc, "%s: %s inner dimensions must be contiguous, strides %v", op, name, v.Strides())
		acc *= v.Dim(i)
	}
	if v.Dim(0) > 1 {
		assertf(v.Stride(0) >= acc, "%s: %s rows overlap, strides %v", op, name, v.Strides())
	}
}

func assertContiguous(op, name string, v tensor.View, rank int) {
	assertf(v.Rank() == rank, "%s: %s must have rank %d, actual shape %v", op, name, rank, v.Shape())
	assertf(v.IsContiguous(), "%s: %s must be contiguous, strides %v", op, name, v.Strides())
}

func checkLinear(op string, out, in, w, b tensor.View) {
	assertRows(op, "input", in, 2)
	assertRows(op, "output", out, 2)
	assertContiguous(op, "weights", w, 2)
	assertContiguous(op, "bias", b, 1)
	assertf(in.Dim(0) == out.Dim(0), "%s: batch size mismatch: input %v, output %v", op, in.Shape(), out.Shape())
	assertf(w.Dim(1) == in.Dim(1), "%s: weights %v do not match input %v", op, w.Shape(), in.Shape())
	assertf(w.Dim(0) == out.Dim(1), "%s: weights %v do not match output %v", op, w.Shape(), out.Shape())
	assertf(b.Dim(0) == w.Dim(0), "%s: bias %v does not match weights %v", op, b.Shape(), w.Shape())
}

func checkConv2D(out, in, w, b tensor.View, stride int) {
	const op = "Conv2D"
	assertRows(op, "input", in, 4)
	assertRows(op, "output", out, 4)
	assertContiguous(op, "weights", w, 4)
	assertContiguous(op, "bias", b, 1)
	assertf(stride > 0, "%s: invalid stride %d", op, stride)
	assertf(w.Dim(2) == w.Dim(3), "%s: kernel must be square, weights %v", op, w.Shape())
	assertf(in.Dim(0) == out.Dim(0), "%s: batch size mismatch: input %v, output %v", op, in.Shape(), out.Shape())
	assertf(w.Dim(1) == in.Dim(1), "%s: weights %v do not match input channels %v", op, w.Shape(), in.Shape())
	assertf(w.Dim(0) == out.Dim(1), "%s: weights %v do not match output channels %v", op, w.Shape(), out.Shape())
	assertf(b.Dim(0) == w.Dim(0), "%s: bias %v does not match weights %v", op, b.Shape(), w.Shape())
	k := w.Dim(2)
	assertf(in.Dim(2) >= k && in.Dim(3) >= k, "%s: kernel %d larger than input %v", op, k, in.Shape())
	assertf(out.Dim(2) == ConvOutputSize(in.Dim(2), k, stride) && out.Dim(3) == ConvOutputSize(in.Dim(3), k, stride),
		"%s: output %v does not match input %v, kernel %d, stride %d", op, out.Shape(), in.Shape(), k, stride)
}
