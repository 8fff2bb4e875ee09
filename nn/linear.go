// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nn

import "github.com/nlpodyssey/policynet/tensor"

// Linear computes the affine transform out = in·wᵀ + b, overwriting out.
//
// Shapes: in [B, I], w [O, I], b [O], out [B, O]. The weight matrix is
// output-major: row o of w is multiplied against every input row. Input and
// output rows may be farther apart than their size (see tensor.Strided);
// weights and bias must be contiguous.
//
// For each output unit the dot product is accumulated from zero over the
// input features in ascending order, then the bias is added.
func Linear(out, in, w, b tensor.View) {
	if tensor.Checks {
		checkLinear("Linear", out, in, w, b)
	}
	linear(out, in, w, b, false)
}

// LinearAccumulate is like Linear, but adds the result to the existing
// content of out: out += in·wᵀ + b.
//
// It merges a second projection into a buffer already holding a first
// one, before any nonlinearity is applied.
func LinearAccumulate(out, in, w, b tensor.View) {
	if tensor.Checks {
		checkLinear("LinearAccumulate", out, in, w, b)
	}
	linear(out, in, w, b, true)
}

func linear(out, in, w, b tensor.View, accumulate bool) {
	batch, inDim := in.Dim(0), in.Dim(1)
	outDim := w.Dim(0)
	x, wd, bd, y := in.Data(), w.Data(), b.Data(), out.Data()
	xs, ys := in.Stride(0), out.Stride(0)

	for n := 0; n < batch; n++ {
		row := x[n*xs : n*xs+inDim]
		dst := y[n*ys : n*ys+outDim]
		for o := range dst {
			weights := wd[o*inDim : o*inDim+inDim]
			var sum float32
			for i, v := range row {
				sum += float32(v * weights[i])
			}
			if accumulate {
				dst[o] += sum + bd[o]
			} else {
				dst[o] = sum + bd[o]
			}
		}
	}
}
