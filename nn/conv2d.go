// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nn

import "github.com/nlpodyssey/policynet/tensor"

// ConvOutputSize returns the output size of an unpadded convolution
// along one spatial dimension: (in - kernel) / stride + 1.
//
// The division is an integer division and any remainder is truncated:
// in, kernel and stride are expected to be chosen so that it is exact.
func ConvOutputSize(in, kernel, stride int) int {
	return (in-kernel)/stride + 1
}

// Conv2D computes a batched, multi-channel, strided 2-D convolution
// without padding.
//
// Shapes: in [B, Cin, Hin, Win], w [Cout, Cin, K, K], b [Cout],
// out [B, Cout, Hout, Wout], with Hout and Wout as given by ConvOutputSize.
// Input and output batch rows may be farther apart than their size, which
// allows reading packed observations and writing into a wider feature row
// without copies; weights and bias must be contiguous.
//
// For every batch row, output channel and output position (in this nesting
// order) the accumulator starts from the channel bias, then adds the
// products of input and kernel over input channels, kernel rows and
// kernel columns, nested in that order.
func Conv2D(out, in, w, b tensor.View, stride int) {
	if tensor.Checks {
		checkConv2D(out, in, w, b, stride)
	}

	batch, inC, inH, inW := in.Dim(0), in.Dim(1), in.Dim(2), in.Dim(3)
	outC, k := w.Dim(0), w.Dim(2)
	outH, outW := out.Dim(2), out.Dim(3)
	x, wd, bd, y := in.Data(), w.Data(), b.Data(), out.Data()
	xs, ys := in.Stride(0), out.Stride(0)

	inPlane := inH * inW
	outPlane := outH * outW
	kk := k * k

	for n := 0; n < batch; n++ {
		src := x[n*xs : n*xs+inC*inPlane]
		dst := y[n*ys : n*ys+outC*outPlane]
		for oc := 0; oc < outC; oc++ {
			kernel := wd[oc*inC*kk : (oc+1)*inC*kk]
			for h := 0; h < outH; h++ {
				for c := 0; c < outW; c++ {
					acc := bd[oc]
					for ic := 0; ic < inC; ic++ {
						for kh := 0; kh < k; kh++ {
							px := src[ic*inPlane+(h*stride+kh)*inW+c*stride:]
							row := kernel[ic*kk+kh*k : ic*kk+kh*k+k]
							for kw, wv := range row {
								acc += float32(px[kw] * wv)
							}
						}
					}
					dst[oc*outPlane+h*outW+c] = acc
				}
			}
		}
	}
}
