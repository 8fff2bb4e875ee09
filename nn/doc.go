// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nn implements the numeric primitives of the forward pass: dense
// (linear) layers, 2-D convolution and a single-gate recurrent cell.
//
// Primitives operate on tensor.View values over pre-allocated buffers and
// never allocate. Every batch row is processed independently and
// identically. Shapes are preconditions of the caller: they are asserted
// only when built with the policynet_debug tag (see tensor.Checks), and
// violating them is otherwise undefined behavior.
//
// Accumulation order is fixed and each product is explicitly rounded to
// float32 before being added, so that multiply-add fusion never changes
// the result: outputs are bit-reproducible across architectures.
package nn
