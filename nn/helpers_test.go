// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/nlpodyssey/policynet/tensor"
	"gonum.org/v1/gonum/mat"
)

func view(data []float32, shape ...int) tensor.View {
	return tensor.Must(tensor.New(data, shape...))
}

func zeros(shape ...int) tensor.View {
	return view(make([]float32, tensor.Shape(shape).Size()), shape...)
}

func randomView(rng *rand.Rand, shape ...int) tensor.View {
	data := make([]float32, tensor.Shape(shape).Size())
	for i := range data {
		data[i] = rng.Float32()*2 - 1
	}
	return view(data, shape...)
}

// toDense copies a rank-2 view into a float64 gonum matrix.
func toDense(v tensor.View) *mat.Dense {
	r, c := v.Dim(0), v.Dim(1)
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, float64(v.At(i, j)))
		}
	}
	return m
}

// referenceLinear computes in·wᵀ + b in float64 with gonum.
func referenceLinear(in, w, b tensor.View) *mat.Dense {
	var y mat.Dense
	y.Mul(toDense(in), toDense(w).T())
	rows, cols := y.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			y.Set(i, j, y.At(i, j)+float64(b.At(j)))
		}
	}
	return &y
}
