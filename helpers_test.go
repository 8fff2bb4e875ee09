// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package policynet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nlpodyssey/policynet/activation"
	"github.com/nlpodyssey/policynet/weights"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// smallArch is a reduced architecture exercising every feature of the
// forward pass: strided convolution, aux scalars, non-identity activations.
func smallArch() Architecture {
	return Architecture{
		ObsChannels:      2,
		ObsHeight:        5,
		ObsWidth:         7,
		AuxFeatures:      3,
		ConvChannels:     4,
		KernelSize:       3,
		Stride:           2,
		HiddenSize:       6,
		ActionDim:        5,
		ConvActivation:   activation.KindReLU,
		OutputActivation: activation.KindTanh,
	}
}

func randomFloats(rng *rand.Rand, n int, scale float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = (rng.Float32()*2 - 1) * scale
	}
	return out
}

func newStore(t testing.TB, arch Architecture, data []float32) *weights.Store {
	t.Helper()
	store, err := weights.NewStore(data, arch.Layout())
	require.NoError(t, err)
	return store
}

func randomStore(t testing.TB, rng *rand.Rand, arch Architecture) *weights.Store {
	t.Helper()
	return newStore(t, arch, randomFloats(rng, arch.Layout().Size(), 0.5))
}

func newEngine(t testing.TB, arch Architecture, store *weights.Store, batch int, opts ...Option) *Engine {
	t.Helper()
	e, err := New(arch, store, batch, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

// reference is a float64 re-implementation of the forward pass.
type reference struct {
	arch  Architecture
	store *weights.Store
	state *mat.Dense
}

func newReference(arch Architecture, store *weights.Store, batch int) *reference {
	return &reference{
		arch:  arch,
		store: store,
		state: mat.NewDense(batch, arch.HiddenSize, nil),
	}
}

func (r *reference) matrix(name string) *mat.Dense {
	v := r.store.MustView(name)
	m := mat.NewDense(v.Dim(0), v.Dim(1), nil)
	for i := 0; i < v.Dim(0); i++ {
		for j := 0; j < v.Dim(1); j++ {
			m.Set(i, j, float64(v.At(i, j)))
		}
	}
	return m
}

func (r *reference) addBias(m *mat.Dense, name string) {
	b := r.store.MustView(name)
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, m.At(i, j)+float64(b.At(j)))
		}
	}
}

func apply(k activation.Kind, v float64) float64 {
	switch k {
	case activation.KindReLU:
		return math.Max(0, v)
	case activation.KindTanh:
		return math.Tanh(v)
	case activation.KindSigmoid:
		return 1 / (1 + math.Exp(-v))
	default:
		return v
	}
}

func (r *reference) forward(obs []float32) *mat.Dense {
	a := r.arch
	batch, _ := r.state.Dims()
	oh, ow := a.ConvOutput()
	obsSize, mapSize, convSize := a.ObservationSize(), a.MapSize(), a.ConvSize()
	cw := r.store.MustView(ParamConvWeight)
	cb := r.store.MustView(ParamConvBias)

	features := mat.NewDense(batch, a.FeatureSize(), nil)
	for n := 0; n < batch; n++ {
		in := obs[n*obsSize : (n+1)*obsSize]
		for oc := 0; oc < a.ConvChannels; oc++ {
			for h := 0; h < oh; h++ {
				for w := 0; w < ow; w++ {
					acc := float64(cb.At(oc))
					for ic := 0; ic < a.ObsChannels; ic++ {
						for kh := 0; kh < a.KernelSize; kh++ {
							for kw := 0; kw < a.KernelSize; kw++ {
								y, x := h*a.Stride+kh, w*a.Stride+kw
								px := in[ic*a.ObsHeight*a.ObsWidth+y*a.ObsWidth+x]
								acc += float64(px) * float64(cw.At(oc, ic, kh, kw))
							}
						}
					}
					features.Set(n, oc*oh*ow+h*ow+w, apply(a.ConvActivation, acc))
				}
			}
		}
		for i := 0; i < a.AuxFeatures; i++ {
			features.Set(n, convSize+i, float64(in[mapSize+i]))
		}
	}

	var next, hh mat.Dense
	next.Mul(features, r.matrix(ParamInputWeights).T())
	r.addBias(&next, ParamInputBias)
	hh.Mul(r.state, r.matrix(ParamStateWeights).T())
	r.addBias(&hh, ParamStateBias)
	next.Add(&next, &hh)
	next.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, &next)
	r.state = &next

	var out mat.Dense
	out.Mul(r.state, r.matrix(ParamHeadWeight).T())
	r.addBias(&out, ParamHeadBias)
	out.Apply(func(_, _ int, v float64) float64 { return apply(a.OutputActivation, v) }, &out)
	return &out
}
