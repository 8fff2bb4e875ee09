// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package policynet

import (
	"fmt"

	"github.com/nlpodyssey/policynet/nn"
	"github.com/nlpodyssey/policynet/parallel"
	"github.com/nlpodyssey/policynet/tensor"
	"github.com/nlpodyssey/policynet/weights"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers sets the number of goroutines the batch is partitioned
// across. Zero or one runs every forward pass on the calling goroutine,
// which is the default; parallel.DefaultWorkers derives a width from the
// number of physical cores.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Engine runs the forward pass of a policy network over a fixed-size batch
// of agents, carrying the recurrent state of every agent from one tick to
// the next.
//
// All the memory needed by the forward pass is allocated by New. An Engine
// is not safe for concurrent use.
type Engine struct {
	arch  Architecture
	batch int

	convWeight tensor.View
	convBias   tensor.View
	recurrent  nn.Recurrent
	headWeight tensor.View
	headBias   tensor.View

	features []float32
	actions  []float32
	// state holds two [batch, hidden] buffers: the current state, selected
	// by cur, and the one the next state is written to.
	state [2][]float32
	cur   int

	stateViews [2]tensor.View
	actionView tensor.View

	shards []shard
	byLo   []int
	group  *parallel.Group
	obs    []float32
}

// shard holds the views of a contiguous range of batch rows, processed
// by a single worker.
type shard struct {
	lo, hi   int
	obs      tensor.View
	conv     tensor.View
	features tensor.View
	state    [2]tensor.View
	actions  tensor.View
}

// New creates an Engine for batchSize agents running the network
// described by arch with the weights of store.
//
// The layout of the store must match arch.Layout() exactly, otherwise the
// returned error wraps weights.ErrLayoutMismatch. The store is referenced,
// not copied, and must not be modified while the Engine is in use.
func New(arch Architecture, store *weights.Store, batchSize int, opts ...Option) (*Engine, error) {
	if err := arch.Validate(); err != nil {
		return nil, fmt.Errorf("invalid architecture: %w", err)
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("invalid batch size %d", batchSize)
	}
	if err := arch.Layout().Match(store.Layout()); err != nil {
		return nil, fmt.Errorf("weights do not fit the architecture: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 0 {
		return nil, fmt.Errorf("invalid number of workers %d", o.workers)
	}
	if o.workers == 0 {
		o.workers = 1
	}

	e := &Engine{
		arch:       arch,
		batch:      batchSize,
		convWeight: store.MustView(ParamConvWeight),
		convBias:   store.MustView(ParamConvBias),
		recurrent: nn.Recurrent{
			InputWeights: store.MustView(ParamInputWeights),
			StateWeights: store.MustView(ParamStateWeights),
			InputBias:    store.MustView(ParamInputBias),
			StateBias:    store.MustView(ParamStateBias),
		},
		headWeight: store.MustView(ParamHeadWeight),
		headBias:   store.MustView(ParamHeadBias),
		features:   make([]float32, batchSize*arch.FeatureSize()),
		actions:    make([]float32, batchSize*arch.ActionDim),
		byLo:       make([]int, batchSize),
	}
	if err := e.recurrent.Validate(); err != nil {
		return nil, err
	}
	for i := range e.state {
		e.state[i] = make([]float32, batchSize*arch.HiddenSize)
		e.stateViews[i] = tensor.Must(tensor.New(e.state[i], batchSize, arch.HiddenSize))
	}
	e.actionView = tensor.Must(tensor.New(e.actions, batchSize, arch.ActionDim))

	for _, r := range parallel.Partition(batchSize, o.workers) {
		e.byLo[r[0]] = len(e.shards)
		e.shards = append(e.shards, e.newShard(r[0], r[1]))
	}
	e.group = parallel.NewGroup(batchSize, o.workers, e.forwardShard)
	return e, nil
}

func (e *Engine) newShard(lo, hi int) shard {
	a := e.arch
	n := hi - lo
	oh, ow := a.ConvOutput()
	obsSize, featSize := a.ObservationSize(), a.FeatureSize()
	h := a.HiddenSize

	// The observation template is only used for its shape and strides:
	// it is rebound to the caller's buffer on every forward pass.
	obs := tensor.Must(tensor.Strided(
		make([]float32, n*obsSize),
		tensor.Shape{n, a.ObsChannels, a.ObsHeight, a.ObsWidth},
		[]int{obsSize, a.ObsHeight * a.ObsWidth, a.ObsWidth, 1},
	))
	features := e.features[lo*featSize : hi*featSize]
	s := shard{
		lo:  lo,
		hi:  hi,
		obs: obs,
		conv: tensor.Must(tensor.Strided(
			features,
			tensor.Shape{n, a.ConvChannels, oh, ow},
			[]int{featSize, oh * ow, ow, 1},
		)),
		features: tensor.Must(tensor.New(features, n, featSize)),
		actions:  tensor.Must(tensor.New(e.actions[lo*a.ActionDim:hi*a.ActionDim], n, a.ActionDim)),
	}
	for i := range s.state {
		s.state[i] = tensor.Must(tensor.New(e.state[i][lo*h:hi*h], n, h))
	}
	return s
}

// Architecture returns the architecture run by the engine.
func (e *Engine) Architecture() Architecture {
	return e.arch
}

// BatchSize returns the number of agents.
func (e *Engine) BatchSize() int {
	return e.batch
}

// Workers returns the number of goroutines the batch is partitioned across.
func (e *Engine) Workers() int {
	return e.group.Workers()
}

// Forward runs one inference step.
//
// obs holds the packed observations of every agent, one after the other:
// for each agent, the observation map [ObsChannels, ObsHeight, ObsWidth]
// followed by AuxFeatures scalars. Its length must be exactly
// BatchSize() * ObservationSize(), otherwise Forward panics.
//
// The recurrent state is updated and the returned [BatchSize, ActionDim]
// view holds the actions. It is overwritten by the next call to Forward.
func (e *Engine) Forward(obs []float32) tensor.View {
	if want := e.batch * e.arch.ObservationSize(); len(obs) != want {
		panic(fmt.Sprintf("policynet: observation length %d, expected %d", len(obs), want))
	}
	e.obs = obs
	e.group.Run()
	e.obs = nil
	e.cur = 1 - e.cur
	return e.actionView
}

func (e *Engine) forwardShard(lo, hi int) {
	s := &e.shards[e.byLo[lo]]
	a := e.arch
	obsSize, featSize := a.ObservationSize(), a.FeatureSize()
	mapSize, convSize := a.MapSize(), a.ConvSize()

	nn.Conv2D(s.conv, s.obs.Rebind(e.obs[lo*obsSize:hi*obsSize]), e.convWeight, e.convBias, a.Stride)
	for b := lo; b < hi; b++ {
		in := e.obs[b*obsSize : (b+1)*obsSize]
		feat := e.features[b*featSize : (b+1)*featSize]
		copy(feat[convSize:], in[mapSize:])
		a.ConvActivation.Apply(feat[:convSize])
	}

	prior, next := s.state[e.cur], s.state[1-e.cur]
	e.recurrent.Step(next, s.features, prior)

	nn.Linear(s.actions, next, e.headWeight, e.headBias)
	a.OutputActivation.Apply(e.actions[lo*a.ActionDim : hi*a.ActionDim])
}

// State returns a [BatchSize, HiddenSize] view of the current recurrent
// state. It is overwritten by the next call to Forward.
func (e *Engine) State() tensor.View {
	return e.stateViews[e.cur]
}

// ResetState zeroes the recurrent state of every agent.
func (e *Engine) ResetState() {
	for _, s := range e.state {
		zero(s)
	}
}

// ResetAgent zeroes the recurrent state of agent b, which typically starts
// a new episode.
func (e *Engine) ResetAgent(b int) {
	if b < 0 || b >= e.batch {
		panic(fmt.Sprintf("policynet: agent %d out of range [0,%d)", b, e.batch))
	}
	h := e.arch.HiddenSize
	zero(e.state[e.cur][b*h : (b+1)*h])
}

func zero(x []float32) {
	for i := range x {
		x[i] = 0
	}
}

// Close stops the workers of the engine. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	e.group.Close()
}
