// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package policynet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nlpodyssey/policynet/activation"
	"github.com/nlpodyssey/policynet/nn"
	"github.com/nlpodyssey/policynet/tensor"
	"github.com/nlpodyssey/policynet/weights"
)

// Names of the parameter tensors, in the order they appear within a raw
// weight blob.
const (
	ParamConvWeight   = "conv.weight"
	ParamConvBias     = "conv.bias"
	ParamInputWeights = "recurrent.weight_input"
	ParamStateWeights = "recurrent.weight_state"
	ParamInputBias    = "recurrent.bias_input"
	ParamStateBias    = "recurrent.bias_state"
	ParamHeadWeight   = "head.weight"
	ParamHeadBias     = "head.bias"
)

// Architecture describes the topology of a policy network: a single
// convolution over an observation map, a recurrent cell over the
// flattened convolution output concatenated with auxiliary scalars, and a
// dense action head.
type Architecture struct {
	// ObsChannels, ObsHeight and ObsWidth are the dimensions of the
	// observation map of a single agent.
	ObsChannels int `json:"obs_channels"`
	ObsHeight   int `json:"obs_height"`
	ObsWidth    int `json:"obs_width"`
	// AuxFeatures is the number of scalars following the observation map
	// of each agent. They bypass the convolution.
	AuxFeatures int `json:"aux_features"`

	ConvChannels int `json:"conv_channels"`
	KernelSize   int `json:"kernel_size"`
	Stride       int `json:"stride"`
	HiddenSize   int `json:"hidden_size"`
	ActionDim    int `json:"action_dim"`

	ConvActivation   activation.Kind `json:"conv_activation"`
	OutputActivation activation.Kind `json:"output_activation"`
}

// MOBA returns the architecture of the MOBA policy: a 19-channel 11x11
// local map plus 26 scalars per agent, 32 convolution channels with a 5x5
// kernel and stride 3, 128 hidden units and 23 action logits.
func MOBA() Architecture {
	return Architecture{
		ObsChannels:      19,
		ObsHeight:        11,
		ObsWidth:         11,
		AuxFeatures:      26,
		ConvChannels:     32,
		KernelSize:       5,
		Stride:           3,
		HiddenSize:       128,
		ActionDim:        23,
		ConvActivation:   activation.KindIdentity,
		OutputActivation: activation.KindIdentity,
	}
}

// LoadArchitecture reads an Architecture from a JSON file.
// Unknown fields are rejected.
func LoadArchitecture(path string) (Architecture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Architecture{}, err
	}
	defer f.Close()

	var a Architecture
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err = dec.Decode(&a); err != nil {
		return Architecture{}, fmt.Errorf("failed to decode architecture %q: %w", path, err)
	}
	if err = a.Validate(); err != nil {
		return Architecture{}, fmt.Errorf("invalid architecture %q: %w", path, err)
	}
	return a, nil
}

// Validate returns an error if the Architecture is not valid, otherwise nil.
func (a Architecture) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"obs_channels", a.ObsChannels},
		{"obs_height", a.ObsHeight},
		{"obs_width", a.ObsWidth},
		{"conv_channels", a.ConvChannels},
		{"kernel_size", a.KernelSize},
		{"stride", a.Stride},
		{"hidden_size", a.HiddenSize},
		{"action_dim", a.ActionDim},
	}
	for _, p := range positive {
		if p.value < 1 {
			return fmt.Errorf("%s must be positive, actual %d", p.name, p.value)
		}
	}
	if a.AuxFeatures < 0 {
		return fmt.Errorf("aux_features must not be negative, actual %d", a.AuxFeatures)
	}
	if a.KernelSize > a.ObsHeight || a.KernelSize > a.ObsWidth {
		return fmt.Errorf("kernel size %d exceeds observation map %dx%d", a.KernelSize, a.ObsHeight, a.ObsWidth)
	}
	if (a.ObsHeight-a.KernelSize)%a.Stride != 0 || (a.ObsWidth-a.KernelSize)%a.Stride != 0 {
		return fmt.Errorf("stride %d does not tile observation map %dx%d with kernel size %d", a.Stride, a.ObsHeight, a.ObsWidth, a.KernelSize)
	}
	if err := a.ConvActivation.Validate(); err != nil {
		return fmt.Errorf("conv_activation: %w", err)
	}
	if err := a.OutputActivation.Validate(); err != nil {
		return fmt.Errorf("output_activation: %w", err)
	}
	if err := a.Layout().Validate(); err != nil {
		return err
	}
	return nil
}

// ConvOutput returns the spatial size of the convolution output.
func (a Architecture) ConvOutput() (h, w int) {
	return nn.ConvOutputSize(a.ObsHeight, a.KernelSize, a.Stride),
		nn.ConvOutputSize(a.ObsWidth, a.KernelSize, a.Stride)
}

// MapSize returns the number of values of the observation map of a single
// agent.
func (a Architecture) MapSize() int {
	return a.ObsChannels * a.ObsHeight * a.ObsWidth
}

// ObservationSize returns the number of values observed by a single agent
// per tick: the observation map followed by the auxiliary scalars.
func (a Architecture) ObservationSize() int {
	return a.MapSize() + a.AuxFeatures
}

// ConvSize returns the number of values produced by the convolution for a
// single agent.
func (a Architecture) ConvSize() int {
	h, w := a.ConvOutput()
	return a.ConvChannels * h * w
}

// FeatureSize returns the input size of the recurrent cell: the flattened
// convolution output followed by the auxiliary scalars.
func (a Architecture) FeatureSize() int {
	return a.ConvSize() + a.AuxFeatures
}

// Layout returns the weight layout of the network.
func (a Architecture) Layout() weights.Layout {
	k, h := a.KernelSize, a.HiddenSize
	return weights.Layout{
		{Name: ParamConvWeight, Shape: tensor.Shape{a.ConvChannels, a.ObsChannels, k, k}},
		{Name: ParamConvBias, Shape: tensor.Shape{a.ConvChannels}},
		{Name: ParamInputWeights, Shape: tensor.Shape{h, a.FeatureSize()}},
		{Name: ParamStateWeights, Shape: tensor.Shape{h, h}},
		{Name: ParamInputBias, Shape: tensor.Shape{h}},
		{Name: ParamStateBias, Shape: tensor.Shape{h}},
		{Name: ParamHeadWeight, Shape: tensor.Shape{a.ActionDim, h}},
		{Name: ParamHeadBias, Shape: tensor.Shape{a.ActionDim}},
	}
}

// LoadWeights reads a raw weight blob laid out for this architecture.
func (a Architecture) LoadWeights(path string) (*weights.Store, error) {
	return weights.Load(path, a.Layout())
}
