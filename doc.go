// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package policynet replays the forward pass of a pre-trained policy
// network for autonomous agents, on the CPU, in float32.
//
// The network is a strided convolution over a per-agent observation map,
// whose flattened output is concatenated with auxiliary scalars and fed to
// a single-gate recurrent cell; a dense head maps the recurrent state to
// action logits. Its topology is described by an Architecture, and its
// parameters are loaded from a raw weight blob with the weights package.
//
// An Engine owns every buffer of the forward pass, including the
// recurrent state of each agent of the batch, so that steady-state
// inference does not allocate:
//
//	arch := policynet.MOBA()
//	store, err := arch.LoadWeights("moba_weights.bin")
//	if err != nil {
//		return err
//	}
//	engine, err := policynet.New(arch, store, 16)
//	if err != nil {
//		return err
//	}
//	defer engine.Close()
//
//	actions := engine.Forward(observations)
//
// Throttled couples an Engine with a schedule.Cadence, to run inference
// only on some simulation ticks.
package policynet
