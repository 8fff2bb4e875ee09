// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package policynet_test

import (
	"fmt"

	"github.com/nlpodyssey/policynet"
	"github.com/nlpodyssey/policynet/activation"
	"github.com/nlpodyssey/policynet/weights"
)

func Example() {
	arch := policynet.MOBA()
	arch.OutputActivation = activation.KindSigmoid

	// Untrained, all-zero weights.
	store, err := weights.NewStore(make([]float32, arch.Layout().Size()), arch.Layout())
	if err != nil {
		panic(err)
	}

	const agents = 16
	engine, err := policynet.New(arch, store, agents, policynet.WithWorkers(2))
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	obs := make([]float32, agents*arch.ObservationSize())
	actions := engine.Forward(obs)

	fmt.Println(actions.Shape())
	fmt.Println(actions.At(0, 0), actions.At(agents-1, arch.ActionDim-1))

	choices := make([]int, len(policynet.MOBAActions))
	policynet.MOBAActions.Decode(choices, actions.Row(0))
	fmt.Println(choices)

	// Output:
	// [16 23]
	// 0.5 0.5
	// [0 0 0 0 0 0]
}
