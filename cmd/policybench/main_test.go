// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/nlpodyssey/policynet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var out bytes.Buffer
	c := config{batch: 4, workers: 2, every: 3, ticks: 30, seed: 1}
	require.NoError(t, run(c, &out))
	assert.Contains(t, out.String(), "agents 4, workers 2, ticks 30")
	assert.Contains(t, out.String(), "choice 5: ")
}

func TestRun_Errors(t *testing.T) {
	base := config{batch: 4, workers: 1, every: 3, ticks: 30}

	c := base
	c.every = 0
	assert.Error(t, run(c, &bytes.Buffer{}))

	c = base
	c.ticks = 0
	assert.Error(t, run(c, &bytes.Buffer{}))

	c = base
	c.batch = 0
	assert.Error(t, run(c, &bytes.Buffer{}))

	c = base
	c.weights = "missing.bin"
	assert.Error(t, run(c, &bytes.Buffer{}))
}

func TestSyntheticEnv(t *testing.T) {
	arch := policynet.MOBA()
	env := newSyntheticEnv(arch, 2, rand.New(rand.NewSource(1)))
	assert.Len(t, env.Observations(), 2*arch.ObservationSize())
	assert.Equal(t, policynet.MOBAActions, env.space)

	arch.ActionDim = 4
	env = newSyntheticEnv(arch, 2, rand.New(rand.NewSource(1)))
	assert.Equal(t, policynet.MultiDiscrete{4}, env.space)
}
