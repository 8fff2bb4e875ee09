// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"runtime/pprof"
	"time"

	"github.com/nlpodyssey/policynet"
	"github.com/nlpodyssey/policynet/parallel"
	"github.com/nlpodyssey/policynet/schedule"
	"github.com/nlpodyssey/policynet/tensor"
	"github.com/nlpodyssey/policynet/weights"
)

type config struct {
	arch       string
	weights    string
	batch      int
	workers    int
	every      int
	ticks      int
	cpuProfile string
	seed       int64
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("policybench: ")

	var c config
	flag.StringVar(&c.arch, "arch", "", "architecture JSON file (default MOBA)")
	flag.StringVar(&c.weights, "weights", "", "raw weight blob (default random weights)")
	flag.IntVar(&c.batch, "batch", 16, "number of agents")
	flag.IntVar(&c.workers, "workers", 1, "number of workers (0 for one per physical core)")
	flag.IntVar(&c.every, "every", 12, "run inference once every this many ticks")
	flag.IntVar(&c.ticks, "ticks", 12000, "number of simulation ticks")
	flag.StringVar(&c.cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	flag.Int64Var(&c.seed, "seed", 1, "random seed")
	flag.Parse()

	if c.cpuProfile != "" {
		f, err := os.Create(c.cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err = pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	if err := run(c, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(c config, stdout io.Writer) error {
	arch := policynet.MOBA()
	if c.arch != "" {
		var err error
		if arch, err = policynet.LoadArchitecture(c.arch); err != nil {
			return err
		}
	}

	rng := rand.New(rand.NewSource(c.seed))
	store, err := loadStore(arch, c.weights, rng)
	if err != nil {
		return err
	}
	workers := c.workers
	if workers == 0 {
		workers = parallel.DefaultWorkers()
	}
	engine, err := policynet.New(arch, store, c.batch, policynet.WithWorkers(workers))
	if err != nil {
		return err
	}
	defer engine.Close()

	cadence, err := schedule.NewCadence(c.every)
	if err != nil {
		return err
	}
	if c.ticks < 1 {
		return fmt.Errorf("invalid number of ticks %d", c.ticks)
	}

	env := newSyntheticEnv(arch, c.batch, rng)
	th := policynet.NewThrottled(engine, cadence)

	forwards := 0
	start := time.Now()
	for i := 0; i < c.ticks; i++ {
		if th.Step(env) {
			forwards++
		}
	}
	elapsed := time.Since(start)

	secs := elapsed.Seconds()
	fmt.Fprintf(stdout, "agents %d, workers %d, ticks %d, inference every %d ticks\n",
		c.batch, engine.Workers(), c.ticks, c.every)
	fmt.Fprintf(stdout, "elapsed %v, %.0f forward/s, %.0f agent steps/s\n",
		elapsed, float64(forwards)/secs, float64(c.ticks*c.batch)/secs)
	offset := 0
	for i, n := range env.space {
		fmt.Fprintf(stdout, "choice %d: %v\n", i, env.counts[offset:offset+n])
		offset += n
	}
	return nil
}

func loadStore(arch policynet.Architecture, path string, rng *rand.Rand) (*weights.Store, error) {
	if path != "" {
		return arch.LoadWeights(path)
	}
	data := make([]float32, arch.Layout().Size())
	for i := range data {
		data[i] = (rng.Float32()*2 - 1) * 0.1
	}
	return weights.NewStore(data, arch.Layout())
}

// syntheticEnv produces random packed observations and decodes the action
// logits it receives, without simulating anything.
type syntheticEnv struct {
	arch    policynet.Architecture
	batch   int
	rng     *rand.Rand
	obs     []float32
	space   policynet.MultiDiscrete
	choices []int
	// counts is the number of times each option of each choice was taken.
	counts []int
}

func newSyntheticEnv(arch policynet.Architecture, batch int, rng *rand.Rand) *syntheticEnv {
	env := &syntheticEnv{
		arch:  arch,
		batch: batch,
		rng:   rng,
		obs:   make([]float32, batch*arch.ObservationSize()),
	}
	// Decode the MOBA action space when it fits, a single choice otherwise.
	env.space = policynet.MOBAActions
	if env.space.Validate(arch.ActionDim) != nil {
		env.space = policynet.MultiDiscrete{arch.ActionDim}
	}
	env.choices = make([]int, len(env.space))
	env.counts = make([]int, arch.ActionDim)
	return env
}

func (env *syntheticEnv) Observations() []float32 {
	for i := range env.obs {
		env.obs[i] = env.rng.Float32()
	}
	return env.obs
}

func (env *syntheticEnv) Act(actions tensor.View) {
	for b := 0; b < env.batch; b++ {
		env.space.Decode(env.choices, actions.Row(b))
		offset := 0
		for i, c := range env.choices {
			env.counts[offset+c]++
			offset += env.space[i]
		}
	}
}
