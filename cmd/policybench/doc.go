// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command policybench measures the throughput of the policy engine against
// a synthetic environment.
//
// Every simulation tick the environment produces random observations for
// a batch of agents; inference runs once every -every ticks and the
// decoded actions are applied on every tick. At the end the program
// reports forward passes and simulated agent steps per second, and how
// often each option of each action choice was taken.
//
// Usage:
//
//	policybench [-arch arch.json] [-weights weights.bin] [-batch 16]
//	            [-workers 1] [-every 12] [-ticks 12000] [-cpuprofile cpu.pprof]
//
// Without -weights, random weights are used.
package main
