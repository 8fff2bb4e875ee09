// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parallel runs batch-partitioned work on a fixed set of
// goroutines.
package parallel

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// DefaultWorkers returns the number of workers to use when none is
// configured: the number of physical cores, falling back to the number of
// logical CPUs when it cannot be detected.
func DefaultWorkers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Group statically partitions the index range [0, n) into contiguous
// sub-ranges, one per worker, and runs the same function over each of
// them in parallel.
//
// Workers are started once by NewGroup and reused by every Run: no
// allocation happens per Run. Each invocation of the function receives a
// disjoint range, so no locking is needed as long as it only writes data
// belonging to its range.
type Group struct {
	fn     func(lo, hi int)
	ranges [][2]int
	start  []chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// NewGroup creates a Group running fn over [0, n) with at most the given
// number of workers. Fewer workers are started when n is smaller; a
// workers value lower than 1 is treated as 1.
func NewGroup(n, workers int, fn func(lo, hi int)) *Group {
	g := &Group{
		fn:     fn,
		ranges: Partition(n, workers),
	}
	if len(g.ranges) > 1 {
		g.start = make([]chan struct{}, len(g.ranges))
		for i := range g.start {
			g.start[i] = make(chan struct{})
			go g.work(i)
		}
	}
	return g
}

func (g *Group) work(i int) {
	lo, hi := g.ranges[i][0], g.ranges[i][1]
	for range g.start[i] {
		g.fn(lo, hi)
		g.wg.Done()
	}
}

// Workers returns the number of partitions.
func (g *Group) Workers() int {
	return len(g.ranges)
}

// Run executes the function over every partition and waits for all of
// them to complete. With a single partition the function is called
// directly on the calling goroutine.
//
// Run must not be called concurrently, nor after Close.
func (g *Group) Run() {
	if g.closed {
		panic("parallel: Run on a closed Group")
	}
	if g.start == nil {
		for _, r := range g.ranges {
			g.fn(r[0], r[1])
		}
		return
	}
	g.wg.Add(len(g.start))
	for _, c := range g.start {
		c <- struct{}{}
	}
	g.wg.Wait()
}

// Close stops the workers. It is safe to call Close more than once.
func (g *Group) Close() {
	if g.closed {
		return
	}
	g.closed = true
	for _, c := range g.start {
		close(c)
	}
}

// Partition splits [0, n) into at most parts contiguous, non-empty ranges
// whose sizes differ by at most one. It returns nil when n is not
// positive.
func Partition(n, parts int) [][2]int {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	out := make([][2]int, parts)
	size, rem := n/parts, n%parts
	lo := 0
	for i := range out {
		hi := lo + size
		if i < rem {
			hi++
		}
		out[i] = [2]int{lo, hi}
		lo = hi
	}
	return out
}
