// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command policyweights inspects and converts policy weight files.
//
// Usage:
//
//	policyweights layout [-arch arch.json]
//	policyweights export [-arch arch.json] -weights weights.bin -out weights.safetensors
//	policyweights import [-arch arch.json] -in weights.safetensors -out weights.bin
//
// The layout subcommand prints the parameter tensors of the architecture
// with their offsets within a raw weight blob. Export converts a raw blob
// into a self-describing safetensors file, storing the architecture in
// its metadata; import converts it back, checking names and shapes of
// every tensor. Without -arch, the MOBA architecture is used.
package main
