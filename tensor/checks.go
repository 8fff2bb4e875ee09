// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !policynet_debug

package tensor

// Checks reports whether numeric primitives assert their shape
// preconditions on every call. It is enabled with the policynet_debug
// build tag.
const Checks = false
