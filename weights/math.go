// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weights

import (
	"fmt"
	"math"
)

// checkedAdd adds two non-negative ints and checks for overflow.
func checkedAdd(a, b int) (int, error) {
	if a > math.MaxInt-b {
		return 0, fmt.Errorf("addition overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// checkedMul multiplies two non-negative ints and checks for overflow.
func checkedMul(a, b int) (int, error) {
	c := a * b
	if a > 1 && b > 1 && c/a != b {
		return c, fmt.Errorf("multiplication overflow: %d * %d", a, b)
	}
	return c, nil
}
