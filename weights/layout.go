// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weights

import (
	"errors"
	"fmt"

	"github.com/nlpodyssey/policynet/tensor"
)

// ErrLayoutMismatch is wrapped by errors reporting that a weight buffer or
// file does not correspond to the expected Layout.
var ErrLayoutMismatch = errors.New("weight layout mismatch")

// Param describes a single named parameter tensor of a network.
type Param struct {
	Name  string
	Shape tensor.Shape
}

// Layout is the ordered sequence of parameter tensors of a network, in the
// order they are concatenated within a weight blob.
//
// The layout is compiled in: a raw weight blob does not describe it.
type Layout []Param

// Entry is a Param placed within a weight blob. Tensor data starts at
// element index Begin (inclusive) and ends at End (exclusive).
type Entry struct {
	Param
	Begin int
	End   int
}

// Validate checks that every Param has a non-empty, unique name and a valid
// shape, and that the total number of elements fits within the int type.
func (l Layout) Validate() error {
	seen := make(map[string]struct{}, len(l))
	total := 0
	for i, p := range l {
		if p.Name == "" {
			return fmt.Errorf("invalid param at position %d: empty name", i)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("duplicate param name %q", p.Name)
		}
		seen[p.Name] = struct{}{}

		if err := p.Shape.Validate(); err != nil {
			return fmt.Errorf("invalid param %q: %w", p.Name, err)
		}
		var err error
		if total, err = checkedAdd(total, p.Shape.Size()); err != nil {
			return fmt.Errorf("invalid layout size at param %q: %w", p.Name, err)
		}
	}
	return nil
}

// Size returns the total number of float32 values described by the layout.
func (l Layout) Size() int {
	n := 0
	for _, p := range l {
		n += p.Shape.Size()
	}
	return n
}

// Entries returns the position of every Param within the blob.
// Entries are contiguous, starting from 0.
func (l Layout) Entries() []Entry {
	entries := make([]Entry, len(l))
	offset := 0
	for i, p := range l {
		n := p.Shape.Size()
		entries[i] = Entry{
			Param: Param{Name: p.Name, Shape: p.Shape.Clone()},
			Begin: offset,
			End:   offset + n,
		}
		offset += n
	}
	return entries
}

// Match reports whether o describes exactly the same params as l, in the
// same order and with the same shapes. The returned error wraps
// ErrLayoutMismatch.
func (l Layout) Match(o Layout) error {
	if len(l) != len(o) {
		return fmt.Errorf("%w: expected %d params, actual %d", ErrLayoutMismatch, len(l), len(o))
	}
	for i, p := range l {
		q := o[i]
		if p.Name != q.Name {
			return fmt.Errorf("%w: expected param %q at position %d, actual %q", ErrLayoutMismatch, p.Name, i, q.Name)
		}
		if !p.Shape.Equal(q.Shape) {
			return fmt.Errorf("%w: param %q: expected shape %v, actual %v", ErrLayoutMismatch, p.Name, p.Shape, q.Shape)
		}
	}
	return nil
}
