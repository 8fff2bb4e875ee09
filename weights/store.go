// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weights

import (
	"fmt"

	"github.com/nlpodyssey/policynet/tensor"
)

// Store owns a contiguous weight buffer and hands out non-owning views of
// the individual parameter tensors described by its Layout.
//
// A Store is read-only after construction and safe for concurrent reads.
type Store struct {
	layout  Layout
	entries []Entry
	index   map[string]int
	data    []float32
}

// NewStore wraps data, which must hold exactly layout.Size() values.
// The data is NOT copied.
func NewStore(data []float32, layout Layout) (*Store, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weight layout: %w", err)
	}
	if n := layout.Size(); n != len(data) {
		return nil, fmt.Errorf("%w: layout describes %d float32 values, data has %d", ErrLayoutMismatch, n, len(data))
	}
	entries := layout.Entries()
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.Name] = i
	}
	return &Store{
		layout:  entries2layout(entries),
		entries: entries,
		index:   index,
		data:    data,
	}, nil
}

func entries2layout(entries []Entry) Layout {
	l := make(Layout, len(entries))
	for i, e := range entries {
		l[i] = e.Param
	}
	return l
}

// Layout returns the layout of the store.
func (s *Store) Layout() Layout {
	return s.layout
}

// Len returns the number of parameter tensors.
func (s *Store) Len() int {
	return len(s.entries)
}

// Data returns the whole weight buffer.
//
// The value returned is NOT a copy.
func (s *Store) Data() []float32 {
	return s.data
}

// View returns a view of the parameter tensor with the given name.
// The returned boolean flag reports whether the tensor was found.
func (s *Store) View(name string) (tensor.View, bool) {
	i, ok := s.index[name]
	if !ok {
		return tensor.View{}, false
	}
	e := s.entries[i]
	return tensor.Must(tensor.New(s.data[e.Begin:e.End:e.End], e.Shape...)), true
}

// MustView is like View, but panics if the tensor is not found.
func (s *Store) MustView(name string) tensor.View {
	v, ok := s.View(name)
	if !ok {
		panic(fmt.Sprintf("weights: param %q not found", name))
	}
	return v
}
