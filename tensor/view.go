// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tensor provides non-owning, shaped views over flat float32
// buffers.
//
// Data is row-major ("C") ordered. A View never owns its memory: it is a
// window over a slice allocated elsewhere (a weight blob, a scratch buffer,
// a caller's observation buffer), and any modification through the View is
// visible to every other View sharing the same slice.
package tensor

import "fmt"

// View is a shaped, strided window over a float32 buffer.
//
// The zero value is an empty scalar view and must not be indexed.
type View struct {
	data    []float32
	shape   Shape
	strides []int
}

// New creates a contiguous View over data with the given shape.
//
// The number of elements computed from the shape must match len(data)
// exactly. The shape is copied; data is NOT copied.
func New(data []float32, shape ...int) (View, error) {
	s := Shape(shape)
	size, err := checkedSize(s)
	if err != nil {
		return View{}, err
	}
	if size != len(data) {
		return View{}, fmt.Errorf("the size computed from shape %v (%d) does not match data length (%d)", s, size, len(data))
	}
	return View{
		data:    data,
		shape:   s.Clone(),
		strides: s.Strides(),
	}, nil
}

// Strided creates a View over data with explicit strides, in elements.
//
// It allows viewing packed layouts where rows are farther apart than
// their size, such as a batch of observations each followed by auxiliary
// scalars. Every addressable element must lie within data.
func Strided(data []float32, shape Shape, strides []int) (View, error) {
	if len(shape) != len(strides) {
		return View{}, fmt.Errorf("shape %v and strides %v have different lengths", shape, strides)
	}
	if _, err := checkedSize(shape); err != nil {
		return View{}, err
	}
	for i, st := range strides {
		if st < 1 {
			return View{}, fmt.Errorf("invalid stride %d at dimension %d", st, i)
		}
	}
	if n := extent(shape, strides); n > len(data) {
		return View{}, fmt.Errorf("shape %v with strides %v spans %d elements, data length is %d", shape, strides, n, len(data))
	}
	return View{
		data:    data,
		shape:   shape.Clone(),
		strides: append([]int(nil), strides...),
	}, nil
}

// Must panics if err is not nil, otherwise it returns v.
// It is intended for views whose shape is known to be valid.
func Must(v View, err error) View {
	if err != nil {
		panic(err)
	}
	return v
}

// extent is the number of elements from the first to one past the last
// addressable element.
func extent(shape Shape, strides []int) int {
	n := 1
	for i, d := range shape {
		if d == 0 {
			return 0
		}
		n += (d - 1) * strides[i]
	}
	return n
}

// The Shape of the view. The returned value is a copy.
func (v View) Shape() Shape { return v.shape.Clone() }

// Strides returns a copy of the strides of the view, in elements.
func (v View) Strides() []int { return append([]int(nil), v.strides...) }

// Rank is the number of dimensions.
func (v View) Rank() int { return len(v.shape) }

// Dim returns the size of dimension i.
func (v View) Dim(i int) int { return v.shape[i] }

// Stride returns the stride of dimension i, in elements.
func (v View) Stride(i int) int { return v.strides[i] }

// Len returns the number of elements addressed by the view.
func (v View) Len() int { return v.shape.Size() }

// Data returns the underlying buffer spanned by the view.
//
// The value returned is NOT a copy. For a strided view it includes the
// elements lying between rows.
func (v View) Data() []float32 { return v.data }

// IsContiguous reports whether the view addresses a dense row-major region
// with no gaps.
func (v View) IsContiguous() bool {
	acc := 1
	for i := len(v.shape) - 1; i >= 0; i-- {
		if v.shape[i] != 1 && v.strides[i] != acc {
			return false
		}
		acc *= v.shape[i]
	}
	return true
}

// Index returns the position within Data of the element at the given
// multi-dimensional index. It panics if the number of indices differs
// from the rank, or if any index is out of range for its dimension.
func (v View) Index(idx ...int) int {
	if len(idx) != len(v.shape) {
		panic(fmt.Sprintf("tensor: %d indices for a view of rank %d", len(idx), len(v.shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= v.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range [0,%d) at dimension %d", x, v.shape[i], i))
		}
		off += x * v.strides[i]
	}
	return off
}

// At returns the element at the given index.
func (v View) At(idx ...int) float32 {
	return v.data[v.Index(idx...)]
}

// Set assigns x to the element at the given index.
func (v View) Set(x float32, idx ...int) {
	v.data[v.Index(idx...)] = x
}

// Reshape returns a View over the same data with a new shape.
// Only contiguous views can be reshaped, and the number of
// elements must not change.
func (v View) Reshape(shape ...int) (View, error) {
	if !v.IsContiguous() {
		return View{}, fmt.Errorf("cannot reshape a non-contiguous view of shape %v with strides %v", v.shape, v.strides)
	}
	if n := Shape(shape).Size(); n != v.Len() {
		return View{}, fmt.Errorf("cannot reshape %v (%d elements) to %v (%d elements)", v.shape, v.Len(), Shape(shape), n)
	}
	return New(v.data[:v.Len()], shape...)
}

// Batch returns the sub-view of rows [lo, hi) along the leading dimension.
// The returned view shares memory with v.
func (v View) Batch(lo, hi int) View {
	if len(v.shape) == 0 {
		panic("tensor: Batch on a scalar view")
	}
	if lo < 0 || hi < lo || hi > v.shape[0] {
		panic(fmt.Sprintf("tensor: batch range [%d,%d) out of range [0,%d)", lo, hi, v.shape[0]))
	}
	shape := v.shape.Clone()
	shape[0] = hi - lo
	if lo == hi {
		return View{data: v.data[:0], shape: shape, strides: v.strides}
	}
	begin := lo * v.strides[0]
	return View{
		data:    v.data[begin : begin+extent(shape, v.strides)],
		shape:   shape,
		strides: v.strides,
	}
}

// Rebind returns a view with the same shape and strides as v over a
// different buffer, which must be large enough to hold every addressable
// element. Shape and strides are shared with v, so no allocation takes
// place.
func (v View) Rebind(data []float32) View {
	if n := extent(v.shape, v.strides); n > len(data) {
		panic(fmt.Sprintf("tensor: shape %v with strides %v spans %d elements, data length is %d", v.shape, v.strides, n, len(data)))
	}
	return View{data: data, shape: v.shape, strides: v.strides}
}

// Row returns the elements of row b along the leading dimension.
// The inner dimensions must be contiguous. The returned slice shares
// memory with v.
func (v View) Row(b int) []float32 {
	if len(v.shape) == 0 {
		panic("tensor: Row on a scalar view")
	}
	if b < 0 || b >= v.shape[0] {
		panic(fmt.Sprintf("tensor: row %d out of range [0,%d)", b, v.shape[0]))
	}
	begin := b * v.strides[0]
	return v.data[begin : begin+v.shape[1:].Size()]
}
