// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weights

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
)

const (
	maxHeaderSize = 100_000_000
	metadataKey   = "__metadata__"
)

// stTensor is a tensor entry of a safetensors header.
type stTensor struct {
	DType       DType  `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

type namedSTTensor struct {
	name string
	stTensor
}

// WriteSafeTensors writes all the parameter tensors of the store to w in
// safetensors format, as F32 tensors named after their Param.
//
// Unlike a raw blob, the result carries names and shapes, and data is
// always little-endian. The optional metadata is stored as free-form
// key/value string pairs.
func (s *Store) WriteSafeTensors(w io.Writer, metadata map[string]string) error {
	obj := make(map[string]any, len(s.entries)+1)
	if len(metadata) > 0 {
		obj[metadataKey] = metadata
	}
	for _, e := range s.entries {
		shape := []int(e.Shape)
		if shape == nil {
			shape = []int{}
		}
		obj[e.Name] = stTensor{
			DType:       F32,
			Shape:       shape,
			DataOffsets: [2]int{e.Begin * floatSize, e.End * floatSize},
		}
	}
	headerBytes, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to JSON-marshal safetensors header: %w", err)
	}

	// Force alignment to 8 bytes.
	if extra := (8 - len(headerBytes)%8) % 8; extra > 0 {
		headerBytes = append(headerBytes, bytes.Repeat([]byte{' '}, extra)...)
	}

	bw := bufio.NewWriter(w)
	var nb [8]byte
	binary.LittleEndian.PutUint64(nb[:], uint64(len(headerBytes)))
	if _, err = bw.Write(nb[:]); err != nil {
		return err
	}
	if _, err = bw.Write(headerBytes); err != nil {
		return err
	}
	var a [4]byte
	for _, x := range s.data {
		binary.LittleEndian.PutUint32(a[:], math.Float32bits(x))
		if _, err = bw.Write(a[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSafeTensors reads a safetensors stream and assembles a Store laid out
// according to layout.
//
// Every Param of the layout must be present as a tensor with the same
// shape, and no other tensor may be present: this is how a weight file can
// be checked against the architecture compiled into the program. Tensors
// of any supported DType are converted to float32. The free-form metadata
// of the header is returned too; it can be nil.
func ReadSafeTensors(r io.Reader, layout Layout) (*Store, map[string]string, error) {
	if err := layout.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid weight layout: %w", err)
	}
	tensors, metadata, err := readSTHeader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read safetensors header: %w", err)
	}
	byteSize, err := validateSTTensors(tensors)
	if err != nil {
		return nil, nil, fmt.Errorf("safetensors header is invalid: %w", err)
	}
	if err = matchSTTensors(tensors, layout); err != nil {
		return nil, nil, err
	}

	buf := make([]byte, byteSize)
	if _, err = io.ReadFull(r, buf); err != nil {
		return nil, nil, fmt.Errorf("failed to read safetensors byte-buffer: %w", err)
	}

	data := make([]float32, layout.Size())
	for _, e := range layout.Entries() {
		t := tensors[e.Name]
		t.DType.decode(data[e.Begin:e.End], buf[t.DataOffsets[0]:t.DataOffsets[1]])
	}

	store, err := NewStore(data, layout)
	if err != nil {
		return nil, nil, err
	}
	return store, metadata, nil
}

func readSTHeader(r io.Reader) (map[string]stTensor, map[string]string, error) {
	var nb [8]byte
	if _, err := io.ReadFull(r, nb[:]); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	size := binary.LittleEndian.Uint64(nb[:])
	switch {
	case size < 2: // a bare minimum header is "{}"
		return nil, nil, fmt.Errorf("header size too small: %d", size)
	case size > maxHeaderSize:
		return nil, nil, fmt.Errorf("header too large: max %d, actual %d", maxHeaderSize, size)
	}

	headerBytes := make([]byte, size)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to JSON-decode header: %w", err)
	}

	var metadata map[string]string
	if rawMeta, ok := raw[metadataKey]; ok {
		delete(raw, metadataKey)
		if err := json.Unmarshal(rawMeta, &metadata); err != nil {
			return nil, nil, fmt.Errorf("failed to interpret header metadata: %w", err)
		}
	}

	tensors := make(map[string]stTensor, len(raw))
	for name, rawVal := range raw {
		dec := json.NewDecoder(bytes.NewReader(rawVal))
		dec.DisallowUnknownFields()
		var t stTensor
		if err := dec.Decode(&t); err != nil {
			return nil, nil, fmt.Errorf("failed to interpret header tensor %q: %w", name, err)
		}
		tensors[name] = t
	}
	return tensors, metadata, nil
}

// validateSTTensors checks that the union of all data offsets covers an
// entire contiguous area of the byte-buffer starting from 0, with no
// overlaps, and that each size agrees with shape and dtype.
// It returns the size of the byte-buffer.
func validateSTTensors(tensors map[string]stTensor) (int, error) {
	ts := make([]namedSTTensor, 0, len(tensors))
	for name, t := range tensors {
		ts = append(ts, namedSTTensor{name: name, stTensor: t})
	}
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i].DataOffsets, ts[j].DataOffsets
		return a[0] < b[0] || (a[0] == b[0] && a[1] < b[1])
	})

	expectedBegin := 0
	for _, t := range ts {
		if err := validateSTTensor(t.stTensor, expectedBegin); err != nil {
			return 0, fmt.Errorf("invalid tensor %q: %w", t.name, err)
		}
		expectedBegin = t.DataOffsets[1]
	}
	return expectedBegin, nil
}

func validateSTTensor(t stTensor, expectedBegin int) error {
	begin, end := t.DataOffsets[0], t.DataOffsets[1]
	if begin != expectedBegin {
		return fmt.Errorf("expected data-offsets begin %d, actual %d", expectedBegin, begin)
	}
	if end < begin {
		return fmt.Errorf("expected data-offsets end >= %d (begin), actual %d", begin, end)
	}
	if err := t.DType.Validate(); err != nil {
		return err
	}
	size := 1
	for _, v := range t.Shape {
		if v < 0 {
			return fmt.Errorf("shape contains negative value %d", v)
		}
		var err error
		if size, err = checkedMul(size, v); err != nil {
			return fmt.Errorf("failed to compute num elements from shape: %w", err)
		}
	}
	byteSize, err := checkedMul(size, t.DType.Size())
	if err != nil {
		return fmt.Errorf("failed to compute num bytes from num elements: %w", err)
	}
	if end-begin != byteSize {
		return fmt.Errorf("byte size computed from shape (%d) differs from data-offsets size (%d)", byteSize, end-begin)
	}
	return nil
}

func matchSTTensors(tensors map[string]stTensor, layout Layout) error {
	if len(tensors) != len(layout) {
		return fmt.Errorf("%w: expected %d tensors, actual %d", ErrLayoutMismatch, len(layout), len(tensors))
	}
	for _, p := range layout {
		t, ok := tensors[p.Name]
		if !ok {
			return fmt.Errorf("%w: tensor %q not found", ErrLayoutMismatch, p.Name)
		}
		if !p.Shape.Equal(t.Shape) {
			return fmt.Errorf("%w: tensor %q: expected shape %v, actual %v", ErrLayoutMismatch, p.Name, p.Shape, t.Shape)
		}
	}
	return nil
}
