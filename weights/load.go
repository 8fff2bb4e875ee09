// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package weights loads trained network parameters from raw weight blobs.
//
// # Format
//
// A raw weight blob is nothing more than IEEE-754 32-bit floats
// concatenated in layer-definition order, as obtained by flattening every
// parameter tensor of the training framework. The format preconditions are:
//
//   - native byte order: the blob must be produced on a host with the same
//     endianness as the one loading it; no conversion is performed
//   - no header, no shape or version metadata
//   - the file length must equal the total element count of the Layout
//     compiled into the program, times 4
//
// Offsets of each parameter are derived from the Layout, not from the
// file. A blob produced for a different architecture that happens to
// have the same total element count loads without error and yields
// silently wrong results. The safetensors conversion provided by this
// package (see Store.WriteSafeTensors and ReadSafeTensors) can be used to
// exchange weights together with their names and shapes.
package weights

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"
)

// floatSize is the size in bytes of a float32 value.
const floatSize = 4

// ErrTrailingData is wrapped by a LoadError when a weight file contains
// more data than expected.
var ErrTrailingData = errors.New("unexpected data after the last expected value")

// LoadError reports a failure to load a weight blob: the resource could
// not be opened or read, or it does not contain exactly the expected
// number of values.
type LoadError struct {
	// Path of the weight file, empty when reading from a generic io.Reader.
	Path string
	// Want is the number of float32 values requested.
	Want int
	// Got is the number of complete float32 values actually read.
	Got int
	// Err is the underlying error.
	Err error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load weights (want %d float32 values, got %d): %v", e.Want, e.Got, e.Err)
	}
	return fmt.Sprintf("failed to load weights from %q (want %d float32 values, got %d): %v", e.Path, e.Want, e.Got, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ReadFloats reads exactly n float32 values from r, in native byte order.
//
// Bytes are read directly into the returned buffer. If fewer than n values
// are available, the error is a *LoadError reporting how many complete
// values were read. Data following the n-th value is not consumed.
func ReadFloats(r io.Reader, n int) ([]float32, error) {
	if n < 0 {
		return nil, &LoadError{Want: n, Err: fmt.Errorf("invalid element count %d", n)}
	}
	out := make([]float32, n)
	read, err := io.ReadFull(r, floatBytes(out))
	if err != nil {
		return nil, &LoadError{Want: n, Got: read / floatSize, Err: err}
	}
	return out, nil
}

// LoadFloats reads exactly n float32 values from the file at path.
//
// It fails with a *LoadError if the file cannot be opened, if it holds
// fewer than n values, or if it holds more data than n values.
func LoadFloats(path string, n int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Want: n, Err: err}
	}
	defer f.Close()

	data, err := ReadFloats(f, n)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}

	var probe [1]byte
	if m, _ := io.ReadFull(f, probe[:]); m != 0 {
		return nil, &LoadError{Path: path, Want: n, Got: n, Err: ErrTrailingData}
	}
	return data, nil
}

// Load reads the weight file at path according to layout.
func Load(path string, layout Layout) (*Store, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weight layout: %w", err)
	}
	data, err := LoadFloats(path, layout.Size())
	if err != nil {
		return nil, err
	}
	return NewStore(data, layout)
}

// WriteFloats writes data to w in native byte order, producing a raw
// weight blob that ReadFloats can read back.
func WriteFloats(w io.Writer, data []float32) (int64, error) {
	n, err := w.Write(floatBytes(data))
	return int64(n), err
}

// Save writes data to a new raw weight file at path, truncating it if it
// already exists.
func Save(path string, data []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err = WriteFloats(f, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write weights to %q: %w", path, err)
	}
	return f.Close()
}

// floatBytes reinterprets the memory of f as bytes, in native order.
func floatBytes(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*floatSize)
}
