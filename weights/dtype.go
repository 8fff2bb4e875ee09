// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weights

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DType is the floating point data type of a safetensors tensor.
//
// Tensors of any DType can be imported, and are converted to float32;
// export always produces F32.
type DType uint8

const (
	// F16 represents a 16-bit half-precision floating point data type.
	F16 DType = iota + 1
	// BF16 represents a 16-bit brain floating point data type.
	BF16
	// F32 represents a 32-bit floating point data type.
	F32
	// F64 represents a 64-bit floating point data type.
	F64
)

var (
	dTypeToString = [...]string{
		F16:  "F16",
		BF16: "BF16",
		F32:  "F32",
		F64:  "F64",
	}
	dTypeToSize = [...]int{
		F16:  2,
		BF16: 2,
		F32:  4,
		F64:  8,
	}
)

// Validate returns an error if the DType is not valid, otherwise nil.
func (dt DType) Validate() error {
	if dt == 0 || dt > F64 {
		return fmt.Errorf("invalid DType(%d)", dt)
	}
	return nil
}

// String returns a string representation of a DType.
func (dt DType) String() string {
	if err := dt.Validate(); err != nil {
		return err.Error()
	}
	return dTypeToString[dt]
}

// Size returns the size in bytes of one element of this data type,
// or -1 if the DType value is invalid.
func (dt DType) Size() int {
	if err := dt.Validate(); err != nil {
		return -1
	}
	return dTypeToSize[dt]
}

// MarshalText satisfies encoding.TextMarshaler interface.
func (dt DType) MarshalText() ([]byte, error) {
	if err := dt.Validate(); err != nil {
		return nil, err
	}
	return []byte(dTypeToString[dt]), nil
}

// UnmarshalText satisfies encoding.TextUnmarshaler interface.
func (dt *DType) UnmarshalText(text []byte) error {
	s := string(text)
	for i, v := range dTypeToString {
		if v != "" && v == s {
			*dt = DType(i)
			return nil
		}
	}
	return fmt.Errorf("unsupported dtype %q", s)
}

// decode converts little-endian values of this data type from src to
// float32 values in dst. src must hold exactly len(dst) values.
func (dt DType) decode(dst []float32, src []byte) {
	order := binary.LittleEndian
	switch dt {
	case F16:
		for i := range dst {
			dst[i] = halfToFloat32(order.Uint16(src[i*2:]))
		}
	case BF16:
		for i := range dst {
			dst[i] = math.Float32frombits(uint32(order.Uint16(src[i*2:])) << 16)
		}
	case F32:
		for i := range dst {
			dst[i] = math.Float32frombits(order.Uint32(src[i*4:]))
		}
	case F64:
		for i := range dst {
			dst[i] = float32(math.Float64frombits(order.Uint64(src[i*8:])))
		}
	default:
		panic(fmt.Sprintf("weights: cannot decode %v", dt))
	}
}

// halfToFloat32 converts IEEE-754 binary16 bits to float32. The
// conversion is exact.
func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff

	switch {
	case exp == 0x1f: // Inf or NaN
		return math.Float32frombits(sign | 0xff<<23 | mant<<13)
	case exp != 0: // normal
		return math.Float32frombits(sign | (exp+127-15)<<23 | mant<<13)
	case mant == 0: // signed zero
		return math.Float32frombits(sign)
	}
	// Subnormal: normalize the mantissa.
	e := uint32(127 - 15 + 1)
	for mant&0x400 == 0 {
		mant <<= 1
		e--
	}
	return math.Float32frombits(sign | e<<23 | (mant&0x3ff)<<13)
}
