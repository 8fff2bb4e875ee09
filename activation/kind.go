// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package activation

import "fmt"

// Kind identifies an activation function.
type Kind uint8

const (
	// KindIdentity leaves values unchanged.
	KindIdentity Kind = iota
	// KindReLU represents the rectified-linear function.
	KindReLU
	// KindTanh represents the hyperbolic tangent.
	KindTanh
	// KindSigmoid represents the logistic sigmoid.
	KindSigmoid
)

var kindToString = [...]string{
	KindIdentity: "identity",
	KindReLU:     "relu",
	KindTanh:     "tanh",
	KindSigmoid:  "sigmoid",
}

// Validate returns an error if the Kind is not valid, otherwise nil.
func (k Kind) Validate() error {
	if k > KindSigmoid {
		return fmt.Errorf("invalid activation Kind(%d)", k)
	}
	return nil
}

// String returns a string representation of a Kind.
func (k Kind) String() string {
	if err := k.Validate(); err != nil {
		return err.Error()
	}
	return kindToString[k]
}

// Apply applies the activation function in place.
// It panics if the Kind is not valid.
func (k Kind) Apply(x []float32) {
	switch k {
	case KindIdentity:
	case KindReLU:
		ReLU(x)
	case KindTanh:
		Tanh(x)
	case KindSigmoid:
		Sigmoid(x)
	default:
		panic(k.Validate())
	}
}

// ParseKind returns the Kind represented by s.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindToString {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown activation %q", s)
}

// MarshalText satisfies encoding.TextMarshaler interface.
func (k Kind) MarshalText() ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return []byte(kindToString[k]), nil
}

// UnmarshalText satisfies encoding.TextUnmarshaler interface.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return fmt.Errorf("failed to text-unmarshal activation Kind: %w", err)
	}
	*k = v
	return nil
}
