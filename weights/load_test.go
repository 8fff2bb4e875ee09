// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weights

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFloats(t *testing.T, data []float32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.bin")
	require.NoError(t, Save(path, data))
	return path
}

func TestReadFloats(t *testing.T) {
	data := []float32{1, -2.5, 3.25, 0, 1e-7}
	var buf bytes.Buffer
	n, err := WriteFloats(&buf, data)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)*4), n)
	raw := buf.Bytes()

	t.Run("exact", func(t *testing.T) {
		got, err := ReadFloats(bytes.NewReader(raw), len(data))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("one byte at a time", func(t *testing.T) {
		got, err := ReadFloats(iotest.OneByteReader(bytes.NewReader(raw)), len(data))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("prefix", func(t *testing.T) {
		r := bytes.NewReader(raw)
		got, err := ReadFloats(r, 2)
		require.NoError(t, err)
		assert.Equal(t, data[:2], got)
		assert.Equal(t, 12, r.Len())
	})

	t.Run("zero", func(t *testing.T) {
		got, err := ReadFloats(bytes.NewReader(nil), 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := ReadFloats(bytes.NewReader(raw[:len(raw)-1]), len(data))
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, len(data), le.Want)
		assert.Equal(t, len(data)-1, le.Got)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ReadFloats(bytes.NewReader(nil), 1)
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, 0, le.Got)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("reader error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := ReadFloats(iotest.ErrReader(boom), 1)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("negative count", func(t *testing.T) {
		_, err := ReadFloats(bytes.NewReader(raw), -1)
		var le *LoadError
		assert.ErrorAs(t, err, &le)
	})
}

func TestLoadFloats(t *testing.T) {
	data := []float32{0.5, 1.5, 2.5, 3.5}
	path := writeTempFloats(t, data)

	t.Run("exact count", func(t *testing.T) {
		got, err := LoadFloats(path, len(data))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("one more than available", func(t *testing.T) {
		_, err := LoadFloats(path, len(data)+1)
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, path, le.Path)
		assert.Equal(t, len(data)+1, le.Want)
		assert.Equal(t, len(data), le.Got)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.Contains(t, err.Error(), "want 5 float32 values, got 4")
	})

	t.Run("trailing data", func(t *testing.T) {
		_, err := LoadFloats(path, len(data)-1)
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.ErrorIs(t, err, ErrTrailingData)
	})

	t.Run("partial trailing value", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "odd.bin")
		require.NoError(t, os.WriteFile(p, []byte{0, 0, 0, 0, 1, 2}, 0o644))
		_, err := LoadFloats(p, 1)
		assert.ErrorIs(t, err, ErrTrailingData)
		_, err = LoadFloats(p, 2)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFloats(filepath.Join(t.TempDir(), "missing.bin"), 1)
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestLoad(t *testing.T) {
	data := make([]float32, convLayout.Size())
	for i := range data {
		data[i] = float32(i)
	}
	path := writeTempFloats(t, data)

	t.Run("success", func(t *testing.T) {
		s, err := Load(path, convLayout)
		require.NoError(t, err)
		assert.Equal(t, data, s.Data())
		bias := s.MustView("conv.bias")
		assert.Equal(t, float32(32*19*5*5), bias.At(0))
	})

	t.Run("layout larger than file", func(t *testing.T) {
		l := append(Layout{}, convLayout...)
		l = append(l, Param{Name: "extra", Shape: []int{1}})
		_, err := Load(path, l)
		var le *LoadError
		assert.ErrorAs(t, err, &le)
	})

	t.Run("invalid layout", func(t *testing.T) {
		_, err := Load(path, Layout{{Name: ""}})
		assert.Error(t, err)
	})
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Want: 3, Got: 1, Err: io.ErrUnexpectedEOF}
	assert.Equal(t, "failed to load weights (want 3 float32 values, got 1): unexpected EOF", err.Error())

	err.Path = "w.bin"
	assert.Equal(t, `failed to load weights from "w.bin" (want 3 float32 values, got 1): unexpected EOF`, err.Error())
}
