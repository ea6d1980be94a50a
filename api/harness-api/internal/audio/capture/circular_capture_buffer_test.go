// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_capture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(from, to int) []float32 {
	out := make([]float32, 0, to-from+1)
	for v := from; v <= to; v++ {
		out = append(out, float32(v))
	}
	return out
}

func TestReadMostRecent_AfterWrap(t *testing.T) {
	b := NewCircularCaptureBuffer(8)
	_, err := b.WriteAll(ramp(1, 8))
	require.NoError(t, err)
	_, err = b.WriteAll([]float32{9, 10})
	require.NoError(t, err)

	out := make([]float32, 8)
	n := b.ReadMostRecent(out, 0, 8)
	assert.Equal(t, 8, n)
	assert.Equal(t, ramp(3, 10), out)
}

func TestReadMostRecent_ManyWraps(t *testing.T) {
	b := NewCircularCaptureBuffer(7)
	written := make([]float32, 0)
	next := 1
	// uneven chunk sizes so the cursor lands everywhere
	for _, chunk := range []int{3, 5, 1, 7, 2, 6, 4, 4, 7, 1} {
		data := ramp(next, next+chunk-1)
		next += chunk
		_, err := b.WriteAll(data)
		require.NoError(t, err)
		written = append(written, data...)

		for count := 1; count <= 7; count++ {
			out := make([]float32, count)
			n := b.ReadMostRecentAll(out)
			expectN := count
			if expectN > len(written) {
				expectN = len(written)
			}
			require.Equal(t, expectN, n)
			assert.Equal(t, written[len(written)-n:], out[:n], "count %d after %d samples", count, len(written))
		}
	}
}

func TestReadMostRecent_ClampsToValid(t *testing.T) {
	b := NewCircularCaptureBuffer(16)
	_, err := b.WriteAll([]float32{1, 2, 3})
	require.NoError(t, err)

	out := make([]float32, 10)
	n := b.ReadMostRecentAll(out)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float32{1, 2, 3}, out[:3])
	assert.Equal(t, 3, b.Available())
}

func TestReadMostRecent_WithOffset(t *testing.T) {
	b := NewCircularCaptureBuffer(4)
	_, err := b.Write([]float32{0, 0, 5, 6, 7, 0}, 2, 3)
	require.NoError(t, err)

	out := []float32{-1, -1, -1, -1, -1}
	n := b.ReadMostRecent(out, 1, 3)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float32{-1, 5, 6, 7, -1}, out)
}

func TestWrite_RejectsOversizedWrite(t *testing.T) {
	b := NewCircularCaptureBuffer(4)
	n, err := b.WriteAll(ramp(1, 5))
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, ErrWriteTooLarge))
	assert.Equal(t, 0, b.Available())
}

func TestWrite_ExactCapacity(t *testing.T) {
	b := NewCircularCaptureBuffer(4)
	_, err := b.WriteAll([]float32{1})
	require.NoError(t, err)

	n, err := b.WriteAll([]float32{5, 6, 7, 8})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	out := make([]float32, 4)
	assert.Equal(t, 4, b.ReadMostRecentAll(out))
	assert.Equal(t, []float32{5, 6, 7, 8}, out)
}

func TestErase_ReadsNothing(t *testing.T) {
	b := NewCircularCaptureBuffer(8)
	_, err := b.WriteAll(ramp(1, 6))
	require.NoError(t, err)

	b.Erase()
	for _, count := range []int{0, 1, 4, 8} {
		out := make([]float32, count)
		assert.Equal(t, 0, b.ReadMostRecentAll(out))
	}
	assert.Equal(t, 8, b.Size())

	// capture resumes from the start after an erase
	_, err = b.WriteAll([]float32{42, 43})
	require.NoError(t, err)
	out := make([]float32, 8)
	n := b.ReadMostRecentAll(out)
	assert.Equal(t, []float32{42, 43}, out[:n])
}

func TestWrite_ZeroCount(t *testing.T) {
	b := NewCircularCaptureBuffer(4)
	n, err := b.WriteAll(nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}
