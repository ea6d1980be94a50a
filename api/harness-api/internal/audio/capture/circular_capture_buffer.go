// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_capture

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrWriteTooLarge is returned when a single write exceeds the buffer capacity.
var ErrWriteTooLarge = errors.New("tried to write more than maxSamples")

// CircularCaptureBuffer continuously captures audio so that the previous N
// samples can be read back at any time. It holds from zero to maxSamples.
//
// One goroutine writes (the capture loop) and one goroutine reads (analysis).
// There is no lock: the audio side must never block. The cursor and the
// valid count are published atomically and each call reads them once, so a
// reader sees a cursor that was valid at some point during the call, but it
// may run slightly ahead of or behind the writer. Callers that need an exact
// snapshot pause capture first (see CaptureThread.SetCaptureEnabled).
type CircularCaptureBuffer struct {
	data       []float32
	cursor     atomic.Int64 // next write position
	validCount atomic.Int64
}

func NewCircularCaptureBuffer(maxSamples int) *CircularCaptureBuffer {
	if maxSamples < 0 {
		maxSamples = 0
	}
	return &CircularCaptureBuffer{data: make([]float32, maxSamples)}
}

// WriteAll writes the whole slice.
func (b *CircularCaptureBuffer) WriteAll(samples []float32) (int, error) {
	return b.Write(samples, 0, len(samples))
}

// Write copies count samples starting at offset into the ring and returns
// the number of samples accepted.
func (b *CircularCaptureBuffer) Write(samples []float32, offset, count int) (int, error) {
	size := len(b.data)
	if count > size {
		return 0, fmt.Errorf("write of %d samples into capacity %d: %w", count, size, ErrWriteTooLarge)
	}
	if count <= 0 {
		return 0, nil
	}
	cursor := int(b.cursor.Load())
	if cursor+count > size {
		// wraps, so write in two parts
		first := size - cursor
		copy(b.data[cursor:], samples[offset:offset+first])
		second := count - first
		copy(b.data[:second], samples[offset+first:offset+count])
		cursor = second
	} else {
		copy(b.data[cursor:cursor+count], samples[offset:offset+count])
		cursor += count
		if cursor == size {
			cursor = 0
		}
	}
	b.cursor.Store(int64(cursor))

	valid := b.validCount.Load() + int64(count)
	if valid > int64(size) {
		valid = int64(size)
	}
	b.validCount.Store(valid)
	return count, nil
}

// ReadMostRecentAll fills the whole slice if enough samples are available.
func (b *CircularCaptureBuffer) ReadMostRecentAll(buffer []float32) int {
	return b.ReadMostRecent(buffer, 0, len(buffer))
}

// ReadMostRecent copies the most recently written samples, oldest first,
// into buffer at offset. It returns the number of samples read, which is
// less than count when fewer valid samples exist.
func (b *CircularCaptureBuffer) ReadMostRecent(buffer []float32, offset, count int) int {
	valid := int(b.validCount.Load())
	if count > valid {
		count = valid
	}
	if count <= 0 {
		return 0
	}
	cursor := int(b.cursor.Load()) // read once in case the writer moves it
	size := len(b.data)
	if cursor-count < 0 {
		first := count - cursor
		copy(buffer[offset:offset+first], b.data[size-first:])
		copy(buffer[offset+first:offset+count], b.data[:cursor])
	} else {
		copy(buffer[offset:offset+count], b.data[cursor-count:cursor])
	}
	return count
}

// Erase forgets all samples. The backing memory is not cleared.
func (b *CircularCaptureBuffer) Erase() {
	b.validCount.Store(0)
	b.cursor.Store(0)
}

// Size is the capacity in samples.
func (b *CircularCaptureBuffer) Size() int {
	return len(b.data)
}

// Available is the number of valid samples currently held.
func (b *CircularCaptureBuffer) Available() int {
	return int(b.validCount.Load())
}
