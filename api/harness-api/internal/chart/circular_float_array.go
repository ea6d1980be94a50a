// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_chart

import (
	"errors"
	"fmt"

	"github.com/rapidaai/harness/pkg/utils"
)

var ErrNotPowerOfTwo = errors.New("capacity is not a power of two")

// CircularFloatArray keeps the most recent values, overwriting the oldest
// once full.
type CircularFloatArray struct {
	data   []float32
	mask   int
	cursor int // next location to be written
}

func NewCircularFloatArray(numValues int) (*CircularFloatArray, error) {
	if !utils.IsPowerOfTwo(numValues) {
		return nil, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, numValues)
	}
	return &CircularFloatArray{
		data: make([]float32, numValues),
		mask: numValues - 1,
	}, nil
}

func (c *CircularFloatArray) Add(value float32) {
	c.data[c.cursor&c.mask] = value
	c.cursor++
}

// Size is the number of valid entries.
func (c *CircularFloatArray) Size() int {
	return min(c.cursor, len(c.data))
}

func (c *CircularFloatArray) Capacity() int {
	return len(c.data)
}

// Get fetches a previous value. A delayIndex of 1 returns the most recently
// written value, 2 the one before it.
func (c *CircularFloatArray) Get(delayIndex int) float32 {
	return c.data[(c.cursor-delayIndex)&c.mask]
}

// Values copies the valid entries oldest to newest into dst.
func (c *CircularFloatArray) Values(dst []float32) []float32 {
	dst = dst[:0]
	for delay := c.Size(); delay >= 1; delay-- {
		dst = append(dst, c.Get(delay))
	}
	return dst
}

func (c *CircularFloatArray) Clear() {
	c.cursor = 0
}
