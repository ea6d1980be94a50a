// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_chart

import "github.com/rapidaai/harness/pkg/utils"

// Trace is one named line of a chart. Values are clamped to [min, max] when
// added so rendering never has to.
type Trace struct {
	name string
	min  float32
	max  float32
	data *CircularFloatArray
}

func (t *Trace) Name() string {
	return t.name
}

func (t *Trace) Add(value float32) {
	t.data.Add(utils.ClampFloat32(value, t.min, t.max))
}

func (t *Trace) Get(delayIndex int) float32 {
	return t.data.Get(delayIndex)
}

func (t *Trace) Size() int {
	return t.data.Size()
}

func (t *Trace) Min() float32 {
	return t.min
}

func (t *Trace) Max() float32 {
	return t.max
}

func (t *Trace) SetMin(value float32) {
	t.min = value
}

func (t *Trace) SetMax(value float32) {
	t.max = value
}

func (t *Trace) Reset() {
	t.data.Clear()
}
