// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_tap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(silence, high int, amplitude float32) []float32 {
	out := make([]float32, silence+high)
	for i := silence; i < len(out); i++ {
		out[i] = amplitude
	}
	return out
}

// burst adds an alternating-sign click, roughly what a fingernail tap looks like.
func burst(buf []float32, start, length int, amplitude float32) {
	for i := start; i < start+length; i++ {
		if i%2 == 0 {
			buf[i] += amplitude
		} else {
			buf[i] -= amplitude
		}
	}
}

func TestAnalyze_SilenceHasNoEvents(t *testing.T) {
	a := NewTapLatencyAnalyser(0)
	for _, n := range []int{0, 1, 256, 10000} {
		events := a.Analyze(make([]float32, n), 0, n)
		assert.Empty(t, events, "length %d", n)
		assert.NotNil(t, events)
	}
}

func TestAnalyze_SingleStep(t *testing.T) {
	tests := []struct {
		name      string
		silence   int
		high      int
		amplitude float32
	}{
		{"unit step", 100, 1000, 1.0},
		{"long hold", 100, 5000, 1.0},
		{"half step", 300, 300, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewTapLatencyAnalyser(tt.silence + tt.high)
			buf := step(tt.silence, tt.high, tt.amplitude)
			events := a.Analyze(buf, 0, len(buf))
			require.Len(t, events, 1)
			assert.Equal(t, TypeTap, events[0].Type)
			assert.InDelta(t, tt.silence, events[0].SampleIndex, 4)
		})
	}
}

func TestAnalyze_TwoTaps(t *testing.T) {
	buf := make([]float32, 8000)
	burst(buf, 1000, 50, 0.5)
	burst(buf, 5000, 50, 0.3)

	a := NewTapLatencyAnalyser(len(buf))
	events := a.Analyze(buf, 0, len(buf))
	require.Len(t, events, 2)
	assert.Equal(t, 1000, events[0].SampleIndex)
	assert.Equal(t, 5000, events[1].SampleIndex)
}

func TestAnalyze_ThreeTaps(t *testing.T) {
	buf := make([]float32, 8000)
	burst(buf, 1000, 50, 0.5)
	burst(buf, 5000, 50, 0.3)
	burst(buf, 7000, 20, 0.4)

	events := NewTapLatencyAnalyser(0).Analyze(buf, 0, len(buf))
	require.Len(t, events, 3)
	assert.Equal(t, []int{1000, 5000, 7000},
		[]int{events[0].SampleIndex, events[1].SampleIndex, events[2].SampleIndex})
}

func TestAnalyze_OffsetIsRelative(t *testing.T) {
	buf := make([]float32, 3000)
	burst(buf, 2000, 50, 0.5)

	events := NewTapLatencyAnalyser(0).Analyze(buf, 500, 2500)
	require.Len(t, events, 1)
	assert.Equal(t, 1500, events[0].SampleIndex)
}

func TestAnalyze_LowFrequencyRumbleIgnored(t *testing.T) {
	buf := make([]float32, 4000)
	for i := range buf {
		buf[i] = float32(0.02 * math.Sin(2*math.Pi*float64(i)*30/48000))
	}
	assert.Empty(t, NewTapLatencyAnalyser(0).Analyze(buf, 0, len(buf)))
}

func TestAnalyze_ContinuousToneFiresOnce(t *testing.T) {
	buf := make([]float32, 4050)
	for i := 50; i < len(buf); i++ {
		if i%2 == 1 {
			buf[i] = 0.9
		} else {
			buf[i] = -0.9
		}
	}
	events := NewTapLatencyAnalyser(0).Analyze(buf, 0, len(buf))
	require.Len(t, events, 1)
	assert.Equal(t, 50, events[0].SampleIndex)
}

func TestFilteredBuffer_IsHighPassOutput(t *testing.T) {
	a := NewTapLatencyAnalyser(0)
	buf := step(2, 3, 1.0)
	a.Analyze(buf, 0, len(buf))

	filtered := a.FilteredBuffer()
	require.Len(t, filtered, len(buf))
	assert.Equal(t, float32(0), filtered[0])
	assert.Equal(t, float32(0), filtered[1])
	assert.InDelta(t, 0.8, filtered[2], 1e-6)
	assert.InDelta(t, 0.64, filtered[3], 1e-6)
	assert.InDelta(t, 0.512, filtered[4], 1e-6)
}

func TestAnalyze_ReusesScratch(t *testing.T) {
	a := NewTapLatencyAnalyser(1024)
	buf := make([]float32, 1024)
	burst(buf, 100, 20, 0.5)
	a.Analyze(buf, 0, len(buf))
	first := &a.highPass[0]
	a.Analyze(buf, 0, 512)
	assert.Same(t, first, &a.highPass[0])
}
