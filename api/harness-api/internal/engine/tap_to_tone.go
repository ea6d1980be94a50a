// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_engine

import (
	"math"
	"time"
)

// TapToTone describes a synthetic capture: a finger click followed, after
// the device's tap-to-tone latency, by the beep it triggered.
type TapToTone struct {
	SampleRate int
	Length     time.Duration
	TapAt      time.Duration
	Latency    time.Duration

	ClickSamples   int
	ClickAmplitude float64
	ToneAmplitude  float64
	ToneFrequency  float64
	ToneLength     time.Duration
}

func DefaultTapToTone(latency time.Duration) TapToTone {
	return TapToTone{
		SampleRate:     DefaultSampleRate,
		Length:         time.Second,
		TapAt:          100 * time.Millisecond,
		Latency:        latency,
		ClickSamples:   48,
		ClickAmplitude: 0.5,
		ToneAmplitude:  0.3,
		ToneFrequency:  1000,
		ToneLength:     50 * time.Millisecond,
	}
}

func (t TapToTone) samplesIn(d time.Duration) int {
	return int(int64(d) * int64(t.SampleRate) / int64(time.Second))
}

// TapIndex and ToneIndex are where the two edges start.
func (t TapToTone) TapIndex() int {
	return t.samplesIn(t.TapAt)
}

func (t TapToTone) ToneIndex() int {
	return t.TapIndex() + t.samplesIn(t.Latency)
}

// Synthesize renders the capture. The tone starts at a crest so its onset
// is as sharp as a real speaker's.
func (t TapToTone) Synthesize() []float32 {
	samples := make([]float32, t.samplesIn(t.Length))
	tap := t.TapIndex()
	for i := tap; i < min(len(samples), tap+t.ClickSamples); i++ {
		samples[i] = float32(t.ClickAmplitude)
	}
	tone := t.ToneIndex()
	for i := tone; i < min(len(samples), tone+t.samplesIn(t.ToneLength)); i++ {
		phase := 2*math.Pi*t.ToneFrequency*float64(i-tone)/float64(t.SampleRate) + math.Pi/2
		samples[i] = float32(t.ToneAmplitude * math.Sin(phase))
	}
	return samples
}
