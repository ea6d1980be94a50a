// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package internal_tap finds tap transients in a captured recording so the
// delay between a touch and its audible response can be measured.
package internal_tap

const (
	TypeTap = 0
)

// Tuned against real hardware; changing them changes what counts as a tap.
const (
	// HighPassAlpha attenuates low-frequency rumble (air conditioners, etc.)
	// while passing the sharp edges of a tap and of the response blip.
	HighPassAlpha = float32(0.8)
	Droop         = float32(0.995)
	EdgeThreshold = float32(0.01)
	LowFraction   = float32(0.5)

	slowCoefficient = float32(0.01)
	fastCoefficient = float32(0.10)
)

type TapLatencyEvent struct {
	Type        int `json:"type"`
	SampleIndex int `json:"sampleIndex"`
}

// TapLatencyAnalyser extracts audio event edges from a recording. Scratch
// buffers are kept between calls and only grow, so repeated analysis of
// same-sized captures does not allocate them again.
type TapLatencyAnalyser struct {
	highPass []float32
	peak     []float32
	filtered []float32
	events   []TapLatencyEvent
}

// NewTapLatencyAnalyser pre-sizes the scratch buffers for maxSamples.
func NewTapLatencyAnalyser(maxSamples int) *TapLatencyAnalyser {
	a := &TapLatencyAnalyser{}
	a.reserve(maxSamples)
	return a
}

func (a *TapLatencyAnalyser) reserve(n int) {
	if n <= cap(a.highPass) {
		return
	}
	a.highPass = make([]float32, n)
	a.peak = make([]float32, n)
}

// Analyze looks for tap edges in buffer[offset:offset+numSamples]. Events are
// ordered by sample index relative to offset. The returned slice is reused
// by the next call.
func (a *TapLatencyAnalyser) Analyze(buffer []float32, offset, numSamples int) []TapLatencyEvent {
	if numSamples < 0 {
		numSamples = 0
	}
	a.reserve(numSamples)
	highPass := a.highPass[:numSamples]
	peak := a.peak[:numSamples]

	highPassFilter(buffer[offset:offset+numSamples], highPass)
	fillPeakBuffer(highPass, peak)
	a.filtered = highPass
	if a.events == nil {
		a.events = make([]TapLatencyEvent, 0, 8)
	}
	a.events = scanForEdges(peak, a.events[:0])
	return a.events
}

// FilteredBuffer returns the high-pass filtered samples of the last Analyze
// call. It aliases internal storage.
func (a *TapLatencyAnalyser) FilteredBuffer() []float32 {
	return a.filtered
}

// Based on https://en.wikipedia.org/wiki/High-pass_filter
func highPassFilter(in, out []float32) {
	var xn1, yn1 float32
	for i, xn := range in {
		yn := HighPassAlpha * (yn1 + xn - xn1)
		out[i] = yn
		xn1 = xn
		yn1 = yn
	}
}

// fillPeakBuffer is an envelope follower that rides the peaks of the
// waveform and then decays exponentially.
func fillPeakBuffer(in, out []float32) {
	var previous float32
	for i, v := range in {
		if v < 0 {
			v = -v
		}
		output := previous * Droop
		if v > output {
			output = v
		}
		previous = output
		out[i] = output
	}
}

func scanForEdges(peak []float32, events []TapLatencyEvent) []TapLatencyEvent {
	var slow, fast float32
	lowThreshold := EdgeThreshold
	armed := true
	sampleIndex := 0
	for _, level := range peak {
		slow = slow + (level-slow)*slowCoefficient
		fast = fast + (level-fast)*fastCoefficient
		if armed && fast > EdgeThreshold && fast > 2*slow {
			events = append(events, TapLatencyEvent{Type: TypeTap, SampleIndex: sampleIndex})
			armed = false
			// a lower threshold from the detected peak height lets a second,
			// smaller peak through but not the ripple that follows this one
			lowThreshold = fast * LowFraction
		}
		// hysteresis
		if fast < lowThreshold {
			armed = true
		}
		sampleIndex++
	}
	return events
}
