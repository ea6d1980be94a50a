// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_type

import "context"

type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Analyzer result codes reported by the audio engine.
const (
	AnalyzerOK                = 0
	AnalyzerErrorNoisy        = -99
	AnalyzerErrorVolumeLow    = -98
	AnalyzerErrorVolumeHigh   = -97
	AnalyzerErrorConfidence   = -96
	AnalyzerErrorInvalidState = -95
	AnalyzerErrorGlitches     = -94
	AnalyzerErrorNoLock       = -93
)

func AnalyzerResultText(code int) string {
	switch code {
	case AnalyzerOK:
		return "OK"
	case AnalyzerErrorNoisy:
		return "ERROR_NOISY"
	case AnalyzerErrorVolumeLow:
		return "ERROR_VOLUME_TOO_LOW"
	case AnalyzerErrorVolumeHigh:
		return "ERROR_VOLUME_TOO_HIGH"
	case AnalyzerErrorConfidence:
		return "ERROR_CONFIDENCE"
	case AnalyzerErrorInvalidState:
		return "ERROR_INVALID_STATE"
	case AnalyzerErrorGlitches:
		return "ERROR_GLITCHES"
	case AnalyzerErrorNoLock:
		return "ERROR_NO_LOCK"
	default:
		return "UNKNOWN"
	}
}

// LatencyRequest asks the engine for one round trip. BufferBursts <= 0 keeps
// the stream's default buffer size. Direction selects which stream of the
// full duplex pair gets resized.
type LatencyRequest struct {
	Direction    Direction `json:"direction"`
	BufferBursts int       `json:"bufferBursts"`
}

// LatencyResult is what the engine's round-trip analyzer reports once done.
type LatencyResult struct {
	Result           int     `json:"result"`
	LatencyFrames    int     `json:"latencyFrames"`
	SampleRate       int     `json:"sampleRate"`
	Confidence       float64 `json:"confidence"`
	Correlation      float64 `json:"correlation"`
	SignalRMS        float64 `json:"signalRms"`
	NoiseRMS         float64 `json:"noiseRms"`
	BufferSizeFrames int     `json:"bufferSizeFrames"`
	FramesPerBurst   int     `json:"framesPerBurst"`
	CapacityInBursts int     `json:"capacityInBursts"`
	MMAPExclusive    bool    `json:"mmapExclusive"`
	ResetCount       int     `json:"resetCount"`

	// TimestampLatencyMillis is the latency derived from stream timestamps,
	// <= 0 when the device does not support input timestamps.
	TimestampLatencyMillis float64 `json:"timestampLatencyMillis"`
}

func (r LatencyResult) OK() bool {
	return r.Result == AnalyzerOK
}

func (r LatencyResult) LatencyMillis() float64 {
	if r.SampleRate <= 0 {
		return 0
	}
	return float64(r.LatencyFrames) * 1000.0 / float64(r.SampleRate)
}

// LatencyMeasurer is the audio engine seen from the harness: it opens a full
// duplex stream, runs the round-trip analyzer and closes the stream again.
type LatencyMeasurer interface {
	MeasureRoundTrip(ctx context.Context, request LatencyRequest) (LatencyResult, error)
}

// SampleSource delivers mono float samples, blocking until some are
// available. A return of 0 samples with a nil error means end of stream.
type SampleSource interface {
	SampleRate() int
	Read(buffer []float32) (int, error)
}
