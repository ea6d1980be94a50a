// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	internal_statistics "github.com/rapidaai/harness/api/harness-api/internal/analysis/statistics"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
)

func statsOf(values ...float64) *internal_statistics.DoubleStatistics {
	s := internal_statistics.NewDoubleStatistics()
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func TestFormatAverage(t *testing.T) {
	text := FormatAverage(statsOf(10, 12, 14), statsOf(0.9, 0.8, 1.0), statsOf(9.5, 11.5), 1)

	assert.Equal(t, "average.latency.msec = 12.00\n"+
		"mean.absolute.deviation = 1.33\n"+
		"average.confidence = 0.900\n"+
		"min.latency.msec = 10.00\n"+
		"max.latency.msec = 14.00\n"+
		"num.iterations = 3\n"+
		"timestamp.latency.msec = 10.50\n"+
		"timestamp.latency.mad = 1.00\n"+
		"num.failed = 1\n\n", text)
}

func TestFormatAverage_NoTimestamps(t *testing.T) {
	text := FormatAverage(statsOf(10), statsOf(0.5), statsOf(), 0)

	assert.Contains(t, text, "timestamp.latency.msec = -1.00\n")
	assert.Contains(t, text, "timestamp.latency.mad = 0.00\n")
}

func TestFormatAverage_NothingMeasured(t *testing.T) {
	assert.Equal(t, "num.iterations = 0\nnum.failed = 2\n\n", FormatAverage(statsOf(), statsOf(), statsOf(), 2))
}

func TestFormatLatencyResult(t *testing.T) {
	result := internal_type.LatencyResult{
		LatencyFrames:    960,
		SampleRate:       48000,
		BufferSizeFrames: 192,
		Confidence:       0.95,
		Correlation:      0.95,
		SignalRMS:        0.1,
		NoiseRMS:         0.001,
	}

	text := FormatLatencyResult(result, nil)

	assert.Contains(t, text, "confidence = 0.950\n")
	assert.Contains(t, text, "result.text = OK\n")
	assert.Contains(t, text, "latency.msec = 20.00\n")
	assert.Contains(t, text, "latency.frames = 960\n")
	assert.Contains(t, text, "latency.empty.msec = 16.00\n")
	assert.Contains(t, text, "latency.empty.frames = 768\n")
	assert.Contains(t, text, "rms.signal = 0.10000\n")
	assert.Contains(t, text, "timestamp.latency.msec = -1.00\n")
	assert.Contains(t, text, "timestamp.latency.count = 0\n")
	assert.NotContains(t, text, "timestamp.latency.mad")
	assert.Contains(t, text, "result = 0\n")
}

func TestFormatLatencyResult_Failed(t *testing.T) {
	result := internal_type.LatencyResult{Result: internal_type.AnalyzerErrorNoisy, LatencyFrames: 960, SampleRate: 48000}

	text := FormatLatencyResult(result, statsOf(19, 21))

	assert.Contains(t, text, "result.text = ERROR_NOISY\n")
	assert.NotContains(t, text, "latency.msec")
	assert.Contains(t, text, "timestamp.latency.msec = 20.00\n")
	assert.Contains(t, text, "timestamp.latency.mad = 1.00\n")
	assert.Contains(t, text, "timestamp.latency.count = 2\n")
	assert.Contains(t, text, "result = -99\n")
}
