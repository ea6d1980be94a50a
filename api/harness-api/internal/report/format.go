// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_report

import (
	"fmt"
	"strings"

	internal_statistics "github.com/rapidaai/harness/api/harness-api/internal/analysis/statistics"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
)

// Reports are "key = value" lines so test automation can grep them.
const (
	LatencyFormat    = "%4.2f"
	ConfidenceFormat = "%5.3f"
)

// FormatLatencyResult describes one round trip. Latencies are only reported
// for a successful analysis.
func FormatLatencyResult(result internal_type.LatencyResult, timestamps *internal_statistics.DoubleStatistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "confidence = "+ConfidenceFormat+"\n", result.Confidence)
	fmt.Fprintf(&b, "result.text = %s\n", internal_type.AnalyzerResultText(result.Result))
	if result.OK() {
		emptyFrames := result.LatencyFrames - result.BufferSizeFrames
		emptyMillis := 0.0
		if result.SampleRate > 0 {
			emptyMillis = float64(emptyFrames) * 1000.0 / float64(result.SampleRate)
		}
		fmt.Fprintf(&b, "latency.msec = "+LatencyFormat+"\n", result.LatencyMillis())
		fmt.Fprintf(&b, "latency.frames = %d\n", result.LatencyFrames)
		fmt.Fprintf(&b, "latency.empty.msec = "+LatencyFormat+"\n", emptyMillis)
		fmt.Fprintf(&b, "latency.empty.frames = %d\n", emptyFrames)
	}
	fmt.Fprintf(&b, "rms.signal = %7.5f\n", result.SignalRMS)
	fmt.Fprintf(&b, "rms.noise = %7.5f\n", result.NoiseRMS)
	fmt.Fprintf(&b, "correlation = "+ConfidenceFormat+"\n", result.Correlation)

	timestampLatency := -1.0
	count := 0
	if timestamps != nil && timestamps.Count() > 0 {
		timestampLatency = timestamps.Mean()
		count = timestamps.Count()
	}
	fmt.Fprintf(&b, "timestamp.latency.msec = "+LatencyFormat+"\n", timestampLatency)
	if count > 0 {
		fmt.Fprintf(&b, "timestamp.latency.mad = "+LatencyFormat+"\n", timestamps.MeanAbsoluteDeviation(timestampLatency))
	}
	fmt.Fprintf(&b, "timestamp.latency.count = %d\n", count)
	fmt.Fprintf(&b, "reset.count = %d\n", result.ResetCount)
	fmt.Fprintf(&b, "result = %d\n", result.Result)
	return b.String()
}

// FormatAverage summarizes a series of round trips. The report ends with a
// blank line.
func FormatAverage(latencies, confidences, timestamps *internal_statistics.DoubleStatistics, failed int) string {
	var b strings.Builder
	if latencies.Count() == 0 || confidences.Sum() == 0 {
		fmt.Fprintf(&b, "num.iterations = %d\n", latencies.Count())
	} else {
		meanLatency := latencies.Mean()
		timestampMean := -1.0
		timestampMAD := 0.0
		if timestamps.Count() > 0 {
			timestampMean = timestamps.Mean()
			timestampMAD = timestamps.MeanAbsoluteDeviation(timestampMean)
		}
		fmt.Fprintf(&b, "average.latency.msec = "+LatencyFormat+"\n", meanLatency)
		fmt.Fprintf(&b, "mean.absolute.deviation = "+LatencyFormat+"\n", latencies.MeanAbsoluteDeviation(meanLatency))
		fmt.Fprintf(&b, "average.confidence = "+ConfidenceFormat+"\n", confidences.Mean())
		fmt.Fprintf(&b, "min.latency.msec = "+LatencyFormat+"\n", latencies.Min())
		fmt.Fprintf(&b, "max.latency.msec = "+LatencyFormat+"\n", latencies.Max())
		fmt.Fprintf(&b, "num.iterations = %d\n", latencies.Count())
		fmt.Fprintf(&b, "timestamp.latency.msec = "+LatencyFormat+"\n", timestampMean)
		fmt.Fprintf(&b, "timestamp.latency.mad = "+LatencyFormat+"\n", timestampMAD)
	}
	fmt.Fprintf(&b, "num.failed = %d\n", failed)
	b.WriteString("\n")
	return b.String()
}
