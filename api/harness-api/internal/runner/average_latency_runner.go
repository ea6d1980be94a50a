// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_runner

import (
	"context"
	"fmt"
	"time"

	internal_statistics "github.com/rapidaai/harness/api/harness-api/internal/analysis/statistics"
	internal_chart "github.com/rapidaai/harness/api/harness-api/internal/chart"
	internal_report "github.com/rapidaai/harness/api/harness-api/internal/report"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
	"github.com/rapidaai/harness/config"
	"github.com/rapidaai/harness/pkg/commons"
)

const (
	TraceLatency    = "latency.msec"
	TraceConfidence = "confidence"

	maxChartLatencyMillis = 500
)

type AverageResult struct {
	GoodRuns         int                         `json:"goodRuns"`
	BadRuns          int                         `json:"badRuns"`
	Cancelled        bool                        `json:"cancelled"`
	Latency          internal_statistics.Summary `json:"latency"`
	Confidence       internal_statistics.Summary `json:"confidence"`
	TimestampLatency internal_statistics.Summary `json:"timestampLatency"`
	Text             string                      `json:"text"`
}

// AverageLatencyRunner repeats round-trip measurements until enough of them
// succeeded, or gives up after too many failures.
type AverageLatencyRunner struct {
	logger   commons.Logger
	measurer internal_type.LatencyMeasurer
	cfg      config.LatencyConfig
	chart    *internal_chart.Chart
	progress func(string)
}

type AverageOption func(*AverageLatencyRunner)

// WithChart plots every good run on chart's latency and confidence traces.
func WithChart(chart *internal_chart.Chart) AverageOption {
	return func(r *AverageLatencyRunner) { r.chart = chart }
}

// WithProgress receives the running report after every run.
func WithProgress(progress func(string)) AverageOption {
	return func(r *AverageLatencyRunner) { r.progress = progress }
}

func NewAverageLatencyRunner(logger commons.Logger, measurer internal_type.LatencyMeasurer, cfg config.LatencyConfig, opts ...AverageOption) *AverageLatencyRunner {
	r := &AverageLatencyRunner{
		logger:   logger,
		measurer: measurer,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewLatencyChart creates a chart with the traces the runner feeds.
func NewLatencyChart(points int) (*internal_chart.Chart, error) {
	chart, err := internal_chart.NewChart(points)
	if err != nil {
		return nil, err
	}
	if _, err := chart.CreateTrace(TraceLatency, 0, maxChartLatencyMillis); err != nil {
		return nil, err
	}
	if _, err := chart.CreateTrace(TraceConfidence, 0, 1); err != nil {
		return nil, err
	}
	return chart, nil
}

// Run blocks until the average is complete, the runner gives up, or ctx is
// done. Giving up is not an error: the result is marked Cancelled.
func (r *AverageLatencyRunner) Run(ctx context.Context, request internal_type.LatencyRequest) (*AverageResult, error) {
	latencies := internal_statistics.NewDoubleStatistics()
	confidences := internal_statistics.NewDoubleStatistics()
	timestamps := internal_statistics.NewDoubleStatistics()
	badRuns := 0
	started := time.Now()

	for {
		result, err := r.measurer.MeasureRoundTrip(ctx, request)
		if err != nil {
			return nil, fmt.Errorf("measure round trip: %w", err)
		}

		if !result.OK() || result.LatencyFrames <= 0 {
			badRuns++
			if badRuns > r.cfg.MaxBadRuns {
				text := "averaging cancelled due to error\n" + internal_report.FormatAverage(latencies, confidences, timestamps, badRuns)
				r.logger.Warn("averaging cancelled", "badRuns", badRuns, "goodRuns", latencies.Count())
				r.report(text)
				return summarizeAverage(latencies, confidences, timestamps, badRuns, true, text), nil
			}
			r.logger.Debug("skipping bad run", "result", internal_type.AnalyzerResultText(result.Result), "badRuns", badRuns)
			r.report(fmt.Sprintf("skipping this bad run, %d of %d max\n", badRuns, r.cfg.MaxBadRuns))
		} else {
			latencies.Add(result.LatencyMillis())
			confidences.Add(result.Confidence)
			if result.TimestampLatencyMillis > 0 {
				timestamps.Add(result.TimestampLatencyMillis)
			}
			if r.chart != nil {
				r.chart.Append(float32(time.Since(started).Seconds()), float32(result.LatencyMillis()), float32(result.Confidence))
			}
			text := internal_report.FormatAverage(latencies, confidences, timestamps, badRuns)
			r.report(text)
			if latencies.Count() >= r.cfg.GoodRunsRequired {
				r.logger.Info("average latency complete",
					"latencyMillis", latencies.Mean(),
					"runs", latencies.Count(),
					"badRuns", badRuns)
				return summarizeAverage(latencies, confidences, timestamps, badRuns, false, text), nil
			}
		}

		if err := sleepContext(ctx, r.cfg.RunDelay); err != nil {
			return nil, err
		}
	}
}

func (r *AverageLatencyRunner) report(text string) {
	if r.progress != nil {
		r.progress(text)
	}
}

func summarizeAverage(latencies, confidences, timestamps *internal_statistics.DoubleStatistics, badRuns int, cancelled bool, text string) *AverageResult {
	return &AverageResult{
		GoodRuns:         latencies.Count(),
		BadRuns:          badRuns,
		Cancelled:        cancelled,
		Latency:          latencies.Summarize(),
		Confidence:       confidences.Summarize(),
		TimestampLatency: timestamps.Summarize(),
		Text:             text,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
