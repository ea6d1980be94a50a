// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_engine "github.com/rapidaai/harness/api/harness-api/internal/engine"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
	"github.com/rapidaai/harness/config"
)

func testLatencyConfig() config.LatencyConfig {
	return config.LatencyConfig{GoodRunsRequired: 5, MaxBadRuns: 5}
}

func TestAverageLatencyRunner_GoodRuns(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger, internal_engine.WithTimestamps(true))
	chart, err := NewLatencyChart(16)
	require.NoError(t, err)

	var progress []string
	runner := NewAverageLatencyRunner(logger, engine, testLatencyConfig(),
		WithChart(chart),
		WithProgress(func(text string) { progress = append(progress, text) }))

	result, err := runner.Run(context.Background(), internal_type.LatencyRequest{Direction: internal_type.DirectionOutput})
	require.NoError(t, err)
	assert.False(t, result.Cancelled)
	assert.Equal(t, 5, result.GoodRuns)
	assert.Equal(t, 0, result.BadRuns)
	assert.Equal(t, 5, engine.Calls())
	// 500 + 2*96 frames at 48 kHz
	assert.InDelta(t, 14.416, result.Latency.Mean, 0.001)
	assert.InDelta(t, 0.95, result.Confidence.Mean, 1e-9)
	assert.Equal(t, 5, result.TimestampLatency.Count)
	assert.Contains(t, result.Text, "num.iterations = 5\n")
	assert.Len(t, progress, 5)
	assert.Equal(t, 5, chart.Size())
}

func TestAverageLatencyRunner_SkipsBadRuns(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger, internal_engine.WithFailEvery(2))

	var progress []string
	runner := NewAverageLatencyRunner(logger, engine, testLatencyConfig(),
		WithProgress(func(text string) { progress = append(progress, text) }))

	result, err := runner.Run(context.Background(), internal_type.LatencyRequest{})
	require.NoError(t, err)
	assert.False(t, result.Cancelled)
	assert.Equal(t, 5, result.GoodRuns)
	assert.Equal(t, 4, result.BadRuns)
	assert.Equal(t, 9, engine.Calls())
	assert.Equal(t, "skipping this bad run, 1 of 5 max\n", progress[1])
}

func TestAverageLatencyRunner_CancelsAfterTooManyBadRuns(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger, internal_engine.WithFailEvery(1))
	runner := NewAverageLatencyRunner(logger, engine, testLatencyConfig())

	result, err := runner.Run(context.Background(), internal_type.LatencyRequest{})
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.Equal(t, 0, result.GoodRuns)
	assert.Equal(t, 6, result.BadRuns)
	assert.True(t, strings.HasPrefix(result.Text, "averaging cancelled due to error\n"))
}

func TestAverageLatencyRunner_HonoursContext(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger)
	cfg := testLatencyConfig()
	cfg.RunDelay = time.Hour
	runner := NewAverageLatencyRunner(logger, engine, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := runner.Run(ctx, internal_type.LatencyRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, engine.Calls())
}

func TestAverageLatencyRunner_MeasureError(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger)
	runner := NewAverageLatencyRunner(logger, engine, testLatencyConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runner.Run(ctx, internal_type.LatencyRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
