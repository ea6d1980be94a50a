// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_discontinuity "github.com/rapidaai/harness/api/harness-api/internal/analysis/discontinuity"
	internal_engine "github.com/rapidaai/harness/api/harness-api/internal/engine"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
	"github.com/rapidaai/harness/config"
)

func testScanConfig() config.ScanConfig {
	return config.ScanConfig{InitialLowBursts: 2, Parallelism: 2, MaxRounds: 32}
}

func TestScanRunner_FindsDiscontinuity(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger, internal_engine.WithDiscontinuity(10, 1000))
	runner := NewScanRunner(logger, engine, testScanConfig())

	reports, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, internal_type.DirectionInput, reports[0].Direction)
	assert.Equal(t, internal_type.DirectionOutput, reports[1].Direction)
	for _, report := range reports {
		assert.Equal(t, internal_discontinuity.ResultDiscontinuity, report.Result.Code)
		assert.Equal(t, 10, report.State.LowBursts)
		assert.Equal(t, 11, report.State.HighBursts)
		assert.Equal(t, 96, report.State.FramesPerBurst)
		assert.LessOrEqual(t, len(report.Measurements), 7)
		assert.Equal(t, 2, report.Measurements[0].Bursts)
		assert.Equal(t, 32, report.Measurements[1].Bursts)
		assert.Contains(t, report.Text(), "result.code = RESULT_DISCONTINUITY\n")
	}
}

func TestScanRunner_Linear(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger)
	runner := NewScanRunner(logger, engine, testScanConfig())

	report, err := runner.Scan(context.Background(), internal_type.DirectionOutput)
	require.NoError(t, err)
	assert.Equal(t, internal_discontinuity.ResultOK, report.Result.Code)
	assert.Len(t, report.Measurements, 2)
}

func TestScanRunner_SkipsWithoutMMAP(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger, internal_engine.WithMMAPExclusive(false))
	runner := NewScanRunner(logger, engine, testScanConfig())

	report, err := runner.Scan(context.Background(), internal_type.DirectionInput)
	require.NoError(t, err)
	assert.Equal(t, internal_discontinuity.ResultOK, report.Result.Code)
	assert.Len(t, report.Measurements, 1)
}

func TestScanRunner_GivesUpAfterMaxRounds(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger, internal_engine.WithDiscontinuity(10, 1000))
	cfg := testScanConfig()
	cfg.MaxRounds = 2
	runner := NewScanRunner(logger, engine, cfg)

	report, err := runner.Scan(context.Background(), internal_type.DirectionInput)
	require.NoError(t, err)
	assert.Equal(t, internal_discontinuity.ResultError, report.Result.Code)
	assert.Equal(t, "ERROR - no result after 2 rounds", report.Result.Message)
	assert.Len(t, report.Measurements, 2)
}

func TestScanRunner_FailedAnalysisEndsScan(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger, internal_engine.WithFailEvery(1))
	runner := NewScanRunner(logger, engine, testScanConfig())

	report, err := runner.Scan(context.Background(), internal_type.DirectionInput)
	require.NoError(t, err)
	assert.Equal(t, internal_discontinuity.ResultError, report.Result.Code)
	assert.Equal(t, 0, report.Measurements[0].LatencyFrames)
}

func TestScanRunner_PropagatesErrors(t *testing.T) {
	logger := newTestLogger(t)
	engine := internal_engine.NewSimulatedEngine(logger)
	runner := NewScanRunner(logger, engine, testScanConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runner.Run(ctx, internal_type.DirectionInput)
	assert.ErrorIs(t, err, context.Canceled)
}
