// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_runner

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	internal_discontinuity "github.com/rapidaai/harness/api/harness-api/internal/analysis/discontinuity"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
	"github.com/rapidaai/harness/config"
	"github.com/rapidaai/harness/pkg/commons"
)

type ScanMeasurement struct {
	Bursts        int     `json:"bursts"`
	LatencyFrames int     `json:"latencyFrames"`
	Confidence    float64 `json:"confidence"`
}

type ScanReport struct {
	Direction    internal_type.Direction       `json:"direction"`
	Result       internal_discontinuity.Result `json:"result"`
	State        internal_discontinuity.State  `json:"state"`
	Measurements []ScanMeasurement             `json:"measurements"`
}

func (r ScanReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "direction = %s\n", r.Direction)
	fmt.Fprintf(&b, "result.code = %s\n", r.Result.Code)
	if r.Result.NumBursts > 0 {
		fmt.Fprintf(&b, "result.bursts = %d\n", r.Result.NumBursts)
	}
	fmt.Fprintf(&b, "frames.per.burst = %d\n", r.State.FramesPerBurst)
	fmt.Fprintf(&b, "rounds = %d\n", len(r.Measurements))
	fmt.Fprintf(&b, "message = %s\n", r.Result.Message)
	return b.String()
}

// ScanRunner drives the discontinuity search for each stream direction by
// measuring at whatever buffer size the search asks for next.
type ScanRunner struct {
	logger   commons.Logger
	measurer internal_type.LatencyMeasurer
	cfg      config.ScanConfig
}

func NewScanRunner(logger commons.Logger, measurer internal_type.LatencyMeasurer, cfg config.ScanConfig) *ScanRunner {
	return &ScanRunner{
		logger:   logger,
		measurer: measurer,
		cfg:      cfg,
	}
}

// Run scans the given directions, input then output when none are given.
// At most cfg.Parallelism scans share the device at once.
func (r *ScanRunner) Run(ctx context.Context, directions ...internal_type.Direction) ([]ScanReport, error) {
	if len(directions) == 0 {
		directions = []internal_type.Direction{internal_type.DirectionInput, internal_type.DirectionOutput}
	}
	reports := make([]ScanReport, len(directions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Parallelism, 1))
	for i, direction := range directions {
		g.Go(func() error {
			report, err := r.Scan(gctx, direction)
			reports[i] = report
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

// Scan runs one direction to a terminal result. A search that is still
// going after cfg.MaxRounds ends with RESULT_ERROR.
func (r *ScanRunner) Scan(ctx context.Context, direction internal_type.Direction) (ScanReport, error) {
	// frames per burst is learned from the first measurement
	state := internal_discontinuity.NewStateWithLow(0, r.cfg.InitialLowBursts)
	report := ScanReport{Direction: direction}

	for round := 0; round < r.cfg.MaxRounds; round++ {
		bursts := state.RequestedBursts()
		measured, err := r.measurer.MeasureRoundTrip(ctx, internal_type.LatencyRequest{
			Direction:    direction,
			BufferBursts: bursts,
		})
		if err != nil {
			report.State = state
			return report, fmt.Errorf("%s scan at %d bursts: %w", direction, bursts, err)
		}
		if state.FramesPerBurst == 0 {
			state.FramesPerBurst = measured.FramesPerBurst
		}
		latency := measured.LatencyFrames
		if !measured.OK() {
			latency = 0
		}
		report.Measurements = append(report.Measurements, ScanMeasurement{
			Bursts:        bursts,
			LatencyFrames: latency,
			Confidence:    measured.Confidence,
		})

		var result internal_discontinuity.Result
		state, result = state.Next(internal_discontinuity.Measurement{
			LatencyFrames:    latency,
			Confidence:       measured.Confidence,
			CapacityInBursts: measured.CapacityInBursts,
			MMAPExclusive:    measured.MMAPExclusive,
		})
		r.logger.Debug("discontinuity scan step",
			"direction", direction,
			"bursts", bursts,
			"latencyFrames", latency,
			"phase", state.Phase,
			"code", result.Code)
		if result.Terminal() {
			report.State = state
			report.Result = result
			r.logger.Info("discontinuity scan done", "direction", direction, "code", result.Code, "message", result.Message)
			return report, nil
		}
	}

	report.State = state
	report.Result = internal_discontinuity.Result{
		Code:    internal_discontinuity.ResultError,
		Message: fmt.Sprintf("ERROR - no result after %d rounds", r.cfg.MaxRounds),
	}
	r.logger.Warn("discontinuity scan gave up", "direction", direction, "rounds", r.cfg.MaxRounds)
	return report, nil
}
