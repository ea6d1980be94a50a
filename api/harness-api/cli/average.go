// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_cli

import (
	"context"
	"fmt"

	internal_engine "github.com/rapidaai/harness/api/harness-api/internal/engine"
	internal_report "github.com/rapidaai/harness/api/harness-api/internal/report"
	internal_runner "github.com/rapidaai/harness/api/harness-api/internal/runner"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
)

func runAverage(ctx context.Context, h *harness, args []string) error {
	fs := h.flagSet("average")
	direction := fs.String("direction", string(internal_type.DirectionOutput), "input or output")
	bursts := fs.Int("bursts", internal_engine.DefaultBufferBursts, "buffer size in bursts")
	runs := fs.Int("runs", h.cfg.Latency.GoodRunsRequired, "good runs to average")
	maxBad := fs.Int("max-bad", h.cfg.Latency.MaxBadRuns, "bad runs tolerated before giving up")
	delay := fs.Duration("delay", h.cfg.Latency.RunDelay, "pause between runs")
	progress := fs.Bool("progress", false, "print the running report after every run")
	engineFlags := registerEngineFlags(fs)
	verbose := fs.Bool("v", false, "log to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	directions, err := parseDirections(*direction)
	if err != nil {
		return err
	}
	if len(directions) != 1 {
		return fmt.Errorf("average measures one direction, got %q", *direction)
	}
	if *runs <= 0 {
		return fmt.Errorf("-runs must be positive, got %d", *runs)
	}
	if err := h.initLogger(*verbose); err != nil {
		return err
	}
	defer h.logger.Sync()

	_, store, closeStore, err := h.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cfg := h.cfg.Latency
	cfg.GoodRunsRequired = *runs
	cfg.MaxBadRuns = *maxBad
	cfg.RunDelay = *delay

	var opts []internal_runner.AverageOption
	if *progress {
		opts = append(opts, internal_runner.WithProgress(func(text string) {
			fmt.Fprint(h.stderr, text)
		}))
	}
	measurer := internal_engine.NewSimulatedEngine(h.logger, engineFlags.options()...)
	result, err := internal_runner.NewAverageLatencyRunner(h.logger, measurer, cfg, opts...).Run(ctx, internal_type.LatencyRequest{
		Direction:    directions[0],
		BufferBursts: *bursts,
	})
	if err != nil {
		return err
	}
	h.print("average latency", result.Text)

	status := internal_report.StatusOK
	if result.Cancelled {
		status = internal_report.StatusCancelled
	}
	return h.archive(ctx, store, internal_report.KindAverage, string(directions[0]), status, result.Text, result)
}
