// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_cli

import (
	"context"

	internal_engine "github.com/rapidaai/harness/api/harness-api/internal/engine"
	internal_report "github.com/rapidaai/harness/api/harness-api/internal/report"
	internal_runner "github.com/rapidaai/harness/api/harness-api/internal/runner"
)

func runScan(ctx context.Context, h *harness, args []string) error {
	fs := h.flagSet("scan")
	direction := fs.String("direction", "both", "input, output or both")
	parallelism := fs.Int("parallelism", h.cfg.Scan.Parallelism, "directions scanned at once")
	engineFlags := registerEngineFlags(fs)
	verbose := fs.Bool("v", false, "log to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	directions, err := parseDirections(*direction)
	if err != nil {
		return err
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

	cfg := h.cfg.Scan
	cfg.Parallelism = *parallelism
	measurer := internal_engine.NewSimulatedEngine(h.logger, engineFlags.options()...)
	reports, err := internal_runner.NewScanRunner(h.logger, measurer, cfg).Run(ctx, directions...)
	if err != nil {
		return err
	}
	for _, report := range reports {
		text := report.Text()
		h.print("scan "+string(report.Direction), text)
		if err := h.archive(ctx, store, internal_report.KindScan, string(report.Direction), internal_report.ScanStatus(report.Result.Code), text, report); err != nil {
			return err
		}
	}
	return nil
}
