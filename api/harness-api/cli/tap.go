// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	internal_decoder "github.com/rapidaai/harness/api/harness-api/internal/audio/decoder"
	internal_recorder "github.com/rapidaai/harness/api/harness-api/internal/audio/recorder"
	internal_engine "github.com/rapidaai/harness/api/harness-api/internal/engine"
	internal_report "github.com/rapidaai/harness/api/harness-api/internal/report"
	internal_runner "github.com/rapidaai/harness/api/harness-api/internal/runner"
	"github.com/rapidaai/harness/pkg/utils"
)

// runTap replays a capture through the capture thread, the way a live
// recording arrives, then analyses the most recent analysis window.
func runTap(ctx context.Context, h *harness, args []string) error {
	fs := h.flagSet("tap")
	file := fs.String("file", "", "WAV capture of a tap and its tone")
	simulate := fs.Duration("simulate", 0, "synthesize a capture with this tap-to-tone latency instead of reading -file")
	save := fs.String("save", "", "write the analysed window to this WAV file")
	realtime := fs.Bool("realtime", false, "replay the capture at its real rate")
	verbose := fs.Bool("v", false, "log to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if utils.IsEmpty(*file) == (*simulate == 0) {
		return errors.New("exactly one of -file or -simulate is required")
	}
	if err := h.initLogger(*verbose); err != nil {
		return err
	}
	defer h.logger.Sync()

	rate := h.cfg.Capture.SampleRate
	var opts []internal_decoder.FileSourceOption
	if *realtime {
		opts = append(opts, internal_decoder.Realtime())
	}
	var source *internal_decoder.FileSource
	if !utils.IsEmpty(*file) {
		var err error
		if source, err = internal_decoder.OpenFileSource(*file, rate, opts...); err != nil {
			return err
		}
	} else {
		synth := internal_engine.DefaultTapToTone(*simulate)
		synth.SampleRate = rate
		source = internal_decoder.NewFileSource(synth.Synthesize(), rate, opts...)
	}

	recorder := internal_recorder.NewCaptureThread(h.logger, source, h.cfg.Capture.MaxSamples(),
		internal_recorder.WithChunkSize(h.cfg.Capture.ChunkSize))
	tester := internal_runner.NewTapToToneTester(h.logger, h.cfg.Capture, recorder)
	if err := tester.Start(ctx); err != nil {
		return err
	}
	select {
	case <-recorder.Done():
	case <-ctx.Done():
		tester.Stop()
		return ctx.Err()
	}
	tester.Stop()
	if err := recorder.Err(); err != nil {
		return err
	}

	result := tester.AnalyzeCapturedAudio()
	summary := tester.Summarize(result)
	h.print("tap-to-tone", summary)
	h.logger.Info("tap analysed", "edges", len(result.Events), "samples", len(result.Samples))

	if *save != "" {
		if err := os.WriteFile(*save, internal_decoder.EncodeWAV(result.Samples, result.FrameRate), 0o644); err != nil {
			return fmt.Errorf("save capture: %w", err)
		}
	}

	_, store, closeStore, err := h.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	status := internal_report.StatusFailed
	latency, ok := result.LatencySamples()
	if ok {
		status = internal_report.StatusOK
	}
	return h.archive(ctx, store, internal_report.KindTap, "", status, summary, map[string]any{
		"frameRate":      result.FrameRate,
		"events":         result.Events,
		"latencySamples": latency,
		"analysedAt":     time.Now().UTC(),
	})
}
