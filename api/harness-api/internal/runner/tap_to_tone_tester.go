// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	internal_tap "github.com/rapidaai/harness/api/harness-api/internal/analysis/tap"
	internal_recorder "github.com/rapidaai/harness/api/harness-api/internal/audio/recorder"
	"github.com/rapidaai/harness/config"
	"github.com/rapidaai/harness/pkg/commons"
	"github.com/rapidaai/harness/pkg/utils"
)

var ErrNoRecorder = errors.New("tap-to-tone tester has no recorder")

type TestResult struct {
	Samples   []float32                      `json:"samples,omitempty"`
	Filtered  []float32                      `json:"filtered,omitempty"`
	FrameRate int                            `json:"frameRate"`
	Events    []internal_tap.TapLatencyEvent `json:"events"`
}

// LatencySamples is the distance between the tap and the tone; only a
// capture with exactly two edges has one.
func (r *TestResult) LatencySamples() (int, bool) {
	if r == nil || len(r.Events) != 2 {
		return 0, false
	}
	return r.Events[1].SampleIndex - r.Events[0].SampleIndex, true
}

// TapToToneTester measures the time from a finger tap on the device to the
// tone it triggers, both picked up by the same microphone.
type TapToToneTester struct {
	logger   commons.Logger
	recorder *internal_recorder.CaptureThread
	cfg      config.CaptureConfig

	mu         sync.Mutex
	analyser   *internal_tap.TapLatencyAnalyser
	armed      bool
	count      int
	sumSamples int
	minMillis  int
	maxMillis  int
	frameRate  int
}

// NewTapToToneTester analyses captures from recorder. A nil recorder limits
// the tester to AnalyzeSamples.
func NewTapToToneTester(logger commons.Logger, cfg config.CaptureConfig, recorder *internal_recorder.CaptureThread) *TapToToneTester {
	t := &TapToToneTester{
		logger:    logger,
		recorder:  recorder,
		cfg:       cfg,
		analyser:  internal_tap.NewTapLatencyAnalyser(cfg.AnalysisSamples()),
		armed:     true,
		frameRate: cfg.SampleRate,
	}
	t.resetLocked()
	return t
}

func (t *TapToToneTester) Start(ctx context.Context) error {
	if t.recorder == nil {
		return ErrNoRecorder
	}
	t.recorder.Start(ctx)
	return nil
}

func (t *TapToToneTester) Stop() {
	if t.recorder != nil {
		t.recorder.Stop()
	}
}

// IsArmed is true when ready for a tap, false while one is being analysed.
func (t *TapToToneTester) IsArmed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

func (t *TapToToneTester) SetArmed(armed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = armed
}

// AnalyzeLater keeps recording long enough for the tone to arrive, then
// analyses the capture and hands the result and its summary to done on a
// separate goroutine.
func (t *TapToToneTester) AnalyzeLater(done func(*TestResult, string)) error {
	if t.recorder == nil {
		return ErrNoRecorder
	}
	t.SetArmed(false)
	t.recorder.ScheduleTask(t.cfg.DelaySamples(), func() {
		result := t.AnalyzeCapturedAudio()
		done(result, t.Summarize(result))
	})
	return nil
}

// AnalyzeCapturedAudio analyses the most recent analysis window. Capture is
// paused while the window is copied out.
func (t *TapToToneTester) AnalyzeCapturedAudio() *TestResult {
	if t.recorder == nil {
		return nil
	}
	buffer := make([]float32, t.cfg.AnalysisSamples())
	t.recorder.SetCaptureEnabled(false)
	numRead := t.recorder.ReadMostRecent(buffer)
	t.recorder.SetCaptureEnabled(true)
	return t.AnalyzeSamples(buffer[:numRead], t.recorder.SampleRate())
}

// AnalyzeSamples runs the tap analyser over an already captured recording.
func (t *TapToToneTester) AnalyzeSamples(samples []float32, frameRate int) *TestResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := t.analyser.Analyze(samples, 0, len(samples))
	result := &TestResult{
		Samples:   samples,
		Filtered:  append([]float32(nil), t.analyser.FilteredBuffer()...),
		FrameRate: frameRate,
		Events:    append([]internal_tap.TapLatencyEvent{}, events...),
	}
	t.logger.Debug("analysed tap capture",
		"samples", len(samples),
		"peak", utils.PeakFloat32(samples),
		"edges", len(result.Events))
	return result
}

// Summarize turns a result into the text shown to the tester and folds a
// good measurement into the running min/avg/max. It re-arms the tester.
func (t *TapToToneTester) Summarize(result *TestResult) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer func() { t.armed = true }()

	var b strings.Builder
	if result != nil {
		if result.FrameRate > 0 {
			t.frameRate = result.FrameRate
		}
		switch {
		case len(result.Events) < 2:
			b.WriteString("Not enough edges. Use fingernail.\n")
		case len(result.Events) > 2:
			b.WriteString("Too many edges.\n")
		default:
			latencySamples, _ := result.LatencySamples()
			t.sumSamples += latencySamples
			t.count++
			latencyMillis := 1000 * latencySamples / t.frameRate
			t.minMillis = min(t.minMillis, latencyMillis)
			t.maxMillis = max(t.maxMillis, latencyMillis)
			fmt.Fprintf(&b, "tap-to-tone latency = %3d msec\n", latencyMillis)
		}
	}
	if t.count > 0 {
		averageMillis := 1000 * (t.sumSamples / t.count) / t.frameRate
		plural := "tests"
		if t.count == 1 {
			plural = "test"
		}
		fmt.Fprintf(&b, "min = %3d, avg = %3d, max = %3d, %d %s", t.minMillis, averageMillis, t.maxMillis, t.count, plural)
	}
	return b.String()
}

// Reset forgets the accumulated latency statistics.
func (t *TapToToneTester) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

func (t *TapToToneTester) resetLocked() {
	t.count = 0
	t.sumSamples = 0
	t.minMillis = math.MaxInt
	t.maxMillis = 0
}
