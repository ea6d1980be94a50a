// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_engine

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
	"github.com/rapidaai/harness/pkg/commons"
)

const (
	DefaultSampleRate       = 48000
	DefaultFramesPerBurst   = 96
	DefaultCapacityInBursts = 32
	DefaultBaseLatency      = 500
	DefaultBufferBursts     = 2
)

// SimulatedEngine stands in for the native full duplex stream. Latency grows
// linearly with the buffer size; a configured DSP position error adds a
// jump above a given burst count.
type SimulatedEngine struct {
	logger commons.Logger

	sampleRate        int
	framesPerBurst    int
	capacityInBursts  int
	baseLatencyFrames int
	mmapExclusive     bool
	timestamps        bool

	discontinuityAt int
	jumpFrames      int
	confidenceDip   bool

	jitterFrames int
	failEvery    int
	measureTime  time.Duration

	mu    sync.Mutex
	rng   *rand.Rand
	calls int
}

type EngineOption func(*SimulatedEngine)

func WithSampleRate(rate int) EngineOption {
	return func(e *SimulatedEngine) { e.sampleRate = rate }
}

func WithFramesPerBurst(frames int) EngineOption {
	return func(e *SimulatedEngine) { e.framesPerBurst = frames }
}

func WithCapacityInBursts(bursts int) EngineOption {
	return func(e *SimulatedEngine) { e.capacityInBursts = bursts }
}

func WithBaseLatency(frames int) EngineOption {
	return func(e *SimulatedEngine) { e.baseLatencyFrames = frames }
}

// WithDiscontinuity makes every buffer larger than bursts report jumpFrames
// of extra latency.
func WithDiscontinuity(bursts, jumpFrames int) EngineOption {
	return func(e *SimulatedEngine) {
		e.discontinuityAt = bursts
		e.jumpFrames = jumpFrames
	}
}

// WithConfidenceDip drops the confidence of a measurement taken right at the
// discontinuity.
func WithConfidenceDip() EngineOption {
	return func(e *SimulatedEngine) { e.confidenceDip = true }
}

func WithMMAPExclusive(exclusive bool) EngineOption {
	return func(e *SimulatedEngine) { e.mmapExclusive = exclusive }
}

func WithTimestamps(enabled bool) EngineOption {
	return func(e *SimulatedEngine) { e.timestamps = enabled }
}

// WithJitter adds uniform noise of +/- frames, seeded for repeatability.
func WithJitter(frames int, seed uint64) EngineOption {
	return func(e *SimulatedEngine) {
		e.jitterFrames = frames
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithFailEvery makes every n-th measurement fail its analysis.
func WithFailEvery(n int) EngineOption {
	return func(e *SimulatedEngine) { e.failEvery = n }
}

// WithMeasureTime is how long one round trip takes.
func WithMeasureTime(d time.Duration) EngineOption {
	return func(e *SimulatedEngine) { e.measureTime = d }
}

func NewSimulatedEngine(logger commons.Logger, opts ...EngineOption) *SimulatedEngine {
	e := &SimulatedEngine{
		logger:            logger,
		sampleRate:        DefaultSampleRate,
		framesPerBurst:    DefaultFramesPerBurst,
		capacityInBursts:  DefaultCapacityInBursts,
		baseLatencyFrames: DefaultBaseLatency,
		mmapExclusive:     true,
		timestamps:        true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *SimulatedEngine) MeasureRoundTrip(ctx context.Context, request internal_type.LatencyRequest) (internal_type.LatencyResult, error) {
	if e.measureTime > 0 {
		timer := time.NewTimer(e.measureTime)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return internal_type.LatencyResult{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return internal_type.LatencyResult{}, err
	}

	bursts := request.BufferBursts
	if bursts <= 0 {
		bursts = DefaultBufferBursts
	}
	bursts = min(bursts, e.capacityInBursts)

	e.mu.Lock()
	e.calls++
	call := e.calls
	jitter := 0
	if e.jitterFrames > 0 && e.rng != nil {
		jitter = e.rng.IntN(2*e.jitterFrames+1) - e.jitterFrames
	}
	e.mu.Unlock()

	result := internal_type.LatencyResult{
		Result:           internal_type.AnalyzerOK,
		SampleRate:       e.sampleRate,
		Confidence:       0.95,
		Correlation:      0.95,
		SignalRMS:        0.1,
		NoiseRMS:         0.001,
		BufferSizeFrames: bursts * e.framesPerBurst,
		FramesPerBurst:   e.framesPerBurst,
		CapacityInBursts: e.capacityInBursts,
		MMAPExclusive:    e.mmapExclusive,
	}
	if e.failEvery > 0 && call%e.failEvery == 0 {
		result.Result = internal_type.AnalyzerErrorConfidence
		result.Confidence = 0.1
		e.logger.Debug("simulated analyzer failure", "call", call, "direction", request.Direction)
		return result, nil
	}

	latency := e.baseLatencyFrames + bursts*e.framesPerBurst + jitter
	if e.discontinuityAt > 0 && bursts > e.discontinuityAt {
		latency += e.jumpFrames
	}
	if e.confidenceDip && bursts == e.discontinuityAt {
		result.Confidence = 0.3
		result.Correlation = 0.3
	}
	result.LatencyFrames = latency
	if e.timestamps {
		result.TimestampLatencyMillis = result.LatencyMillis() - 0.5
	}
	e.logger.Debug("simulated round trip",
		"direction", request.Direction,
		"bursts", bursts,
		"latencyFrames", latency,
		"confidence", result.Confidence)
	return result, nil
}

// Calls is the number of measurements taken so far.
func (e *SimulatedEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
