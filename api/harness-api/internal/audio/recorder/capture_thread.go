// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recorder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	internal_capture "github.com/rapidaai/harness/api/harness-api/internal/audio/capture"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
	"github.com/rapidaai/harness/pkg/commons"
)

const (
	DefaultChunkSize = 256
	stopTimeout      = time.Second
)

// CaptureThread pulls fixed size chunks from a SampleSource into a
// CircularCaptureBuffer on its own goroutine. It is the only writer of the
// buffer; ReadMostRecent may be called from any one other goroutine.
type CaptureThread struct {
	logger  commons.Logger
	source  internal_type.SampleSource
	buffer  *internal_capture.CircularCaptureBuffer
	chunk   []float32
	capture atomic.Bool

	mu            sync.Mutex
	task          func()
	taskCountdown int
	running       bool
	cancel        context.CancelFunc
	done          chan struct{}
	err           error
}

type CaptureOption func(*CaptureThread)

func WithChunkSize(size int) CaptureOption {
	return func(c *CaptureThread) {
		if size > 0 {
			c.chunk = make([]float32, size)
		}
	}
}

func NewCaptureThread(logger commons.Logger, source internal_type.SampleSource, maxSamples int, opts ...CaptureOption) *CaptureThread {
	c := &CaptureThread{
		logger: logger,
		source: source,
		buffer: internal_capture.NewCircularCaptureBuffer(maxSamples),
		chunk:  make([]float32, DefaultChunkSize),
	}
	c.capture.Store(true)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CaptureThread) SampleRate() int {
	return c.source.SampleRate()
}

// Start launches the read loop. Calling Start on a running thread is a no-op.
func (c *CaptureThread) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	c.running = true
	c.err = nil
	go c.run(ctx, c.done)
}

// Stop ends the read loop and waits up to a second for it to exit; a source
// blocked in Read cannot be interrupted.
func (c *CaptureThread) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		c.logger.Warn("capture thread did not stop in time", "timeout", stopTimeout)
	}
}

// Done is closed when the read loop exits.
func (c *CaptureThread) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Err reports why the read loop ended, nil for end of stream or Stop.
func (c *CaptureThread) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *CaptureThread) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	c.logger.Debug("capture thread started", "sampleRate", c.source.SampleRate(), "chunk", len(c.chunk))
	var err error
	for ctx.Err() == nil {
		var n int
		n, err = c.handlePeriod()
		if err != nil || n <= 0 {
			break
		}
	}
	c.mu.Lock()
	c.running = false
	c.err = err
	c.mu.Unlock()
	if err != nil {
		c.logger.Error("capture thread stopped", "error", err)
		return
	}
	c.logger.Debug("capture thread stopped", "captured", c.buffer.Available())
}

func (c *CaptureThread) handlePeriod() (int, error) {
	n, err := c.source.Read(c.chunk)
	if err != nil {
		return 0, fmt.Errorf("read samples: %w", err)
	}
	if n <= 0 {
		return n, nil
	}
	c.countdown(n)
	if !c.capture.Load() {
		return n, nil
	}
	return c.buffer.Write(c.chunk, 0, n)
}

func (c *CaptureThread) countdown(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.taskCountdown <= 0 {
		return
	}
	c.taskCountdown -= n
	if c.taskCountdown <= 0 {
		c.taskCountdown = 0
		// never run a task on the capture goroutine
		go c.task()
	}
}

// ScheduleTask runs task on its own goroutine once numSamples more samples
// have been read. A new schedule replaces a pending one.
func (c *CaptureThread) ScheduleTask(numSamples int, task func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.task = task
	c.taskCountdown = numSamples
}

func (c *CaptureThread) SetCaptureEnabled(enabled bool) {
	c.capture.Store(enabled)
}

func (c *CaptureThread) ReadMostRecent(buffer []float32) int {
	return c.buffer.ReadMostRecentAll(buffer)
}

func (c *CaptureThread) Erase() {
	c.buffer.Erase()
}
