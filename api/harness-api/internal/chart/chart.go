// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_chart

import (
	"fmt"
	"sync"
)

const DefaultPoints = 512

// Chart is a strip chart: a shared X axis plus named traces, all of the same
// power-of-two length. It is safe for concurrent use through its own
// methods; a *Trace handed out by CreateTrace is not.
type Chart struct {
	mu     sync.RWMutex
	points int
	x      *CircularFloatArray
	traces []*Trace
}

type TracePoints struct {
	Name   string    `json:"name"`
	Min    float32   `json:"min"`
	Max    float32   `json:"max"`
	Values []float32 `json:"values"`
}

// Snapshot holds every trace oldest to newest.
type Snapshot struct {
	X      []float32     `json:"x"`
	Traces []TracePoints `json:"traces"`
}

func NewChart(points int) (*Chart, error) {
	x, err := NewCircularFloatArray(points)
	if err != nil {
		return nil, err
	}
	return &Chart{points: points, x: x}, nil
}

func (c *Chart) CreateTrace(name string, minValue, maxValue float32) (*Trace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, trace := range c.traces {
		if trace.name == name {
			return nil, fmt.Errorf("trace %q already exists", name)
		}
	}
	data, err := NewCircularFloatArray(c.points)
	if err != nil {
		return nil, err
	}
	trace := &Trace{name: name, min: minValue, max: maxValue, data: data}
	c.traces = append(c.traces, trace)
	return trace, nil
}

func (c *Chart) AddX(value float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.x.Add(value)
}

// Append adds one X value and one value per trace, in the order the traces
// were created. Missing values repeat the trace's last value.
func (c *Chart) Append(x float32, values ...float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.x.Add(x)
	for i, trace := range c.traces {
		switch {
		case i < len(values):
			trace.Add(values[i])
		case trace.Size() > 0:
			trace.Add(trace.Get(1))
		default:
			trace.Add(trace.min)
		}
	}
}

func (c *Chart) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.x.Size()
}

func (c *Chart) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.x.Clear()
	for _, trace := range c.traces {
		trace.Reset()
	}
}

func (c *Chart) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := Snapshot{
		X:      c.x.Values(make([]float32, 0, c.x.Size())),
		Traces: make([]TracePoints, 0, len(c.traces)),
	}
	for _, trace := range c.traces {
		snapshot.Traces = append(snapshot.Traces, TracePoints{
			Name:   trace.name,
			Min:    trace.min,
			Max:    trace.max,
			Values: trace.data.Values(make([]float32, 0, trace.Size())),
		})
	}
	return snapshot
}
