// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package internal_discontinuity searches for a latency-vs-buffer-size
// discontinuity, the signature of a driver reading or writing the wrong
// ring-buffer position at some buffer sizes (a DSP position error).
//
// The search is a value: State.Next takes one measurement and returns the
// next State plus a Result telling the caller what to measure next. Nothing
// is mutated behind the caller's back, so the search can be driven by a live
// stream, a simulation or a table in a test.
package internal_discontinuity

import (
	"fmt"
	"math"
)

const (
	DefaultLowBursts = 2

	// MaxAllowedDeviation is the relative linearity error tolerated between
	// two buffer sizes before the interval is searched.
	MaxAllowedDeviation = 0.2

	// MinConfidence below which a middle measurement is taken to sit right on
	// the faulty boundary.
	MinConfidence = 0.5
)

// Measurement is one round-trip result at the requested buffer size.
type Measurement struct {
	LatencyFrames    int     `json:"latencyFrames"`
	Confidence       float64 `json:"confidence"`
	CapacityInBursts int     `json:"capacityInBursts"`
	MMAPExclusive    bool    `json:"mmapExclusive"`
}

type Result struct {
	Code      ResultCode `json:"code"`
	NumBursts int        `json:"numBursts"`
	Message   string     `json:"message"`
}

// Terminal reports whether the search has finished.
func (r Result) Terminal() bool {
	return r.Code != ResultContinue
}

// State of one scan direction.
type State struct {
	Phase          Phase `json:"phase"`
	FramesPerBurst int   `json:"framesPerBurst"`
	Rounds         int   `json:"rounds"`

	LowBursts     int `json:"lowBursts"`
	LowLatency    int `json:"lowLatency"`
	MiddleBursts  int `json:"middleBursts"`
	MiddleLatency int `json:"middleLatency"`
	HighBursts    int `json:"highBursts"`
	HighLatency   int `json:"highLatency"`

	Final Result `json:"final"`
}

func NewState(framesPerBurst int) State {
	return NewStateWithLow(framesPerBurst, DefaultLowBursts)
}

// NewStateWithLow starts the search at lowBursts instead of the default.
func NewStateWithLow(framesPerBurst, lowBursts int) State {
	return State{
		Phase:          PhaseMeasureLow,
		FramesPerBurst: framesPerBurst,
		LowBursts:      lowBursts,
	}
}

// RequestedBursts is the buffer size, in bursts, the next measurement must
// be taken at. It is 0 once the search is done.
func (s State) RequestedBursts() int {
	switch s.Phase {
	case PhaseMeasureLow:
		return s.LowBursts
	case PhaseMeasureHigh:
		return s.HighBursts
	case PhaseMeasureMiddle:
		return s.MiddleBursts
	default:
		return 0
	}
}

// Done reports whether the state is terminal.
func (s State) Done() bool {
	return s.Phase == PhaseDone
}

// Next consumes the measurement taken at RequestedBursts. Each call must
// answer exactly one request.
func (s State) Next(m Measurement) (State, Result) {
	if s.Phase == PhaseDone {
		return s, s.Final
	}
	s.Rounds++
	if s.FramesPerBurst <= 0 {
		return s.finish(ResultError, 0, fmt.Sprintf("ERROR - invalid frames per burst %d", s.FramesPerBurst))
	}
	// the position bug only exists on the MMAP exclusive path
	if !m.MMAPExclusive {
		return s.finish(ResultOK, 0, "skipped, not MMAP Exclusive")
	}

	switch s.Phase {
	case PhaseMeasureLow:
		if m.LatencyFrames <= 0 {
			return s.finish(ResultError, s.LowBursts, fmt.Sprintf("ERROR - no latency measured at %d bursts", s.LowBursts))
		}
		if m.CapacityInBursts <= s.LowBursts {
			return s.finish(ResultError, s.LowBursts,
				fmt.Sprintf("ERROR - capacity of %d bursts too small to scan from %d bursts", m.CapacityInBursts, s.LowBursts))
		}
		s.LowLatency = m.LatencyFrames
		s.HighBursts = m.CapacityInBursts
		s.Phase = PhaseMeasureHigh
		return s, Result{Code: ResultContinue, NumBursts: s.HighBursts, Message: fmt.Sprintf("measure at %d bursts", s.HighBursts)}

	case PhaseMeasureHigh:
		if m.LatencyFrames <= 0 {
			return s.finish(ResultError, s.HighBursts, fmt.Sprintf("ERROR - no latency measured at %d bursts", s.HighBursts))
		}
		s.HighLatency = m.LatencyFrames
		deviation := LinearDeviation(s.LowBursts, s.LowLatency, s.HighBursts, s.HighLatency, s.FramesPerBurst)
		if deviation <= MaxAllowedDeviation {
			return s.finish(ResultOK, 0, "DSP position looks good")
		}
		if s.HighBursts-s.LowBursts <= 1 {
			return s.finish(ResultDiscontinuity, 0, s.betweenMessage())
		}
		return s.measureMiddle()

	case PhaseMeasureMiddle:
		s.MiddleLatency = m.LatencyFrames
		if m.Confidence < MinConfidence {
			// the test point landed on the faulty boundary and corrupted the measurement
			return s.finish(ResultDiscontinuity, s.MiddleBursts,
				fmt.Sprintf("ERROR - DSP position error on top of DSP at %d bursts!", s.MiddleBursts))
		}
		if m.LatencyFrames <= 0 {
			return s.finish(ResultError, s.MiddleBursts, fmt.Sprintf("ERROR - no latency measured at %d bursts", s.MiddleBursts))
		}
		lowDeviation := LinearDeviation(s.LowBursts, s.LowLatency, s.MiddleBursts, s.MiddleLatency, s.FramesPerBurst)
		highDeviation := LinearDeviation(s.MiddleBursts, s.MiddleLatency, s.HighBursts, s.HighLatency, s.FramesPerBurst)
		if lowDeviation > highDeviation {
			s.HighBursts, s.HighLatency = s.MiddleBursts, s.MiddleLatency
		} else {
			s.LowBursts, s.LowLatency = s.MiddleBursts, s.MiddleLatency
		}
		if s.HighBursts-s.LowBursts <= 1 {
			return s.finish(ResultDiscontinuity, 0, s.betweenMessage())
		}
		return s.measureMiddle()
	}
	return s.finish(ResultError, 0, fmt.Sprintf("ERROR - unexpected phase %v", s.Phase))
}

func (s State) measureMiddle() (State, Result) {
	s.MiddleBursts = (s.LowBursts + s.HighBursts) / 2
	s.Phase = PhaseMeasureMiddle
	return s, Result{Code: ResultContinue, NumBursts: s.MiddleBursts, Message: fmt.Sprintf("measure at %d bursts", s.MiddleBursts)}
}

func (s State) betweenMessage() string {
	return fmt.Sprintf("ERROR - DSP position error between %d and %d bursts!", s.LowBursts, s.HighBursts)
}

func (s State) finish(code ResultCode, numBursts int, message string) (State, Result) {
	s.Phase = PhaseDone
	s.Final = Result{Code: code, NumBursts: numBursts, Message: message}
	return s, s.Final
}

// LinearDeviation is the relative error between the latency difference that
// a linear buffer would produce and the one measured. An empty interval with
// a latency change is infinitely wrong.
func LinearDeviation(lowBursts, lowLatency, highBursts, highLatency, framesPerBurst int) float64 {
	expected := (highBursts - lowBursts) * framesPerBurst
	actual := highLatency - lowLatency
	if expected == 0 {
		if actual == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(float64(expected-actual)) / math.Abs(float64(expected))
}
