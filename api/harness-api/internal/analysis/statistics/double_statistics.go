// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_statistics

import (
	"fmt"
	"math"
)

// DoubleStatistics accumulates a series of measurements. Values <= 0 mean
// "no measurement available" and are dropped without being counted.
type DoubleStatistics struct {
	values []float64
	sum    float64
	min    float64
	max    float64
}

func NewDoubleStatistics() *DoubleStatistics {
	return &DoubleStatistics{}
}

func (s *DoubleStatistics) Add(value float64) {
	if value <= 0.0 || math.IsNaN(value) {
		return
	}
	if len(s.values) == 0 {
		s.min = value
		s.max = value
	} else {
		s.min = math.Min(s.min, value)
		s.max = math.Max(s.max, value)
	}
	s.values = append(s.values, value)
	s.sum += value
}

// Count is the number of accepted measurements.
func (s *DoubleStatistics) Count() int {
	return len(s.values)
}

// Mean is NaN when nothing was accepted; check Count first.
func (s *DoubleStatistics) Mean() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	return s.sum / float64(len(s.values))
}

func (s *DoubleStatistics) Min() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	return s.min
}

func (s *DoubleStatistics) Max() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	return s.max
}

func (s *DoubleStatistics) Sum() float64 {
	return s.sum
}

// Last is the most recently accepted value, NaN when empty.
func (s *DoubleStatistics) Last() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	return s.values[len(s.values)-1]
}

// MeanAbsoluteDeviation averages |value - center| over the accepted values.
// The center is usually the Mean computed beforehand.
func (s *DoubleStatistics) MeanAbsoluteDeviation(center float64) float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	var deviationSum float64
	for _, v := range s.values {
		deviationSum += math.Abs(v - center)
	}
	return deviationSum / float64(len(s.values))
}

// Dump formats min/mean/max as milliseconds, or "?" when empty.
func (s *DoubleStatistics) Dump() string {
	if len(s.values) == 0 {
		return "?"
	}
	return fmt.Sprintf("%3.1f/%3.1f/%3.1f ms", s.min, s.Mean(), s.max)
}

// Summary is a serialisable snapshot of the statistics.
type Summary struct {
	Count                 int     `json:"count"`
	Mean                  float64 `json:"mean"`
	Min                   float64 `json:"min"`
	Max                   float64 `json:"max"`
	MeanAbsoluteDeviation float64 `json:"meanAbsoluteDeviation"`
	Text                  string  `json:"text"`
}

// Summarize returns zeros rather than NaN for an empty series so the result
// can be encoded as JSON.
func (s *DoubleStatistics) Summarize() Summary {
	if len(s.values) == 0 {
		return Summary{Text: s.Dump()}
	}
	mean := s.Mean()
	return Summary{
		Count:                 s.Count(),
		Mean:                  mean,
		Min:                   s.min,
		Max:                   s.max,
		MeanAbsoluteDeviation: s.MeanAbsoluteDeviation(mean),
		Text:                  s.Dump(),
	}
}
