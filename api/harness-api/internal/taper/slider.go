// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_taper

import (
	"fmt"
	"math"
)

// Slider is an integer control with positions [0, resolution] whose value
// follows an exponential taper, e.g. a buffer size or a tone frequency.
type Slider struct {
	taper      *ExponentialTaper
	resolution int
	position   int
}

func NewSlider(dmin, dmax float64, resolution int) (*Slider, error) {
	return NewSliderWithRatio(dmin, dmax, DefaultMaxRatio, resolution)
}

// NewSliderWithRatio follows the same curve as
// NewExponentialTaperWithRatio(dmin, dmax, maxRatio).
func NewSliderWithRatio(dmin, dmax, maxRatio float64, resolution int) (*Slider, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution=%d", ErrInvalidRange, resolution)
	}
	taper, err := NewExponentialTaperWithRatio(dmin, dmax, maxRatio)
	if err != nil {
		return nil, err
	}
	return &Slider{taper: taper, resolution: resolution}, nil
}

func (s *Slider) Resolution() int {
	return s.resolution
}

func (s *Slider) Position() int {
	return s.position
}

// SetPosition clamps the position and returns the resulting value.
func (s *Slider) SetPosition(position int) int {
	s.position = min(max(position, 0), s.resolution)
	return s.Value()
}

func (s *Slider) Value() int {
	return s.ValueAt(s.position)
}

func (s *Slider) ValueAt(position int) int {
	position = min(max(position, 0), s.resolution)
	return int(math.Round(s.taper.LinearToExponential(float64(position) / float64(s.resolution))))
}

// SetValue moves the slider to the position closest to value. Values below
// the start of the curve select position 0.
func (s *Slider) SetValue(value int) int {
	normalized := s.taper.ExponentialToLinear(float64(value))
	if math.IsNaN(normalized) || math.IsInf(normalized, -1) {
		return s.SetPosition(0)
	}
	return s.SetPosition(int(math.Round(normalized * float64(s.resolution))))
}
