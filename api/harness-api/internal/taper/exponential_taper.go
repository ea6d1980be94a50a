// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_taper

import (
	"errors"
	"fmt"
	"math"
)

const DefaultMaxRatio = 10000.0

var ErrInvalidRange = errors.New("invalid taper range")

// ExponentialTaper maps a linear position in [0, 1] onto [dmin, dmax] along
//
//	f(x) = a * 10^(b*x) - offset
//
// When the range spans more than maxRatio the curve is lifted by an offset
// of dmax/maxRatio so it still starts at zero.
type ExponentialTaper struct {
	a      float64
	b      float64
	offset float64
}

func NewExponentialTaper(dmin, dmax float64) (*ExponentialTaper, error) {
	return NewExponentialTaperWithRatio(dmin, dmax, DefaultMaxRatio)
}

func NewExponentialTaperWithRatio(dmin, dmax, maxRatio float64) (*ExponentialTaper, error) {
	if dmax <= 0 || dmin < 0 || dmin >= dmax || maxRatio <= 1 {
		return nil, fmt.Errorf("%w: min=%v max=%v ratio=%v", ErrInvalidRange, dmin, dmax, maxRatio)
	}
	taper := &ExponentialTaper{}
	var curvature float64
	if dmax > dmin*maxRatio {
		taper.offset = dmax / maxRatio
		taper.a = taper.offset
		curvature = (dmax + taper.offset) / taper.offset
	} else {
		taper.a = dmin
		curvature = dmax / dmin
	}
	taper.b = math.Log10(curvature)
	return taper, nil
}

func (t *ExponentialTaper) LinearToExponential(linear float64) float64 {
	return t.a*math.Pow(10, t.b*linear) - t.offset
}

// ExponentialToLinear is NaN or -Inf for values outside InDomain.
func (t *ExponentialTaper) ExponentialToLinear(exponential float64) float64 {
	return math.Log10((exponential+t.offset)/t.a) / t.b
}

// InDomain reports whether exponential lies above the start of the curve,
// -offset, and so maps back to a linear position.
func (t *ExponentialTaper) InDomain(exponential float64) bool {
	return exponential+t.offset > 0
}
