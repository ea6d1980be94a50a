// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_discontinuity

import "fmt"

type Phase int

const (
	PhaseMeasureLow Phase = iota
	PhaseMeasureHigh
	PhaseMeasureMiddle
	PhaseDone
)

var phaseNames = map[Phase]string{
	PhaseMeasureLow:    "MEASURE_LOW",
	PhaseMeasureHigh:   "MEASURE_HIGH",
	PhaseMeasureMiddle: "MEASURE_MIDDLE",
	PhaseDone:          "DONE",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}

type ResultCode int

const (
	ResultError         ResultCode = -1
	ResultOK            ResultCode = 0
	ResultContinue      ResultCode = 1
	ResultDiscontinuity ResultCode = 2
)

var resultNames = map[ResultCode]string{
	ResultError:         "RESULT_ERROR",
	ResultOK:            "RESULT_OK",
	ResultContinue:      "RESULT_CONTINUE",
	ResultDiscontinuity: "RESULT_DISCONTINUITY",
}

func (c ResultCode) String() string {
	if name, ok := resultNames[c]; ok {
		return name
	}
	return fmt.Sprintf("RESULT_%d", int(c))
}

func (c ResultCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ResultCode) UnmarshalText(text []byte) error {
	for code, name := range resultNames {
		if name == string(text) {
			*c = code
			return nil
		}
	}
	return fmt.Errorf("unknown result code %q", string(text))
}
