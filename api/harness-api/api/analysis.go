// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_api

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	internal_discontinuity "github.com/rapidaai/harness/api/harness-api/internal/analysis/discontinuity"
	internal_statistics "github.com/rapidaai/harness/api/harness-api/internal/analysis/statistics"
	internal_taper "github.com/rapidaai/harness/api/harness-api/internal/taper"
)

type DiscontinuityNextRequest struct {
	// State is omitted on the first step; a new search is then started at
	// FramesPerBurst.
	State          *internal_discontinuity.State      `json:"state"`
	FramesPerBurst int                                `json:"framesPerBurst"`
	Measurement    internal_discontinuity.Measurement `json:"measurement"`
}

type DiscontinuityNextResponse struct {
	State           internal_discontinuity.State  `json:"state"`
	Result          internal_discontinuity.Result `json:"result"`
	RequestedBursts int                           `json:"requestedBursts"`
}

// DiscontinuityNext advances a caller-held discontinuity search by one
// measurement. The server keeps no search state.
//
// @Router /v1/discontinuity/next [post]
func (h *HarnessApi) DiscontinuityNext(c *gin.Context) {
	var request DiscontinuityNextRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.badRequest(c, err)
		return
	}
	state := internal_discontinuity.NewState(request.FramesPerBurst)
	if request.State != nil {
		state = *request.State
	}
	next, result := state.Next(request.Measurement)
	c.JSON(http.StatusOK, DiscontinuityNextResponse{
		State:           next,
		Result:          result,
		RequestedBursts: next.RequestedBursts(),
	})
}

type StatisticsRequest struct {
	Values []float64 `json:"values" binding:"required"`
}

// StatisticsSummary folds values into running statistics. Values <= 0 are
// treated as failed measurements and skipped.
//
// @Router /v1/statistics/summary [post]
func (h *HarnessApi) StatisticsSummary(c *gin.Context) {
	var request StatisticsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.badRequest(c, err)
		return
	}
	statistics := internal_statistics.NewDoubleStatistics()
	for _, value := range request.Values {
		statistics.Add(value)
	}
	c.JSON(http.StatusOK, statistics.Summarize())
}

type TaperRequest struct {
	Min         float64  `json:"min"`
	Max         float64  `json:"max"`
	MaxRatio    float64  `json:"maxRatio"`
	Linear      *float64 `json:"linear"`
	Exponential *float64 `json:"exponential"`
	// Resolution > 0 also places an integer slider of that many steps.
	Resolution int `json:"resolution" binding:"gte=0"`
}

type TaperResponse struct {
	Linear      float64 `json:"linear"`
	Exponential float64 `json:"exponential"`
	Position    *int    `json:"position,omitempty"`
	Value       *int    `json:"value,omitempty"`
}

// TaperMap converts between a linear control position in [0, 1] and the
// exponential value it stands for, whichever one is given.
//
// @Router /v1/taper/map [post]
func (h *HarnessApi) TaperMap(c *gin.Context) {
	var request TaperRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.badRequest(c, err)
		return
	}
	ratio := request.MaxRatio
	if ratio == 0 {
		ratio = internal_taper.DefaultMaxRatio
	}
	taper, err := internal_taper.NewExponentialTaperWithRatio(request.Min, request.Max, ratio)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	var response TaperResponse
	switch {
	case request.Linear != nil:
		response.Linear = *request.Linear
		response.Exponential = taper.LinearToExponential(*request.Linear)
	case request.Exponential != nil:
		if !taper.InDomain(*request.Exponential) {
			h.badRequest(c, fmt.Errorf("exponential %v is below the start of the taper", *request.Exponential))
			return
		}
		response.Linear = taper.ExponentialToLinear(*request.Exponential)
		response.Exponential = *request.Exponential
	default:
		h.badRequest(c, errors.New("one of linear or exponential is required"))
		return
	}
	// far outside [0, 1] the curve overflows and json cannot encode the result
	if !finite(response.Linear) || !finite(response.Exponential) {
		h.badRequest(c, errors.New("value is out of the taper's range"))
		return
	}
	if request.Resolution > 0 {
		slider, err := internal_taper.NewSliderWithRatio(request.Min, request.Max, ratio, request.Resolution)
		if err != nil {
			h.badRequest(c, err)
			return
		}
		value := slider.SetPosition(int(math.Round(response.Linear * float64(request.Resolution))))
		position := slider.Position()
		response.Position = &position
		response.Value = &value
	}
	c.JSON(http.StatusOK, response)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
