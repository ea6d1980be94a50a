// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	internal_tap "github.com/rapidaai/harness/api/harness-api/internal/analysis/tap"
	internal_decoder "github.com/rapidaai/harness/api/harness-api/internal/audio/decoder"
	internal_report "github.com/rapidaai/harness/api/harness-api/internal/report"
	internal_runner "github.com/rapidaai/harness/api/harness-api/internal/runner"
)

type TapAnalyzeRequest struct {
	Samples         []float32 `json:"samples" binding:"required"`
	SampleRate      int       `json:"sampleRate" binding:"required,gt=0"`
	IncludeFiltered bool      `json:"includeFiltered"`
}

type TapAnalyzeResponse struct {
	Events         []internal_tap.TapLatencyEvent `json:"events"`
	LatencySamples int                            `json:"latencySamples,omitempty"`
	LatencyMillis  float64                        `json:"latencyMillis,omitempty"`
	Summary        string                         `json:"summary"`
	Filtered       []float32                      `json:"filtered,omitempty"`
	ReportID       string                         `json:"reportId,omitempty"`
}

// AnalyzeTap runs the tap analyser over samples posted as JSON.
//
// @Router /v1/tap/analyze [post]
func (h *HarnessApi) AnalyzeTap(c *gin.Context) {
	var request TapAnalyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.analyzeTap(c, request.Samples, request.SampleRate, request.IncludeFiltered))
}

// AnalyzeTapWAV accepts a WAV capture as the raw request body and converts
// it to the capture rate before analysis.
//
// @Router /v1/tap/analyze/wav [post]
func (h *HarnessApi) AnalyzeTapWAV(c *gin.Context) {
	audio, err := internal_decoder.Decode(http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes))
	if err != nil {
		h.badRequest(c, err)
		return
	}
	rate := h.cfg.Capture.SampleRate
	samples, err := internal_decoder.Resample(audio.Samples, audio.SampleRate, rate)
	if err != nil {
		h.badRequest(c, fmt.Errorf("resample %d to %d: %w", audio.SampleRate, rate, err))
		return
	}
	c.JSON(http.StatusOK, h.analyzeTap(c, samples, rate, c.Query("filtered") == "true"))
}

// ResetTap clears the accumulated tap-to-tone statistics.
//
// @Router /v1/tap/reset [post]
func (h *HarnessApi) ResetTap(c *gin.Context) {
	h.tester.Reset()
	c.Status(http.StatusNoContent)
}

func (h *HarnessApi) analyzeTap(c *gin.Context, samples []float32, rate int, includeFiltered bool) *TapAnalyzeResponse {
	result := h.tester.AnalyzeSamples(samples, rate)
	summary := h.tester.Summarize(result)
	response := &TapAnalyzeResponse{
		Events:  result.Events,
		Summary: summary,
	}
	if includeFiltered {
		response.Filtered = result.Filtered
	}
	status := internal_report.StatusFailed
	if latency, ok := result.LatencySamples(); ok {
		status = internal_report.StatusOK
		response.LatencySamples = latency
		response.LatencyMillis = 1000 * float64(latency) / float64(rate)
	}
	response.ReportID = h.archive(c, internal_report.KindTap, "", status, summary, tapPayload(result))
	return response
}

func tapPayload(result *internal_runner.TestResult) any {
	latency, _ := result.LatencySamples()
	return gin.H{
		"frameRate":      result.FrameRate,
		"events":         result.Events,
		"latencySamples": latency,
	}
}
