// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	internal_statistics "github.com/rapidaai/harness/api/harness-api/internal/analysis/statistics"
	internal_report "github.com/rapidaai/harness/api/harness-api/internal/report"
	internal_runner "github.com/rapidaai/harness/api/harness-api/internal/runner"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
)

type LatencyRequest struct {
	Direction    internal_type.Direction `json:"direction" binding:"omitempty,oneof=input output"`
	BufferBursts int                     `json:"bufferBursts" binding:"gte=0"`
}

func (r LatencyRequest) measurerRequest() internal_type.LatencyRequest {
	direction := r.Direction
	if direction == "" {
		direction = internal_type.DirectionOutput
	}
	return internal_type.LatencyRequest{Direction: direction, BufferBursts: r.BufferBursts}
}

type MeasureResponse struct {
	Result   internal_type.LatencyResult `json:"result"`
	Text     string                      `json:"text"`
	ReportID string                      `json:"reportId,omitempty"`
}

type AverageResponse struct {
	*internal_runner.AverageResult
	ReportID string `json:"reportId,omitempty"`
}

type ScanRequest struct {
	Directions []internal_type.Direction `json:"directions" binding:"omitempty,dive,oneof=input output"`
}

type ScanResponse struct {
	Reports []ScanReportResponse `json:"reports"`
}

type ScanReportResponse struct {
	internal_runner.ScanReport
	Text     string `json:"text"`
	ReportID string `json:"reportId,omitempty"`
}

// lockMeasurer answers 409 when another run already owns the measurer.
func (h *HarnessApi) lockMeasurer(c *gin.Context) bool {
	if !h.measuring.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "a measurement is already running"})
		return false
	}
	return true
}

// MeasureLatency takes a single round-trip measurement.
//
// @Router /v1/latency/measure [post]
func (h *HarnessApi) MeasureLatency(c *gin.Context) {
	var request LatencyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.badRequest(c, err)
		return
	}
	if !h.lockMeasurer(c) {
		return
	}
	defer h.measuring.Unlock()

	measured := request.measurerRequest()
	result, err := h.measurer.MeasureRoundTrip(c.Request.Context(), measured)
	if err != nil {
		h.logger.Error("round trip measurement failed", "direction", measured.Direction, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	timestamps := internal_statistics.NewDoubleStatistics()
	timestamps.Add(result.TimestampLatencyMillis)
	text := internal_report.FormatLatencyResult(result, timestamps)
	status := internal_report.StatusOK
	if !result.OK() {
		status = internal_report.StatusFailed
	}
	c.JSON(http.StatusOK, MeasureResponse{
		Result:   result,
		Text:     text,
		ReportID: h.archive(c, internal_report.KindLatency, string(measured.Direction), status, text, result),
	})
}

// AverageLatency repeats the measurement until enough good runs were taken.
// Good runs are plotted on the live chart.
//
// @Router /v1/latency/average [post]
func (h *HarnessApi) AverageLatency(c *gin.Context) {
	var request LatencyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.badRequest(c, err)
		return
	}
	if !h.lockMeasurer(c) {
		return
	}
	defer h.measuring.Unlock()

	var opts []internal_runner.AverageOption
	if h.chart != nil {
		opts = append(opts, internal_runner.WithChart(h.chart))
	}
	measured := request.measurerRequest()
	runner := internal_runner.NewAverageLatencyRunner(h.logger, h.measurer, h.cfg.Latency, opts...)
	result, err := runner.Run(c.Request.Context(), measured)
	if err != nil {
		h.logger.Error("average latency failed", "direction", measured.Direction, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	status := internal_report.StatusOK
	if result.Cancelled {
		status = internal_report.StatusCancelled
	}
	c.JSON(http.StatusOK, AverageResponse{
		AverageResult: result,
		ReportID:      h.archive(c, internal_report.KindAverage, string(measured.Direction), status, result.Text, result),
	})
}

// DiscontinuityScan searches each direction for a DSP position error.
//
// @Router /v1/discontinuity/scan [post]
func (h *HarnessApi) DiscontinuityScan(c *gin.Context) {
	var request ScanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.badRequest(c, err)
		return
	}
	if !h.lockMeasurer(c) {
		return
	}
	defer h.measuring.Unlock()

	runner := internal_runner.NewScanRunner(h.logger, h.measurer, h.cfg.Scan)
	reports, err := runner.Run(c.Request.Context(), request.Directions...)
	if err != nil {
		h.logger.Error("discontinuity scan failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response := ScanResponse{Reports: make([]ScanReportResponse, 0, len(reports))}
	for _, report := range reports {
		text := report.Text()
		response.Reports = append(response.Reports, ScanReportResponse{
			ScanReport: report,
			Text:       text,
			ReportID:   h.archive(c, internal_report.KindScan, string(report.Direction), internal_report.ScanStatus(report.Result.Code), text, report),
		})
	}
	c.JSON(http.StatusOK, response)
}
