// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	internal_report "github.com/rapidaai/harness/api/harness-api/internal/report"
)

// ListReports returns archived reports newest first, optionally of one kind.
//
// @Router /v1/reports [get]
func (h *HarnessApi) ListReports(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	limit := internal_report.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.badRequest(c, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	reports, err := h.store.List(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		h.logger.Error("unable to list reports", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// @Router /v1/reports/:id [get]
func (h *HarnessApi) GetReport(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	report, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Router /v1/reports/:id [delete]
func (h *HarnessApi) DeleteReport(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.reportError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HarnessApi) requireStore(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errReportsDisabled.Error()})
		return false
	}
	return true
}

func (h *HarnessApi) reportError(c *gin.Context, err error) {
	if errors.Is(err, internal_report.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("report archive failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
