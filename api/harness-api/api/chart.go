// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const chartWriteWait = 5 * time.Second

// ChartSnapshot returns every trace of the live latency chart.
//
// @Router /v1/chart [get]
func (h *HarnessApi) ChartSnapshot(c *gin.Context) {
	if h.chart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart is not enabled"})
		return
	}
	c.JSON(http.StatusOK, h.chart.Snapshot())
}

// ChartStream pushes a chart snapshot over a websocket every stream
// interval until the client goes away.
//
// @Router /v1/chart/stream [get]
func (h *HarnessApi) ChartStream(c *gin.Context) {
	if h.chart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart is not enabled"})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("chart stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// the client never sends anything; reading only notices the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := h.cfg.Chart.StreamInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.logger.Debug("chart stream opened", "remote", c.ClientIP(), "interval", interval)
	for {
		conn.SetWriteDeadline(time.Now().Add(chartWriteWait))
		if err := conn.WriteJSON(h.chart.Snapshot()); err != nil {
			h.logger.Debug("chart stream closed", "error", err)
			return
		}
		select {
		case <-closed:
			h.logger.Debug("chart stream closed by client")
			return
		case <-h.shutdown:
			h.logger.Debug("chart stream closed by shutdown")
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(chartWriteWait))
			return
		case <-c.Request.Context().Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(chartWriteWait))
			return
		case <-ticker.C:
		}
	}
}
