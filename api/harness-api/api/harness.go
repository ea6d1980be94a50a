// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	internal_chart "github.com/rapidaai/harness/api/harness-api/internal/chart"
	internal_report "github.com/rapidaai/harness/api/harness-api/internal/report"
	internal_runner "github.com/rapidaai/harness/api/harness-api/internal/runner"
	internal_type "github.com/rapidaai/harness/api/harness-api/internal/type"
	"github.com/rapidaai/harness/config"
	"github.com/rapidaai/harness/pkg/commons"
	"github.com/rapidaai/harness/pkg/connectors"
)

const maxUploadBytes = 64 << 20

var errReportsDisabled = errors.New("report archive is disabled")

// HarnessApi serves the analysis toolkit over HTTP. Measurements go through
// a single LatencyMeasurer, so only one run may use it at a time.
type HarnessApi struct {
	cfg      *config.AppConfig
	logger   commons.Logger
	measurer internal_type.LatencyMeasurer
	sqlite   connectors.SqliteConnector
	store    internal_report.Store
	chart    *internal_chart.Chart
	tester   *internal_runner.TapToToneTester

	measuring sync.Mutex
	upgrader  websocket.Upgrader

	// closed on Shutdown; hijacked websocket handlers never see the
	// server's shutdown through their request context
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New builds the api. sqlite and store are nil when reports are disabled.
func New(cfg *config.AppConfig,
	logger commons.Logger,
	measurer internal_type.LatencyMeasurer,
	sqlite connectors.SqliteConnector,
	store internal_report.Store,
	chart *internal_chart.Chart,
) *HarnessApi {
	return &HarnessApi{
		cfg:      cfg,
		logger:   logger,
		measurer: measurer,
		sqlite:   sqlite,
		store:    store,
		chart:    chart,
		tester:   internal_runner.NewTapToToneTester(logger, cfg.Capture, nil),
		shutdown: make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Shutdown ends open chart streams. Register it with
// http.Server.RegisterOnShutdown; calling it again is a no-op.
func (h *HarnessApi) Shutdown() {
	h.shutdownOnce.Do(func() { close(h.shutdown) })
}

func (h *HarnessApi) Readiness(c *gin.Context) {
	if h.sqlite != nil && !h.sqlite.IsConnected(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "connector": h.sqlite.Name()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *HarnessApi) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.Name,
		"version": h.cfg.Version,
	})
}

func (h *HarnessApi) badRequest(c *gin.Context, err error) {
	h.logger.Debugf("rejected request %s: %v", c.FullPath(), err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// archive saves a report when the archive is enabled and returns its id.
// A failed save is logged; the measurement itself still succeeded.
func (h *HarnessApi) archive(c *gin.Context, kind, direction, status, text string, payload any) string {
	if h.store == nil {
		return ""
	}
	report, err := internal_report.NewReport(kind, direction, status, text, payload)
	if err != nil {
		h.logger.Error("unable to encode report", "kind", kind, "error", err)
		return ""
	}
	id, err := h.store.Save(c.Request.Context(), report)
	if err != nil {
		h.logger.Error("unable to archive report", "kind", kind, "error", err)
		return ""
	}
	return id
}
