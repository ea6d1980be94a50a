// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_engine "github.com/rapidaai/harness/api/harness-api/internal/engine"
	"github.com/rapidaai/harness/config"
	"github.com/rapidaai/harness/pkg/commons"
)

func newTestApi(t *testing.T) (*HarnessApi, *internal_engine.SimulatedEngine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-api"),
		commons.Path(t.TempDir()),
		commons.Level("debug"),
	)
	require.NoError(t, err)
	engine := internal_engine.NewSimulatedEngine(logger)
	return New(config.DefaultConfig(), logger, engine, nil, nil, nil), engine
}

func TestMeasurementsAreExclusive(t *testing.T) {
	hApi, engine := newTestApi(t)
	hApi.measuring.Lock()
	defer hApi.measuring.Unlock()

	for _, handler := range []gin.HandlerFunc{hApi.MeasureLatency, hApi.AverageLatency, hApi.DiscontinuityScan} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")
		handler(c)
		assert.Equal(t, http.StatusConflict, w.Code)
	}
	assert.Zero(t, engine.Calls())
}

func TestChartDisabled(t *testing.T) {
	hApi, _ := newTestApi(t)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/chart", nil)
	hApi.ChartSnapshot(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLatencyRequestDefaultsToOutput(t *testing.T) {
	request := LatencyRequest{BufferBursts: 3}.measurerRequest()
	assert.Equal(t, "output", string(request.Direction))
	assert.Equal(t, 3, request.BufferBursts)
}

func TestShutdownIsIdempotent(t *testing.T) {
	hApi, _ := newTestApi(t)
	hApi.Shutdown()
	assert.NotPanics(t, hApi.Shutdown)

	select {
	case <-hApi.shutdown:
	default:
		t.Fatal("shutdown channel still open")
	}
}
