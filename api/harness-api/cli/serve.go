// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	harness_api "github.com/rapidaai/harness/api/harness-api/api"
	internal_engine "github.com/rapidaai/harness/api/harness-api/internal/engine"
	internal_runner "github.com/rapidaai/harness/api/harness-api/internal/runner"
	harness_routers "github.com/rapidaai/harness/api/harness-api/router"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, h *harness, args []string) error {
	fs := h.flagSet("serve")
	port := fs.Int("port", h.cfg.Port, "port to listen on")
	engineFlags := registerEngineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	h.cfg.Port = *port
	if err := h.initLogger(true); err != nil {
		return err
	}
	defer h.logger.Sync()

	sqlite, store, closeStore, err := h.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open report archive: %w", err)
	}
	defer closeStore()

	chart, err := internal_runner.NewLatencyChart(h.cfg.Chart.Points)
	if err != nil {
		return err
	}
	measurer := internal_engine.NewSimulatedEngine(h.logger, engineFlags.options()...)
	hApi := harness_api.New(h.cfg, h.logger, measurer, sqlite, store, chart)

	engine := harness_routers.NewEngine(h.cfg, h.logger)
	harness_routers.HealthCheckRoutes(h.cfg, engine, h.logger, hApi)
	harness_routers.HarnessApiRoutes(h.cfg, engine, h.logger, hApi)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", h.cfg.Host, h.cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(hApi.Shutdown)
	errCh := make(chan error, 1)
	go func() {
		h.logger.Infof("%s %s listening on %s", h.cfg.Name, h.cfg.Version, server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		h.logger.Info("shutting down", "addr", server.Addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
