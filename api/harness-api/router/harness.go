// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package harness_routers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	harness_api "github.com/rapidaai/harness/api/harness-api/api"
	"github.com/rapidaai/harness/config"
	"github.com/rapidaai/harness/pkg/commons"
	"github.com/rapidaai/harness/pkg/utils"
)

// NewEngine returns a gin engine with recovery, CORS and request logging.
func NewEngine(cfg *config.AppConfig, logger commons.Logger) *gin.Engine {
	if utils.FromEnvironmentStr(cfg.Environment) == utils.PRODUCTION {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	engine.Use(requestLogger(logger))
	return engine
}

func requestLogger(logger commons.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

func HealthCheckRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger, hApi *harness_api.HarnessApi) {
	logger.Info("Internal HealthCheckRoutes added to engine.")
	apiv1 := engine.Group("")
	{
		apiv1.GET("/readiness/", hApi.Readiness)
		apiv1.GET("/healthz/", hApi.Healthz)
	}
}

func HarnessApiRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger, hApi *harness_api.HarnessApi) {
	logger.Info("Internal HarnessApiRoutes added to engine.")
	apiv1 := engine.Group("/v1")
	{
		apiv1.POST("/tap/analyze", hApi.AnalyzeTap)
		apiv1.POST("/tap/analyze/wav", hApi.AnalyzeTapWAV)
		apiv1.POST("/tap/reset", hApi.ResetTap)

		apiv1.POST("/discontinuity/next", hApi.DiscontinuityNext)
		apiv1.POST("/discontinuity/scan", hApi.DiscontinuityScan)
		apiv1.POST("/statistics/summary", hApi.StatisticsSummary)
		apiv1.POST("/taper/map", hApi.TaperMap)

		apiv1.POST("/latency/measure", hApi.MeasureLatency)
		apiv1.POST("/latency/average", hApi.AverageLatency)

		apiv1.GET("/reports", hApi.ListReports)
		apiv1.GET("/reports/:id", hApi.GetReport)
		apiv1.DELETE("/reports/:id", hApi.DeleteReport)

		apiv1.GET("/chart", hApi.ChartSnapshot)
		apiv1.GET("/chart/stream", hApi.ChartStream)
	}
}
