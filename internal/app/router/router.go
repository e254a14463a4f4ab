package router

import (
	"loan-approval/internal/app/handlers"
	"loan-approval/internal/app/middleware"
	"loan-approval/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/metric"
)

type Dependencies struct {
	Decisions *handlers.DecisionHandler
	Health    *handlers.HealthHandler
	Meter     metric.Meter
	Logger    logger.Logger
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(logger.ServiceName))
	if deps.Meter != nil {
		r.Use(middleware.NewMetricMiddleware(deps.Meter))
	}
	if deps.Logger != nil {
		r.Use(middleware.RequestLogger(deps.Logger))
	}

	r.GET("/health", deps.Health.Health)
	r.GET("/ready", deps.Health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1/loan-decisions")
	v1.POST("", deps.Decisions.Decide)
	v1.GET("/options", deps.Decisions.Options)
	v1.GET("/:id", deps.Decisions.Get)

	return r
}
