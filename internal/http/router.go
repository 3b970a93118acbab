package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-milestones/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-milestones/internal/http/middleware"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

const (
	routeHealth  = "/healthcheck"
	routeMetrics = "/metrics"
	routeEvents  = "/api/students/:student_id/events"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	HealthHandler    *httpH.HealthHandler
	MilestoneHandler *httpH.MilestoneHandler
	JobHandler       *httpH.JobHandler
	EventsHandler    *httpH.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log, routeHealth, routeMetrics))
	r.Use(httpMW.Metrics(cfg.Metrics, routeEvents))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET(routeHealth, cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET(routeMetrics, gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Milestones
		if cfg.MilestoneHandler != nil {
			api.GET("/courses/:course_id/students/:student_id/milestone-progress", cfg.MilestoneHandler.GetProgress)
			api.POST("/courses/:course_id/interactions", cfg.MilestoneHandler.TrackInteraction)
			api.POST("/courses/:course_id/milestone-progress/remove", cfg.MilestoneHandler.RemoveAssessment)
			api.POST("/courses/:course_id/milestone-progress/rescore", cfg.MilestoneHandler.RescoreAssessment)
		}

		// Realtime
		if cfg.EventsHandler != nil {
			api.GET(strings.TrimPrefix(routeEvents, "/api"), cfg.EventsHandler.Stream)
		}

		// Job
		if cfg.JobHandler != nil {
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
			api.POST("/jobs/:id/retry", cfg.JobHandler.RetryJob)
		}
	}

	return r
}
