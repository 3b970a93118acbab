package app

import (
	"database/sql"

	"github.com/yungbote/neurobridge-milestones/internal/config"
	httpx "github.com/yungbote/neurobridge-milestones/internal/http"
	httpH "github.com/yungbote/neurobridge-milestones/internal/http/handlers"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/realtime/sse"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

func wireServer(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, sqlDB *sql.DB, engine *services.Engine, jobs services.JobService, hub *sse.Hub) *httpx.Server {
	log.Info("Wiring HTTP handlers...")
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.App.Name
	}
	srv := httpx.NewServer(log, httpx.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		Metrics:          metrics,
		HealthHandler:    httpH.NewHealthHandler(sqlDB),
		MilestoneHandler: httpH.NewMilestoneHandler(log, engine.Progress, jobs),
		JobHandler:       httpH.NewJobHandler(jobs),
		EventsHandler:    httpH.NewEventsHandler(hub),
	}, cfg.HTTP.ShutdownTimeout)
	srv.OnShutdown(hub.CloseAll)
	return srv
}
