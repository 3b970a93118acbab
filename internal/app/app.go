package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-milestones/internal/config"
	"github.com/yungbote/neurobridge-milestones/internal/data/db"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	httpx "github.com/yungbote/neurobridge-milestones/internal/http"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/realtime"
	"github.com/yungbote/neurobridge-milestones/internal/realtime/bus"
	"github.com/yungbote/neurobridge-milestones/internal/realtime/sse"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	DB       *db.Service
	Repos    repos.Set
	Bus      bus.Bus
	Hub      *sse.Hub
	Engine   *services.Engine
	Jobs     services.JobService
	Metrics  *observability.Metrics
	Server   *httpx.Server
	Runners  []Runner
	clients  Clients
	shutdown []func(context.Context) error
}

// Runner is a long-lived component started by Run.
type Runner struct {
	Name string
	Run  func(ctx context.Context) error
}

// New wires every component. Nothing is started until Run.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Log: log, Cfg: cfg}

	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Version:     cfg.App.Version,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     observability.ParseHeaders(cfg.Otel.Headers),
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
	})
	a.shutdown = append(a.shutdown, shutdownOtel)
	a.Metrics = observability.Init(log, observability.Config{
		Enabled:        cfg.Metrics.Enabled,
		Addr:           cfg.Metrics.Addr,
		ScrapeInterval: cfg.Metrics.ScrapeInterval,
	})

	log.Info("Opening database...")
	dbs, err := db.Open(log, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.DB = dbs
	a.shutdown = append(a.shutdown, func(context.Context) error { return dbs.Close() })
	if cfg.Database.AutoMigrate {
		if err := dbs.Migrate(); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.clients = clients
	a.Bus = clients.Bus
	a.shutdown = append(a.shutdown, clients.Close)

	a.Repos = repos.NewSet(dbs.DB(), log)
	a.Engine = wireEngine(dbs.DB(), log, cfg, a.Repos, clients)

	jobs, runners, err := wireJobs(log, cfg, dbs.DB(), a.Repos, a.Engine, clients)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Jobs = jobs
	a.Runners = runners

	sqlDB, err := dbs.DB().DB()
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("database handle: %w", err)
	}
	a.Hub = sse.NewHub(log)
	a.Runners = append(a.Runners, Runner{Name: "event_forwarder", Run: a.forwardEvents})
	a.Server = wireServer(log, cfg, a.Metrics, sqlDB, a.Engine, jobs, a.Hub)
	return a, nil
}

// Run starts the HTTP server, job runners and collectors, and blocks until
// ctx is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartServer(gctx, a.Log, a.Cfg.Metrics.Addr)
	collectors := []observability.Collector{a.Metrics.PostgresCollector(a.DB.DB())}
	if a.clients.Redis != nil {
		collectors = append(collectors, a.Metrics.RedisCollector(a.clients.Redis))
	}
	a.Metrics.RunCollectors(gctx, a.Log, collectors...)

	g.Go(func() error { return a.Server.Run(gctx, a.Cfg.HTTP.Addr) })
	for _, r := range a.Runners {
		r := r
		g.Go(func() error {
			a.Log.Info("Starting runner", "runner", r.Name)
			if err := r.Run(gctx); err != nil {
				return fmt.Errorf("%s: %w", r.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// forwardEvents relays bus messages to the SSE hub until ctx ends.
func (a *App) forwardEvents(ctx context.Context) error {
	if err := a.Bus.StartForwarder(ctx, func(m realtime.Message) { a.Hub.Broadcast(m) }); err != nil {
		return fmt.Errorf("start event forwarder: %w", err)
	}
	<-ctx.Done()
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil && a.Log != nil {
			a.Log.Warn("Shutdown step failed", "error", err)
		}
	}
	a.shutdown = nil
	if a.Log != nil {
		a.Log.Sync()
	}
}
