package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/neurobridge-milestones/internal/config"
	"github.com/yungbote/neurobridge-milestones/internal/platform/badges"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/platform/sendgrid"
	"github.com/yungbote/neurobridge-milestones/internal/realtime/bus"
	"github.com/yungbote/neurobridge-milestones/internal/temporalx"
)

type Clients struct {
	Bus      bus.Bus
	Redis    goredis.UniversalClient
	Mailer   sendgrid.Client
	Badges   badges.Client
	Temporal temporalsdkclient.Client
}

func (c Clients) Close(context.Context) error {
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.Redis.Enabled() {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return out, fmt.Errorf("redis ping: %w", err)
		}
		out.Redis = rdb
		out.Bus = bus.NewRedisBusFromClient(log, rdb, cfg.Redis.Channel)
	} else {
		log.Warn("Redis not configured; using in-process event bus")
		out.Bus = bus.NewMemoryBus(0)
	}

	if cfg.Awards.SendGrid.Enabled() {
		m, err := sendgrid.New(log, cfg.Awards.SendGrid)
		if err != nil {
			_ = out.Close(ctx)
			return Clients{}, fmt.Errorf("init sendgrid: %w", err)
		}
		out.Mailer = m
	}
	if cfg.Awards.Badges.Enabled() {
		b, err := badges.New(log, cfg.Awards.Badges)
		if err != nil {
			_ = out.Close(ctx)
			return Clients{}, fmt.Errorf("init badge client: %w", err)
		}
		out.Badges = b
	}

	if cfg.Jobs.Backend == config.BackendTemporal {
		tc, err := temporalx.NewClient(ctx, log, temporalConfig(cfg.Temporal))
		if err != nil {
			_ = out.Close(ctx)
			return Clients{}, fmt.Errorf("init temporal: %w", err)
		}
		out.Temporal = tc
	}
	return out, nil
}

func temporalConfig(c config.TemporalConfig) temporalx.Config {
	return temporalx.Config{
		Address:                c.Address,
		Namespace:              c.Namespace,
		TaskQueue:              c.TaskQueue,
		ClientCertPath:         c.ClientCertPath,
		ClientKeyPath:          c.ClientKeyPath,
		ClientCAPath:           c.ClientCAPath,
		DialTimeout:            c.DialTimeout,
		DialMaxWait:            c.DialMaxWait,
		AutoRegisterNamespace:  c.AutoRegisterNamespace,
		NamespaceRetentionDays: c.NamespaceRetentionDays,
		WorkerConcurrency:      c.WorkerConcurrency,
	}
}
