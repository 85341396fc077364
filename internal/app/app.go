package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/hphuyvu-stack/inclusing/internal/data/db"
	"github.com/hphuyvu-stack/inclusing/internal/data/kv"
	"github.com/hphuyvu-stack/inclusing/internal/domain"
	apphttp "github.com/hphuyvu-stack/inclusing/internal/http"
	httpH "github.com/hphuyvu-stack/inclusing/internal/http/handlers"
	httpMW "github.com/hphuyvu-stack/inclusing/internal/http/middleware"
	"github.com/hphuyvu-stack/inclusing/internal/observability"
	"github.com/hphuyvu-stack/inclusing/internal/platform/gemini"
	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
	"github.com/hphuyvu-stack/inclusing/internal/realtime"
	"github.com/hphuyvu-stack/inclusing/internal/realtime/bus"
	"github.com/hphuyvu-stack/inclusing/internal/session"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Hub      *realtime.SSEHub
	Bus      bus.Bus
	Registry *session.Registry
	Server   *apphttp.Server

	sql          *db.Service
	rdb          *goredis.Client
	otelShutdown func(context.Context) error
}

func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.OTel)

	if cfg.Storage.Backend == "redis" || cfg.Bus == "redis" {
		a.rdb, err = kv.NewRedisClient(ctx, cfg.redisKV())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
	}

	storage, ping, err := a.wireStorage()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Hub = realtime.NewSSEHub(log)
	if cfg.Bus == "redis" {
		a.Bus, err = bus.NewRedisBus(log, a.rdb, cfg.Redis.Channel, false)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init realtime bus: %w", err)
		}
	} else {
		a.Bus = bus.NewLocalBus()
	}

	policy, err := settings.ParseLoadPolicy(cfg.Storage.LoadPolicy)
	if err != nil {
		a.Close()
		return nil, err
	}
	ai := gemini.New(log, cfg.Gemini)
	notifier := session.NewNotifier(a.Hub, a.Bus, cfg.InstanceID, log)
	course := domain.SampleCourse()
	a.Registry = session.NewRegistry(storage, ai, notifier, log, session.Options{
		Policy: policy,
		Source: course.Content,
	})

	serviceName := ""
	if cfg.OTel.Enabled {
		serviceName = cfg.OTel.ServiceName
	}
	a.Server = apphttp.NewServer(cfg.Addr, apphttp.RouterConfig{
		Log:                 log,
		ServiceName:         serviceName,
		AllowedOrigins:      cfg.AllowedOrigins,
		ProfileMiddleware:   httpMW.NewProfileMiddleware(log, cfg.JWTSecret),
		SettingsHandler:     httpH.NewSettingsHandler(a.Registry),
		PresentationHandler: httpH.NewPresentationHandler(a.Registry),
		ContentHandler:      httpH.NewContentHandler(a.Registry, course),
		KeyboardHandler:     httpH.NewKeyboardHandler(a.Registry),
		RealtimeHandler:     httpH.NewRealtimeHandler(log, a.Hub, a.Registry),
		ViewportHandler:     httpH.NewViewportHandler(log, a.Hub, a.Registry, cfg.AllowedOrigins),
		HealthHandler:       httpH.NewHealthHandler(ping),
	})

	log.Info("app wired",
		"addr", cfg.Addr,
		"storage", cfg.Storage.Backend,
		"bus", cfg.Bus,
		"instance_id", cfg.InstanceID,
	)
	return a, nil
}

func (a *App) wireStorage() (kv.Storage, func(context.Context) error, error) {
	cfg := a.Cfg.Storage
	switch cfg.Backend {
	case "memory":
		a.Log.Warn("settings storage is in-memory; preferences are lost on restart")
		return kv.NewMemory(), nil, nil
	case "redis":
		rdb := a.rdb
		ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		return kv.NewRedisStorage(rdb, a.Cfg.Redis.Prefix, a.Log), ping, nil
	default:
		svc, err := db.Open(db.Config{
			Driver:      cfg.Backend,
			PostgresDSN: cfg.PostgresDSN,
			SQLitePath:  cfg.SQLitePath,
		}, a.Log)
		if err != nil {
			return nil, nil, fmt.Errorf("init %s: %w", cfg.Backend, err)
		}
		a.sql = svc
		return kv.NewGormStorage(svc.DB(), a.Log), svc.Ping, nil
	}
}

// Run serves HTTP and forwards bus traffic until ctx is cancelled or either
// side fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Bus.StartForwarder(gctx, a.Registry.Forward)
	})
	g.Go(func() error {
		a.Log.Info("listening", "addr", a.Cfg.Addr)
		return a.Server.Run(gctx, a.Cfg.ShutdownTimeout)
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Registry != nil {
		a.Registry.Close()
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("bus close failed", "error", err)
		}
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.sql != nil {
		if err := a.sql.Close(); err != nil {
			a.Log.Warn("sql close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Log.Sync()
}
