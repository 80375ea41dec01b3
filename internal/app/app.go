package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"medcompanion-server/internal/agent"
	"medcompanion-server/internal/analysis"
	"medcompanion-server/internal/config"
	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/metrics"
	"medcompanion-server/internal/middleware"
	"medcompanion-server/internal/query"
	"medcompanion-server/internal/reports"
	"medcompanion-server/internal/routes"
	"medcompanion-server/internal/scheduling"
	"medcompanion-server/internal/store"
	"medcompanion-server/internal/tools"
)

// App holds the wired services for one process
type App struct {
	Config     *config.Config
	Log        *logger.Logger
	Metrics    *metrics.Metrics
	Datasets   *store.Datasets
	Scheduling *scheduling.Service
	Reports    *reports.Service
	Query      *query.Facade
	Registry   *tools.Registry
	Manifest   agent.Definition

	closers []func() error
}

// New wires storage, locking, document analysis and the tool registry from cfg
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, Metrics: metrics.New()}

	backend, err := a.openBackend()
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []store.Option{store.WithLogger(log), store.WithMetrics(a.Metrics)}
	if cfg.Redis.Addr != "" {
		locker, err := a.openRedisLocker(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, store.WithLocker(locker))
	}
	a.Datasets = store.New(backend, opts...)

	var (
		analyzer   reports.DocumentAnalyzer
		researcher tools.Researcher
	)
	if cfg.Gemini.APIKey != "" {
		client, err := analysis.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.DocumentModel, cfg.Gemini.AgentModel)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		analyzer, researcher = client, client
	} else {
		log.WithComponent("app").Warn("GOOGLE_API_KEY not set, image/PDF reports and medical research are disabled")
	}

	a.Scheduling = scheduling.NewService(a.Datasets, log, a.Metrics)
	a.Reports = reports.NewService(a.Datasets, cfg.DatasetsDir, analyzer, log, a.Metrics)
	a.Query = query.NewFacade(a.Datasets, cfg.DatasetsDir)

	a.Registry = tools.NewRegistry(log, a.Metrics)
	tools.Register(a.Registry, tools.Deps{
		Scheduling: a.Scheduling,
		Reports:    a.Reports,
		Researcher: researcher,
	})

	a.Manifest = agent.Manifest(cfg.Gemini.AgentModel)
	if err := agent.Validate(a.Manifest, a.Registry); err != nil {
		a.Close()
		return nil, fmt.Errorf("agent manifest: %w", err)
	}

	return a, nil
}

func (a *App) openBackend() (store.Backend, error) {
	switch a.Config.StoreBackend {
	case config.StoreBackendMySQL:
		db, err := store.OpenMySQL(a.Config.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}
		a.closers = append(a.closers, func() error { return store.CloseDB(db) })
		a.Log.WithComponent("app").Info("dataset store: mysql")
		return store.NewSQLBackend(db), nil
	default:
		a.Log.WithComponent("app").WithField("dir", a.Config.DatasetsDir).Info("dataset store: files")
		return store.NewFileBackend(a.Config.DatasetsDir), nil
	}
}

func (a *App) openRedisLocker(ctx context.Context) (*store.RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
	})
	a.closers = append(a.closers, client.Close)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", a.Config.Redis.Addr, err)
	}
	a.Log.WithComponent("app").WithField("addr", a.Config.Redis.Addr).Info("dataset locks: redis")
	return store.NewRedisLocker(client, store.RedisLockerConfig{
		TTL:  a.Config.Redis.LockTTL,
		Wait: a.Config.Redis.LockWait,
	}), nil
}

// Router builds the gin engine with logging, recovery, CORS and all routes
func (a *App) Router() *gin.Engine {
	if a.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(a.Log))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	if a.Config.AllowsAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = a.Config.Origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Deps{
		Config:   a.Config,
		Log:      a.Log,
		Metrics:  a.Metrics,
		Query:    a.Query,
		Registry: a.Registry,
		Manifest: a.Manifest,
	})
	return router
}

// Close releases clients in reverse order of creation
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
