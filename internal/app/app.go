// Package app assembles the agent from configuration. The server, worker
// and CLI commands all start from Build.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm/logger"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/cache"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/config"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/database"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/dates"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/extractor"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/monitoring"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/normalizer"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/priority"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/query"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/repositories"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/scheduler"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/services"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/sources"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/store"
	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/worker"
)

// App holds the wired components. Tasks, Cache, Queue and Worker are nil
// when their backing store is disabled.
type App struct {
	Config *config.Config
	Clock  dates.Clock

	Agent *services.AgentService
	Tasks services.TaskService

	Pool   *database.DatabasePool
	Cache  *cache.MultiLevelCache
	Redis  *cache.RedisCache
	Queue  *worker.JobQueue
	Worker *worker.Worker

	log *logging.Logger
}

// Build wires every component enabled in cfg. A nil clock means time.Now.
func Build(cfg *config.Config, clock dates.Clock) (*App, error) {
	if clock == nil {
		clock = time.Now
	}
	a := &App{Config: cfg, Clock: clock, log: logging.Component("app")}

	resolver := dates.NewResolver(clock)
	model := modelClassifier(cfg, a.log)

	agentEngine := priority.NewEngine(priority.NewKeywordClassifier(priority.FourLevel, clock), model(priority.FourLevel), logging.Component("priority"))
	agentStrategy := extractor.New(cfg.Extraction.Strategy, resolver, agentEngine)
	a.Agent = services.NewAgentService(
		store.New(),
		normalizer.New(agentStrategy),
		agentEngine,
		query.NewEngine(clock),
		sources.NewLoader(cfg.Data.Dir),
		logging.Component("agent"),
	)

	if cfg.Redis.Enabled {
		a.Redis = cache.NewRedisCache(&cache.CacheConfig{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Redis.KeyPrefix,
		}, logging.Component("cache"))
		a.Queue = worker.NewJobQueue(a.Redis.Client())
		monitoring.RegisterHealthCheck("redis", a.Redis.Health)
	}

	if cfg.Database.Enabled {
		if err := a.buildStored(cfg, resolver, clock, model); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

func (a *App) buildStored(cfg *config.Config, resolver *dates.Resolver, clock dates.Clock, model func(priority.RuleSet) priority.Classifier) error {
	poolConfig := database.DefaultPoolConfig()
	poolConfig.Driver = cfg.Database.Driver
	poolConfig.DSN = cfg.GetDatabaseDSN()
	poolConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	poolConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	poolConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
	if cfg.Logging.Level != "debug" {
		poolConfig.LogLevel = logger.Warn
	}

	pool, err := database.NewDatabasePool(poolConfig)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.Pool = pool
	if err := pool.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	monitoring.RegisterHealthCheck("database", func(context.Context) error { return pool.Health() })

	engine := priority.NewEngine(priority.NewKeywordClassifier(priority.ThreeLevel, clock), model(priority.ThreeLevel), logging.Component("priority"))
	strategy := extractor.New(cfg.Extraction.StoredStrategy, resolver, engine)

	var tasks services.TaskService = services.NewTaskService(
		pool,
		repositories.NewTaskRepository(),
		normalizer.NewStored(strategy, resolver, engine),
		sources.NewLoader(cfg.Data.MockDir),
		clock,
		logging.Component("tasks"),
	)

	a.Cache = cache.NewMultiLevelCache(a.Redis, logging.Component("cache"))
	a.Tasks = services.NewCachedTaskService(tasks, a.Cache, cfg.Redis.CacheTTL)
	return nil
}

// modelClassifier returns a factory for the optional zero-shot model, one
// per rule set so the labels match. It yields nil when no endpoint is set.
func modelClassifier(cfg *config.Config, log *logging.Logger) func(priority.RuleSet) priority.Classifier {
	return func(rules priority.RuleSet) priority.Classifier {
		if cfg.Classifier.Endpoint == "" {
			return nil
		}
		m, err := priority.NewModelClassifier(priority.ModelConfig{
			Endpoint: cfg.Classifier.Endpoint,
			Token:    cfg.Classifier.Token,
			Timeout:  cfg.Classifier.Timeout,
		}, rules.Labels(), logging.Component("priority"))
		if err != nil {
			log.Warn().Err(err).Msg("priority model disabled")
			return nil
		}
		return m
	}
}

// NewWorker builds a worker that runs the extraction jobs. It needs redis.
func (a *App) NewWorker() (*worker.Worker, error) {
	if a.Redis == nil {
		return nil, errors.New("the worker needs REDIS_ENABLED=true")
	}
	w := worker.NewWorker(worker.WorkerConfig{
		RedisClient:  a.Redis.Client(),
		PollInterval: a.Config.Worker.PollInterval,
		Queues:       a.Config.Worker.Queues,
	}, logging.Component("worker"))

	w.RegisterHandler(worker.JobTypeExtractAgent, func(ctx context.Context, job *worker.Job) error {
		_, err := a.Agent.ExtractFromDir(ctx)
		return err
	})

	if a.Tasks != nil {
		w.RegisterHandler(worker.JobTypeExtractStored, func(ctx context.Context, job *worker.Job) error {
			var req models.ExtractRequest
			if err := job.Decode(&req); err != nil {
				return fmt.Errorf("decode extract request: %w", err)
			}
			_, err := a.Tasks.Extract(ctx, req)
			return err
		})
		w.RegisterHandler(worker.JobTypeReloadMock, func(ctx context.Context, job *worker.Job) error {
			_, err := a.Tasks.ReloadMock(ctx)
			return err
		})
	}

	a.Worker = w
	return w, nil
}

// Reextract refreshes the in-memory collection from the data directory.
func (a *App) Reextract(ctx context.Context) error {
	res, err := a.Agent.ExtractFromDir(ctx)
	if err != nil {
		return err
	}
	a.log.Info().Int("tasks", res.TotalTasks).Msg("data directory re-extracted")
	return nil
}

// ReloadMock reseeds the database, through the queue when one is wired.
func (a *App) ReloadMock(ctx context.Context) error {
	if a.Tasks == nil {
		return nil
	}
	if a.Queue != nil {
		_, err := a.Queue.Enqueue(ctx, worker.QueueDefault, worker.JobTypeReloadMock, json.RawMessage(`{}`))
		return err
	}
	_, err := a.Tasks.ReloadMock(ctx)
	return err
}

// Schedule registers the periodic re-extraction when a schedule is set.
func (a *App) Schedule(s *scheduler.Scheduler) error {
	if a.Config.Data.Schedule == "" {
		return nil
	}
	return s.ScheduleCron(a.Config.Data.Schedule, "reextract", a.Reextract)
}

// Watch re-extracts when the data files change and reseeds the database
// when the mock files change. It blocks until ctx is done.
func (a *App) Watch(ctx context.Context) error {
	log := logging.Component("watcher")
	watchers := []*sources.Watcher{
		sources.NewWatcher(func(ctx context.Context) {
			if err := a.Reextract(ctx); err != nil {
				log.Error().Err(err).Msg("re-extraction failed")
			}
		}, log, a.Config.Data.Dir),
	}
	if a.Tasks != nil && a.Config.Data.MockDir != "" {
		watchers = append(watchers, sources.NewWatcher(func(ctx context.Context) {
			if err := a.ReloadMock(ctx); err != nil {
				log.Error().Err(err).Msg("mock reload failed")
			}
		}, log, a.Config.Data.MockDir))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, len(watchers))
	for _, w := range watchers {
		go func(w *sources.Watcher) { errs <- w.Run(ctx) }(w)
	}

	var first error
	for range watchers {
		if err := <-errs; err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func (a *App) Close() {
	if a.Worker != nil {
		a.Worker.Stop()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	} else if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Pool != nil {
		_ = a.Pool.Close()
	}
}
