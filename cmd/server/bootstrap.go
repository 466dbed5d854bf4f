package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jastrate/task-manager/internal/cache"
	"github.com/jastrate/task-manager/internal/config"
	"github.com/jastrate/task-manager/internal/database"
	"github.com/jastrate/task-manager/internal/middleware"
	"github.com/jastrate/task-manager/internal/monitoring"
	"github.com/jastrate/task-manager/internal/scheduler"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/internal/worker"
	"github.com/jastrate/task-manager/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const cacheKeyPrefix = "taskmgr:"

// app holds every long-lived dependency of the server.
type app struct {
	cfg     *config.Config
	pool    *database.DatabasePool
	redis   *redis.Client
	cache   *cache.MultiLevelCache
	worker  *worker.Worker
	cron    *scheduler.Scheduler
	limiter *middleware.RateLimiter
	monitor *monitoring.Monitor

	auth          services.AuthService
	authz         services.AuthorizationService
	users         services.UserService
	groups        services.GroupService
	tasks         services.TaskService
	notifications services.NotificationService
}

// bootstrap opens the store and Redis, then builds the services and starts
// the background jobs.
func bootstrap(cfg *config.Config) (*app, error) {
	poolCfg := &database.PoolConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        gormlogger.Warn,
	}
	pool, err := database.NewDatabasePool(poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := pool.Migrate(); err != nil {
			pool.Close()
			return nil, err
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.GetRedisAddr()).Msg("redis unreachable at startup, cache will degrade to memory")
		}
	}

	a := newApp(cfg, pool.DB, rdb)
	a.pool = pool
	a.monitor.RegisterHealthCheck("database", func(ctx context.Context) error { return pool.Health() })
	a.monitor.RegisterStats("database", pool.Stats)

	if a.worker != nil {
		a.worker.Start(cfg.Worker.Concurrency)
	}

	a.cron = scheduler.New(pool.DB)
	if err := a.cron.Start(cfg.Scheduler.TokenCleanupSpec); err != nil {
		a.shutdown()
		return nil, err
	}

	return a, nil
}

// newApp wires the services on top of db. rdb may be nil, in which case the
// cache is memory-only and mail is sent inline.
func newApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *app {
	a := &app{
		cfg:     cfg,
		redis:   rdb,
		monitor: monitoring.NewMonitor(),
	}

	var mailer services.Mailer = services.LogMailer{}
	if cfg.Mail.Enabled() {
		mailer = services.NewSMTPMailer(cfg.Mail)
	}

	var dispatcher services.MailDispatcher = services.NewDirectDispatcher(mailer)
	var l2 *cache.RedisCache
	if rdb != nil {
		l2 = cache.NewRedisCacheFromClient(rdb, cacheKeyPrefix)

		queues := cfg.Worker.Queues
		if len(queues) == 0 {
			queues = []string{"default", worker.RetryQueue}
		}
		a.worker = worker.NewWorker(worker.WorkerConfig{
			RedisClient:  rdb,
			PollInterval: cfg.Worker.PollInterval,
			Queues:       queues,
		})
		a.worker.RegisterHandler(worker.JobTypeEmailNotification, services.EmailJobHandler(mailer))
		dispatcher = services.NewQueueDispatcher(worker.NewJobQueue(rdb, cfg.Worker.MaxRetries), queues[0])

		a.monitor.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		a.monitor.RegisterStats("worker", func() map[string]interface{} {
			out := map[string]interface{}{}
			for k, v := range a.worker.Stats() {
				out[k] = v
			}
			return out
		})
	}

	a.cache = cache.NewMultiLevelCache(l2, cache.MultiLevelConfig{
		L1MaxEntries: cfg.Cache.L1MaxEntries,
		L1TTL:        cfg.Cache.DashboardTTL,
	})
	a.monitor.RegisterStats("cache", a.cache.Stats)

	if cfg.RateLimit.Enabled {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, cfg.RateLimit.CleanupInterval)
	}

	a.auth = services.NewAuthService(db, cfg.Auth, dispatcher)
	a.authz = services.NewAuthorizationService(db)
	a.notifications = services.NewNotificationService(db)
	tasks := services.NewCachedTaskService(
		services.NewTaskService(db, a.authz, a.notifications),
		a.cache,
		cfg.Cache.DashboardTTL,
	)
	a.tasks = tasks
	a.users = services.NewCachedUserService(services.NewUserService(db), tasks)
	a.groups = services.NewCachedGroupService(services.NewGroupService(db), tasks)
	return a
}

// shutdown stops background work and releases connections.
func (a *app) shutdown() {
	if a.cron != nil {
		a.cron.Stop()
	}
	if a.worker != nil {
		a.worker.Stop()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if err := a.cache.Close(); err != nil {
		logger.Warn().Err(err).Msg("close cache")
	}
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			logger.Warn().Err(err).Msg("close database")
		}
	}
	logger.Info().Msg("all background services stopped")
}

// shutdownTimeout bounds how long in-flight requests may take to finish.
const shutdownTimeout = 15 * time.Second
