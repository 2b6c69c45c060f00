package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/deroute/internal/config"
	"github.com/MrSnakeDoc/deroute/internal/httpserver"
	"github.com/MrSnakeDoc/deroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/deroute/internal/index"
	"github.com/MrSnakeDoc/deroute/internal/logger"
	"github.com/MrSnakeDoc/deroute/internal/metrics"
	"github.com/MrSnakeDoc/deroute/internal/redis"
	redisstore "github.com/MrSnakeDoc/deroute/internal/store/redis"
	"github.com/MrSnakeDoc/deroute/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
}

// New loads the configuration, connects to Redis when configured and
// registers every route. Any registration failure aborts startup.
func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	memIndex := index.NewMemoryIndex()

	var (
		redisClient *goredis.Client
		hits        deps.HitCounter = memIndex
	)
	if cfg.RedisEnabled() {
		client, err := redis.Connect(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		redisClient = client
		hits = redisstore.NewHitStore(client)
	} else {
		loggerClient.Info("redis not configured, hit counters kept in memory")
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		RateBurst:    cfg.RateBurst,
		RatePerMin:   cfg.RatePerMin,
		RedisClient:  redisClient,
		MemoryIndex:  memIndex,
		Hits:         hits,
		Metrics:      metrics.New(),
	}

	server, err := httpserver.New(cfg, loggerClient, d)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("register routes: %w", err)
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
	}, nil
}

func (a *App) Run() error {
	defer func() { _ = a.logger.Sync() }()

	a.logger.Infof("🚀 Starting deroute v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ deroute stopped cleanly")
	return nil
}
