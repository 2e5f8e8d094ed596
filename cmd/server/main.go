package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/actuallystonmai/group-dining-service/internal/cache"
	"github.com/actuallystonmai/group-dining-service/internal/config"
	"github.com/actuallystonmai/group-dining-service/internal/handler"
	"github.com/actuallystonmai/group-dining-service/internal/logging"
	"github.com/actuallystonmai/group-dining-service/internal/repository"
	"github.com/actuallystonmai/group-dining-service/internal/router"
	"github.com/actuallystonmai/group-dining-service/internal/scoring"
	"github.com/actuallystonmai/group-dining-service/internal/service"
	"github.com/actuallystonmai/group-dining-service/internal/source"
	"github.com/actuallystonmai/group-dining-service/seeds"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()
	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// ------------ PostgreSQL ---------------
	var repo *repository.Repository
	if cfg.Source.Kind == source.NameCatalog {
		pool, err := connectDB(ctx, cfg.Database)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		// for migrate-down using CLI command
		if command == "migrate-down" {
			if err := migrateDown(ctx, pool); err != nil {
				logging.Fatal().Err(err).Msg("failed to migrate down")
			}
			return
		}
		if err := migrateUp(ctx, pool); err != nil {
			logging.Fatal().Err(err).Msg("failed to migrate up")
		}

		repo = repository.New(pool)
		if cfg.Database.Seed {
			if err := checkSeed(ctx, pool, repo, cfg.Database.PerCuisine); err != nil {
				logging.Fatal().Err(err).Msg("failed to seed venues")
			}
		}
	}

	// ------------ Redis ---------------
	var venueCache *cache.Cache
	if cfg.Cache.Enabled {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to parse redis url")
		}
		client := redis.NewClient(opts)
		defer client.Close()

		venueCache = cache.NewCache(client)
		if err := venueCache.Ping(ctx); err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to redis")
		}
		logging.Info().Msg("connected to Redis")

		if command == "flush-cache" {
			n, err := venueCache.Flush(ctx)
			if err != nil {
				logging.Fatal().Err(err).Msg("failed to flush cache")
			}
			logging.Info().Int("keys", n).Msg("candidate cache flushed")
			return
		}
	}

	// ------------ Pipeline ---------------
	src, err := buildSource(cfg, repo, venueCache)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build candidate source")
	}
	strategy, err := scoring.New(cfg.Recommend.Strategy, scoring.Options{
		ProximityRadiusKm: cfg.Recommend.ProximityRadiusKm,
		CandidateLimit:    cfg.Recommend.CandidateLimit,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build scoring strategy")
	}
	svc := service.NewService(src, strategy, service.Options{
		DefaultTopK: cfg.Recommend.DefaultTopK,
		MaxTopK:     cfg.Recommend.MaxTopK,
		TopCuisines: cfg.Recommend.TopCuisines,
	})

	// ---------------- Server --------------------
	h := handler.NewHandler(svc)
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(h, router.Options{
			RequestTimeout:    cfg.Server.RequestTimeout,
			CORSOrigins:       cfg.Server.CORSOrigins,
			RateLimitRequests: cfg.Server.RateLimitRequests,
			RateLimitWindow:   cfg.Server.RateLimitWindow,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("source", cfg.Source.Kind).
			Str("strategy", strategy.Name()).
			Bool("cache", venueCache != nil).
			Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	logging.Info().Msg("server stopped")
}

// buildSource assembles the configured candidate source. Per-cuisine fan-out
// sits outside the cache so each cuisine is cached on its own.
func buildSource(cfg *config.Config, repo *repository.Repository, venueCache *cache.Cache) (source.Source, error) {
	sc := cfg.Source

	var (
		base source.Source
		mws  []source.Middleware
	)
	if venueCache != nil {
		mws = append(mws, source.Cache(venueCache, cfg.Cache.TTL))
	}

	switch sc.Kind {
	case source.NameYelp:
		base = source.NewYelpClient(sc.YelpBaseURL, sc.YelpAPIKey, sc.Timeout)
		mws = append(mws,
			source.Retry(sc.Kind, sc.MaxRetries, sc.RetryBaseDelay, sc.RetryMaxDelay),
			source.CircuitBreaker(sc.Kind, source.BreakerSettings{
				ConsecutiveFailures: sc.BreakerFailures,
				OpenTimeout:         sc.BreakerTimeout,
			}),
			source.RateLimit(sc.Kind, rate.Limit(sc.RateLimit), sc.RateBurst),
		)
	case source.NameCatalog:
		if repo == nil {
			return nil, fmt.Errorf("catalog source requires a database")
		}
		base = source.NewCatalogSource(repo)
	case source.NameMock:
		base = source.NewMockSource(sc.MockPerCuisine)
	default:
		return nil, fmt.Errorf("unknown source kind %q", sc.Kind)
	}
	mws = append(mws, source.Instrument(sc.Kind))

	return source.NewFanOut(source.Chain(base, mws...), sc.FanOutLimit), nil
}

func connectDB(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(dbCfg.PoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := waitForDB(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	logging.Info().Msg("connected to PostgreSQL")
	return pool, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logging.Info().Int("attempt", i+1).Msg("waiting for database")
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	return runMigration(ctx, pool, "migrations/create_tables.down.sql")
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	return runMigration(ctx, pool, "migrations/create_tables.up.sql")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration %s: %w", path, err)
	}
	logging.Info().Str("file", path).Msg("migration applied")
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, repo *repository.Repository, perCuisine int) error {
	count, err := repo.CountVenues(ctx)
	if err != nil {
		return fmt.Errorf("check venue count: %w", err)
	}
	if count > 0 {
		logging.Info().Int("venues", count).Msg("catalog already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool, seeds.DefaultCuisines, perCuisine)
}
