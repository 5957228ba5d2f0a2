package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"noor-service/internal/adapters/cache"
	"noor-service/internal/adapters/geocode"
	"noor-service/internal/adapters/kv"
	"noor-service/internal/adapters/repositories"
	"noor-service/internal/api"
	"noor-service/internal/api/handlers"
	"noor-service/internal/config"
	"noor-service/internal/platform/db"
	"noor-service/internal/platform/logging"
	"noor-service/internal/ports"
	"noor-service/internal/services"
)

const shutdownTimeout = 15 * time.Second

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, Redis, ORS) behind ports and
// starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("server", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	logging.ReplaceGlobal(logger)

	if envErr != nil {
		logger.Info("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	_ = logger.Sync()

	if err != nil {
		logger.Errorw("server exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	conn, dialect, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and seed saved places on startup; reseeding is idempotent.
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return err
	}
	n, err := repositories.SeedFromJSON(ctx, conn, dialect, cfg.SeedPath)
	if err != nil {
		return err
	}
	logger.Infow("places seeded", "count", n, "path", cfg.SeedPath, "dialect", dialect.String())

	checks := map[string]handlers.HealthCheck{"db": conn.PingContext}

	var store ports.KeyValueStore
	if cfg.RedisURL != "" {
		rs, err := kv.NewRedisStore(ctx, cfg.RedisURL, "noor:")
		if err != nil {
			return err
		}
		defer rs.Close()
		store = rs
		checks["redis"] = rs.Ping
	} else if dialect == repositories.Postgres {
		store = kv.NewSQLStore(conn)
	} else {
		store = kv.NewSqliteStore(conn)
	}

	var places ports.PlaceRepository
	if dialect == repositories.Postgres {
		places = repositories.NewSQLPlaceRepository(conn)
	} else {
		places = repositories.NewSqlitePlaceRepository(conn)
	}

	// Address lookup is optional; without a key /qibla?address= answers 503.
	var geocoder ports.Geocoder
	if cfg.ORSAPIKey != "" {
		var gc ports.GeocodeCache
		if dialect == repositories.Postgres {
			gc = cache.NewSQLGeocodeCache(conn)
		} else {
			gc = cache.NewSqliteGeocodeCache(conn)
		}
		g, err := geocode.NewORSGeocoder(cfg.ORSAPIKey, geocode.WithCache(gc))
		if err != nil {
			return err
		}
		geocoder = g
	} else {
		logger.Warn("ORS_API_KEY not set; address lookup disabled")
	}

	router := api.NewRouter(api.Deps{
		Logger:      logger,
		Places:      places,
		Locator:     services.NewQiblaLocator(places, geocoder),
		Preferences: services.NewPreferences(store),
		Prayers:     services.NewPrayerLog(store),
		Compass:     services.CompassOptions{Gain: cfg.Compass.Gain},
		Checks:      checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openDB(cfg config.Config) (*sql.DB, repositories.Dialect, error) {
	if cfg.DBDriver == config.DriverPostgres {
		conn, err := db.Open(cfg.DatabaseURL)
		return conn, repositories.Postgres, err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." && cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, repositories.SQLite, fmt.Errorf("create db dir: %w", err)
		}
	}
	conn, err := db.OpenSQLite(cfg.DBPath)
	return conn, repositories.SQLite, err
}
