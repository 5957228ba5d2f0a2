package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"noor-service/internal/adapters/repositories"
	"noor-service/internal/config"
	"noor-service/internal/platform/db"
	"noor-service/internal/platform/logging"
)

// dbtool creates the schema and seeds saved places, against Postgres when
// DB_DRIVER=postgres and SQLite otherwise.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("dbtool", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Info("No .env file found (using environment variables)")
	}

	var (
		conn    *sql.DB
		dialect repositories.Dialect
	)
	if cfg.DBDriver == config.DriverPostgres {
		conn, err = db.Open(cfg.DatabaseURL)
		dialect = repositories.Postgres
	} else {
		conn, err = db.OpenSQLite(cfg.DBPath)
		dialect = repositories.SQLite
	}
	if err != nil {
		logger.Fatalw("open database failed", "err", err)
	}
	defer conn.Close()

	if err := initAndSeed(context.Background(), logger, conn, dialect, cfg.SeedPath); err != nil {
		logger.Fatalw("dbtool failed", "err", err)
	}
}

func initAndSeed(ctx context.Context, logger *zap.SugaredLogger, conn *sql.DB, dialect repositories.Dialect, seedPath string) error {
	logger.Infow("Initializing database schema...", "dialect", dialect.String())
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	logger.Info("Schema ready.")

	logger.Infow("Seeding database...", "path", seedPath)
	n, err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logger.Infow("Seeding complete.", "places", n)

	return nil
}
