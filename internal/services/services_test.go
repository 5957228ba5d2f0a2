package services

import (
	"context"
	"database/sql"
	"testing"

	"noor-service/internal/adapters/kv"
	"noor-service/internal/adapters/repositories"
	"noor-service/internal/domain"
	"noor-service/internal/platform/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	if err := repositories.InitSchema(ctx, conn, repositories.SQLite); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	places := []domain.Place{
		{Name: "New York", Country: "US", Coordinates: domain.Coordinates{Lat: 40.7128, Lon: -74.0060}},
		{Name: "Medina", Country: "SA", Coordinates: domain.Coordinates{Lat: 24.4672, Lon: 39.6112}},
	}
	if err := repositories.UpsertPlaces(ctx, conn, repositories.SQLite, places); err != nil {
		t.Fatalf("upsert places: %v", err)
	}
	return conn
}

func newTestStore(t *testing.T) *kv.SQLStore {
	return kv.NewSqliteStore(openTestDB(t))
}

func ptr(v float64) *float64 { return &v }
