package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"noor-service/internal/domain"
)

// Dialect selects the SQL flavour used for schema and upserts.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Initialize the database schema. Statements are idempotent.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	realType := "REAL"
	if dialect == Postgres {
		realType = "DOUBLE PRECISION"
	}

	createPlacesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS places (
		name TEXT PRIMARY KEY,
		name_key TEXT NOT NULL UNIQUE,
		country TEXT NOT NULL DEFAULT '',
		lat %[1]s NOT NULL,
		lon %[1]s NOT NULL
	);
	`, realType)

	createGeocodeCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat %[1]s NOT NULL,
		lon %[1]s NOT NULL
	);
	`, realType)

	createKVQuery := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	statements := []string{
		createPlacesQuery,
		createGeocodeCacheQuery,
		createKVQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// LoadPlaceSeeds reads and validates a JSON array of places.
func LoadPlaceSeeds(jsonPath string) ([]domain.Place, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed places: parse json: %w", err)
	}

	places := make([]domain.Place, 0, len(data))
	for i, item := range data {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("seed places: item at index %d: name cannot be empty", i+1)
		}

		coords, err := domain.ParseCoordinates(item.Lat, item.Lon)
		if err != nil {
			return nil, fmt.Errorf("seed places: item %q: %w", name, err)
		}

		places = append(places, domain.Place{
			Name:        name,
			Country:     strings.TrimSpace(item.Country),
			Coordinates: coords,
		})
	}

	return places, nil
}

// Populate the places table from a JSON file. Re-running the seed updates
// existing rows in place.
func SeedFromJSON(ctx context.Context, db *sql.DB, dialect Dialect, jsonPath string) (int, error) {
	places, err := LoadPlaceSeeds(jsonPath)
	if err != nil {
		return 0, err
	}

	if err := UpsertPlaces(ctx, db, dialect, places); err != nil {
		return 0, err
	}

	return len(places), nil
}

// UpsertPlaces inserts or updates places keyed by name.
func UpsertPlaces(ctx context.Context, db *sql.DB, dialect Dialect, places []domain.Place) error {
	if db == nil {
		return errors.New("seed places: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed places: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO places (name, name_key, country, lat, lon)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (name) DO UPDATE
	SET name_key = excluded.name_key,
		country = excluded.country,
		lat = excluded.lat,
		lon = excluded.lon;
	`
	if dialect == Postgres {
		query = `
		INSERT INTO places (name, name_key, country, lat, lon)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET name_key = EXCLUDED.name_key,
			country = EXCLUDED.country,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon;
		`
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed places: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range places {
		c := p.Coordinates
		if _, err := stmt.ExecContext(ctx, p.Name, placeKey(p.Name), p.Country, c.Lat, c.Lon); err != nil {
			return fmt.Errorf("seed places: insert name=%q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed places: commit tx: %w", err)
	}

	return nil
}

// placeKey is the case-insensitive lookup key for a place name.
func placeKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
