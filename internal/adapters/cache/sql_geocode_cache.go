package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"noor-service/internal/domain"
	"noor-service/internal/platform/obs"
)

// SQLGeocodeCache is a Postgres-backed cache mapping addresses to coordinates.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch cached coordinates for the given addresses.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	q := `
	SELECT address, lat, lon
	FROM geocode_cache
	WHERE address = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanCoordinates(rows, len(uniq))
}

// Store address -> coordinate mappings in the cache.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (address, lat, lon)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for addr, c := range results {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}

		if _, err := stmt.ExecContext(ctx, addr, c.Lat, c.Lon); err != nil {
			return fmt.Errorf("insert geocode cache address=%q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}

// uniqueKeys trims, drops blanks and de-duplicates while keeping order.
func uniqueKeys(keys []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}

func scanCoordinates(rows *sql.Rows, sizeHint int) (map[string]domain.Coordinates, error) {
	out := make(map[string]domain.Coordinates, sizeHint)
	for rows.Next() {
		var addr string
		var lat, lon float64
		if err := rows.Scan(&addr, &lat, &lon); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = domain.Coordinates{Lat: lat, Lon: lon}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}
	return out, nil
}
