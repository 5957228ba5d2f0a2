package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"noor-service/internal/domain"
)

// SQL-backed implementation of the PlaceRepository port for SQLite and Postgres.
type PlaceRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSqlitePlaceRepository(db *sql.DB) *PlaceRepository {
	return &PlaceRepository{DB: db, Dialect: SQLite}
}

func NewSQLPlaceRepository(db *sql.DB) *PlaceRepository {
	return &PlaceRepository{DB: db, Dialect: Postgres}
}

// Return all places ordered by name.
func (r *PlaceRepository) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	if r.DB == nil {
		return nil, errors.New("place repository: DB is nil")
	}

	query := `
	SELECT
		name,
		country,
		lat,
		lon
	FROM places
	ORDER BY name_key;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list places: query places table: %w", err)
	}
	defer rows.Close()

	places := make([]domain.Place, 0, 32)
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(&p.Name, &p.Country, &p.Coordinates.Lat, &p.Coordinates.Lon); err != nil {
			return nil, fmt.Errorf("list places: scan row: %w", err)
		}
		places = append(places, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list places: row iteration: %w", err)
	}

	return places, nil
}

// Find a place by name, ignoring case and repeated whitespace.
func (r *PlaceRepository) FindPlace(ctx context.Context, name string) (domain.Place, bool, error) {
	if r.DB == nil {
		return domain.Place{}, false, errors.New("place repository: DB is nil")
	}

	query := `SELECT name, country, lat, lon FROM places WHERE name_key = ?;`
	if r.Dialect == Postgres {
		query = `SELECT name, country, lat, lon FROM places WHERE name_key = $1;`
	}

	var p domain.Place
	err := r.DB.QueryRowContext(ctx, query, placeKey(name)).
		Scan(&p.Name, &p.Country, &p.Coordinates.Lat, &p.Coordinates.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Place{}, false, nil
	}
	if err != nil {
		return domain.Place{}, false, fmt.Errorf("find place %q: %w", name, err)
	}

	return p, true, nil
}
