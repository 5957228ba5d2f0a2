package ports

import (
	"context"

	"noor-service/internal/domain"
)

// Port: a boundary for retrieving saved places.
type PlaceRepository interface {
	ListPlaces(ctx context.Context) ([]domain.Place, error)
	// FindPlace matches name case-insensitively; ok is false when absent.
	FindPlace(ctx context.Context, name string) (place domain.Place, ok bool, err error)
}
