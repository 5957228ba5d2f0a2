package ports

import (
	"context"

	"noor-service/internal/domain"
)

// Contract for resolving a free-text address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Persistent address -> coordinate cache used by geocoders.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
