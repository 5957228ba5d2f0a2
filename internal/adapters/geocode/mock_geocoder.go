package geocode

import (
	"context"
	"fmt"

	"noor-service/internal/domain"
)

// MockGeocoder resolves addresses from a fixed table.
type MockGeocoder struct {
	m map[string]domain.Coordinates
}

func NewMockGeocoder(entries map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(entries))
	for k, v := range entries {
		m[normalize(k)] = v
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	c, ok := g.m[normalize(address)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("%w for %q", ErrNoResults, address)
	}
	return c, nil
}
