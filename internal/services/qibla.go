package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"noor-service/internal/domain"
	"noor-service/internal/geodesy"
	"noor-service/internal/platform/obs"
	"noor-service/internal/ports"
)

var (
	ErrNoLocation          = errors.New("no location given")
	ErrPlaceNotFound       = errors.New("place not found")
	ErrGeocoderUnavailable = errors.New("address lookup is not configured")
	ErrGeocodeFailed       = errors.New("address lookup failed")
)

// maxConcurrentLookups bounds parallel geocoder calls in LocateMany.
const maxConcurrentLookups = 4

// LocateRequest names an observer in one of three ways. Coordinates win over
// Place, which wins over Address.
type LocateRequest struct {
	Lat, Lon *float64
	Place    string
	Address  string
}

// QiblaLocator resolves an observer location and computes its Qibla.
type QiblaLocator struct {
	places   ports.PlaceRepository
	geocoder ports.Geocoder
}

// NewQiblaLocator accepts a nil geocoder; address requests then fail with
// ErrGeocoderUnavailable.
func NewQiblaLocator(places ports.PlaceRepository, geocoder ports.Geocoder) *QiblaLocator {
	return &QiblaLocator{places: places, geocoder: geocoder}
}

func (l *QiblaLocator) Locate(ctx context.Context, req LocateRequest) (_ domain.QiblaFix, err error) {
	defer obs.Time(ctx, "qibla.Locate")(&err)

	observer, source, label, err := l.resolve(ctx, req)
	if err != nil {
		return domain.QiblaFix{}, err
	}

	return domain.QiblaFix{
		Observer: observer,
		Source:   source,
		Label:    label,
		Result:   geodesy.Qibla(observer),
	}, nil
}

// LocateMany resolves requests concurrently and returns fixes in request order.
// The first failure cancels the remaining lookups.
func (l *QiblaLocator) LocateMany(ctx context.Context, reqs []LocateRequest) ([]domain.QiblaFix, error) {
	out := make([]domain.QiblaFix, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, req := range reqs {
		g.Go(func() error {
			fix, err := l.Locate(gctx, req)
			if err != nil {
				return fmt.Errorf("locate #%d: %w", i, err)
			}
			out[i] = fix
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (l *QiblaLocator) resolve(
	ctx context.Context,
	req LocateRequest,
) (domain.Coordinates, domain.LocationSource, string, error) {
	switch {
	case req.Lat != nil || req.Lon != nil:
		if req.Lat == nil || req.Lon == nil {
			return domain.Coordinates{}, "", "", fmt.Errorf("%w: both lat and lon are required", domain.ErrInvalidCoordinate)
		}
		c, err := domain.ParseCoordinates(*req.Lat, *req.Lon)
		if err != nil {
			return domain.Coordinates{}, "", "", err
		}
		return c, domain.SourceCoordinates, "", nil

	case strings.TrimSpace(req.Place) != "":
		if l.places == nil {
			return domain.Coordinates{}, "", "", fmt.Errorf("%w: %q", ErrPlaceNotFound, req.Place)
		}
		p, ok, err := l.places.FindPlace(ctx, req.Place)
		if err != nil {
			return domain.Coordinates{}, "", "", fmt.Errorf("find place %q: %w", req.Place, err)
		}
		if !ok {
			return domain.Coordinates{}, "", "", fmt.Errorf("%w: %q", ErrPlaceNotFound, req.Place)
		}
		return p.Coordinates.Normalize(), domain.SourcePlace, p.Name, nil

	case strings.TrimSpace(req.Address) != "":
		if l.geocoder == nil {
			return domain.Coordinates{}, "", "", ErrGeocoderUnavailable
		}
		c, err := l.geocoder.Geocode(ctx, req.Address)
		if err != nil {
			return domain.Coordinates{}, "", "", fmt.Errorf("%w: %w", ErrGeocodeFailed, err)
		}
		if err := c.Validate(); err != nil {
			return domain.Coordinates{}, "", "", fmt.Errorf("%w: %w", ErrGeocodeFailed, err)
		}
		return c.Normalize(), domain.SourceAddress, strings.Join(strings.Fields(req.Address), " "), nil
	}

	return domain.Coordinates{}, "", "", ErrNoLocation
}
