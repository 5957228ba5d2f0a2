package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"noor-service/internal/adapters/geocode"
	"noor-service/internal/adapters/repositories"
	"noor-service/internal/domain"
)

func newTestLocator(t *testing.T, withGeocoder bool) *QiblaLocator {
	t.Helper()
	places := repositories.NewSqlitePlaceRepository(openTestDB(t))
	if !withGeocoder {
		return NewQiblaLocator(places, nil)
	}
	g := geocode.NewMockGeocoder(map[string]domain.Coordinates{
		"Sydney Opera House": {Lat: -33.8568, Lon: 151.2153},
	})
	return NewQiblaLocator(places, g)
}

func TestLocateByCoordinates(t *testing.T) {
	l := newTestLocator(t, false)

	fix, err := l.Locate(context.Background(), LocateRequest{Lat: ptr(40.7128), Lon: ptr(-74.0060)})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fix.Source != domain.SourceCoordinates {
		t.Fatalf("source = %q, want coordinates", fix.Source)
	}
	if math.Abs(fix.Result.BearingDegrees-58.48) > 1 {
		t.Fatalf("bearing = %v, want ≈58.48", fix.Result.BearingDegrees)
	}
}

func TestLocateWrapsLongitude(t *testing.T) {
	l := newTestLocator(t, false)

	fix, err := l.Locate(context.Background(), LocateRequest{Lat: ptr(0), Lon: ptr(190)})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fix.Observer.Lon != -170 {
		t.Fatalf("lon = %v, want -170", fix.Observer.Lon)
	}
}

func TestLocateRejectsInvalidCoordinates(t *testing.T) {
	l := newTestLocator(t, false)

	cases := []LocateRequest{
		{Lat: ptr(91), Lon: ptr(0)},
		{Lat: ptr(math.NaN()), Lon: ptr(0)},
		{Lat: ptr(10)},
	}
	for _, req := range cases {
		if _, err := l.Locate(context.Background(), req); !errors.Is(err, domain.ErrInvalidCoordinate) {
			t.Errorf("Locate(%+v) err = %v, want ErrInvalidCoordinate", req, err)
		}
	}
}

func TestLocateByPlace(t *testing.T) {
	l := newTestLocator(t, false)

	fix, err := l.Locate(context.Background(), LocateRequest{Place: "  medina "})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fix.Source != domain.SourcePlace || fix.Label != "Medina" {
		t.Fatalf("fix = %+v, want place Medina", fix)
	}
	if math.Abs(fix.Result.DistanceKm-339) > 5 {
		t.Fatalf("distance = %v, want ≈339", fix.Result.DistanceKm)
	}

	if _, err := l.Locate(context.Background(), LocateRequest{Place: "Atlantis"}); !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("err = %v, want ErrPlaceNotFound", err)
	}
}

func TestLocateByAddress(t *testing.T) {
	l := newTestLocator(t, true)

	fix, err := l.Locate(context.Background(), LocateRequest{Address: "Sydney  Opera House"})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fix.Source != domain.SourceAddress {
		t.Fatalf("source = %q, want address", fix.Source)
	}
	if math.Abs(fix.Result.BearingDegrees-277.5) > 1 {
		t.Fatalf("bearing = %v, want ≈277.5", fix.Result.BearingDegrees)
	}

	if _, err := l.Locate(context.Background(), LocateRequest{Address: "nowhere"}); !errors.Is(err, ErrGeocodeFailed) {
		t.Fatalf("err = %v, want ErrGeocodeFailed", err)
	}
}

func TestLocateWithoutGeocoder(t *testing.T) {
	l := newTestLocator(t, false)

	if _, err := l.Locate(context.Background(), LocateRequest{Address: "Cairo"}); !errors.Is(err, ErrGeocoderUnavailable) {
		t.Fatalf("err = %v, want ErrGeocoderUnavailable", err)
	}
}

func TestLocateNothing(t *testing.T) {
	l := newTestLocator(t, true)

	if _, err := l.Locate(context.Background(), LocateRequest{Place: " "}); !errors.Is(err, ErrNoLocation) {
		t.Fatalf("err = %v, want ErrNoLocation", err)
	}
}

func TestLocateManyKeepsOrder(t *testing.T) {
	l := newTestLocator(t, true)

	reqs := []LocateRequest{
		{Place: "New York"},
		{Address: "Sydney Opera House"},
		{Lat: ptr(21.422487), Lon: ptr(39.826206)},
		{Place: "Medina"},
	}
	fixes, err := l.LocateMany(context.Background(), reqs)
	if err != nil {
		t.Fatalf("LocateMany: %v", err)
	}
	want := []domain.LocationSource{domain.SourcePlace, domain.SourceAddress, domain.SourceCoordinates, domain.SourcePlace}
	for i, f := range fixes {
		if f.Source != want[i] {
			t.Fatalf("fix %d source = %q, want %q", i, f.Source, want[i])
		}
	}
	if fixes[2].Result.DistanceKm > 1e-6 || fixes[2].Result.BearingDegrees != 0 {
		t.Fatalf("kaaba fix = %+v, want zero distance and bearing", fixes[2].Result)
	}

	if _, err := l.LocateMany(context.Background(), append(reqs, LocateRequest{Place: "Atlantis"})); !errors.Is(err, ErrPlaceNotFound) {
		t.Fatalf("err = %v, want ErrPlaceNotFound", err)
	}
}
