package geodesy

import (
	"math"
	"testing"

	"noor-service/internal/domain"
)

func TestQiblaFromKnownCities(t *testing.T) {
	cases := []struct {
		name        string
		observer    domain.Coordinates
		bearing     float64
		distanceKm  float64
		bearingTol  float64
		distanceTol float64
	}{
		// Independent great-circle calculators give 58.48° and 10,306 km for R=6371.
		{"new york", domain.Coordinates{Lat: 40.7128, Lon: -74.0060}, 58.48, 10306, 1, 50},
		{"london", domain.Coordinates{Lat: 51.5074, Lon: -0.1278}, 118.99, 4794, 1, 50},
		{"sydney", domain.Coordinates{Lat: -33.8688, Lon: 151.2093}, 277.50, 13236, 1, 50},
		{"karachi", domain.Coordinates{Lat: 24.8607, Lon: 67.0011}, 267.74, 2800, 1, 50},
		{"medina", domain.Coordinates{Lat: 24.4672, Lon: 39.6112}, 176.24, 339, 1, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Qibla(tc.observer)
			if math.Abs(got.BearingDegrees-tc.bearing) > tc.bearingTol {
				t.Fatalf("bearing = %.3f, want %.2f ±%.0f", got.BearingDegrees, tc.bearing, tc.bearingTol)
			}
			if math.Abs(got.DistanceKm-tc.distanceKm) > tc.distanceTol {
				t.Fatalf("distance = %.1f, want %.0f ±%.0f", got.DistanceKm, tc.distanceKm, tc.distanceTol)
			}
		})
	}
}

func TestQiblaAtKaaba(t *testing.T) {
	got := Qibla(domain.Kaaba())

	if got.DistanceKm > 1e-6 {
		t.Fatalf("distance = %v, want 0", got.DistanceKm)
	}
	if got.BearingDegrees != DegenerateBearing {
		t.Fatalf("bearing = %v, want %v", got.BearingDegrees, DegenerateBearing)
	}
	if math.IsNaN(got.BearingDegrees) {
		t.Fatal("bearing is NaN")
	}
}

func TestQiblaBearingRange(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 7.5 {
		for lon := -180.0; lon <= 180; lon += 7.5 {
			obs := domain.Coordinates{Lat: lat, Lon: lon}
			b := QiblaBearing(obs)
			if math.IsNaN(b) || b < 0 || b >= 360 {
				t.Fatalf("QiblaBearing(%v) = %v, want value in [0, 360)", obs, b)
			}
			d := DistanceKm(obs)
			if math.IsNaN(d) || d <= 0 || d > math.Pi*EarthRadiusKm+1e-6 {
				t.Fatalf("DistanceKm(%v) = %v, want value in (0, πR]", obs, d)
			}
		}
	}
}

func TestQiblaAtAntipode(t *testing.T) {
	k := domain.Kaaba()
	antipode := domain.Coordinates{Lat: -k.Lat, Lon: k.Lon - 180}
	half := math.Pi * EarthRadiusKm

	observers := []domain.Coordinates{
		antipode,
		{Lat: -21.422488, Lon: -140.173795},
		{Lat: -21.422486, Lon: -140.173793},
	}
	for _, step := range []float64{1e-9, 1e-8, 1e-7, 1e-6, 1e-5} {
		for _, dlat := range []float64{-step, 0, step} {
			for _, dlon := range []float64{-step, 0, step} {
				observers = append(observers, domain.Coordinates{
					Lat: antipode.Lat + dlat,
					Lon: antipode.Lon + dlon,
				})
			}
		}
	}

	for _, obs := range observers {
		d := DistanceKm(obs)
		if math.IsNaN(d) || math.Abs(d-half) > 1 {
			t.Fatalf("DistanceKm(%v) = %v, want ≈%v", obs, d, half)
		}
		b := QiblaBearing(obs)
		if math.IsNaN(b) || b < 0 || b >= 360 {
			t.Fatalf("QiblaBearing(%v) = %v, want value in [0, 360)", obs, b)
		}
		res := Qibla(obs)
		if res.DistanceKm != d || res.BearingDegrees != b {
			t.Fatalf("Qibla(%v) = %+v, want bearing %v distance %v", obs, res, b, d)
		}
	}
}

func TestGreatCircleKmAntipodalPairs(t *testing.T) {
	half := math.Pi * EarthRadiusKm
	pairs := [][2]domain.Coordinates{
		{{Lat: 10, Lon: -180}, {Lat: -10, Lon: 0}},
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 180}},
		{{Lat: 90, Lon: 0}, {Lat: -90, Lon: 0}},
		{{Lat: 45, Lon: 30}, {Lat: -45, Lon: -150}},
		{{Lat: 21.422487, Lon: 39.826206}, {Lat: -21.422487, Lon: -140.173794}},
	}

	for _, p := range pairs {
		d := GreatCircleKm(p[0], p[1])
		if math.IsNaN(d) || math.Abs(d-half) > 1e-3 || d > half {
			t.Fatalf("GreatCircleKm(%v, %v) = %v, want %v", p[0], p[1], d, half)
		}
	}
}

func TestGreatCircleKmSymmetric(t *testing.T) {
	points := []domain.Coordinates{
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 0, Lon: 0},
		{Lat: 89.9, Lon: 10},
		domain.Kaaba(),
		{Lat: 10, Lon: -180},
		{Lat: -10, Lon: 0},
		{Lat: -21.422487, Lon: -140.173794},
	}

	for _, a := range points {
		for _, b := range points {
			ab := GreatCircleKm(a, b)
			ba := GreatCircleKm(b, a)
			if math.Abs(ab-ba) > 1e-9 {
				t.Fatalf("GreatCircleKm(%v, %v) = %v, reverse = %v", a, b, ab, ba)
			}
		}
		if d := GreatCircleKm(a, a); d > 1e-6 {
			t.Fatalf("GreatCircleKm(%v, self) = %v, want 0", a, d)
		}
	}
}

func TestGreatCircleKmMatchesHaversine(t *testing.T) {
	a := domain.Coordinates{Lat: 51.5074, Lon: -0.1278}
	b := domain.Coordinates{Lat: 48.8566, Lon: 2.3522}

	φ1, φ2 := toRadians(a.Lat), toRadians(b.Lat)
	Δφ := toRadians(b.Lat - a.Lat)
	Δλ := toRadians(b.Lon - a.Lon)
	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	want := EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	if got := GreatCircleKm(a, b); math.Abs(got-want) > 1e-9 {
		t.Fatalf("GreatCircleKm = %v, want %v", got, want)
	}
}

func TestQiblaIsIdempotent(t *testing.T) {
	obs := domain.Coordinates{Lat: 3.139, Lon: 101.6869}
	first := Qibla(obs)
	for i := 0; i < 100; i++ {
		if got := Qibla(obs); got != first {
			t.Fatalf("call %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestQiblaNormalizesOutOfRangeInput(t *testing.T) {
	wrapped := Qibla(domain.Coordinates{Lat: 40.7128, Lon: -74.0060 + 360})
	plain := Qibla(domain.Coordinates{Lat: 40.7128, Lon: -74.0060})
	if math.Abs(wrapped.BearingDegrees-plain.BearingDegrees) > 1e-9 {
		t.Fatalf("wrapped bearing = %v, want %v", wrapped.BearingDegrees, plain.BearingDegrees)
	}

	clamped := Qibla(domain.Coordinates{Lat: 120, Lon: 0})
	pole := Qibla(domain.Coordinates{Lat: 90, Lon: 0})
	if clamped != pole {
		t.Fatalf("clamped = %+v, want %+v", clamped, pole)
	}
}

func TestNormalizeDegrees(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{360, 0},
		{-1, 359},
		{721, 1},
		{-721, 359},
		{359.5, 359.5},
		{-1e-20, 0},
	}
	for _, tc := range cases {
		if got := NormalizeDegrees(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSignedDelta(t *testing.T) {
	cases := []struct{ from, to, want float64 }{
		{359, 1, 2},
		{1, 359, -2},
		{0, 180, 180},
		{180, 0, 180},
		{90, 270, 180},
		{10, 20, 10},
	}
	for _, tc := range cases {
		got := SignedDelta(tc.from, tc.to)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("SignedDelta(%v, %v) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
		if got <= -180 || got > 180 {
			t.Errorf("SignedDelta(%v, %v) = %v outside (-180, 180]", tc.from, tc.to, got)
		}
	}
}

func TestRotation(t *testing.T) {
	if got := Rotation(58, 40); got != 18 {
		t.Fatalf("Rotation(58, 40) = %v, want 18", got)
	}
	if got := Rotation(10, 350); got != 20 {
		t.Fatalf("Rotation(10, 350) = %v, want 20", got)
	}
	if got := Rotation(350, 10); got != 340 {
		t.Fatalf("Rotation(350, 10) = %v, want 340", got)
	}
}
