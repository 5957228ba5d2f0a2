package services

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"noor-service/internal/domain"
	"noor-service/internal/heading"
	"noor-service/internal/platform/logging"
)

type sliceSource struct {
	samples []float64
	i       int
}

func (s *sliceSource) Next(ctx context.Context) (domain.HeadingSample, error) {
	if err := ctx.Err(); err != nil {
		return domain.HeadingSample{}, err
	}
	if s.i >= len(s.samples) {
		return domain.HeadingSample{}, io.EOF
	}
	s.i++
	return domain.HeadingSample{Degrees: s.samples[s.i-1]}, nil
}

var newYork = domain.Coordinates{Lat: 40.7128, Lon: -74.0060}

func TestNewCompassSessionComputesQiblaOnce(t *testing.T) {
	s, err := NewCompassSession(newYork, CompassOptions{})
	if err != nil {
		t.Fatalf("NewCompassSession: %v", err)
	}
	if math.Abs(s.Qibla.BearingDegrees-58.48) > 1 {
		t.Fatalf("bearing = %v, want ≈58.48", s.Qibla.BearingDegrees)
	}
	if s.Gain() != heading.DefaultGain {
		t.Fatalf("gain = %v, want %v", s.Gain(), heading.DefaultGain)
	}
	if s.ID.String() == "" {
		t.Fatal("session id is empty")
	}
}

func TestNewCompassSessionRejectsBadInput(t *testing.T) {
	if _, err := NewCompassSession(domain.Coordinates{Lat: 95}, CompassOptions{}); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("err = %v, want ErrInvalidCoordinate", err)
	}
	if _, err := NewCompassSession(newYork, CompassOptions{Gain: 2}); !errors.Is(err, heading.ErrInvalidGain) {
		t.Fatalf("err = %v, want ErrInvalidGain", err)
	}
}

func TestCompassSessionRotation(t *testing.T) {
	s, _ := NewCompassSession(newYork, CompassOptions{PrimeOnFirstSample: true})

	r := s.Observe(domain.HeadingSample{Degrees: 40})
	if r.SmoothedDegrees != 40 {
		t.Fatalf("smoothed = %v, want 40", r.SmoothedDegrees)
	}
	want := s.Qibla.BearingDegrees - 40
	if math.Abs(r.QiblaRotation-want) > 1e-9 {
		t.Fatalf("rotation = %v, want %v", r.QiblaRotation, want)
	}
}

func TestCompassSessionRunEmitsPerSample(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logging.WithContext(context.Background(), zap.New(core).Sugar())

	s, _ := NewCompassSession(newYork, CompassOptions{})
	src := &sliceSource{samples: []float64{100, 100, 100}}

	var got []domain.CompassReading
	err := s.Run(ctx, src, func(r domain.CompassReading) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("readings = %d, want 3", len(got))
	}
	if math.Abs(got[0].SmoothedDegrees-15) > 1e-9 {
		t.Fatalf("first smoothed = %v, want 15", got[0].SmoothedDegrees)
	}
	if got[2].At.IsZero() {
		t.Fatal("reading timestamp not set")
	}

	stopped := logs.FilterMessage("compass session stopped").All()
	if len(stopped) != 1 {
		t.Fatalf("stop entries = %d, want 1", len(stopped))
	}
	if n := stopped[0].ContextMap()["samples"]; n != int64(3) {
		t.Fatalf("samples field = %v, want 3", n)
	}
	if logs.FilterMessage("compass session started").Len() != 1 {
		t.Fatal("missing start entry")
	}
}

func TestCompassSessionRunStopsOnEmitError(t *testing.T) {
	s, _ := NewCompassSession(newYork, CompassOptions{})
	boom := errors.New("client gone")

	calls := 0
	err := s.Run(context.Background(), &sliceSource{samples: []float64{1, 2, 3}}, func(domain.CompassReading) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Fatalf("emit calls = %d, want 1", calls)
	}
}

func TestCompassSessionRunHonoursCancel(t *testing.T) {
	s, _ := NewCompassSession(newYork, CompassOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, &sliceSource{samples: []float64{1}}, func(domain.CompassReading) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCompassSessionSmoothMatchesSmoothHeadings(t *testing.T) {
	samples := []float64{359, 1, 359, 1, 90, 270}
	s, _ := NewCompassSession(newYork, CompassOptions{Gain: 0.3})

	readings := s.Smooth(samples)
	plain, err := SmoothHeadings(samples, CompassOptions{Gain: 0.3})
	if err != nil {
		t.Fatalf("SmoothHeadings: %v", err)
	}
	for i := range samples {
		if readings[i].SmoothedDegrees != plain[i] {
			t.Fatalf("sample %d: %v vs %v", i, readings[i].SmoothedDegrees, plain[i])
		}
		if readings[i].RawDegrees != samples[i] {
			t.Fatalf("raw %d = %v, want %v", i, readings[i].RawDegrees, samples[i])
		}
	}
}
