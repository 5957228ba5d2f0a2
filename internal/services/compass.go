package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"noor-service/internal/domain"
	"noor-service/internal/geodesy"
	"noor-service/internal/heading"
	"noor-service/internal/platform/logging"
	"noor-service/internal/ports"
)

// CompassOptions configures the heading filter of a session. A zero Gain
// selects heading.DefaultGain.
type CompassOptions struct {
	Gain               float64
	PrimeOnFirstSample bool
}

func (o CompassOptions) newFilter() (*heading.Filter, error) {
	var opts []heading.Option
	if o.Gain != 0 {
		opts = append(opts, heading.WithGain(o.Gain))
	}
	if o.PrimeOnFirstSample {
		opts = append(opts, heading.WithPrimeOnFirstSample())
	}
	return heading.NewFilter(opts...)
}

// CompassSession turns raw headings from one device into Qibla readings.
// The Qibla bearing is computed once when the session starts; the session
// owns its filter and must be fed from a single goroutine.
type CompassSession struct {
	ID       uuid.UUID
	Observer domain.Coordinates
	Qibla    domain.BearingResult

	filter *heading.Filter
}

func NewCompassSession(observer domain.Coordinates, opts CompassOptions) (*CompassSession, error) {
	if err := observer.Validate(); err != nil {
		return nil, fmt.Errorf("new compass session: %w", err)
	}
	f, err := opts.newFilter()
	if err != nil {
		return nil, fmt.Errorf("new compass session: %w", err)
	}

	observer = observer.Normalize()
	return &CompassSession{
		ID:       uuid.New(),
		Observer: observer,
		Qibla:    geodesy.Qibla(observer),
		filter:   f,
	}, nil
}

// Gain reports the smoothing factor in use.
func (s *CompassSession) Gain() float64 { return s.filter.Gain() }

// Observe folds one sample into the filter.
func (s *CompassSession) Observe(sample domain.HeadingSample) domain.CompassReading {
	smoothed := s.filter.Update(sample.Degrees)
	return domain.CompassReading{
		RawDegrees:      sample.Degrees,
		SmoothedDegrees: smoothed,
		QiblaRotation:   geodesy.Rotation(s.Qibla.BearingDegrees, smoothed),
		At:              sample.At,
	}
}

// Smooth feeds a batch of raw headings in order.
func (s *CompassSession) Smooth(samples []float64) []domain.CompassReading {
	out := make([]domain.CompassReading, 0, len(samples))
	for _, deg := range samples {
		out = append(out, s.Observe(domain.HeadingSample{Degrees: deg}))
	}
	return out
}

// Run reads src until it ends, ctx is cancelled or emit fails, calling emit
// once per sample. End of stream is not an error.
func (s *CompassSession) Run(
	ctx context.Context,
	src ports.HeadingSource,
	emit func(domain.CompassReading) error,
) (err error) {
	logger := logging.FromContext(ctx).With("session_id", s.ID.String())
	logger.Infow("compass session started",
		"observer", s.Observer.String(),
		"qibla_bearing", s.Qibla.BearingDegrees,
		"distance_km", s.Qibla.DistanceKm,
		"gain", s.filter.Gain(),
	)

	start := time.Now()
	samples := 0
	defer func() {
		logger.Infow("compass session stopped", "samples", samples, "dur", time.Since(start), "err", err)
	}()

	for {
		sample, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("compass session: read heading: %w", err)
		}
		if sample.At.IsZero() {
			sample.At = time.Now()
		}

		samples++
		if err := emit(s.Observe(sample)); err != nil {
			return fmt.Errorf("compass session: emit reading: %w", err)
		}
	}
}

// SmoothHeadings runs a fresh filter over samples without any location.
func SmoothHeadings(samples []float64, opts CompassOptions) ([]float64, error) {
	f, err := opts.newFilter()
	if err != nil {
		return nil, fmt.Errorf("smooth headings: %w", err)
	}

	out := make([]float64, len(samples))
	for i, deg := range samples {
		out[i] = f.Update(deg)
	}
	return out, nil
}
