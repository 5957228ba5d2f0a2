// Package sensors provides heading sources that stand in for a device
// magnetometer: recorded replays and a seeded simulator.
package sensors

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"noor-service/internal/domain"
)

// ReplaySource replays recorded headings from CSV rows of offset_ms,degrees.
// A leading header row is skipped.
type ReplaySource struct {
	r     *csv.Reader
	paced bool
	start time.Time
	line  int
}

type ReplayOption func(*ReplaySource)

// WithPacing waits until each sample's recorded offset before returning it.
func WithPacing() ReplayOption {
	return func(s *ReplaySource) { s.paced = true }
}

func NewReplaySource(r io.Reader, opts ...ReplayOption) *ReplaySource {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	s := &ReplaySource{r: cr}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReplaySource) Next(ctx context.Context) (domain.HeadingSample, error) {
	if err := ctx.Err(); err != nil {
		return domain.HeadingSample{}, err
	}
	if s.start.IsZero() {
		s.start = time.Now()
	}

	for {
		rec, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			return domain.HeadingSample{}, io.EOF
		}
		if err != nil {
			return domain.HeadingSample{}, fmt.Errorf("replay: read: %w", err)
		}
		s.line++

		offsetMs, errOffset := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		deg, errDeg := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if errOffset != nil || errDeg != nil {
			if s.line == 1 {
				continue
			}
			return domain.HeadingSample{}, fmt.Errorf("replay: row %d: invalid values %q", s.line, rec)
		}

		at := s.start.Add(time.Duration(offsetMs * float64(time.Millisecond)))
		if s.paced {
			if err := sleepUntil(ctx, at); err != nil {
				return domain.HeadingSample{}, err
			}
		}

		return domain.HeadingSample{Degrees: deg, At: at}, nil
	}
}

func sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
