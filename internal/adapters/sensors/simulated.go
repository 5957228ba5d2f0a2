package sensors

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"noor-service/internal/domain"
)

// SimulatedSource emits a true heading plus uniform noise from a seeded PRNG,
// so a given seed always yields the same sequence.
type SimulatedSource struct {
	TrueHeading float64
	NoiseDeg    float64
	Interval    time.Duration

	// Limit stops the stream after that many samples; zero means unbounded.
	Limit int

	rng     *rand.Rand
	emitted int
}

func NewSimulatedSource(trueHeading, noiseDeg float64, interval time.Duration, seed uint64) *SimulatedSource {
	return &SimulatedSource{
		TrueHeading: trueHeading,
		NoiseDeg:    noiseDeg,
		Interval:    interval,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *SimulatedSource) Next(ctx context.Context) (domain.HeadingSample, error) {
	if s.Limit > 0 && s.emitted >= s.Limit {
		return domain.HeadingSample{}, io.EOF
	}

	if s.Interval > 0 && s.emitted > 0 {
		timer := time.NewTimer(s.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.HeadingSample{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.HeadingSample{}, err
	}

	s.emitted++
	noise := (s.rng.Float64()*2 - 1) * s.NoiseDeg
	return domain.HeadingSample{Degrees: s.TrueHeading + noise, At: time.Now()}, nil
}
