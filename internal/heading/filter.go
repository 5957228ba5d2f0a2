// Package heading smooths a stream of raw compass headings with a single-pole
// low-pass filter that treats 0° and 360° as adjacent.
package heading

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultGain trades responsiveness for stability: higher values track
	// faster but jitter more.
	DefaultGain = 0.15

	// DefaultSampleInterval is the magnetometer update period sources use.
	DefaultSampleInterval = 40 * time.Millisecond
)

var ErrInvalidGain = errors.New("heading filter: gain must be in (0, 1]")

// State is the filter lifecycle.
type State int

const (
	Uninitialized State = iota
	Tracking
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Tracking:
		return "tracking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Filter holds the smoothed heading for one compass session.
//
// Update mutates the filter and must not be called concurrently on the same
// instance; feed it from a single goroutine in sample order.
type Filter struct {
	gain         float64
	primeOnFirst bool

	state   State
	current float64
}

type Option func(*Filter)

// WithGain sets the smoothing factor α.
func WithGain(alpha float64) Option {
	return func(f *Filter) { f.gain = alpha }
}

// WithPrimeOnFirstSample seeds the state from the first sample instead of
// smoothing towards it from 0°.
func WithPrimeOnFirstSample() Option {
	return func(f *Filter) { f.primeOnFirst = true }
}

func NewFilter(opts ...Option) (*Filter, error) {
	f := &Filter{gain: DefaultGain}
	for _, opt := range opts {
		opt(f)
	}

	if math.IsNaN(f.gain) || f.gain <= 0 || f.gain > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidGain, f.gain)
	}

	return f, nil
}

// Gain returns the configured smoothing factor.
func (f *Filter) Gain() float64 { return f.gain }

func (f *Filter) State() State { return f.state }

// Heading returns the current smoothed heading in [0, 360).
func (f *Filter) Heading() float64 { return f.current }

// Prime seeds the filter with an initial sample and starts tracking.
// Non-finite samples are ignored.
func (f *Filter) Prime(sample float64) {
	if !finite(sample) {
		return
	}
	f.current = normalize(sample)
	f.state = Tracking
}

// Reset returns the filter to its initial 0° uninitialized state.
func (f *Filter) Reset() {
	f.current = 0
	f.state = Uninitialized
}

// Update folds one raw sample into the smoothed heading and returns it.
//
// The raw sample is normalized into [0, 360) first, then the shortest signed
// difference to the current heading (in (-180, 180]) is scaled by the gain.
// Non-finite samples leave the state untouched.
func (f *Filter) Update(raw float64) float64 {
	if !finite(raw) {
		return f.current
	}
	raw = normalize(raw)

	if f.state == Uninitialized {
		f.state = Tracking
		if f.primeOnFirst {
			f.current = raw
			return f.current
		}
	}

	diff := raw - f.current
	if diff < -180 {
		diff += 360
	}
	if diff > 180 {
		diff -= 360
	}
	// raw and current are both in [0, 360), so diff is now in [-180, 180];
	// -180 and 180 are the same rotation and 180 is the canonical one.
	if diff == -180 {
		diff = 180
	}

	f.current = normalize(f.current + f.gain*diff)
	return f.current
}

func normalize(deg float64) float64 {
	if deg >= 0 && deg < 360 {
		return deg
	}
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d -= 360
	}
	return d
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
