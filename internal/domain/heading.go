package domain

import "time"

// A raw compass sample in degrees clockwise from north, device frame.
type HeadingSample struct {
	Degrees float64
	At      time.Time
}

// CompassReading is emitted once per processed sample.
// QiblaRotation is the angle, clockwise from the device's heading,
// at which the Qibla lies.
type CompassReading struct {
	RawDegrees      float64
	SmoothedDegrees float64
	QiblaRotation   float64
	At              time.Time
}
