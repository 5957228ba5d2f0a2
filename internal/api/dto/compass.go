package dto

import "time"

type SmoothRequest struct {
	Samples            []float64 `json:"samples"`
	Gain               *float64  `json:"gain"`
	PrimeOnFirstSample bool      `json:"prime_on_first_sample"`
	Lat                *float64  `json:"lat"`
	Lon                *float64  `json:"lon"`
}

// SmoothResponse carries QiblaRotation only when a location was given.
type SmoothResponse struct {
	Gain           float64   `json:"gain"`
	Smoothed       []float64 `json:"smoothed"`
	QiblaBearing   *float64  `json:"qibla_bearing,omitempty"`
	QiblaRotations []float64 `json:"qibla_rotations,omitempty"`
}

// Websocket messages. Clients send HeadingMessage frames; the server answers
// with one "session" message followed by a "reading" per sample.
type HeadingMessage struct {
	Heading *float64 `json:"heading"`
}

type SessionMessage struct {
	Type           string  `json:"type"`
	SessionID      string  `json:"session_id"`
	BearingDegrees float64 `json:"bearing_degrees"`
	DistanceKm     float64 `json:"distance_km"`
	Gain           float64 `json:"gain"`
}

type ReadingMessage struct {
	Type            string    `json:"type"`
	RawDegrees      float64   `json:"raw_degrees"`
	SmoothedDegrees float64   `json:"smoothed_degrees"`
	QiblaRotation   float64   `json:"qibla_rotation"`
	At              time.Time `json:"at"`
}
