package domain

// BearingResult is the Qibla direction and great-circle distance for one observer.
// It is recomputed on every request and carries no lifecycle of its own.
type BearingResult struct {
	BearingDegrees float64
	DistanceKm     float64
}

// LocationSource records how an observer coordinate was obtained.
type LocationSource string

const (
	SourceCoordinates LocationSource = "coordinates"
	SourcePlace       LocationSource = "place"
	SourceAddress     LocationSource = "address"
)

// QiblaFix is a resolved observer location together with its Qibla result.
type QiblaFix struct {
	Observer Coordinates
	Source   LocationSource
	Label    string
	Result   BearingResult
}
