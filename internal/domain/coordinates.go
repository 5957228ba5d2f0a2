package domain

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// ErrInvalidCoordinate marks a coordinate rejected at an input boundary.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

var kaaba = Coordinates{Lat: 21.422487, Lon: 39.826206}

// Kaaba returns the fixed Qibla target in Mecca.
func Kaaba() Coordinates { return kaaba }

// Immutable geographic coordinates in degrees (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lon)
}

// Validate reports every reason the coordinate cannot be accepted as input.
// Longitude outside [-180, 180] is not an error; Normalize wraps it.
func (c Coordinates) Validate() error {
	var err error
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) {
		err = multierr.Append(err, fmt.Errorf("%w: latitude %v is not finite", ErrInvalidCoordinate, c.Lat))
	} else if c.Lat < -90 || c.Lat > 90 {
		err = multierr.Append(err, fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, c.Lat))
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		err = multierr.Append(err, fmt.Errorf("%w: longitude %v is not finite", ErrInvalidCoordinate, c.Lon))
	}
	return err
}

// Normalize clamps latitude into [-90, 90] and wraps longitude into [-180, 180).
// Values already inside [-180, 180] are returned unchanged.
func (c Coordinates) Normalize() Coordinates {
	lat := math.Max(-90, math.Min(90, c.Lat))
	lon := c.Lon
	if lon < -180 || lon > 180 {
		lon = math.Mod(lon+180, 360)
		if lon < 0 {
			lon += 360
		}
		lon -= 180
	}
	return Coordinates{Lat: lat, Lon: lon}
}

// ParseCoordinates validates raw input and returns the normalized coordinate.
func ParseCoordinates(lat, lon float64) (Coordinates, error) {
	c := Coordinates{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return Coordinates{}, err
	}
	return c.Normalize(), nil
}
