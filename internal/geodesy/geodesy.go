// Package geodesy computes the Qibla bearing and great-circle distance on a
// spherical Earth. Every function is pure and safe for concurrent use.
package geodesy

import (
	"math"

	geo "github.com/kellydunn/golang-geo"

	"noor-service/internal/domain"
)

// EarthRadiusKm is the mean Earth radius golang-geo uses for its haversine distance.
const EarthRadiusKm = 6371.0

// DegenerateBearing is returned when the observer stands on the target and
// the bearing is undefined.
const DegenerateBearing = 0.0

// maxDistanceKm is the distance between antipodal points.
const maxDistanceKm = math.Pi * EarthRadiusKm

// coincidentKm is the distance under which two points are treated as equal.
const coincidentKm = 1e-9

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// NormalizeDegrees wraps any finite angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(math.Mod(deg, 360)+360, 360)
	// Mod of a tiny negative value plus 360 can round up to exactly 360.
	if d >= 360 {
		d -= 360
	}
	return d
}

// SignedDelta returns the shortest rotation from -> to, in (-180, 180].
func SignedDelta(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// Rotation is the clockwise angle in [0, 360) from the device heading to bearing.
func Rotation(bearing, heading float64) float64 {
	return NormalizeDegrees(bearing - heading)
}

// InitialBearing returns the initial great-circle bearing from one point to
// another in [0, 360), using
//
//	y = sin(Δλ)
//	x = cos(φ1)·tan(φ2) − sin(φ1)·cos(Δλ)
//
// The tan form divides through by cos(φ2) and therefore requires the target
// to be off the poles, which holds for the Kaaba.
func InitialBearing(from, to domain.Coordinates) float64 {
	from, to = from.Normalize(), to.Normalize()
	if GreatCircleKm(from, to) < coincidentKm {
		return DegenerateBearing
	}

	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δλ := toRadians(to.Lon - from.Lon)

	y := math.Sin(Δλ)
	x := math.Cos(φ1)*math.Tan(φ2) - math.Sin(φ1)*math.Cos(Δλ)

	return NormalizeDegrees(toDegrees(math.Atan2(y, x)))
}

// GreatCircleKm is the haversine distance between two points in kilometres.
// It is symmetric in its arguments and never exceeds half the circumference.
func GreatCircleKm(a, b domain.Coordinates) float64 {
	a, b = a.Normalize(), b.Normalize()
	// Fixed argument order keeps the result bit-for-bit symmetric.
	if b.Lat < a.Lat || (b.Lat == a.Lat && b.Lon < a.Lon) {
		a, b = b, a
	}
	d := geo.NewPoint(a.Lat, a.Lon).GreatCircleDistance(geo.NewPoint(b.Lat, b.Lon))
	// Near the antipode rounding lifts the haversine term above 1 and
	// golang-geo's sqrt(1-a) goes NaN; the true distance there is πR.
	if math.IsNaN(d) || d > maxDistanceKm {
		return maxDistanceKm
	}
	return d
}

// QiblaBearing returns the bearing from observer to the Kaaba in [0, 360).
func QiblaBearing(observer domain.Coordinates) float64 {
	return InitialBearing(observer, domain.Kaaba())
}

// DistanceKm returns the great-circle distance from observer to the Kaaba.
func DistanceKm(observer domain.Coordinates) float64 {
	return GreatCircleKm(observer, domain.Kaaba())
}

// Qibla computes the bearing and distance to the Kaaba in one call.
func Qibla(observer domain.Coordinates) domain.BearingResult {
	return domain.BearingResult{
		BearingDegrees: QiblaBearing(observer),
		DistanceKm:     DistanceKm(observer),
	}
}
