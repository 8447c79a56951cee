package latlon

import "math"

const π = math.Pi

// R is the mean earth radius in kilometres. Every distance returned by this
// package, and every checkpoint radius, uses the same unit.
const R = 6371.0

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

func wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	d1 := d + 360.0
	d2 := d1 - float64(int(d1/360.0)*360)
	return d2
}

// Wrap180 brings a longitude back into [-180,180).
func Wrap180(lon float64) float64 {
	if -180.0 <= lon && lon < 180.0 {
		return lon
	}
	return wrap360(lon+180.0) - 180.0
}
