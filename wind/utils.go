package wind

import (
	"errors"
	"math"
)

// ErrZeroVector is returned when an angle is requested against a vector of
// zero magnitude.
var ErrZeroVector = errors.New("zero magnitude vector")

// Vector is a 2-D vector. For winds U is the eastward and V the northward
// component in m/s.
type Vector struct {
	U float64
	V float64
}

func (v Vector) Norm() float64 {
	return math.Sqrt(v.U*v.U + v.V*v.V)
}

// Direction returns the direction the wind is blowing from, in degrees.
func (v Vector) Direction() float64 {
	return vectorToDegrees(v.U, v.V, v.Norm())
}

// AngleBetween returns the unsigned angle in degrees, in [0,180], between two
// vectors.
func AngleBetween(v1, v2 Vector) (float64, error) {
	n1 := v1.Norm()
	n2 := v2.Norm()
	if n1 == 0 || n2 == 0 {
		return 0, ErrZeroVector
	}

	c := (v1.U*v2.U + v1.V*v2.V) / (n1 * n2)
	c = math.Max(-1, math.Min(1, c))

	return math.Acos(c) * 180 / math.Pi, nil
}

func Twa(heading, wind float64) float64 {
	twa := wind - heading
	if twa <= -180 {
		twa += 360
	}
	if twa > 180 {
		twa -= 360
	}

	return twa
}

func Heading(twa, wind float64) float64 {
	heading := wind - twa
	if heading < 0 {
		heading += 360
	}
	if heading >= 360 {
		heading -= 360
	}

	return heading
}
