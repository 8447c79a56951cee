package land

import (
	"io/ioutil"
	"math"

	log "github.com/sirupsen/logrus"
)

const (
	Ground = 0
	Sea    = 1
)

// WorldMap tells whether a position is land (0) or sea (1).
type WorldMap func(lat, lon float64) int

// AllSea is the world map used when no land file is configured.
func AllSea(lat, lon float64) int {
	return Sea
}

// Land contains one bit per cell, set when the cell is land
type Land struct {
	lat0 float64
	latN float64
	lon0 float64
	lonN float64
	step float64
	data []byte
}

// New builds a global bitmap with cells of step degrees.
func New(data []byte, step float64) *Land {
	return &Land{
		lat0: -90.0,
		latN: 90.0,
		lon0: -180.0,
		lonN: 180.00 - step,
		step: step,
		data: data}
}

// InitLand load lands file
func InitLand(file string) (*Land, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		log.WithError(err).Errorf("Error reading file '%s'", file)
		return nil, err
	}
	return New(b, 360.0/43200.0), nil
}

// IsLand check if location is land or sea
func (l *Land) IsLand(lat float64, lon float64) bool {
	if lon >= 180.0 {
		lon -= 360.0
	}
	if lon < -180.0 {
		lon += 360.0
	}

	i := int(math.Round(lat / l.step))
	j := int(math.Round(lon / l.step))

	i0 := int(math.Round(l.lat0 / l.step))
	j0 := int(math.Round(l.lon0 / l.step))
	jN := int(math.Round(l.lonN / l.step))

	di := i - i0
	dj := j - j0
	nj := jN - j0 + 1
	if dj >= nj {
		dj -= nj
	}

	p := di*nj + dj

	pB := p / 8
	pb := uint(p % 8)

	if p < 0 || pB >= len(l.data) {
		return false
	}

	return ((l.data[pB] >> (7 - pb)) & 0x01) == 0x01
}

// WorldMap exposes the bitmap as a terrain provider. A nil Land is all sea.
func (l *Land) WorldMap() WorldMap {
	if l == nil {
		return AllSea
	}
	return func(lat, lon float64) int {
		if l.IsLand(lat, lon) {
			return Ground
		}
		return Sea
	}
}
