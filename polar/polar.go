package polar

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"

	_ "embed"
)

//go:embed default.json
var defaultPolar []byte

// Polar gives the boat speed in knots, Speed[twa][tws], for the true wind
// angles Twa in degrees and the true wind speeds Tws in knots.
type Polar struct {
	Label            string      `json:"label"`
	GlobalSpeedRatio float64     `json:"globalSpeedRatio"`
	Tws              []float64   `json:"tws"`
	Twa              []float64   `json:"twa"`
	Speed            [][]float64 `json:"speed"`
}

func parse(data []byte) (*Polar, error) {
	var p Polar

	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing polar: %w", err)
	}
	if len(p.Twa) == 0 || len(p.Tws) == 0 || len(p.Speed) != len(p.Twa) {
		return nil, fmt.Errorf("polar '%s' is not %dx%d", p.Label, len(p.Twa), len(p.Tws))
	}
	for _, s := range p.Speed {
		if len(s) != len(p.Tws) {
			return nil, fmt.Errorf("polar '%s' is not %dx%d", p.Label, len(p.Twa), len(p.Tws))
		}
	}
	if p.GlobalSpeedRatio == 0 {
		p.GlobalSpeedRatio = 1
	}
	return &p, nil
}

// Default returns the polar compiled into the binary.
func Default() *Polar {
	p, err := parse(defaultPolar)
	if err != nil {
		panic(err)
	}
	return p
}

func Load(file string) (*Polar, error) {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// interpolationIndex returns the indexes surrounding value and the weight of
// the first one.
func interpolationIndex(values []float64, value float64) (int, int, float64) {

	i := 0
	for values[i] < value {
		i++
		if i == len(values) {
			return i - 1, 0, 1
		}
	}

	if i > 0 {
		return i - 1, i, (values[i] - value) / (values[i] - values[i-1])
	}

	return 0, 0, 0
}

// BoatSpeed returns the boat speed in knots, twa in degrees and tws in knots.
func (p *Polar) BoatSpeed(twa float64, tws float64) float64 {
	t := math.Abs(twa)
	if t > 180 {
		t = 360 - t
	}

	a0, a1, da := interpolationIndex(p.Twa, t)
	s0, s1, ds := interpolationIndex(p.Tws, tws)

	v0 := p.Speed[a0][s0]*ds + p.Speed[a0][s1]*(1-ds)
	v1 := p.Speed[a1][s0]*ds + p.Speed[a1][s1]*(1-ds)

	return (v0*da + v1*(1-da)) * p.GlobalSpeedRatio
}
