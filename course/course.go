package course

import (
	"github.com/a-bouts/vendee-bot/latlon"
)

// Start is the start and finish line of the race.
var Start = latlon.LatLon{Lat: 46.494, Lon: -1.81}

type Checkpoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Radius    float64 `json:"radius"`
	Reached   bool    `json:"reached"`
}

func (c *Checkpoint) LatLon() latlon.LatLon {
	return latlon.LatLon{Lat: c.Latitude, Lon: c.Longitude}
}

// Course is an ordered list of checkpoints. Its reached flags are the whole
// navigation state.
type Course struct {
	Name          string       `json:"name"`
	ReturnToStart bool         `json:"returnToStart,omitempty"`
	Checkpoints   []Checkpoint `json:"checkpoints"`
}

// Next returns the index of the first unreached checkpoint, or -1.
func (c *Course) Next() int {
	for i := range c.Checkpoints {
		if !c.Checkpoints[i].Reached {
			return i
		}
	}
	return -1
}

func (c *Course) Finished() bool {
	return c.Next() < 0
}

// Reset clears every reached flag to sail the course again.
func (c *Course) Reset() {
	for i := range c.Checkpoints {
		c.Checkpoints[i].Reached = false
	}
}

func (c Course) clone() Course {
	res := c
	res.Checkpoints = make([]Checkpoint, len(c.Checkpoints))
	copy(res.Checkpoints, c.Checkpoints)
	return res
}
