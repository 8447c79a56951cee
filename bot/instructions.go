package bot

import (
	"github.com/a-bouts/vendee-bot/latlon"
	"github.com/a-bouts/vendee-bot/wind"
)

// Instructions is the order given to the ship for one time step. Only one of
// Location, Heading, Vector, Left or Right is expected to be set.
type Instructions struct {
	Location *latlon.LatLon `json:"location,omitempty"`
	Heading  *float64       `json:"heading,omitempty"`
	Vector   *wind.Vector   `json:"vector,omitempty"`
	Left     *float64       `json:"left,omitempty"`
	Right    *float64       `json:"right,omitempty"`
	Sail     *float64       `json:"sail,omitempty"`
}

func (i Instructions) Empty() bool {
	return i.Location == nil && i.Heading == nil && i.Vector == nil && i.Left == nil && i.Right == nil
}
