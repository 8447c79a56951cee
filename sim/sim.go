package sim

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/vendee-bot/bot"
	"github.com/a-bouts/vendee-bot/land"
	"github.com/a-bouts/vendee-bot/latlon"
	"github.com/a-bouts/vendee-bot/polar"
	"github.com/a-bouts/vendee-bot/wind"
)

const knotsPerMs = 1.9438444924406

// Config of a replay. Times are in hours, speeds in knots.
type Config struct {
	Start    latlon.LatLon
	Heading  float64
	Dt       float64
	MaxHours float64
	MinSpeed float64
	Forecast wind.Forecast
	WorldMap land.WorldMap
	Polar    *polar.Polar
}

type Ship struct {
	Position latlon.LatLon
	Heading  float64
	Speed    float64
}

type Result struct {
	Steps    int             `json:"steps"`
	Duration float64         `json:"duration"`
	Finished bool            `json:"finished"`
	Track    []latlon.LatLon `json:"track"`
}

func vectorHeading(v wind.Vector) float64 {
	h := math.Atan2(v.U, v.V) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

// heading returns the heading the ship follows for the instructions, and
// false when there is nothing to follow.
func heading(ship Ship, i bot.Instructions) (float64, bool) {
	switch {
	case i.Location != nil:
		return latlon.BearingTo(ship.Position, *i.Location), true
	case i.Heading != nil:
		return *i.Heading, true
	case i.Vector != nil:
		return vectorHeading(*i.Vector), true
	case i.Left != nil:
		return wind.Heading(*i.Left, ship.Heading), true
	case i.Right != nil:
		return wind.Heading(-*i.Right, ship.Heading), true
	}
	return ship.Heading, false
}

// Step moves the ship for dt hours following the instructions.
func Step(ship Ship, i bot.Instructions, c Config, t float64) Ship {
	h, ok := heading(ship, i)
	if !ok {
		ship.Speed = 0
		return ship
	}

	sail := 1.0
	if i.Sail != nil {
		sail = math.Max(0, math.Min(1, *i.Sail))
	}

	w := c.Forecast(ship.Position.Lat, ship.Position.Lon, t)
	ws := w.Norm() * knotsPerMs
	twa := wind.Twa(h, w.Direction())

	speed := math.Max(c.Polar.BoatSpeed(twa, ws)*sail, c.MinSpeed*sail)
	dist := speed * 1.852 * c.Dt

	to := latlon.Destination(ship.Position, h, dist)
	if i.Location != nil && latlon.DistanceTo(ship.Position, *i.Location) <= dist {
		to = *i.Location
	}

	ship.Heading = h
	if c.WorldMap(to.Lat, to.Lon) == land.Ground {
		ship.Speed = 0
		return ship
	}

	ship.Position = to
	ship.Speed = speed
	return ship
}

// Replay runs the bot from the start until its course is done or MaxHours.
func Replay(b *bot.Bot, c Config) Result {
	if c.Forecast == nil {
		c.Forecast = wind.Calm
	}
	if c.WorldMap == nil {
		c.WorldMap = land.AllSea
	}
	if c.Polar == nil {
		c.Polar = polar.Default()
	}
	if c.Dt <= 0 {
		c.Dt = 1
	}

	ship := Ship{Position: c.Start, Heading: c.Heading}
	res := Result{Track: []latlon.LatLon{ship.Position}}

	for t := 0.0; t <= c.MaxHours; t += c.Dt {
		v := wind.Vector{
			U: math.Sin(ship.Heading * math.Pi / 180),
			V: math.Cos(ship.Heading * math.Pi / 180),
		}
		i := b.Run(t, c.Dt, ship.Position.Lon, ship.Position.Lat, ship.Heading, ship.Speed, v, c.Forecast, c.WorldMap)
		res.Steps++
		res.Duration = t

		if i.Empty() {
			res.Finished = true
			break
		}

		ship = Step(ship, i, c, t)
		res.Track = append(res.Track, ship.Position)
	}

	log.WithFields(log.Fields{
		"course":   b.Course.Name,
		"steps":    res.Steps,
		"finished": res.Finished,
	}).Infof("Replay done after %.1fh", res.Duration)

	return res
}
