package bot

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/vendee-bot/course"
	"github.com/a-bouts/vendee-bot/land"
	"github.com/a-bouts/vendee-bot/latlon"
	"github.com/a-bouts/vendee-bot/wind"
)

// Notifier is told about every reached checkpoint.
type Notifier interface {
	Send(message string) error
}

// Bot steers the ship through its course, one checkpoint after the other.
type Bot struct {
	Team   string
	Course course.Course

	notifier Notifier
}

func New(team string, c course.Course) *Bot {
	return &Bot{Team: team, Course: c}
}

func (b *Bot) WithNotifier(n Notifier) *Bot {
	b.notifier = n
	return b
}

// Advance marks every checkpoint within its radius of location as reached,
// in course order, and returns the first one still unreached. It returns
// false once the whole course is done.
func Advance(c *course.Course, location latlon.LatLon) (*course.Checkpoint, bool) {
	for i := range c.Checkpoints {
		ch := &c.Checkpoints[i]
		if ch.Reached {
			continue
		}

		if latlon.DistanceTo(location, ch.LatLon()) < ch.Radius {
			ch.Reached = true
			continue
		}

		return ch, true
	}
	return nil, false
}

// Run is called at every time step with the ship state, t and dt in hours.
func (b *Bot) Run(t, dt, longitude, latitude, heading, speed float64, vector wind.Vector, forecast wind.Forecast, worldMap land.WorldMap) Instructions {
	var instructions Instructions

	logger := log.WithFields(log.Fields{
		"team": b.Team,
		"t":    t,
	})

	if worldMap != nil && worldMap(latitude, longitude) == land.Ground {
		logger.Warnf("Ship on land at (%f,%f)", latitude, longitude)
	}
	logger.Debugf("Ship at (%f,%f) heading %.1f speed %.1f", latitude, longitude, heading, speed)

	before := b.Course.Next()

	target, found := Advance(&b.Course, latlon.LatLon{Lat: latitude, Lon: longitude})

	b.reached(logger, before, b.Course.Next(), t)

	if !found {
		return instructions
	}

	sail := 1.0
	instructions.Location = &latlon.LatLon{Lat: target.Latitude, Lon: target.Longitude}
	instructions.Sail = &sail

	return instructions
}

func (b *Bot) reached(logger *log.Entry, before, after int, t float64) {
	if before < 0 {
		return
	}
	if after < 0 {
		after = len(b.Course.Checkpoints)
	}

	for i := before; i < after; i++ {
		msg := fmt.Sprintf("%s reached checkpoint %d/%d of '%s' after %.1fh", b.Team, i+1, len(b.Course.Checkpoints), b.Course.Name, t)
		if i == len(b.Course.Checkpoints)-1 {
			msg = fmt.Sprintf("%s finished '%s' after %.1fh", b.Team, b.Course.Name, t)
		}
		logger.Info(msg)

		if b.notifier != nil {
			if err := b.notifier.Send(msg); err != nil {
				logger.WithError(err).Error("Error sending notification")
			}
		}
	}
}
