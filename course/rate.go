package course

import (
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/vendee-bot/wind"
)

// Rate counts the legs of a course where the wind is within 100° of the
// travel direction, or past 250°. The travel direction is the planar
// (Δlat, Δlon) of the leg and the wind is read at the leg's first checkpoint,
// offset hours ahead. Legs with no direction or no wind are not counted.
func Rate(c Course, forecast wind.Forecast, offset float64) int {
	count := 0
	for i := 0; i+1 < len(c.Checkpoints); i++ {
		from := c.Checkpoints[i]
		to := c.Checkpoints[i+1]

		direction := wind.Vector{U: to.Latitude - from.Latitude, V: to.Longitude - from.Longitude}
		w := forecast(from.Latitude, from.Longitude, offset)

		angle, err := wind.AngleBetween(direction, w)
		if err != nil {
			log.WithError(err).WithField("course", c.Name).Debugf("Skip leg %d", i)
			continue
		}
		if angle < 100 || angle >= 250 {
			count++
		}
	}
	return count
}

// RateAll rates every course of the table.
func (t *Table) RateAll(forecast wind.Forecast, offset float64) map[string]int {
	ratings := make(map[string]int)
	for _, name := range t.Names() {
		ratings[name] = Rate(t.courses[name], forecast, offset)
	}
	return ratings
}
