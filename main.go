package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/peterbourgon/ff"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/vendee-bot/api"
	"github.com/a-bouts/vendee-bot/bot"
	"github.com/a-bouts/vendee-bot/course"
	"github.com/a-bouts/vendee-bot/land"
	"github.com/a-bouts/vendee-bot/polar"
	"github.com/a-bouts/vendee-bot/sim"
	"github.com/a-bouts/vendee-bot/wind"
	"github.com/a-bouts/vendee-bot/xmpp"
)

func main() {

	fs := flag.NewFlagSet("vendee-bot", flag.ExitOnError)
	var (
		listen         = fs.String("listen", ":8888", "address of the http bridge")
		team           = fs.String("team", "Alpitronic", "team name")
		courseName     = fs.String("course", "north", "course to sail")
		coursesFile    = fs.String("courses-file", "", "json course table, the compiled one when empty")
		gribDir        = fs.String("grib-dir", "grib-data/", "directory of the GRIB forecasts")
		gribRefresh    = fs.Duration("grib-refresh", 15*time.Second, "interval between two scans of the GRIB directory")
		landFile       = fs.String("land-file", "", "land bitmap, all sea when empty")
		polarFile      = fs.String("polar-file", "", "boat polar used by replays, the compiled one when empty")
		rateOffset     = fs.Float64("rate-offset", 24, "forecast offset in hours used to rate the courses")
		debug          = fs.Bool("debug", false, "debug logs")
		cpuprofile     = fs.Bool("cpuprofile", false, "profile replays")
		replay         = fs.Bool("replay", false, "replay the course locally instead of serving it")
		replayHours    = fs.Float64("replay-hours", 24*90, "replay duration in hours")
		replayDt       = fs.Float64("replay-dt", 1, "replay time step in hours")
		replayMinSpeed = fs.Float64("replay-min-speed", 0, "minimum boat speed in knots during a replay")
		replayMaxSteps = fs.Int("replay-max-steps", api.DefaultReplayMaxSteps, "maximum number of steps of a replay requested over http")
		xmppHost       = fs.String("xmpp-host", "", "")
		xmppJid        = fs.String("xmpp-jid", "", "")
		xmppPassword   = fs.String("xmpp-password", "", "")
		xmppTo         = fs.String("xmpp-to", "", "")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix()); err != nil {
		log.WithError(err).Fatal("Error parsing configuration")
	}

	initLogger(*debug)

	courses, err := course.Load(*coursesFile)
	if err != nil {
		log.WithError(err).Fatal("Error loading courses")
	}
	c, err := courses.Get(*courseName)
	if err != nil {
		log.WithError(err).Fatalf("Available courses are %v", courses.Names())
	}

	var worldMap land.WorldMap = land.AllSea
	if *landFile != "" {
		log.Info("Load lands")
		l, err := land.InitLand(*landFile)
		if err != nil {
			log.WithError(err).Fatal("Error loading lands")
		}
		worldMap = l.WorldMap()
	}

	var forecast wind.Forecast = wind.Calm
	if _, err := os.Stat(*gribDir); err == nil {
		log.Info("Load winds")
		winds := wind.InitWinds(*gribDir, *gribRefresh)
		log.Infof("%d forecasts loaded", winds.Len())
		forecast = winds.Forecast(time.Now())
	} else {
		log.WithError(err).Warn("No winds, the sea will stay calm")
	}

	for name, rating := range courses.RateAll(forecast, *rateOffset) {
		log.WithField("course", name).Infof("Rating %d", rating)
	}

	b := bot.New(*team, c)

	x := xmpp.Xmpp{Config: xmpp.Config{Host: *xmppHost, Jid: *xmppJid, Password: *xmppPassword, To: *xmppTo}}
	if x.Config.Enabled() {
		b.WithNotifier(x)
	}

	p := polar.Default()
	if *polarFile != "" {
		if p, err = polar.Load(*polarFile); err != nil {
			log.WithError(err).Fatal("Error loading polar")
		}
	}

	if *replay {
		res := sim.Replay(b, sim.Config{
			Start:    course.Start,
			Dt:       *replayDt,
			MaxHours: *replayHours,
			MinSpeed: *replayMinSpeed,
			Forecast: forecast,
			WorldMap: worldMap,
			Polar:    p,
		})
		if !res.Finished {
			os.Exit(1)
		}
		return
	}

	router := api.InitServer(b, api.Config{
		CPUProfile:     *cpuprofile,
		Courses:        courses,
		Forecast:       forecast,
		WorldMap:       worldMap,
		Polar:          p,
		RateOffset:     *rateOffset,
		ReplayMaxSteps: *replayMaxSteps,
	})

	handler := handlers.CombinedLoggingHandler(os.Stdout, handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router))

	log.Infof("Start server on '%s' sailing '%s'", *listen, c.Name)
	log.Fatal(http.ListenAndServe(*listen, handler))
}
