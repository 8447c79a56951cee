package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/vendee-bot/bot"
	"github.com/a-bouts/vendee-bot/course"
	"github.com/a-bouts/vendee-bot/land"
	"github.com/a-bouts/vendee-bot/latlon"
	"github.com/a-bouts/vendee-bot/polar"
	"github.com/a-bouts/vendee-bot/sim"
	"github.com/a-bouts/vendee-bot/wind"
)

// DefaultReplayMaxSteps bounds a replay when Config.ReplayMaxSteps is not set.
const DefaultReplayMaxSteps = 10000

type Config struct {
	CPUProfile     bool
	Courses        *course.Table
	Forecast       wind.Forecast
	WorldMap       land.WorldMap
	Polar          *polar.Polar
	RateOffset     float64
	ReplayMaxSteps int
}

type server struct {
	Config

	// the harness is the only caller, calls are still serialized
	lock sync.Mutex
	b    *bot.Bot
}

func InitServer(b *bot.Bot, c Config) *mux.Router {
	if c.Forecast == nil {
		c.Forecast = wind.Calm
	}
	if c.WorldMap == nil {
		c.WorldMap = land.AllSea
	}
	if c.ReplayMaxSteps <= 0 {
		c.ReplayMaxSteps = DefaultReplayMaxSteps
	}

	router := mux.NewRouter().StrictSlash(true)

	s := &server{Config: c, b: b}

	router.HandleFunc("/bot/-/healthz", s.healthz).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/bot/api/v1").Subrouter()
	apiV1.HandleFunc("/run", s.run).Methods(http.MethodPost)
	apiV1.HandleFunc("/course", s.course).Methods(http.MethodGet)
	apiV1.HandleFunc("/course/reset", s.reset).Methods(http.MethodPost)
	apiV1.HandleFunc("/ratings", s.ratings).Methods(http.MethodGet)
	apiV1.HandleFunc("/replay", s.replay).Methods(http.MethodPost)

	return router
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status string `json:"status"`
	}

	json.NewEncoder(w).Encode(health{Status: "Ok"})
}

// Tick is the state of the ship sent by the harness at every time step.
type Tick struct {
	T         float64    `json:"t"`
	Dt        float64    `json:"dt"`
	Longitude float64    `json:"longitude"`
	Latitude  float64    `json:"latitude"`
	Heading   float64    `json:"heading"`
	Speed     float64    `json:"speed"`
	Vector    [2]float64 `json:"vector"`
}

func (s *server) run(w http.ResponseWriter, req *http.Request) {
	var tick Tick
	if err := json.NewDecoder(req.Body).Decode(&tick); err != nil {
		log.WithError(err).Warn("Bad tick")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.lock.Lock()
	instructions := s.b.Run(tick.T, tick.Dt, tick.Longitude, tick.Latitude, tick.Heading, tick.Speed,
		wind.Vector{U: tick.Vector[0], V: tick.Vector[1]}, s.Forecast, s.WorldMap)
	s.lock.Unlock()

	json.NewEncoder(w).Encode(instructions)
}

type CourseStatus struct {
	Name        string              `json:"name"`
	Next        int                 `json:"next"`
	Finished    bool                `json:"finished"`
	Checkpoints []course.Checkpoint `json:"checkpoints"`
}

func (s *server) status() CourseStatus {
	s.lock.Lock()
	defer s.lock.Unlock()

	c := s.b.Course
	checkpoints := make([]course.Checkpoint, len(c.Checkpoints))
	copy(checkpoints, c.Checkpoints)

	return CourseStatus{
		Name:        c.Name,
		Next:        c.Next(),
		Finished:    c.Finished(),
		Checkpoints: checkpoints,
	}
}

func (s *server) course(w http.ResponseWriter, req *http.Request) {
	json.NewEncoder(w).Encode(s.status())
}

func (s *server) reset(w http.ResponseWriter, req *http.Request) {
	fields := log.Fields{
		"action": "reset",
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}

	s.lock.Lock()
	s.b.Course.Reset()
	log.WithFields(fields).Infof("Course '%s' reset", s.b.Course.Name)
	s.lock.Unlock()

	json.NewEncoder(w).Encode(s.status())
}

func (s *server) ratings(w http.ResponseWriter, req *http.Request) {
	if s.Courses == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(s.Courses.RateAll(s.Forecast, s.RateOffset))
}

type ReplayRequest struct {
	Course   string        `json:"course"`
	Start    latlon.LatLon `json:"start"`
	Dt       float64       `json:"dt"`
	MaxHours float64       `json:"maxHours"`
	MinSpeed float64       `json:"minSpeed"`
}

func (s *server) replay(w http.ResponseWriter, req *http.Request) {
	if s.CPUProfile {
		defer profile.Start().Stop()
	}

	fields := log.Fields{
		"action": "replay",
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	requestLogger := log.WithFields(fields)

	var r ReplayRequest
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		requestLogger.WithError(err).Warn("Bad replay request")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.Dt <= 0 {
		r.Dt = 1
	}
	if r.MaxHours < 0 || math.Floor(r.MaxHours/r.Dt)+1 > float64(s.ReplayMaxSteps) {
		requestLogger.Warnf("Replay refused, %g hours every %g with a limit of %d steps", r.MaxHours, r.Dt, s.ReplayMaxSteps)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if s.Courses == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Course == "" {
		r.Course = s.b.Course.Name
	}
	if r.Start == (latlon.LatLon{}) {
		r.Start = course.Start
	}

	c, err := s.Courses.Get(r.Course)
	if err != nil {
		requestLogger.WithError(err).Warn("Replay refused")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	requestLogger.Infof("Replay '%s' for %.0f hours every %.2f", r.Course, r.MaxHours, r.Dt)

	start := time.Now()

	res := sim.Replay(bot.New(s.b.Team, c), sim.Config{
		Start:    r.Start,
		Dt:       r.Dt,
		MaxHours: r.MaxHours,
		MinSpeed: r.MinSpeed,
		Forecast: s.Forecast,
		WorldMap: s.WorldMap,
		Polar:    s.Polar,
	})

	requestLogger.Infof("Replay took %s", time.Since(start).String())

	json.NewEncoder(w).Encode(res)
}

func getIp(r *http.Request) (string, error) {
	//Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	//Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	//Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("No valid ip found")
}
