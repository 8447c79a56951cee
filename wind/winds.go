package wind

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jasonlvhit/gocron"
	log "github.com/sirupsen/logrus"
)

const stampLayout = "2006010215"

type ForecastWinds []*Wind

func (w ForecastWinds) String() string {
	res := ""
	res += w[0].Date.Format(stampLayout) + "(" + w[0].File
	if len(w) > 1 {
		res += "," + w[1].File
	}
	res += ")"
	return res
}

// Forecast returns the wind vector at a position, `hours` after the
// forecast origin.
type Forecast func(lat, lon, hours float64) Vector

// Calm is the forecast used when no GRIB data is available.
func Calm(lat, lon, hours float64) Vector {
	return Vector{}
}

// Winds holds the GRIB forecasts found in a directory, indexed by their
// validity stamp (yyyymmddhh).
type Winds struct {
	dir   string
	winds map[string]ForecastWinds
	lock  sync.RWMutex
	now   func() time.Time
}

// InitWinds loads every forecast of dir and schedules a merge every refresh.
func InitWinds(dir string, refresh time.Duration) *Winds {
	w := &Winds{
		dir:   dir,
		winds: make(map[string]ForecastWinds),
		now:   time.Now,
	}
	w.Merge()

	if refresh > 0 {
		s := gocron.NewScheduler()
		job := s.Every(uint64(refresh.Seconds())).Seconds()
		if err := job.Do(w.Merge); err != nil {
			log.WithError(err).Error("Error scheduling winds refresh")
		} else {
			go s.Start()
		}
	}

	return w
}

func (w *Winds) Len() int {
	w.lock.RLock()
	defer w.lock.RUnlock()

	return len(w.winds)
}

// FindWinds returns the forecasts surrounding m and the time fraction
// between them.
func (w *Winds) FindWinds(m time.Time) (ForecastWinds, ForecastWinds, float64) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if len(w.winds) == 0 {
		return nil, nil, 0
	}

	stamp := m.Format(stampLayout)

	keys := make([]string, 0, len(w.winds))
	for k := range w.winds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if keys[0] > stamp {
		return w.winds[keys[0]], nil, 0
	}
	for i := range keys {
		if keys[i] > stamp {
			h := m.Sub(w.winds[keys[i-1]][0].Date).Minutes()
			delta := w.winds[keys[i]][0].Date.Sub(w.winds[keys[i-1]][0].Date).Minutes()
			return w.winds[keys[i-1]], w.winds[keys[i]], h / delta
		}
	}
	return w.winds[keys[len(keys)-1]], nil, 0
}

// Forecast binds the store to an origin time.
func (w *Winds) Forecast(origin time.Time) Forecast {
	return func(lat, lon, hours float64) Vector {
		m := origin.Add(time.Duration(hours * float64(time.Hour)))
		w1, w2, h := w.FindWinds(m)
		if w1 == nil {
			return Vector{}
		}
		return InterpolateVector(w1, w2, lat, lon, h)
	}
}

// parseFile reads the validity date of a file named yyyymmddhh.fHHH.
func parseFile(f string) (time.Time, error) {
	parts := strings.Split(f, ".")
	if len(parts) < 2 || len(parts[1]) < 2 {
		return time.Time{}, strconv.ErrSyntax
	}

	h, err := strconv.Atoi(parts[1][1:])
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(stampLayout, parts[0])
	if err != nil {
		return time.Time{}, err
	}

	return t.Add(time.Hour * time.Duration(h)), nil
}

func (w *Winds) listFiles() []string {
	var files []string
	err := filepath.Walk(w.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.WithError(err).Errorf("Error walking file '%s'", path)
		} else if info.Mode().IsRegular() && !strings.HasSuffix(info.Name(), ".tmp") {
			files = append(files, info.Name())
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Error walking grib files")
		return nil
	}

	sort.Strings(files)
	return files
}

// Merge drops the forecasts whose file disappeared and loads the new ones.
func (w *Winds) Merge() {
	files := w.listFiles()

	w.lock.Lock()
	defer w.lock.Unlock()

	var toRemove []string
	for k, ws := range w.winds {
		if _, err := os.Stat(filepath.Join(w.dir, ws[0].File)); os.IsNotExist(err) {
			toRemove = append(toRemove, k)
		}
	}
	for _, k := range toRemove {
		log.Println("Remove from winds", k)
		delete(w.winds, k)
	}

	forecasts := make(map[int][]string)

	for cpt, f := range files {
		t, err := parseFile(f)
		if err != nil {
			log.WithError(err).Errorf("Error getting date from file '%s'", f)
			continue
		}

		forecastHour := int(math.Round(t.Sub(w.now()).Hours()))

		if forecastHour < -3 && cpt < len(files)-1 {
			continue
		}

		_, found := forecasts[forecastHour]

		// the current forecast is kept even when a newer run is available
		if !found || forecastHour >= 0 {
			forecasts[forecastHour] = append(forecasts[forecastHour], f)
		}
	}

	var keys []int
	for k := range forecasts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		for _, file := range forecasts[k] {
			date, _ := parseFile(file)
			sdate := date.Format(stampLayout)

			ws, found := w.winds[sdate]
			if found {
				if len(ws) == 2 || ws[0].File == file {
					continue
				}
			}

			wind, err := Init(date, w.dir, file)
			if err != nil {
				log.WithError(err).Errorf("Error loading grib file '%s'", file)
			} else {
				log.Debugf("Init %s %s", sdate, wind.File)
				w.winds[sdate] = append(w.winds[sdate], &wind)
			}
		}
	}
}
