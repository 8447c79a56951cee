package wind

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// uniform grid from lat 10 to 0, lon 0 to 10, with a 10° step
func testWind(date time.Time, u, v [][]float64) *Wind {
	return &Wind{
		Date: date,
		File: date.Format(stampLayout) + ".f000",
		Lat0: 10,
		Lon0: 0,
		ΔLat: 10,
		ΔLon: 10,
		NLat: 2,
		NLon: 2,
		U:    u,
		V:    v,
	}
}

func TestInterpolate(t *testing.T) {
	w := testWind(time.Now(), [][]float64{{0, 10}, {0, 10}}, [][]float64{{0, 0}, {4, 4}})

	u, v := w.interpolate(5, 5)
	if u != 5 || v != 2 {
		t.Errorf("interpolate(5, 5) = (%f, %f); want (5, 2)", u, v)
	}

	u, v = w.interpolate(10, 0)
	if u != 0 || v != 0 {
		t.Errorf("interpolate(10, 0) = (%f, %f); want (0, 0)", u, v)
	}

	u, v = w.interpolate(0, 10)
	if u != 10 || v != 4 {
		t.Errorf("interpolate(0, 10) = (%f, %f); want (10, 4)", u, v)
	}
}

func TestInterpolateInTime(t *testing.T) {
	d := time.Date(2020, 11, 8, 12, 0, 0, 0, time.UTC)
	w1 := testWind(d, [][]float64{{2, 2}, {2, 2}}, [][]float64{{0, 0}, {0, 0}})
	w2 := testWind(d.Add(3*time.Hour), [][]float64{{4, 4}, {4, 4}}, [][]float64{{0, 0}, {0, 0}})

	vec := InterpolateVector([]*Wind{w1}, []*Wind{w2}, 5, 5, 0.5)
	if vec.U != 3 || vec.V != 0 {
		t.Errorf("InterpolateVector(h=0.5) = %v; want {3 0}", vec)
	}

	vec = InterpolateVector([]*Wind{w1}, nil, 5, 5, 0)
	if math.Round(vec.Direction()) != 270 || vec.Norm() != 2 {
		t.Errorf("InterpolateVector(w1) = %v, direction %f, speed %f; want 270 and 2", vec, vec.Direction(), vec.Norm())
	}
}

func TestParseFile(t *testing.T) {
	d, err := parseFile("2020110812.f006")
	if err != nil {
		t.Fatalf("parseFile() error = %v", err)
	}
	want := time.Date(2020, 11, 8, 18, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("parseFile() = %s; want %s", d, want)
	}

	if _, err := parseFile("README"); err == nil {
		t.Errorf("parseFile(README) succeeded; want an error")
	}
}

func TestFindWinds(t *testing.T) {
	d := time.Date(2020, 11, 8, 12, 0, 0, 0, time.UTC)
	w1 := testWind(d, [][]float64{{2, 2}, {2, 2}}, [][]float64{{0, 0}, {0, 0}})
	w2 := testWind(d.Add(3*time.Hour), [][]float64{{4, 4}, {4, 4}}, [][]float64{{0, 0}, {0, 0}})

	w := &Winds{winds: map[string]ForecastWinds{
		w1.Date.Format(stampLayout): {w1},
		w2.Date.Format(stampLayout): {w2},
	}}

	f1, f2, h := w.FindWinds(d.Add(time.Hour))
	if f1[0] != w1 || f2[0] != w2 || math.Abs(h-1.0/3.0) > 1e-9 {
		t.Errorf("FindWinds(+1h) = (%s, %s, %f); want (%s, %s, 0.33)", f1, f2, h, ForecastWinds{w1}, ForecastWinds{w2})
	}

	f1, f2, _ = w.FindWinds(d.Add(-time.Hour))
	if f1[0] != w1 || f2 != nil {
		t.Errorf("FindWinds(-1h) = (%s, %v); want (%s, nil)", f1, f2, ForecastWinds{w1})
	}

	f1, f2, _ = w.FindWinds(d.Add(24 * time.Hour))
	if f1[0] != w2 || f2 != nil {
		t.Errorf("FindWinds(+24h) = (%s, %v); want (%s, nil)", f1, f2, ForecastWinds{w2})
	}

	vec := w.Forecast(d)(5, 5, 1.5)
	if vec.U != 3 {
		t.Errorf("Forecast(d)(5, 5, 1.5) = %v; want {3 0}", vec)
	}
}

func TestEmptyWinds(t *testing.T) {
	dir, err := ioutil.TempDir("", "grib-data")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// not a grib file, must be skipped
	if err := ioutil.WriteFile(filepath.Join(dir, "2020110812.f000"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	w := InitWinds(dir, 0)
	if w.Len() != 0 {
		t.Errorf("Len() = %d; want 0", w.Len())
	}

	vec := w.Forecast(time.Now())(46.5, -1.8, 0)
	if vec != (Vector{}) {
		t.Errorf("Forecast() on empty store = %v; want calm", vec)
	}
}
