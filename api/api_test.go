package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-bouts/vendee-bot/bot"
	"github.com/a-bouts/vendee-bot/course"
	"github.com/a-bouts/vendee-bot/sim"
)

func testRouter(t *testing.T) http.Handler {
	table, err := course.Default()
	if err != nil {
		t.Fatal(err)
	}

	b := bot.New("test", course.Course{Name: "north", Checkpoints: []course.Checkpoint{
		{Latitude: 0, Longitude: 0, Radius: 5},
		{Latitude: 0, Longitude: 10, Radius: 5},
	}})

	return InitServer(b, Config{Courses: table, RateOffset: 24})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, testRouter(t), http.MethodGet, "/bot/-/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Ok"`) {
		t.Errorf("GET /bot/-/healthz = %d %s; want 200 Ok", rec.Code, rec.Body.String())
	}
}

func TestRun(t *testing.T) {
	h := testRouter(t)

	rec := do(t, h, http.MethodPost, "/bot/api/v1/run", `{"t":0,"dt":1,"longitude":0,"latitude":0,"heading":0,"speed":0,"vector":[0,1]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /run = %d; want 200", rec.Code)
	}
	var i bot.Instructions
	if err := json.Unmarshal(rec.Body.Bytes(), &i); err != nil {
		t.Fatalf("decoding %s: %v", rec.Body.String(), err)
	}
	if i.Location == nil || i.Location.Lon != 10 || i.Sail == nil || *i.Sail != 1 {
		t.Errorf("POST /run = %s; want location {0,10} and sail 1", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "heading") {
		t.Errorf("POST /run = %s; want no heading", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/bot/api/v1/course", "")
	var status CourseStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding %s: %v", rec.Body.String(), err)
	}
	if status.Next != 1 || status.Finished || !status.Checkpoints[0].Reached {
		t.Errorf("GET /course = %s; want next 1", rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/bot/api/v1/run", `{"longitude":10,"latitude":0}`)
	if strings.TrimSpace(rec.Body.String()) != "{}" {
		t.Errorf("POST /run on the last checkpoint = %s; want {}", rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/bot/api/v1/course/reset", "")
	status = CourseStatus{}
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.Next != 0 || status.Checkpoints[0].Reached {
		t.Errorf("POST /course/reset = %s; want next 0", rec.Body.String())
	}
}

func TestRunBadRequest(t *testing.T) {
	rec := do(t, testRouter(t), http.MethodPost, "/bot/api/v1/run", `{"t":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /run with a bad body = %d; want 400", rec.Code)
	}

	rec = do(t, testRouter(t), http.MethodGet, "/bot/api/v1/run", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /run = %d; want 405", rec.Code)
	}
}

func TestRatings(t *testing.T) {
	rec := do(t, testRouter(t), http.MethodGet, "/bot/api/v1/ratings", "")
	var ratings map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &ratings); err != nil {
		t.Fatalf("decoding %s: %v", rec.Body.String(), err)
	}
	// calm everywhere: no leg can be rated
	if len(ratings) != 3 || ratings["north"] != 0 || ratings["panama"] != 0 || ratings["australia"] != 0 {
		t.Errorf("GET /ratings = %v; want 3 zero ratings", ratings)
	}
}

func TestReplay(t *testing.T) {
	h := testRouter(t)

	rec := do(t, h, http.MethodPost, "/bot/api/v1/replay", `{"course":"australia","dt":1,"maxHours":5,"minSpeed":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /replay = %d; want 200", rec.Code)
	}
	var res sim.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding %s: %v", rec.Body.String(), err)
	}
	if res.Steps != 6 || res.Finished || len(res.Track) != 7 {
		t.Errorf("POST /replay = %+v; want 6 unfinished steps", res)
	}

	rec = do(t, h, http.MethodPost, "/bot/api/v1/replay", `{"course":"cape-horn"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("POST /replay unknown course = %d; want 404", rec.Code)
	}

	// the served bot is left untouched
	rec = do(t, h, http.MethodGet, "/bot/api/v1/course", "")
	var status CourseStatus
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status.Next != 0 || len(status.Checkpoints) != 2 {
		t.Errorf("GET /course after replay = %s; want the served course", rec.Body.String())
	}
}

func TestReplayTooLong(t *testing.T) {
	h := testRouter(t)

	rec := do(t, h, http.MethodPost, "/bot/api/v1/replay", `{"course":"north","dt":0.001,"maxHours":500}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /replay 500001 steps = %d; want 400", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("POST /replay 500001 steps body = %d bytes; want none", rec.Body.Len())
	}

	rec = do(t, h, http.MethodPost, "/bot/api/v1/replay", `{"course":"north","maxHours":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /replay negative duration = %d; want 400", rec.Code)
	}

	table, err := course.Default()
	if err != nil {
		t.Fatal(err)
	}
	h = InitServer(bot.New("test", course.Course{Name: "north"}), Config{Courses: table, ReplayMaxSteps: 10})

	rec = do(t, h, http.MethodPost, "/bot/api/v1/replay", `{"course":"australia","dt":1,"maxHours":9}`)
	if rec.Code != http.StatusOK {
		t.Errorf("POST /replay 10 steps with a limit of 10 = %d; want 200", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/bot/api/v1/replay", `{"course":"australia","dt":1,"maxHours":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /replay 11 steps with a limit of 10 = %d; want 400", rec.Code)
	}
}

func TestReset(t *testing.T) {
	h := testRouter(t)

	do(t, h, http.MethodPost, "/bot/api/v1/run", `{"longitude":0,"latitude":0,"vector":[0,1]}`)
	rec := do(t, h, http.MethodPost, "/bot/api/v1/course/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /course/reset = %d; want 200", rec.Code)
	}
	var status CourseStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding %s: %v", rec.Body.String(), err)
	}
	if status.Name != "north" || status.Next != 0 || status.Checkpoints[0].Reached {
		t.Errorf("POST /course/reset = %s; want north back on checkpoint 0", rec.Body.String())
	}
}

func TestGetIp(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-FORWARDED-FOR", "not-an-ip, 10.0.0.2")
	if ip, err := getIp(req); err != nil || ip != "10.0.0.2" {
		t.Errorf("getIp(X-FORWARDED-FOR) = (%s, %v); want 10.0.0.2", ip, err)
	}

	req.Header.Set("X-REAL-IP", "10.0.0.1")
	if ip, err := getIp(req); err != nil || ip != "10.0.0.1" {
		t.Errorf("getIp(X-REAL-IP) = (%s, %v); want 10.0.0.1", ip, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if ip, err := getIp(req); err != nil || ip != "192.0.2.1" {
		t.Errorf("getIp(RemoteAddr) = (%s, %v); want 192.0.2.1", ip, err)
	}
}
