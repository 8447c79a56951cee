package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"sort"

	_ "embed"
)

var ErrUnknownCourse = errors.New("unknown course")

//go:embed courses.json
var defaultCourses []byte

// Table holds the hand authored courses by name.
type Table struct {
	courses map[string]Course
}

// Default returns the courses compiled into the binary.
func Default() (*Table, error) {
	return parse(defaultCourses)
}

// Load reads a JSON course file, falling back to the compiled courses when
// file is empty.
func Load(file string) (*Table, error) {
	if file == "" {
		return Default()
	}

	content, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading courses '%s': %w", file, err)
	}
	return parse(content)
}

func parse(content []byte) (*Table, error) {
	var cs []Course
	if err := json.Unmarshal(content, &cs); err != nil {
		return nil, fmt.Errorf("parsing courses: %w", err)
	}

	t := &Table{courses: make(map[string]Course)}
	for _, c := range cs {
		if c.ReturnToStart {
			c.Checkpoints = append(c.Checkpoints, Checkpoint{Latitude: Start.Lat, Longitude: Start.Lon, Radius: 1})
		}
		t.courses[c.Name] = c
	}
	return t, nil
}

func (t *Table) Names() []string {
	names := make([]string, 0, len(t.courses))
	for n := range t.courses {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns a fresh copy of a course, no checkpoint reached.
func (t *Table) Get(name string) (Course, error) {
	c, found := t.courses[name]
	if !found {
		return Course{}, fmt.Errorf("%w '%s'", ErrUnknownCourse, name)
	}
	res := c.clone()
	res.Reset()
	return res, nil
}
