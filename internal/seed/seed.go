// Package seed builds the initial state of a board: the built-in demo graph
// or a graph described in a YAML file.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"transitboard/internal/domain"
	"transitboard/internal/store"
)

type StopSpec struct {
	ID           int      `yaml:"id"`
	Name         string   `yaml:"name"`
	Location     string   `yaml:"location"`
	Lat          float64  `yaml:"lat"`
	Lon          float64  `yaml:"lon"`
	PeakHours    []string `yaml:"peak_hours,omitempty"`
	BusFrequency int      `yaml:"bus_frequency,omitempty"`
	BusCapacity  int      `yaml:"bus_capacity,omitempty"`
}

type BusSpec struct {
	Stop    int `yaml:"stop"`
	Line    int `yaml:"line"`
	Minutes int `yaml:"minutes"`
}

// Seed describes a complete initial graph.
type Seed struct {
	Stops       []StopSpec `yaml:"stops"`
	Connections [][2]int   `yaml:"connections"`
	Buses       []BusSpec  `yaml:"buses"`
}

// Demo returns the three-stop triangle shipped with the board. Coordinates are
// drawn from rng in tenths between 0.0 and 9.9.
func Demo(rng *rand.Rand) Seed {
	coord := func() float64 { return float64(rng.IntN(100)) / 10.0 }

	return Seed{
		Stops: []StopSpec{
			{ID: 1234, Name: "Vila Isabel", Location: "Goianira", Lat: coord(), Lon: coord()},
			{ID: 5678, Name: "Itatiaia", Location: "Goiania", Lat: coord(), Lon: coord()},
			{ID: 3698, Name: "Setor Universitário", Location: "Goiania", Lat: coord(), Lon: coord()},
		},
		Connections: [][2]int{
			{1234, 3698},
			{3698, 5678},
			{5678, 1234},
		},
		Buses: []BusSpec{
			{Stop: 1234, Line: 113, Minutes: 10},
			{Stop: 5678, Line: 105, Minutes: 12},
			{Stop: 5678, Line: 263, Minutes: 5},
			{Stop: 3698, Line: 132, Minutes: 7},
		},
	}
}

// LoadFile reads a YAML seed, rejecting unknown fields.
func LoadFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return Seed{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return s, nil
}

func Decode(r io.Reader) (Seed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}

	var s Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

func (s Seed) Validate() error {
	if len(s.Stops) == 0 {
		return errors.New("seed declares no stops")
	}

	known := make(map[int]struct{}, len(s.Stops))
	for i, st := range s.Stops {
		if _, dup := known[st.ID]; dup {
			return fmt.Errorf("stops[%d]: duplicate stop id %d", i, st.ID)
		}
		if st.BusFrequency < 0 || st.BusCapacity < 0 {
			return fmt.Errorf("stops[%d]: frequency and capacity must not be negative", i)
		}
		known[st.ID] = struct{}{}
	}

	for i, c := range s.Connections {
		for _, id := range c {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("connections[%d]: undeclared stop %d", i, id)
			}
		}
	}

	for i, b := range s.Buses {
		if _, ok := known[b.Stop]; !ok {
			return fmt.Errorf("buses[%d]: undeclared stop %d", i, b.Stop)
		}
		if b.Minutes < 0 {
			return fmt.Errorf("buses[%d]: negative minutes %d", i, b.Minutes)
		}
	}
	return nil
}

// Apply loads the seed into st through the validating store operations.
func (s Seed) Apply(st *store.Store) error {
	for _, sp := range s.Stops {
		st.AddStop(sp.ID, sp.Name, sp.Location, sp.Lat, sp.Lon)
		if len(sp.PeakHours) > 0 || sp.BusFrequency != 0 || sp.BusCapacity != 0 {
			if err := st.SetServiceProfile(sp.ID, sp.PeakHours, sp.BusFrequency, sp.BusCapacity); err != nil {
				return err
			}
		}
	}

	if err := st.AddConnections(s.ConnectionList()); err != nil {
		return err
	}

	for _, b := range s.Buses {
		if err := st.AddBus(b.Stop, b.Line, b.Minutes); err != nil {
			return err
		}
	}
	return nil
}

// ConnectionList returns the connections as domain values.
func (s Seed) ConnectionList() []domain.Connection {
	result := make([]domain.Connection, 0, len(s.Connections))
	for _, c := range s.Connections {
		result = append(result, domain.Connection{From: c[0], To: c[1]})
	}
	return result
}
