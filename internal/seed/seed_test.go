package seed_test

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"transitboard/internal/seed"
	"transitboard/internal/store"
)

func TestDemo_Reproducible(t *testing.T) {
	a := seed.Demo(rand.New(rand.NewPCG(7, 7)))
	b := seed.Demo(rand.New(rand.NewPCG(7, 7)))

	for i := range a.Stops {
		if a.Stops[i].Lat != b.Stops[i].Lat || a.Stops[i].Lon != b.Stops[i].Lon {
			t.Fatalf("stop %d coordinates differ for the same rng seed", a.Stops[i].ID)
		}
		for _, v := range []float64{a.Stops[i].Lat, a.Stops[i].Lon} {
			if v < 0 || v > 9.9 {
				t.Errorf("coordinate %v out of demo range", v)
			}
		}
	}
}

func TestDemo_Apply(t *testing.T) {
	s := store.New()
	if err := seed.Demo(rand.New(rand.NewPCG(1, 2))).Apply(s); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := store.Stats{Stops: 3, Connections: 3, Buses: 4}
	if got := s.Stats(); got != want {
		t.Errorf("stats: got %+v, want %+v", got, want)
	}
	for _, id := range []int{1234, 5678, 3698} {
		if !s.IsValidStop(id) {
			t.Errorf("stop %d missing", id)
		}
	}
	if s.StopName(3698) != "Setor Universitário" {
		t.Errorf("name of 3698: got %q", s.StopName(3698))
	}
	if buses := s.ApproachingBuses(5678); len(buses) != 2 || buses[1].Line != 263 || buses[1].Minutes != 5 {
		t.Errorf("buses at 5678: got %+v", buses)
	}
}

const validYAML = `
stops:
  - id: 10
    name: Central
    location: Downtown
    lat: -16.68
    lon: -49.25
    peak_hours: ["07:00-09:00", "17:00-19:00"]
    bus_frequency: 12
    bus_capacity: 70
  - id: 20
    name: Harbor
    location: Docks
connections:
  - [10, 20]
buses:
  - {stop: 10, line: 1, minutes: 3}
  - {stop: 20, line: 2, minutes: 0}
`

func TestDecode_Valid(t *testing.T) {
	sd, err := seed.Decode(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(sd.Stops) != 2 || len(sd.Connections) != 1 || len(sd.Buses) != 2 {
		t.Fatalf("unexpected seed: %+v", sd)
	}

	s := store.New()
	if err := sd.Apply(s); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	stop, ok := s.Stop(10)
	if !ok {
		t.Fatal("stop 10 missing")
	}
	if stop.BusFrequency != 12 || stop.BusCapacity != 70 || len(stop.PeakHours) != 2 {
		t.Errorf("service profile not applied: %+v", stop)
	}
	if stop.Coordinates.Lat != -16.68 {
		t.Errorf("lat: got %v", stop.Coordinates.Lat)
	}

	conns := sd.ConnectionList()
	if len(conns) != 1 || conns[0].From != 10 || conns[0].To != 20 {
		t.Errorf("ConnectionList: got %+v", conns)
	}
	if n := s.Neighbors(20); len(n) != 1 || n[0] != 10 {
		t.Errorf("connection not applied symmetrically: %v", n)
	}
}

func TestApply_UnknownConnectionStop(t *testing.T) {
	sd := seed.Seed{
		Stops:       []seed.StopSpec{{ID: 1, Name: "North"}},
		Connections: [][2]int{{1, 99}},
	}
	if err := sd.Apply(store.New()); !errors.Is(err, store.ErrUnknownStop) {
		t.Errorf("expected ErrUnknownStop, got %v", err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "no stops"},
		{"unknown field", "stops:\n  - id: 1\n    colour: red\n", "colour"},
		{"duplicate stop", "stops:\n  - id: 1\n  - id: 1\n", "duplicate stop id 1"},
		{"undeclared connection", "stops:\n  - id: 1\nconnections:\n  - [1, 2]\n", "undeclared stop 2"},
		{"undeclared bus stop", "stops:\n  - id: 1\nbuses:\n  - {stop: 9, line: 1, minutes: 1}\n", "undeclared stop 9"},
		{"negative minutes", "stops:\n  - id: 1\nbuses:\n  - {stop: 1, line: 1, minutes: -3}\n", "negative minutes"},
		{"negative capacity", "stops:\n  - id: 1\n    bus_capacity: -1\n", "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.Decode(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stops.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	sd, err := seed.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if sd.Stops[1].Name != "Harbor" {
		t.Errorf("second stop: got %q", sd.Stops[1].Name)
	}

	if _, err := seed.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
