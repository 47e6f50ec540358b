package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tidwall/btree"

	"transitboard/internal/domain"
)

// ErrUnknownStop is returned by the validating operations when a stop id was never added.
var ErrUnknownStop = errors.New("unknown stop")

// StopInfo carries the descriptive fields written by AddStops.
type StopInfo struct {
	ID       int
	Name     string
	Location string
	Lat      float64
	Lon      float64
}

type Stats struct {
	Stops       int `json:"stops"`
	Connections int `json:"connections"`
	Buses       int `json:"buses"`
}

// Store is the in-memory stop graph. Stops and adjacency lists are kept in
// ordered maps so listings come out in ascending stop id order.
type Store struct {
	mu          sync.RWMutex
	stops       *btree.Map[int, *domain.Stop]
	adjacency   *btree.Map[int, []int]
	connections int
}

func New() *Store {
	return &Store{
		stops:     new(btree.Map[int, *domain.Stop]),
		adjacency: new(btree.Map[int, []int]),
	}
}

// AddStop inserts the stop or overwrites its descriptive fields. Buses
// already attached to the stop are kept.
func (s *Store) AddStop(id int, name, location string, lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stop := s.stopLocked(id)
	stop.Name = name
	stop.Location = location
	stop.Coordinates = domain.Coordinates{Lat: lat, Lon: lon}
}

func (s *Store) AddStops(stops []StopInfo) {
	for _, st := range stops {
		s.AddStop(st.ID, st.Name, st.Location, st.Lat, st.Lon)
	}
}

// SetServiceProfile records the nominal service fields of a known stop.
func (s *Store) SetServiceProfile(id int, peakHours []string, frequency, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stop, ok := s.stops.Get(id)
	if !ok {
		return fmt.Errorf("stop %d: %w", id, ErrUnknownStop)
	}
	stop.PeakHours = append([]string(nil), peakHours...)
	stop.BusFrequency = frequency
	stop.BusCapacity = capacity
	return nil
}

// AddConnection links two known stops in both directions. Repeated calls add
// duplicate edges.
func (s *Store) AddConnection(a, b int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []int{a, b} {
		if _, ok := s.stops.Get(id); !ok {
			return fmt.Errorf("connect %d-%d: stop %d: %w", a, b, id, ErrUnknownStop)
		}
	}
	s.connectLocked(a, b)
	return nil
}

// AddConnectionUnchecked links two stops without checking they exist. Only
// adjacency entries are created; the ids do not become valid stops.
func (s *Store) AddConnectionUnchecked(a, b int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectLocked(a, b)
}

func (s *Store) AddConnections(conns []domain.Connection) error {
	for _, c := range conns {
		if err := s.AddConnection(c.From, c.To); err != nil {
			return err
		}
	}
	return nil
}

// AddBus appends an approaching bus to a known stop. No deduplication by line.
func (s *Store) AddBus(stopID, line, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("bus %d at stop %d: negative minutes %d", line, stopID, minutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stop, ok := s.stops.Get(stopID)
	if !ok {
		return fmt.Errorf("bus %d: stop %d: %w", line, stopID, ErrUnknownStop)
	}
	stop.Buses = append(stop.Buses, domain.ApproachingBus{Line: line, Minutes: minutes})
	return nil
}

// AddBusUnchecked appends a bus, creating an empty stub stop for unknown ids.
// Negative minutes are clamped to zero.
func (s *Store) AddBusUnchecked(stopID, line, minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stop := s.stopLocked(stopID)
	stop.Buses = append(stop.Buses, domain.ApproachingBus{Line: line, Minutes: max(minutes, 0)})
}

// ApproachingBuses returns a snapshot of the buses heading to the stop, in
// insertion order. Unknown stops yield nil.
func (s *Store) ApproachingBuses(stopID int) []domain.ApproachingBus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stop, ok := s.stops.Get(stopID)
	if !ok || len(stop.Buses) == 0 {
		return nil
	}
	result := make([]domain.ApproachingBus, len(stop.Buses))
	copy(result, stop.Buses)
	return result
}

func (s *Store) IsValidStop(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.stops.Get(id)
	return ok
}

func (s *Store) Stop(id int) (*domain.Stop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stop, ok := s.stops.Get(id)
	if !ok {
		return nil, false
	}
	return cloneStop(stop), true
}

// StopName returns the stop name, or "" for unknown ids.
func (s *Store) StopName(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if stop, ok := s.stops.Get(id); ok {
		return stop.Name
	}
	return ""
}

// StopLocation returns the stop location label, or "" for unknown ids.
func (s *Store) StopLocation(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if stop, ok := s.stops.Get(id); ok {
		return stop.Location
	}
	return ""
}

// StopIDs returns all stop ids in ascending order.
func (s *Store) StopIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stops.Keys()
}

// Neighbors returns the adjacency list of a stop in insertion order.
func (s *Store) Neighbors(id int) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.adjacency.Get(id)
	if !ok {
		return nil
	}
	return append([]int(nil), ns...)
}

// Connections lists every stop with at least one neighbor, ascending by id.
func (s *Store) Connections() []domain.Adjacency {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Adjacency, 0, s.adjacency.Len())
	s.adjacency.Scan(func(id int, neighbors []int) bool {
		adj := domain.Adjacency{
			StopID:    id,
			Neighbors: make([]domain.StopRef, 0, len(neighbors)),
		}
		for _, n := range neighbors {
			ref := domain.StopRef{ID: n}
			if stop, ok := s.stops.Get(n); ok {
				ref.Name = stop.Name
			}
			adj.Neighbors = append(adj.Neighbors, ref)
		}
		result = append(result, adj)
		return true
	})
	return result
}

// Tick decrements every positive minutes-to-arrival by one and returns how
// many counters changed. Zero stays zero.
func (s *Store) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	decremented := 0
	s.stops.Scan(func(_ int, stop *domain.Stop) bool {
		for i := range stop.Buses {
			if stop.Buses[i].Minutes > 0 {
				stop.Buses[i].Minutes--
				decremented++
			}
		}
		return true
	})
	return decremented
}

// Clear removes all stops and connections.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stops = new(btree.Map[int, *domain.Stop])
	s.adjacency = new(btree.Map[int, []int])
	s.connections = 0
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buses := 0
	s.stops.Scan(func(_ int, stop *domain.Stop) bool {
		buses += len(stop.Buses)
		return true
	})
	return Stats{
		Stops:       s.stops.Len(),
		Connections: s.connections,
		Buses:       buses,
	}
}

func (s *Store) stopLocked(id int) *domain.Stop {
	stop, ok := s.stops.Get(id)
	if !ok {
		stop = &domain.Stop{ID: id}
		s.stops.Set(id, stop)
	}
	return stop
}

func (s *Store) connectLocked(a, b int) {
	na, _ := s.adjacency.Get(a)
	s.adjacency.Set(a, append(na, b))
	nb, _ := s.adjacency.Get(b)
	s.adjacency.Set(b, append(nb, a))
	s.connections++
}

func cloneStop(stop *domain.Stop) *domain.Stop {
	c := *stop
	c.PeakHours = append([]string(nil), stop.PeakHours...)
	c.Buses = append([]domain.ApproachingBus(nil), stop.Buses...)
	return &c
}
