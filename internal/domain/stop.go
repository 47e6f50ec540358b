package domain

// Coordinates is a latitude/longitude pair. Range is not constrained.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Stop represents a bus stop on the board
type Stop struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Location     string           `json:"location"`
	Coordinates  Coordinates      `json:"coordinates"`
	PeakHours    []string         `json:"peakHours,omitempty"`
	BusFrequency int              `json:"busFrequency"`
	BusCapacity  int              `json:"busCapacity"`
	Buses        []ApproachingBus `json:"buses"`
}

// ApproachingBus is a bus line heading to a stop with its minutes-to-arrival
type ApproachingBus struct {
	Line    int `json:"line"`
	Minutes int `json:"minutes"`
}

// NextMinutes is a synthetic display value (current + 1), not a second prediction.
func (b ApproachingBus) NextMinutes() int {
	return b.Minutes + 1
}

// Connection is an undirected route segment between two stops
type Connection struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// StopRef identifies a neighbor in a connection listing
type StopRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Adjacency lists the neighbors of one stop in insertion order
type Adjacency struct {
	StopID    int       `json:"stopId"`
	Neighbors []StopRef `json:"neighbors"`
}
