package simulator

import (
	"log/slog"

	"transitboard/internal/metrics"
	"transitboard/internal/store"
)

// Ticker is the part of the store the simulator drives.
type Ticker interface {
	Tick() int
	Stats() store.Stats
}

// Simulator is driven from the board's control goroutine only.
type Simulator struct {
	store   Ticker
	metrics *metrics.Metrics
	logger  *slog.Logger

	steps int
}

func New(st Ticker, m *metrics.Metrics, logger *slog.Logger) *Simulator {
	return &Simulator{
		store:   st,
		metrics: m,
		logger:  logger.With("component", "simulator"),
	}
}

// Step advances every approaching bus by one minute.
func (s *Simulator) Step() int {
	decremented := s.store.Tick()
	stats := s.store.Stats()

	s.steps++

	if s.metrics != nil {
		s.metrics.TicksTotal.Inc()
		s.metrics.DecrementsTotal.Add(float64(decremented))
		s.metrics.ApproachingBuses.Set(float64(stats.Buses))
	}

	s.logger.Debug("tick completed",
		"step", s.steps,
		"decremented", decremented,
		"buses", stats.Buses,
		"stops", stats.Stops,
	)
	return decremented
}

// Steps reports how many ticks have run.
func (s *Simulator) Steps() int {
	return s.steps
}
