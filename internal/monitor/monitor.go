// Package monitor keeps running per-sensor statistics and raises alerts
// when a reading leaves its configured operating range.
package monitor

import (
	"math"
	"sync"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
)

// Limits is the acceptable operating range for one statistics bucket.
type Limits struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// DefaultLimits applies to sensors with no explicit entry in Config.Sensors.
var DefaultLimits = Limits{Lower: 5.0, Upper: 25.0}

// Config maps sensor ids to operating limits. Buckets resolve limits once,
// when the key is first seen.
type Config struct {
	Default Limits            `yaml:"default"`
	Sensors map[string]Limits `yaml:"sensors"`
}

// Stats is a snapshot of one bucket. ObservedMin/ObservedMax start at
// +Inf/-Inf so the first reading always sets both.
type Stats struct {
	LowerLimit  float64
	UpperLimit  float64
	Sum         float64
	Count       int64
	ObservedMin float64
	ObservedMax float64
}

// Average returns sum/count, or false when no reading has been recorded.
func (s Stats) Average() (float64, bool) {
	if s.Count == 0 {
		return 0, false
	}
	return s.Sum / float64(s.Count), true
}

// Monitor owns the statistics table. Buckets are keyed by
// (connectionId, sensorId) and live for the life of the process; updates are
// serialized by a single table lock, which is cheap at per-second cadence.
type Monitor struct {
	cfg Config

	mu    sync.Mutex
	stats map[domain.Key]*Stats
}

func New(cfg Config) *Monitor {
	if cfg.Default == (Limits{}) {
		cfg.Default = DefaultLimits
	}
	return &Monitor{
		cfg:   cfg,
		stats: make(map[domain.Key]*Stats),
	}
}

// Update folds the reading into its bucket and returns an alert when the
// value lies strictly outside the bucket's limits, nil otherwise. Update
// never rejects a reading.
func (m *Monitor) Update(r domain.Reading) *domain.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := r.Key()
	s, ok := m.stats[key]
	if !ok {
		limits := m.limitsFor(r.SensorID)
		s = &Stats{
			LowerLimit:  limits.Lower,
			UpperLimit:  limits.Upper,
			ObservedMin: math.Inf(1),
			ObservedMax: math.Inf(-1),
		}
		m.stats[key] = s
	}

	s.Sum += r.Value
	s.Count++
	if r.Value > s.ObservedMax {
		s.ObservedMax = r.Value
	}
	if r.Value < s.ObservedMin {
		s.ObservedMin = r.Value
	}

	if r.Value < s.LowerLimit || r.Value > s.UpperLimit {
		return &domain.Alert{
			ConnectionID: r.ConnectionID,
			SensorID:     r.SensorID,
			Value:        r.Value,
			LowerLimit:   s.LowerLimit,
			UpperLimit:   s.UpperLimit,
			Timestamp:    r.Timestamp,
		}
	}
	return nil
}

// Snapshot returns a copy of the bucket for key, if one exists.
func (m *Monitor) Snapshot(key domain.Key) (Stats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[key]
	if !ok {
		return Stats{}, false
	}
	return *s, true
}

// Keys lists every bucket observed so far, in no particular order.
func (m *Monitor) Keys() []domain.Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]domain.Key, 0, len(m.stats))
	for k := range m.stats {
		keys = append(keys, k)
	}
	return keys
}

func (m *Monitor) limitsFor(sensorID string) Limits {
	if l, ok := m.cfg.Sensors[sensorID]; ok {
		return l
	}
	return m.cfg.Default
}
