package domain

import "time"

// Reading is the canonical unit of sensor telemetry: one decoded value from
// one connection, timestamped at the moment its line was accepted for parsing.
type Reading struct {
	ConnectionID string    `json:"connection_id"`
	SensorID     string    `json:"sensor_id"`
	Value        float64   `json:"value"`
	Timestamp    time.Time `json:"ts"`
}

// Key identifies the statistics bucket a reading belongs to.
type Key struct {
	ConnectionID string
	SensorID     string
}

// Key returns the statistics key for the reading.
func (r Reading) Key() Key {
	return Key{ConnectionID: r.ConnectionID, SensorID: r.SensorID}
}

// Alert is advisory output raised when a reading falls outside its key's
// configured limits. It never affects logging or control flow.
type Alert struct {
	ConnectionID string
	SensorID     string
	Value        float64
	LowerLimit   float64
	UpperLimit   float64
	Timestamp    time.Time
}
