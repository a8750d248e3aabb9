package ports

import "time"

// Policy controls the archive stage's WAL and queue thresholds.
type Policy struct {
	MaxWALSizeBytes int64
	MaxQueueLen     int
	MaxBatchSize    int
	IdleSleep       time.Duration

	OnWALFull   string // "block", "drop"
	OnQueueFull string // "block", "drop"
}
