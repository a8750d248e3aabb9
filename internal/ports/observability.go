package ports

import "github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"

// Observability is the single surface through which the pipeline reports:
// structured logs, counters/gauges/latency metrics, and raised alerts.
type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)
	LogCritical(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)
	SetGauge(name string, v float64)

	RecordAlert(a domain.Alert)
	RecordDropped(id WALEntryID, r domain.Reading, err error)
}

type Field struct {
	Key   string
	Value any
}
