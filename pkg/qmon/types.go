// Package qmon is the public embedding surface of the quality-monitoring
// runtime: load a config, override any adapter, run the pipeline.
package qmon

import (
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/app/config"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/monitor"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/validate"
)

// Reading is one decoded sensor observation flowing through the pipeline.
type Reading = domain.Reading

// Alert is raised when a reading leaves its key's configured limits.
type Alert = domain.Alert

// Key identifies one per-sensor statistics bucket.
type Key = domain.Key

// Stats is a snapshot of one statistics bucket.
type Stats = monitor.Stats

// Limits is the acceptable operating range for a sensor.
type Limits = monitor.Limits

// MonitorConfig holds the default limits and per-sensor overrides.
type MonitorConfig = monitor.Config

// Envelope is the coarse sanity range applied before monitoring.
type Envelope = validate.Envelope

type (
	// Config is the root YAML configuration.
	Config = config.Config
	// ConnectionConfig names one serial source.
	ConnectionConfig = config.ConnectionConfig
	// ArchiveConfig controls the optional database archive stage.
	ArchiveConfig = config.ArchiveConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// CalibrationCoefficients is a linear per-sensor correction.
	CalibrationCoefficients = config.CalibrationCoefficients
	// Policy controls archive WAL/queue thresholds.
	Policy = ports.Policy
)

type (
	// Transport opens named connections yielding raw byte chunks.
	Transport = ports.Transport
	// Conn is one open connection.
	Conn = ports.Conn
	// ReadingLog is the shared append-only reading log.
	ReadingLog = ports.ReadingLog
	// ArchiveSink consumes reading batches for offline analysis.
	ArchiveSink = ports.ArchiveSink
	// Transformer adjusts readings on the archive path.
	Transformer = ports.Transformer
	// ReadingQueue buffers WAL-backed readings for the archive drain.
	ReadingQueue = ports.ReadingQueue
	// WAL is the archive stage's durable buffer.
	WAL = ports.WAL
	// WALEntryID identifies one WAL entry.
	WALEntryID = ports.WALEntryID
	// WALStats summarizes the WAL's commit frontier and size.
	WALStats = ports.WALStats
	// QueuedReading pairs a reading with its WAL entry.
	QueuedReading = ports.QueuedReading
	// Observability reports logs, metrics, and alerts.
	Observability = ports.Observability
	// Field is a structured log field.
	Field = ports.Field
)

// LoadConfig reads and validates YAML configuration from disk.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
