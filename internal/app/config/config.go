// Package config loads the process configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/monitor"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/validate"
)

type Config struct {
	Connections     []ConnectionConfig `yaml:"connections"`
	PollInterval    time.Duration      `yaml:"poll_interval"`
	ReadBufferBytes int                `yaml:"read_buffer_bytes"`
	LogPath         string             `yaml:"log_path"`
	Envelope        validate.Envelope  `yaml:"envelope"`
	Limits          monitor.Config     `yaml:"limits"`
	Archive         ArchiveConfig      `yaml:"archive"`
	Policy          ports.Policy       `yaml:"policy"`
	Metrics         MetricsConfig      `yaml:"metrics"`
}

// ConnectionConfig names one serial source.
type ConnectionConfig struct {
	Name     string `yaml:"name"`
	BaudRate int    `yaml:"baud_rate"`
}

// ArchiveConfig controls the optional WAL-backed database archive stage.
type ArchiveConfig struct {
	Enabled     bool                               `yaml:"enabled"`
	ConnString  string                             `yaml:"conn_string"`
	Table       string                             `yaml:"table"`
	WALDir      string                             `yaml:"wal_dir"`
	Calibration map[string]CalibrationCoefficients `yaml:"calibration"`
}

// CalibrationCoefficients describe the linear correction applied to one
// sensor's values on the archive path.
type CalibrationCoefficients struct {
	Scale  float64 `yaml:"scale"`
	Offset float64 `yaml:"offset"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = time.Second
	}
	if c.ReadBufferBytes == 0 {
		c.ReadBufferBytes = 256
	}
	if c.LogPath == "" {
		c.LogPath = "./data/sensor_data.csv"
	}
	if c.Envelope == (validate.Envelope{}) {
		c.Envelope = validate.DefaultEnvelope
	}
	if c.Limits.Default == (monitor.Limits{}) {
		c.Limits.Default = monitor.DefaultLimits
	}
	for i := range c.Connections {
		if c.Connections[i].BaudRate == 0 {
			c.Connections[i].BaudRate = 9600
		}
	}
	if c.Archive.Table == "" {
		c.Archive.Table = "readings"
	}
	if c.Archive.WALDir == "" {
		c.Archive.WALDir = "./data/wal"
	}
	if c.Policy.MaxWALSizeBytes == 0 {
		c.Policy.MaxWALSizeBytes = 1 << 30
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 100_000
	}
	if c.Policy.MaxBatchSize == 0 {
		c.Policy.MaxBatchSize = 5_000
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.OnWALFull == "" {
		c.Policy.OnWALFull = "block"
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
}

func (c *Config) Validate() error {
	if len(c.Connections) == 0 {
		return fmt.Errorf("at least one connection must be configured")
	}
	seen := make(map[string]bool, len(c.Connections))
	for _, conn := range c.Connections {
		if conn.Name == "" {
			return fmt.Errorf("connection name is required")
		}
		if seen[conn.Name] {
			return fmt.Errorf("duplicate connection %q", conn.Name)
		}
		seen[conn.Name] = true
		if conn.BaudRate <= 0 {
			return fmt.Errorf("connection %q: baud_rate must be positive", conn.Name)
		}
	}
	if c.Envelope.Min >= c.Envelope.Max {
		return fmt.Errorf("envelope: min must be below max")
	}
	if c.Limits.Default.Lower >= c.Limits.Default.Upper {
		return fmt.Errorf("limits.default: lower must be below upper")
	}
	for sensor, l := range c.Limits.Sensors {
		if l.Lower >= l.Upper {
			return fmt.Errorf("limits.sensors.%s: lower must be below upper", sensor)
		}
	}
	if c.Archive.Enabled && c.Archive.ConnString == "" {
		return fmt.Errorf("archive.conn_string is required when archive is enabled")
	}
	return nil
}
