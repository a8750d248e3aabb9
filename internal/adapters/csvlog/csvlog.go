// Package csvlog appends validated readings to the shared analysis log:
// UTF-8 text, one record per line, no header, fields comma-separated.
package csvlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
)

// Writer appends one record per call, unbuffered and fsynced, so a record is
// durable before the acquisition loop issues its next read. A single mutex
// keeps concurrent appends whole-line atomic.
type Writer struct {
	mu sync.Mutex
	f  *os.File
}

// NewWriter opens (or creates, headerless) the log at path.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open reading log: %w", err)
	}
	return &Writer{f: f}, nil
}

// Append writes "connectionId,sensorId,value,timestamp" with the value at
// two decimal places and the timestamp in RFC 3339.
func (w *Writer) Append(r domain.Reading) error {
	line := fmt.Sprintf("%s,%s,%.2f,%s\n",
		r.ConnectionID, r.SensorID, r.Value, r.Timestamp.Format(time.RFC3339))

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.f.WriteString(line); err != nil {
		return fmt.Errorf("append reading log: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("sync reading log: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

var _ ports.ReadingLog = (*Writer)(nil)
