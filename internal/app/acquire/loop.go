// Package acquire runs the per-connection read→parse→validate→monitor→log
// loops and the supervisor that owns them.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/observability"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/monitor"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/parse"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/validate"
)

// State tracks the lifecycle of one acquisition loop.
type State int32

const (
	StateConnecting State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Archive bundles the optional WAL+queue feeding the database archive. A nil
// Archive disables the stage; the CSV log alone satisfies durability then.
type Archive struct {
	WAL    ports.WAL
	Queue  ports.ReadingQueue
	Policy ports.Policy
}

// LoopConfig fixes one connection's source and cadence.
type LoopConfig struct {
	Connection      string
	BaudRate        int
	PollInterval    time.Duration
	ReadBufferBytes int
}

// Loop drives one connection: blocking chunk reads, line splitting with
// partial-line carry, then parse → validate → monitor → log per line.
// Readings from one connection are processed strictly in arrival order.
type Loop struct {
	cfg       LoopConfig
	transport ports.Transport
	parser    parse.Parser
	validator *validate.Validator
	monitor   *monitor.Monitor
	log       ports.ReadingLog
	archive   *Archive
	obs       ports.Observability

	state State
}

func NewLoop(
	cfg LoopConfig,
	transport ports.Transport,
	validator *validate.Validator,
	mon *monitor.Monitor,
	log ports.ReadingLog,
	archive *Archive,
	obs ports.Observability,
) *Loop {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.ReadBufferBytes <= 0 {
		cfg.ReadBufferBytes = 256
	}
	return &Loop{
		cfg:       cfg,
		transport: transport,
		parser:    parse.NewParser(),
		validator: validator,
		monitor:   mon,
		log:       log,
		archive:   archive,
		obs:       obs,
		state:     StateConnecting,
	}
}

// State reports the loop's last lifecycle state. It is for diagnostics only
// and is not synchronized with Run.
func (l *Loop) State() State { return l.state }

// Run executes the loop until the connection fails, drains, or ctx is
// cancelled. The connection is released on every exit path. A loop never
// restarts itself.
func (l *Loop) Run(ctx context.Context) error {
	defer func() { l.state = StateTerminated }()

	l.state = StateConnecting
	conn, err := l.transport.Open(l.cfg.Connection, l.cfg.BaudRate)
	if err != nil {
		l.obs.LogError("connection open failed", err,
			ports.Field{Key: "connection", Value: l.cfg.Connection})
		return fmt.Errorf("open %s: %w", l.cfg.Connection, err)
	}
	defer conn.Close()

	l.state = StateRunning
	l.obs.LogInfo("acquisition started",
		ports.Field{Key: "connection", Value: l.cfg.Connection},
		ports.Field{Key: "baud_rate", Value: l.cfg.BaudRate})

	buf := make([]byte, l.cfg.ReadBufferBytes)
	var carry string

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				l.obs.LogInfo("connection drained",
					ports.Field{Key: "connection", Value: l.cfg.Connection})
				return nil
			}
			l.obs.LogError("connection read failed", err,
				ports.Field{Key: "connection", Value: l.cfg.Connection})
			return fmt.Errorf("read %s: %w", l.cfg.Connection, err)
		}

		carry = l.processChunk(carry + string(buf[:n]))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.cfg.PollInterval):
		}
	}
}

// processChunk splits the pending bytes into lines and returns the trailing
// partial line, which is prepended to the next chunk.
func (l *Loop) processChunk(pending string) string {
	for {
		idx := strings.IndexByte(pending, '\n')
		if idx < 0 {
			return pending
		}
		line := strings.TrimSuffix(pending[:idx], "\r")
		pending = pending[idx+1:]
		l.handleLine(line)
	}
}

func (l *Loop) handleLine(line string) {
	ts := time.Now()

	r, err := l.parser.Parse(l.cfg.Connection, line, ts)
	if err != nil {
		l.obs.IncCounter(observability.MetricParseFailuresTotal, 1)
		l.obs.LogError("line parse failed", err,
			ports.Field{Key: "connection", Value: l.cfg.Connection},
			ports.Field{Key: "raw", Value: line})
		return
	}

	if err := l.validator.Validate(r); err != nil {
		l.obs.IncCounter(observability.MetricValidationFailuresTotal, 1)
		l.obs.LogError("reading rejected", err,
			ports.Field{Key: "connection", Value: l.cfg.Connection},
			ports.Field{Key: "sensor", Value: r.SensorID})
		return
	}

	if alert := l.monitor.Update(r); alert != nil {
		l.obs.RecordAlert(*alert)
	}
	l.obs.IncCounter(observability.MetricReadingsTotal, 1)

	if err := l.log.Append(r); err != nil {
		// Non-fatal: the reading is still in the monitor's statistics and,
		// when the archive stage is enabled, durable in the WAL below.
		l.obs.IncCounter(observability.MetricLogWriteFailuresTotal, 1)
		l.obs.LogCritical("reading log append failed", err,
			ports.Field{Key: "connection", Value: l.cfg.Connection})
	}

	if l.archive != nil {
		l.archiveReading(r)
	}
}

func (l *Loop) archiveReading(r domain.Reading) {
	if !waitForWALCapacity(l.archive.WAL, l.archive.Policy, l.obs) {
		return
	}
	id, err := l.archive.WAL.Append(r)
	if err != nil {
		l.obs.LogCritical("wal append failed", err,
			ports.Field{Key: "connection", Value: r.ConnectionID})
		return
	}
	if !enqueueWithPolicy(l.archive.Queue, id, r, l.archive.Policy, l.obs) {
		l.obs.RecordDropped(id, r, errors.New("archive queue full"))
	}
}

func waitForWALCapacity(w ports.WAL, pol ports.Policy, obs ports.Observability) bool {
	if pol.MaxWALSizeBytes <= 0 {
		return true
	}
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		stats := w.Stats()
		if stats.SizeBytes < pol.MaxWALSizeBytes {
			return true
		}

		switch pol.OnWALFull {
		case "block":
			time.Sleep(sleep)
		case "drop":
			obs.LogError("wal full, dropping reading",
				fmt.Errorf("size=%d limit=%d", stats.SizeBytes, pol.MaxWALSizeBytes))
			return false
		default:
			obs.LogError("invalid wal-full policy", fmt.Errorf("policy=%q", pol.OnWALFull))
			return false
		}
	}
}

func enqueueWithPolicy(q ports.ReadingQueue, id ports.WALEntryID, r domain.Reading, pol ports.Policy, obs ports.Observability) bool {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if q.Enqueue(id, r) {
			return true
		}

		switch pol.OnQueueFull {
		case "block":
			time.Sleep(sleep)
		case "drop":
			obs.LogError("archive queue full, dropping reading",
				fmt.Errorf("queue capacity %d exceeded", pol.MaxQueueLen))
			return false
		default:
			obs.LogError("invalid queue-full policy", fmt.Errorf("policy=%q", pol.OnQueueFull))
			return false
		}
	}
}
