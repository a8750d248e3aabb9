package qmon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/archive"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/csvlog"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/observability"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/queue"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/serialport"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/wal"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/app/acquire"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/app/pipeline"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/monitor"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/transform"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/validate"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	transport     Transport
	readingLog    ReadingLog
	sink          ArchiveSink
	transformer   Transformer
	wal           WAL
	queue         ReadingQueue
	observability Observability
}

// WithTransport injects a custom transport (simulators, TCP bridges, etc.).
func WithTransport(t Transport) RuntimeOption {
	return func(o *runtimeOverrides) { o.transport = t }
}

// WithReadingLog replaces the default CSV reading log.
func WithReadingLog(l ReadingLog) RuntimeOption {
	return func(o *runtimeOverrides) { o.readingLog = l }
}

// WithArchiveSink injects a custom archive sink; providing one enables the
// archive stage regardless of configuration.
func WithArchiveSink(s ArchiveSink) RuntimeOption {
	return func(o *runtimeOverrides) { o.sink = s }
}

// WithTransformer overrides the calibration transformer on the archive path.
func WithTransformer(t Transformer) RuntimeOption {
	return func(o *runtimeOverrides) { o.transformer = t }
}

// WithWAL lets callers bring their own WAL implementation.
func WithWAL(w WAL) RuntimeOption {
	return func(o *runtimeOverrides) { o.wal = w }
}

// WithQueue injects a custom archive queue implementation.
func WithQueue(q ReadingQueue) RuntimeOption {
	return func(o *runtimeOverrides) { o.queue = q }
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) { o.observability = obs }
}

// Runtime wires the acquisition loops, shared monitor, reading log, and the
// optional archive stage, and owns their lifecycle.
type Runtime struct {
	cfg        *Config
	obs        ports.Observability
	mon        *monitor.Monitor
	readingLog ports.ReadingLog
	supervisor *acquire.Supervisor

	wal         ports.WAL
	queue       ports.ReadingQueue
	sink        ports.ArchiveSink
	transformer ports.Transformer
	db          *sql.DB

	metricsSrv    *http.Server
	gaugeStopCh   chan struct{}
	archiveCancel context.CancelFunc
	archiveDoneCh chan struct{}
}

// NewRuntime bootstraps the default adapters (serial transport, CSV log,
// file WAL, in-memory queue, Timescale sink, zap+Prometheus observability).
// RuntimeOption values override any dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		obs = observability.New(logger, prometheus.DefaultRegisterer)
	}

	readingLog := overrides.readingLog
	if readingLog == nil {
		var err error
		readingLog, err = csvlog.NewWriter(cfg.LogPath)
		if err != nil {
			return nil, err
		}
	}

	rt := &Runtime{
		cfg:        cfg,
		obs:        obs,
		mon:        monitor.New(cfg.Limits),
		readingLog: readingLog,
	}

	archiveEnabled := cfg.Archive.Enabled || overrides.sink != nil
	var bundle *acquire.Archive
	if archiveEnabled {
		if err := rt.setupArchive(cfg, &overrides); err != nil {
			return nil, err
		}
		bundle = &acquire.Archive{WAL: rt.wal, Queue: rt.queue, Policy: cfg.Policy}
	}

	transport := overrides.transport
	if transport == nil {
		transport = serialport.New()
	}

	validator := validate.NewValidator(cfg.Envelope)
	loops := make([]*acquire.Loop, 0, len(cfg.Connections))
	for _, conn := range cfg.Connections {
		loops = append(loops, acquire.NewLoop(
			acquire.LoopConfig{
				Connection:      conn.Name,
				BaudRate:        conn.BaudRate,
				PollInterval:    cfg.PollInterval,
				ReadBufferBytes: cfg.ReadBufferBytes,
			},
			transport,
			validator,
			rt.mon,
			readingLog,
			bundle,
			obs,
		))
	}
	rt.supervisor = acquire.NewSupervisor(loops, obs)

	return rt, nil
}

func (r *Runtime) setupArchive(cfg *Config, overrides *runtimeOverrides) error {
	r.wal = overrides.wal
	if r.wal == nil {
		w, err := wal.NewFileWAL(cfg.Archive.WALDir)
		if err != nil {
			return err
		}
		r.wal = w
	}

	r.queue = overrides.queue
	if r.queue == nil {
		r.queue = queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	}

	if err := pipeline.ReplayWAL(r.wal, r.queue, cfg.Policy, r.obs); err != nil {
		return err
	}

	r.sink = overrides.sink
	if r.sink == nil {
		db, err := sql.Open("postgres", cfg.Archive.ConnString)
		if err != nil {
			return err
		}
		r.db = db
		r.sink = archive.NewTimescaleSink(db, cfg.Archive.Table)
	}

	r.transformer = overrides.transformer
	if r.transformer == nil {
		if len(cfg.Archive.Calibration) > 0 {
			coeffs := make(map[string]transform.Coefficients, len(cfg.Archive.Calibration))
			for sensor, c := range cfg.Archive.Calibration {
				coeffs[sensor] = transform.Coefficients{Scale: c.Scale, Offset: c.Offset}
			}
			r.transformer = transform.NewCalibration(coeffs)
		} else {
			r.transformer = transform.Noop{}
		}
	}
	return nil
}

// Stats returns a snapshot of the statistics bucket for key.
func (r *Runtime) Stats(key Key) (Stats, bool) {
	return r.mon.Snapshot(key)
}

// Keys lists every statistics bucket observed so far.
func (r *Runtime) Keys() []Key {
	return r.mon.Keys()
}

// Run starts the metrics server and archive stage, blocks until every
// acquisition loop has terminated (connection failures or ctx cancellation),
// then shuts everything down. The returned error wraps
// acquire.ErrAllConnectionsFailed when no connection outlived startup.
func (r *Runtime) Run(ctx context.Context) error {
	r.startMetrics()

	if r.sink != nil {
		archiveCtx, cancel := context.WithCancel(context.Background())
		r.archiveCancel = cancel
		r.archiveDoneCh = make(chan struct{})
		go func() {
			pipeline.RunArchive(archiveCtx, r.wal, r.queue, r.transformer, r.sink, r.cfg.Policy, r.obs)
			close(r.archiveDoneCh)
		}()
	}

	runErr := r.supervisor.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(runErr, r.Shutdown(shutdownCtx))
}

// Shutdown stops the archive stage, metrics server, and every held resource.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.gaugeStopCh != nil {
		close(r.gaugeStopCh)
		r.gaugeStopCh = nil
	}

	if r.archiveCancel != nil {
		r.archiveCancel()
		select {
		case <-r.archiveDoneCh:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("archive drain did not stop: %w", ctx.Err()))
		}
		r.archiveCancel = nil
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		r.metricsSrv = nil
	}

	if r.wal != nil {
		if err := r.wal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.readingLog.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func(srv *http.Server) {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("metrics server exited", err)
		}
	}(r.metricsSrv)

	if r.wal != nil {
		r.gaugeStopCh = make(chan struct{})
		go r.recordResourceGauges(r.gaugeStopCh, time.Second)
	}
}

func (r *Runtime) recordResourceGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := r.wal.Stats()
			r.obs.SetGauge(observability.MetricWALSizeBytes, float64(stats.SizeBytes))
			r.obs.SetGauge(observability.MetricQueueLength, float64(r.queue.Len()))
		}
	}
}
