// Package observability reports pipeline activity through zap structured
// logs and Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
)

// Metric names shared between the adapter and the runtime's gauge loop.
const (
	MetricReadingsTotal           = "qmon_readings_total"
	MetricAlertsTotal             = "qmon_alerts_total"
	MetricParseFailuresTotal      = "qmon_parse_failures_total"
	MetricValidationFailuresTotal = "qmon_validation_failures_total"
	MetricLogWriteFailuresTotal   = "qmon_log_write_failures_total"
	MetricArchivedTotal           = "qmon_archived_total"
	MetricArchiveDroppedTotal     = "qmon_archive_dropped_total"
	MetricWALSizeBytes            = "qmon_wal_size_bytes"
	MetricQueueLength             = "qmon_queue_length"
	MetricArchiveLatencySeconds   = "qmon_archive_latency_seconds"
)

type Obs struct {
	log      *zap.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// New registers the pipeline's metrics on reg and wraps logger. Pass
// prometheus.DefaultRegisterer outside of tests.
func New(logger *zap.Logger, reg prometheus.Registerer) *Obs {
	if logger == nil {
		logger = zap.NewNop()
	}

	counters := map[string]prometheus.Counter{
		MetricReadingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricReadingsTotal,
			Help: "Validated readings accepted by the pipeline.",
		}),
		MetricAlertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricAlertsTotal,
			Help: "Readings outside their configured operating limits.",
		}),
		MetricParseFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricParseFailuresTotal,
			Help: "Lines that failed line-protocol decoding.",
		}),
		MetricValidationFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricValidationFailuresTotal,
			Help: "Readings rejected by the sanity envelope.",
		}),
		MetricLogWriteFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricLogWriteFailuresTotal,
			Help: "Reading-log appends that returned an error.",
		}),
		MetricArchivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricArchivedTotal,
			Help: "Readings successfully written to the archive sink.",
		}),
		MetricArchiveDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricArchiveDroppedTotal,
			Help: "Readings dropped from the archive path by policy or transform failure.",
		}),
	}
	gauges := map[string]prometheus.Gauge{
		MetricWALSizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricWALSizeBytes,
			Help: "Size of the archive WAL on disk.",
		}),
		MetricQueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricQueueLength,
			Help: "Readings buffered in the archive queue.",
		}),
	}
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricArchiveLatencySeconds,
		Help:    "Latency from dequeue to archive sink commit.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	for _, c := range counters {
		reg.MustRegister(c)
	}
	for _, g := range gauges {
		reg.MustRegister(g)
	}
	reg.MustRegister(latency)

	return &Obs{
		log:      logger,
		counters: counters,
		gauges:   gauges,
		histos:   map[string]prometheus.Observer{MetricArchiveLatencySeconds: latency},
	}
}

func (o *Obs) LogInfo(msg string, fields ...ports.Field) {
	o.log.Info(msg, zapFields(fields)...)
}

func (o *Obs) LogError(msg string, err error, fields ...ports.Field) {
	o.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (o *Obs) LogCritical(msg string, err error, fields ...ports.Field) {
	o.log.Error(msg, append(zapFields(fields), zap.Error(err), zap.Bool("critical", true))...)
}

func (o *Obs) IncCounter(name string, v float64) {
	if c, ok := o.counters[name]; ok {
		c.Add(v)
	}
}

func (o *Obs) ObserveLatency(name string, seconds float64) {
	if h, ok := o.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (o *Obs) SetGauge(name string, v float64) {
	if g, ok := o.gauges[name]; ok {
		g.Set(v)
	}
}

// RecordAlert surfaces an out-of-range reading. Alerts are advisory; the
// reading is still logged and archived.
func (o *Obs) RecordAlert(a domain.Alert) {
	o.IncCounter(MetricAlertsTotal, 1)
	o.log.Warn("reading out of range",
		zap.String("connection", a.ConnectionID),
		zap.String("sensor", a.SensorID),
		zap.Float64("value", a.Value),
		zap.Float64("lower_limit", a.LowerLimit),
		zap.Float64("upper_limit", a.UpperLimit),
	)
}

func (o *Obs) RecordDropped(id ports.WALEntryID, r domain.Reading, err error) {
	o.IncCounter(MetricArchiveDroppedTotal, 1)
	o.log.Error("reading dropped from archive path",
		zap.Uint64("wal_id", uint64(id)),
		zap.String("connection", r.ConnectionID),
		zap.String("sensor", r.SensorID),
		zap.Error(err),
	)
}

func zapFields(fields []ports.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}

var _ ports.Observability = (*Obs)(nil)
