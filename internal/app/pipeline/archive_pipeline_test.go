package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/queue"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/transform"
)

type memWAL struct {
	mu        sync.Mutex
	entries   []domain.Reading
	committed ports.WALEntryID
}

func (w *memWAL) Append(r domain.Reading) (ports.WALEntryID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, r)
	return ports.WALEntryID(len(w.entries)), nil
}

func (w *memWAL) Iterate(from ports.WALEntryID, fn func(ports.WALEntryID, domain.Reading) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, r := range w.entries {
		id := ports.WALEntryID(i + 1)
		if id < from {
			continue
		}
		if err := fn(id, r); err != nil {
			return err
		}
	}
	return nil
}

func (w *memWAL) Commit(upto ports.WALEntryID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if upto > w.committed {
		w.committed = upto
	}
	return nil
}

func (w *memWAL) Stats() ports.WALStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ports.WALStats{
		OldestUncommitted: w.committed + 1,
		LatestAppended:    ports.WALEntryID(len(w.entries)),
	}
}

func (w *memWAL) Close() error { return nil }

func (w *memWAL) committedID() ports.WALEntryID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.committed
}

type captureSink struct {
	mu      sync.Mutex
	batches [][]domain.Reading
	err     error
}

func (s *captureSink) WriteBatch(readings []domain.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, readings)
	return nil
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

type nopObs struct {
	mu      sync.Mutex
	dropped int
	errs    []error
}

func (o *nopObs) LogInfo(string, ...ports.Field) {}
func (o *nopObs) LogError(_ string, err error, _ ...ports.Field) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, err)
}
func (o *nopObs) LogCritical(string, error, ...ports.Field) {}
func (o *nopObs) IncCounter(string, float64)                {}
func (o *nopObs) ObserveLatency(string, float64)            {}
func (o *nopObs) SetGauge(string, float64)                  {}
func (o *nopObs) RecordAlert(domain.Alert)                  {}
func (o *nopObs) RecordDropped(ports.WALEntryID, domain.Reading, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped++
}

func testPolicy() ports.Policy {
	return ports.Policy{
		MaxBatchSize: 10,
		MaxQueueLen:  100,
		IdleSleep:    time.Millisecond,
		OnWALFull:    "block",
		OnQueueFull:  "block",
	}
}

func TestRunArchiveDrainsAndCommits(t *testing.T) {
	w := &memWAL{}
	q := queue.NewMemQueue(100)
	sink := &captureSink{}
	obs := &nopObs{}

	var last ports.WALEntryID
	for i := 0; i < 5; i++ {
		r := domain.Reading{ConnectionID: "COM3", SensorID: "TEMP", Value: float64(i)}
		id, err := w.Append(r)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		q.Enqueue(id, r)
		last = id
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunArchive(ctx, w, q, transform.Noop{}, sink, testPolicy(), obs)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for sink.total() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if sink.total() != 5 {
		t.Fatalf("archived %d readings, want 5", sink.total())
	}
	if w.committedID() != last {
		t.Fatalf("committed = %d, want %d", w.committedID(), last)
	}
}

func TestRunArchiveKeepsWALOnSinkFailure(t *testing.T) {
	w := &memWAL{}
	q := queue.NewMemQueue(100)
	sink := &captureSink{err: errors.New("db down")}
	obs := &nopObs{}

	r := domain.Reading{SensorID: "TEMP", Value: 1}
	id, _ := w.Append(r)
	q.Enqueue(id, r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunArchive(ctx, w, q, transform.Noop{}, sink, testPolicy(), obs)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		obs.mu.Lock()
		n := len(obs.errs)
		obs.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if w.committedID() != 0 {
		t.Fatalf("sink failure must not commit the WAL, committed = %d", w.committedID())
	}
}

func TestRunArchiveDropsFailedTransforms(t *testing.T) {
	w := &memWAL{}
	q := queue.NewMemQueue(100)
	sink := &captureSink{}
	obs := &nopObs{}

	r := domain.Reading{SensorID: "TEMP", Value: 1}
	id, _ := w.Append(r)
	q.Enqueue(id, r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunArchive(ctx, w, q, failingTransformer{}, sink, testPolicy(), obs)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for w.committedID() != id && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if dropped := obs.droppedCount(); dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	// An all-dropped batch still advances the commit point.
	if w.committedID() != id {
		t.Fatalf("committed = %d, want %d", w.committedID(), id)
	}
	if sink.total() != 0 {
		t.Fatalf("sink should have received nothing, got %d", sink.total())
	}
}

func (o *nopObs) droppedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

type failingTransformer struct{}

func (failingTransformer) Transform(domain.Reading) (domain.Reading, error) {
	return domain.Reading{}, errors.New("bad calibration")
}

func (failingTransformer) Version() uint16 { return 1 }

func TestReplayWALRequeuesUncommitted(t *testing.T) {
	w := &memWAL{}
	q := queue.NewMemQueue(100)
	obs := &nopObs{}

	for i := 0; i < 4; i++ {
		if _, err := w.Append(domain.Reading{SensorID: "TEMP", Value: float64(i)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Commit(2); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := ReplayWAL(w, q, testPolicy(), obs); err != nil {
		t.Fatalf("replay: %v", err)
	}

	batch := q.DequeueBatch(10)
	if len(batch) != 2 {
		t.Fatalf("replayed %d entries, want 2", len(batch))
	}
	if batch[0].ID != 3 || batch[1].ID != 4 {
		t.Fatalf("unexpected replay ids: %d, %d", batch[0].ID, batch[1].ID)
	}
}

func TestReplayWALEmpty(t *testing.T) {
	if err := ReplayWAL(&memWAL{}, queue.NewMemQueue(10), testPolicy(), &nopObs{}); err != nil {
		t.Fatalf("replay of empty wal: %v", err)
	}
}
