// Package pipeline drains WAL-backed readings into the archive sink.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/adapters/observability"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
)

// RunArchive dequeues batches, applies the transformer, writes to the sink,
// and commits WAL ids. On sink failure the WAL stays uncommitted so the
// batch is replayed after restart. Returns when ctx is cancelled.
func RunArchive(ctx context.Context, w ports.WAL, q ports.ReadingQueue, tr ports.Transformer, sink ports.ArchiveSink, pol ports.Policy, obs ports.Observability) {
	for {
		if ctx.Err() != nil {
			return
		}

		batch := q.DequeueBatch(pol.MaxBatchSize)
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pol.IdleSleep):
			}
			continue
		}

		var (
			out   = make([]domain.Reading, 0, len(batch))
			maxID ports.WALEntryID
		)

		for _, item := range batch {
			if item.ID > maxID {
				maxID = item.ID
			}
			r, err := tr.Transform(item.Reading)
			if err != nil {
				obs.RecordDropped(item.ID, item.Reading, err)
				continue
			}
			out = append(out, r)
		}

		if len(out) == 0 {
			if err := w.Commit(maxID); err != nil {
				obs.LogError("wal commit failed", err)
			}
			continue
		}

		start := time.Now()
		if err := sink.WriteBatch(out); err != nil {
			// Keep the WAL uncommitted; the batch replays on restart.
			obs.LogError("archive sink write failed", err,
				ports.Field{Key: "sink", Value: sink.Name()},
				ports.Field{Key: "batch", Value: len(out)})
			continue
		}
		obs.ObserveLatency(observability.MetricArchiveLatencySeconds, time.Since(start).Seconds())
		obs.IncCounter(observability.MetricArchivedTotal, float64(len(out)))

		if err := w.Commit(maxID); err != nil {
			obs.LogError("wal commit failed", err)
		}
	}
}

// ReplayWAL pushes every uncommitted WAL entry back into the queue, in id
// order, so nothing acknowledged to acquisition is lost across restarts.
func ReplayWAL(w ports.WAL, q ports.ReadingQueue, pol ports.Policy, obs ports.Observability) error {
	stats := w.Stats()
	if stats.LatestAppended == 0 {
		return nil
	}
	start := stats.OldestUncommitted
	if start == 0 || start > stats.LatestAppended {
		return nil
	}

	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	var replayed int
	err := w.Iterate(start, func(id ports.WALEntryID, r domain.Reading) error {
		for {
			if q.Enqueue(id, r) {
				replayed++
				return nil
			}
			if pol.OnQueueFull == "drop" {
				return fmt.Errorf("queue full during wal replay at entry %d", id)
			}
			time.Sleep(sleep)
		}
	})
	if err != nil {
		return err
	}
	if replayed > 0 {
		obs.LogInfo("wal replay complete",
			ports.Field{Key: "readings", Value: replayed},
			ports.Field{Key: "from_id", Value: start})
	}
	return nil
}
