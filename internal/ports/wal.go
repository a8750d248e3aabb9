package ports

import "github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"

type WALEntryID uint64

// WAL is the durable buffer between acquisition and the archive sink.
// Entries survive restarts; Commit marks entries archived so the next
// startup replays only what the sink never acknowledged.
type WAL interface {
	Append(r domain.Reading) (WALEntryID, error)
	Iterate(from WALEntryID, fn func(id WALEntryID, r domain.Reading) error) error
	Commit(upto WALEntryID) error
	Stats() WALStats
	Close() error
}

type WALStats struct {
	OldestUncommitted WALEntryID
	LatestAppended    WALEntryID
	SizeBytes         int64
}
