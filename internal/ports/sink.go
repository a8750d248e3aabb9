package ports

import "github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"

// ArchiveSink persists batches of readings for offline analysis.
type ArchiveSink interface {
	WriteBatch(readings []domain.Reading) error
	Name() string
}
