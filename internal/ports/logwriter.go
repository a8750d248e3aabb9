package ports

import "github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"

// ReadingLog durably appends validated readings to the shared log. Append
// must be safe under concurrent callers: each record appears as one whole,
// uninterleaved line, and the record is durable before Append returns.
type ReadingLog interface {
	Append(r domain.Reading) error
	Close() error
}
