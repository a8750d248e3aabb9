// Package archive persists validated readings to TimescaleDB/Postgres for
// offline analysis and plotting.
package archive

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
)

type TimescaleSink struct {
	db        *sql.DB
	tableName string
}

func NewTimescaleSink(db *sql.DB, table string) *TimescaleSink {
	return &TimescaleSink{db: db, tableName: table}
}

func (t *TimescaleSink) Name() string { return "timescaledb" }

// WriteBatch inserts the batch in one statement. The unique key makes
// WAL-replayed duplicates harmless.
func (t *TimescaleSink) WriteBatch(readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.tableName)
	b.WriteString(" (connection_id, sensor_id, value, ts) VALUES ")

	args := make([]any, 0, len(readings)*4)
	for i, r := range readings {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4))
		args = append(args, r.ConnectionID, r.SensorID, r.Value, r.Timestamp)
	}

	b.WriteString(" ON CONFLICT (connection_id, sensor_id, ts) DO NOTHING")

	_, err := t.db.Exec(b.String(), args...)
	return err
}

var _ ports.ArchiveSink = (*TimescaleSink)(nil)
