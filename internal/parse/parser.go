// Package parse decodes the line protocol spoken by the sensors:
// whitespace-separated "<sensorId> <value>" per line.
package parse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
)

// Parser turns one raw line into a Reading. It only decodes syntax; sensor
// semantics belong to the validator and monitor. Tokens after the value are
// ignored, matching the wire format's scanf heritage.
type Parser struct{}

func NewParser() Parser { return Parser{} }

// Parse decodes line as a reading from connectionID. The timestamp is
// supplied by the caller so capture latency is not attributed to parse time.
func (Parser) Parse(connectionID, line string, ts time.Time) (domain.Reading, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Reading{}, &domain.ParseError{
			ConnectionID: connectionID,
			Raw:          line,
			Reason:       "empty line",
		}
	}
	if len(fields) < 2 {
		return domain.Reading{}, &domain.ParseError{
			ConnectionID: connectionID,
			Raw:          line,
			Reason:       "missing value token",
		}
	}

	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return domain.Reading{}, &domain.ParseError{
			ConnectionID: connectionID,
			Raw:          line,
			Reason:       "value is not a number",
		}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.Reading{}, &domain.ParseError{
			ConnectionID: connectionID,
			Raw:          line,
			Reason:       "value is not finite",
		}
	}

	return domain.Reading{
		ConnectionID: connectionID,
		SensorID:     fields[0],
		Value:        value,
		Timestamp:    ts,
	}, nil
}
