package ports

import "github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"

// Transformer mutates readings (calibration, unit conversion) on the way
// to the archive sink. It never touches the live monitoring path.
type Transformer interface {
	Transform(r domain.Reading) (domain.Reading, error)
	Version() uint16
}
