// Package validate gates parsed readings with a coarse sanity filter. It
// catches garbage on the wire; domain thresholds are the monitor's job.
package validate

import (
	"unicode"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
)

// Envelope is the realistic value range any sensor on any connection can
// produce. Values outside it are treated as wire noise.
type Envelope struct {
	Min float64
	Max float64
}

// DefaultEnvelope matches the physical range of the supported sensor fleet.
var DefaultEnvelope = Envelope{Min: 0, Max: 1000}

type Validator struct {
	env Envelope
}

func NewValidator(env Envelope) *Validator {
	return &Validator{env: env}
}

// Validate returns nil when the reading is acceptable. Rejections carry the
// reading and a reason for diagnostics.
func (v *Validator) Validate(r domain.Reading) error {
	if r.SensorID == "" {
		return &domain.ValidationError{Reading: r, Reason: "sensor id is empty"}
	}
	if !startsWithLetter(r.SensorID) {
		return &domain.ValidationError{Reading: r, Reason: "sensor id is not an identifier"}
	}
	if r.Value < v.env.Min || r.Value > v.env.Max {
		return &domain.ValidationError{Reading: r, Reason: "value out of realistic range"}
	}
	return nil
}

func startsWithLetter(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r)
	}
	return false
}
