package validate

import (
	"errors"
	"testing"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
)

func TestValidatorAcceptsInRangeReadings(t *testing.T) {
	v := NewValidator(DefaultEnvelope)

	for _, value := range []float64{0, 0.01, 30, 500, 1000} {
		r := domain.Reading{ConnectionID: "COM3", SensorID: "TEMP", Value: value}
		if err := v.Validate(r); err != nil {
			t.Fatalf("expected value %.2f to be accepted: %v", value, err)
		}
	}
}

func TestValidatorRejectsOutOfEnvelope(t *testing.T) {
	v := NewValidator(DefaultEnvelope)

	for _, value := range []float64{-0.01, -5, 1000.01, 99999} {
		r := domain.Reading{ConnectionID: "COM3", SensorID: "TEMP", Value: value}
		err := v.Validate(r)
		if err == nil {
			t.Fatalf("expected value %.2f to be rejected", value)
		}
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	}
}

func TestValidatorRejectsBadSensorIDs(t *testing.T) {
	v := NewValidator(DefaultEnvelope)

	for _, id := range []string{"", "-5", "42", "+x"} {
		r := domain.Reading{ConnectionID: "COM3", SensorID: id, Value: 10}
		if err := v.Validate(r); err == nil {
			t.Fatalf("expected sensor id %q to be rejected", id)
		}
	}
}

func TestValidatorCustomEnvelope(t *testing.T) {
	v := NewValidator(Envelope{Min: -40, Max: 125})

	if err := v.Validate(domain.Reading{SensorID: "TEMP", Value: -20}); err != nil {
		t.Fatalf("expected -20 accepted by custom envelope: %v", err)
	}
	if err := v.Validate(domain.Reading{SensorID: "TEMP", Value: 200}); err == nil {
		t.Fatalf("expected 200 rejected by custom envelope")
	}
}
