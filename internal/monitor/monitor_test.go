package monitor

import (
	"math"
	"sync"
	"testing"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
)

func reading(conn, sensor string, value float64) domain.Reading {
	return domain.Reading{ConnectionID: conn, SensorID: sensor, Value: value}
}

func TestUpdateAggregates(t *testing.T) {
	m := New(Config{})

	values := []float64{10, 20, 15, 5, 25}
	for _, v := range values {
		m.Update(reading("COM3", "TEMP", v))
	}

	s, ok := m.Snapshot(domain.Key{ConnectionID: "COM3", SensorID: "TEMP"})
	if !ok {
		t.Fatalf("expected bucket for COM3/TEMP")
	}
	if s.Count != int64(len(values)) {
		t.Fatalf("count = %d, want %d", s.Count, len(values))
	}
	if s.Sum != 75 {
		t.Fatalf("sum = %.2f, want 75", s.Sum)
	}
	if s.ObservedMin != 5 || s.ObservedMax != 25 {
		t.Fatalf("min/max = %.2f/%.2f, want 5/25", s.ObservedMin, s.ObservedMax)
	}
	avg, ok := s.Average()
	if !ok || avg != 15 {
		t.Fatalf("average = %.2f (%v), want 15", avg, ok)
	}
}

func TestEmptyBucketAverageGuard(t *testing.T) {
	var s Stats
	if _, ok := s.Average(); ok {
		t.Fatalf("average of empty stats should report not-ok")
	}
}

func TestNewBucketStartsAtInfinities(t *testing.T) {
	m := New(Config{})
	m.Update(reading("COM3", "TEMP", 12))

	s, _ := m.Snapshot(domain.Key{ConnectionID: "COM3", SensorID: "TEMP"})
	if s.ObservedMin != 12 || s.ObservedMax != 12 {
		t.Fatalf("single reading should set both extremes, got %.2f/%.2f", s.ObservedMin, s.ObservedMax)
	}
}

func TestAlertOnlyStrictlyOutsideLimits(t *testing.T) {
	m := New(Config{Default: Limits{Lower: 5, Upper: 25}})

	cases := []struct {
		value float64
		alert bool
	}{
		{4.99, true},
		{5, false},
		{15, false},
		{25, false},
		{25.01, true},
		{30, true},
	}

	for _, tc := range cases {
		a := m.Update(reading("COM3", "TEMP", tc.value))
		if got := a != nil; got != tc.alert {
			t.Fatalf("value %.2f: alert = %v, want %v", tc.value, got, tc.alert)
		}
		if a != nil && (a.LowerLimit != 5 || a.UpperLimit != 25) {
			t.Fatalf("alert should carry configured limits, got %+v", a)
		}
	}
}

func TestPerSensorLimitsOverrideDefault(t *testing.T) {
	m := New(Config{
		Default: Limits{Lower: 5, Upper: 25},
		Sensors: map[string]Limits{"PH": {Lower: 6.5, Upper: 8.5}},
	})

	if a := m.Update(reading("COM3", "PH", 7.0)); a != nil {
		t.Fatalf("7.0 is inside PH limits, got alert %+v", a)
	}
	if a := m.Update(reading("COM3", "PH", 9.0)); a == nil {
		t.Fatalf("9.0 is above PH upper limit, expected alert")
	}
	// Other sensors still use the default pair.
	if a := m.Update(reading("COM3", "TEMP", 9.0)); a != nil {
		t.Fatalf("9.0 is inside default limits, got alert %+v", a)
	}
}

func TestBucketsKeyedByConnectionAndSensor(t *testing.T) {
	m := New(Config{})

	m.Update(reading("COM3", "TEMP", 10))
	m.Update(reading("COM4", "TEMP", 20))
	m.Update(reading("COM3", "PH", 7)) // alert, still counted

	s3, _ := m.Snapshot(domain.Key{ConnectionID: "COM3", SensorID: "TEMP"})
	s4, _ := m.Snapshot(domain.Key{ConnectionID: "COM4", SensorID: "TEMP"})
	if s3.Count != 1 || s4.Count != 1 {
		t.Fatalf("buckets must not share counts: %d/%d", s3.Count, s4.Count)
	}
	if len(m.Keys()) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(m.Keys()))
	}
}

func TestConcurrentUpdatesDoNotLoseReadings(t *testing.T) {
	m := New(Config{})

	const perConn = 100
	var wg sync.WaitGroup
	for _, conn := range []string{"COM3", "COM4"} {
		wg.Add(1)
		go func(conn string) {
			defer wg.Done()
			for i := 0; i < perConn; i++ {
				m.Update(reading(conn, "TEMP", float64(i)))
			}
		}(conn)
	}
	wg.Wait()

	for _, conn := range []string{"COM3", "COM4"} {
		s, ok := m.Snapshot(domain.Key{ConnectionID: conn, SensorID: "TEMP"})
		if !ok || s.Count != perConn {
			t.Fatalf("%s: count = %d, want %d", conn, s.Count, perConn)
		}
		wantSum := float64(perConn*(perConn-1)) / 2
		if math.Abs(s.Sum-wantSum) > 1e-9 {
			t.Fatalf("%s: sum = %.2f, want %.2f", conn, s.Sum, wantSum)
		}
		if s.ObservedMin != 0 || s.ObservedMax != perConn-1 {
			t.Fatalf("%s: min/max = %.2f/%.2f", conn, s.ObservedMin, s.ObservedMax)
		}
	}
}
