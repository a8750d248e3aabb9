// Package simulated provides a transport that fabricates sensor lines,
// for examples and tests that have no serial hardware attached.
package simulated

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
)

// Transport fabricates one connection per Open call. Each connection emits
// lines of the form "<sensorId> <value>" for every configured sensor per
// read, with values drawn uniformly from [Min, Max].
type Transport struct {
	Sensors []Sensor
	// MaxReads bounds how many reads a connection serves before reporting
	// EOF; zero means unbounded.
	MaxReads int
}

// Sensor describes one simulated data source on a connection.
type Sensor struct {
	ID  string
	Min float64
	Max float64
}

func (t Transport) Open(name string, _ int) (ports.Conn, error) {
	if len(t.Sensors) == 0 {
		return nil, fmt.Errorf("simulated transport: no sensors configured for %s", name)
	}
	return &conn{sensors: t.Sensors, maxReads: t.MaxReads}, nil
}

type conn struct {
	mu       sync.Mutex
	sensors  []Sensor
	maxReads int
	reads    int
	closed   bool
}

func (c *conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, io.EOF
	}
	if c.maxReads > 0 && c.reads >= c.maxReads {
		return 0, io.EOF
	}
	c.reads++

	var b strings.Builder
	for _, s := range c.sensors {
		value := s.Min + rand.Float64()*(s.Max-s.Min)
		fmt.Fprintf(&b, "%s %.2f\n", s.ID, value)
	}
	return copy(p, b.String()), nil
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

var _ ports.Transport = Transport{}
