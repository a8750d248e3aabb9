package simulated

import (
	"io"
	"strconv"
	"strings"
	"testing"
)

func TestOpenRequiresSensors(t *testing.T) {
	if _, err := (Transport{}).Open("COM3", 9600); err == nil {
		t.Fatalf("expected error for empty sensor list")
	}
}

func TestReadEmitsOneLinePerSensor(t *testing.T) {
	tr := Transport{
		Sensors: []Sensor{
			{ID: "TEMP", Min: 20, Max: 20},
			{ID: "PH", Min: 6, Max: 8},
		},
	}
	c, err := tr.Open("COM3", 9600)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer c.Close()

	buf := make([]byte, 256)
	n, err := c.Read(buf)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(buf[:n]), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	fields := strings.Fields(lines[0])
	if len(fields) != 2 || fields[0] != "TEMP" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if v, err := strconv.ParseFloat(fields[1], 64); err != nil || v != 20 {
		t.Fatalf("expected pinned value 20, got %q (err %v)", fields[1], err)
	}
}

func TestReadStopsAfterMaxReads(t *testing.T) {
	tr := Transport{
		Sensors:  []Sensor{{ID: "TEMP", Min: 0, Max: 1}},
		MaxReads: 2,
	}
	c, err := tr.Open("COM3", 9600)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	buf := make([]byte, 64)
	for i := 0; i < 2; i++ {
		if _, err := c.Read(buf); err != nil {
			t.Fatalf("read %d returned error: %v", i, err)
		}
	}
	if _, err := c.Read(buf); err != io.EOF {
		t.Fatalf("expected io.EOF after MaxReads, got %v", err)
	}
}

func TestReadAfterClose(t *testing.T) {
	tr := Transport{Sensors: []Sensor{{ID: "TEMP"}}}
	c, _ := tr.Open("COM3", 9600)
	if err := c.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := c.Read(make([]byte, 8)); err != io.EOF {
		t.Fatalf("expected io.EOF after close, got %v", err)
	}
}
