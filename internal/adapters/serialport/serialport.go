// Package serialport implements the transport port on real serial devices.
package serialport

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/domain"
	"github.com/ElenaDas/Real-Time-Quality-Monitoring-System/internal/ports"
)

// Transport opens serial ports with the fleet's fixed 8N1 framing.
type Transport struct{}

func New() Transport { return Transport{} }

func (Transport) Open(name string, baudRate int) (ports.Conn, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrTransport, name, err)
	}
	return port, nil
}

var _ ports.Transport = Transport{}
