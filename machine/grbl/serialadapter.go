package grbl

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"

	"github.com/repentsinner/ghsender-sub001/machine"
)

// SerialAdapter drives a controller over a local serial port.
type SerialAdapter struct {
	*Conn
	port *serial.Port
}

var _ machine.Adapter = (*SerialAdapter)(nil)

// NewSerialAdapter opens the port and starts the line pump plus a
// status-query ticker.
func NewSerialAdapter(device string, baud int, queryInterval time.Duration, model *machine.Model, log *logrus.Logger) (*SerialAdapter, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, err
	}
	adapter := &SerialAdapter{
		Conn: NewConn(port, model, log),
		port: port,
	}
	model.SetOnline(true)
	go adapter.queryLoop(queryInterval)
	return adapter, nil
}

func (a *SerialAdapter) queryLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-a.Done():
			return
		case <-t.C:
			// telemetry keepalive; ErrBusy just means a query is already
			// queued
			a.Send(machine.StatusQuery{})
		}
	}
}

func (a *SerialAdapter) Close() error {
	a.Conn.Close()
	return a.port.Close()
}
