package grbl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/repentsinner/ghsender-sub001/machine"
)

// ApplyLine decodes one inbound protocol line and applies it to the model.
// It reports whether the line was recognized. Unrecognized or malformed
// lines are simply not applied; the stream is line-at-a-time and
// self-healing, so the next line is independent.
func ApplyLine(m *machine.Model, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if line == "ok" {
		// command ack, no state carried
		return true
	}
	switch {
	case line[0] == '<':
		rep, ok := ParseStatusReport(line)
		if !ok {
			return false
		}
		m.ApplyStatus(rep)
	case strings.HasPrefix(line, "ALARM:"):
		code, ok := ParseAlarmEvent(line)
		if !ok {
			return false
		}
		m.RaiseAlarm(code)
	case strings.HasPrefix(line, "error:"):
		code, ok := ParseErrorEvent(line)
		if !ok {
			return false
		}
		m.RaiseError(code)
	case strings.HasPrefix(line, alarmPrefix):
		rec, ok := ParseAlarm(line)
		if !ok {
			return false
		}
		m.ApplyAlarm(rec)
	case strings.HasPrefix(line, errorPrefix):
		rec, ok := ParseError(line)
		if !ok {
			return false
		}
		m.ApplyError(rec)
	case strings.HasPrefix(line, settingGroupPrefix):
		rec, ok := ParseSettingGroup(line)
		if !ok {
			return false
		}
		m.ApplySettingGroup(rec)
	case strings.HasPrefix(line, settingPrefix):
		rec, ok := ParseSetting(line)
		if !ok {
			return false
		}
		m.ApplySetting(rec)
	case strings.HasPrefix(line, gcodePrefix):
		codes, ok := ParseGCodes(line)
		if !ok {
			return false
		}
		m.ApplyGCodes(codes)
	case line[0] == '$':
		id, value, ok := ParseSettingValue(line)
		if !ok {
			return false
		}
		m.ApplySettingValue(id, value)
	default:
		firmware, version, ok := ParseWelcome(line)
		if !ok {
			return false
		}
		m.ApplyReset(firmware, version)
	}
	return true
}

// Conn pumps protocol lines from a controller stream into the Model and
// writes encoded commands back. It is transport-agnostic; the serial
// adapter owns the underlying stream and its lifecycle.
type Conn struct {
	model *machine.Model
	log   *logrus.Logger
	rw    io.ReadWriter

	out       chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewConn starts the read and write pumps over rw.
func NewConn(rw io.ReadWriter, model *machine.Model, log *logrus.Logger) *Conn {
	c := &Conn{
		model:   model,
		log:     log,
		rw:      rw,
		out:     make(chan []byte, 64),
		closeCh: make(chan struct{}),
	}
	go c.readLoop()
	go c.writeLoop()
	return c
}

// Done is closed when the connection shuts down.
func (c *Conn) Done() <-chan struct{} { return c.closeCh }

// Close stops both pumps. The underlying stream is closed by its owner.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.model.SetOnline(false)
	})
	return nil
}

// Send queues cmd without blocking. A full queue rejects the command with
// machine.ErrBusy.
func (c *Conn) Send(cmd machine.Command) error {
	data, ok := Encode(cmd)
	if !ok {
		return fmt.Errorf("grbl: cannot encode %T", cmd)
	}
	select {
	case <-c.closeCh:
		return io.ErrClosedPipe
	default:
	}
	select {
	case c.out <- data:
		return nil
	default:
		return machine.ErrBusy
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.closeCh:
			return
		case data := <-c.out:
			if _, err := c.rw.Write(data); err != nil {
				c.log.WithError(err).Error("write to controller")
				c.Close()
				return
			}
		}
	}
}

// readLoop is the model's single writer: every line applied to the model
// passes through here.
func (c *Conn) readLoop() {
	scan := bufio.NewScanner(c.rw)
	for scan.Scan() {
		line := scan.Text()
		if !ApplyLine(c.model, line) && strings.TrimSpace(line) != "" {
			c.log.Debugf("discarding line: %q", line)
		}
	}
	if err := scan.Err(); err != nil {
		c.log.WithError(err).Error("read from controller")
	}
	c.Close()
}
