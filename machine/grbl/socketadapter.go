package grbl

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/repentsinner/ghsender-sub001/machine"
)

const reconnectDelay = 3 * time.Second

// SocketAdapter drives a controller over a grblHAL websocket port. It owns
// the reconnect loop and mirrors connectivity into the model's online
// flag.
type SocketAdapter struct {
	url   string
	model *machine.Model
	log   *logrus.Logger

	out       chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
}

var _ machine.Adapter = (*SocketAdapter)(nil)

// NewSocketAdapter starts the connection loop and a status-query ticker.
func NewSocketAdapter(url string, queryInterval time.Duration, model *machine.Model, log *logrus.Logger) *SocketAdapter {
	adapter := &SocketAdapter{
		url:     url,
		model:   model,
		log:     log,
		out:     make(chan []byte, 64),
		closeCh: make(chan struct{}),
	}
	go adapter.loop()
	go adapter.queryLoop(queryInterval)
	return adapter
}

// Send queues cmd without blocking; a full queue rejects it with
// machine.ErrBusy. A command dropped across a reconnect is not retried:
// the jog stream regenerates and everything else is operator-initiated.
func (a *SocketAdapter) Send(cmd machine.Command) error {
	data, ok := Encode(cmd)
	if !ok {
		return fmt.Errorf("grbl: cannot encode %T", cmd)
	}
	select {
	case <-a.closeCh:
		return io.ErrClosedPipe
	default:
	}
	select {
	case a.out <- data:
		return nil
	default:
		return machine.ErrBusy
	}
}

func (a *SocketAdapter) Close() error {
	a.closeOnce.Do(func() {
		close(a.closeCh)
		a.model.SetOnline(false)
	})
	return nil
}

func (a *SocketAdapter) queryLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-a.closeCh:
			return
		case <-t.C:
			a.Send(machine.StatusQuery{})
		}
	}
}

// readLoop applies inbound frames to the model; it is the model's single
// writer while this connection is up.
func (a *SocketAdapter) readLoop(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			a.log.WithError(err).Warn("read from controller")
			return
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !ApplyLine(a.model, line) {
				a.log.Debugf("discarding line: %q", line)
			}
		}
	}
}

func (a *SocketAdapter) loop() {
	for {
		select {
		case <-a.closeCh:
			return
		default:
		}

		a.log.Infof("connecting to %s", a.url)
		ws, _, err := websocket.DefaultDialer.Dial(a.url, nil)
		if err != nil {
			a.log.WithError(err).Error("connect")
			select {
			case <-a.closeCh:
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}
		a.log.Info("connected")
		a.model.SetOnline(true)

		done := make(chan struct{})
		go a.readLoop(ws, done)

	writing:
		for {
			select {
			case <-a.closeCh:
				ws.Close()
				return
			case <-done:
				break writing
			case data := <-a.out:
				if err := ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
					a.log.WithError(err).Error("send")
					ws.Close()
					<-done
					break writing
				}
			}
		}
		a.model.SetOnline(false)
	}
}
