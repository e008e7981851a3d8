package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/repentsinner/ghsender-sub001/machine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// jogSample is one analog input frame from the UI.
type jogSample struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	StepDistance float64 `json:"stepDistance"`
	FeedRate     float64 `json:"feedRate"`
}

// jogStream upgrades to a websocket and paces the jog controller from the
// newest received sample at a fixed tick. The read pump only stores the
// latest frame, so the tick loop never blocks on the socket. A single
// stream may be active at a time; the JogController's session state is
// owned by this loop.
func (a *api) jogStream(w http.ResponseWriter, req *http.Request) {
	select {
	case a.jogSem <- struct{}{}:
		defer func() { <-a.jogSem }()
	default:
		http.Error(w, "jog stream already active", http.StatusConflict)
		return
	}

	ws, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		a.log.WithError(err).Warn("upgrade jog stream")
		return
	}
	defer ws.Close()

	var mx sync.Mutex
	var latest jogSample
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var s jogSample
			if err := ws.ReadJSON(&s); err != nil {
				return
			}
			mx.Lock()
			latest = s
			mx.Unlock()
		}
	}()

	t := time.NewTicker(a.jogTick)
	defer t.Stop()
	for {
		select {
		case <-done:
			// the input source went away; make sure motion does too
			a.jog.Sample(machine.JogInput{CanJog: false})
			return
		case <-t.C:
			mx.Lock()
			s := latest
			mx.Unlock()
			a.jog.Sample(machine.JogInput{
				X:            s.X,
				Y:            s.Y,
				CanJog:       a.model.Snapshot().CanJog(),
				StepDistance: s.StepDistance,
				FeedRate:     s.FeedRate,
			})
		}
	}
}
