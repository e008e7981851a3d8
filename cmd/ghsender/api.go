package main

import (
	"encoding/json"
	"errors"
	"io"
	stdlog "log"
	"net/http"
	"strconv"
	"strings"
	"time"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/repentsinner/ghsender-sub001/machine"
)

type api struct {
	http.Handler
	model   *machine.Model
	adapter machine.Adapter
	jog     *machine.JogController
	jogTick time.Duration
	jogSem  chan struct{}
	sse     *sse.Server
	log     *logrus.Logger
}

func newAPI(model *machine.Model, adapter machine.Adapter, jog *machine.JogController, jogTick time.Duration, log *logrus.Logger) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		model:   model,
		adapter: adapter,
		jog:     jog,
		jogTick: jogTick,
		jogSem:  make(chan struct{}, 1),
		log:     log,
		sse: sse.NewServer(&sse.Options{
			Logger: stdlog.New(io.Discard, "", 0),
		}),
	}

	r.HandleFunc("/api/state", a.state).Methods("GET")
	r.HandleFunc("/api/envelope", a.envelope).Methods("GET")
	r.HandleFunc("/api/conditions", a.conditions).Methods("GET")
	r.HandleFunc("/api/recover", a.recover).Methods("POST")
	r.HandleFunc("/api/zero", a.zero).Methods("POST")
	r.HandleFunc("/api/probe", a.probe).Methods("POST")
	r.HandleFunc("/api/jog/step", a.jogStep).Methods("POST")
	r.HandleFunc("/api/jog/stream", a.jogStream)
	r.PathPrefix("/events/").Handler(a.sse)

	go a.broadcast()

	return a
}

// broadcast forwards state snapshots to SSE subscribers. The UI is a
// read-only collaborator; frames dropped by the model's non-blocking
// channel are superseded by the next report anyway.
func (a *api) broadcast() {
	for snap := range a.model.Updates() {
		data, err := json.Marshal(snap)
		if err != nil {
			a.log.WithError(err).Error("marshal state")
			continue
		}
		a.sse.SendMessage("/events/state", sse.SimpleMessage(string(data)))
	}
}

func (a *api) state(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a.model.Snapshot())
}

func (a *api) envelope(w http.ResponseWriter, req *http.Request) {
	env, err := a.model.Envelope()
	if err != nil {
		var missing *machine.MissingTravelError
		if errors.As(err, &missing) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   err.Error(),
				"missing": missing.Axes,
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(env)
}

type conditionView struct {
	Code        int
	IsAlarm     bool
	Name        string
	Description string
	Severity    string
	Action      string
	DetectedAt  time.Time
}

func (a *api) conditions(w http.ResponseWriter, req *http.Request) {
	active := a.model.Catalog().Active()
	views := make([]conditionView, 0, len(active))
	for _, c := range active {
		views = append(views, conditionView{
			Code:        c.Code,
			IsAlarm:     c.IsAlarm,
			Name:        c.Name(),
			Description: c.Description(),
			Severity:    c.Severity().String(),
			Action:      c.RecommendedAction().String(),
			DetectedAt:  c.DetectedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

func (a *api) recover(w http.ResponseWriter, req *http.Request) {
	var action machine.RecoveryAction
	switch req.FormValue("action") {
	case "unlock":
		action = machine.RecoverUnlock
	case "home":
		action = machine.RecoverHome
	case "reset":
		action = machine.RecoverReset
	default:
		http.Error(w, "unknown recovery action", http.StatusBadRequest)
		return
	}
	cmd := action.Command()
	if cmd == nil {
		http.Error(w, "no command for action", http.StatusBadRequest)
		return
	}
	if err := a.adapter.Send(cmd); err != nil {
		a.log.WithError(err).Errorf("send %s", action)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}

func (a *api) zero(w http.ResponseWriter, req *http.Request) {
	axes := strings.ToLower(req.FormValue("axes"))
	cmd := machine.ZeroAxes{
		X: strings.Contains(axes, "x"),
		Y: strings.Contains(axes, "y"),
		Z: strings.Contains(axes, "z"),
	}
	if !cmd.X && !cmd.Y && !cmd.Z {
		http.Error(w, "no axes selected", http.StatusBadRequest)
		return
	}
	if err := a.adapter.Send(cmd); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}

func (a *api) probe(w http.ResponseWriter, req *http.Request) {
	distance, err := strconv.ParseFloat(req.FormValue("distance"), 64)
	if err != nil || distance <= 0 {
		http.Error(w, "invalid distance", http.StatusBadRequest)
		return
	}
	feedRate, err := strconv.ParseFloat(req.FormValue("feedRate"), 64)
	if err != nil || feedRate <= 0 {
		http.Error(w, "invalid feedRate", http.StatusBadRequest)
		return
	}
	if !a.model.Snapshot().IsReady() {
		http.Error(w, "machine not ready", http.StatusConflict)
		return
	}
	if err := a.adapter.Send(machine.Probe{Distance: distance, FeedRate: feedRate}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}

func (a *api) jogStep(w http.ResponseWriter, req *http.Request) {
	var axis machine.Axis
	switch strings.ToLower(req.FormValue("axis")) {
	case "x":
		axis = machine.AxisX
	case "y":
		axis = machine.AxisY
	case "z":
		axis = machine.AxisZ
	default:
		http.Error(w, "unknown axis", http.StatusBadRequest)
		return
	}
	distance, err := strconv.ParseFloat(req.FormValue("distance"), 64)
	if err != nil || distance == 0 {
		http.Error(w, "invalid distance", http.StatusBadRequest)
		return
	}
	feedRate, err := strconv.ParseFloat(req.FormValue("feedRate"), 64)
	if err != nil || feedRate <= 0 {
		http.Error(w, "invalid feedRate", http.StatusBadRequest)
		return
	}
	if !a.model.Snapshot().CanJog() {
		http.Error(w, "jogging not permitted", http.StatusConflict)
		return
	}
	if err := a.jog.Step(axis, distance, feedRate); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}
