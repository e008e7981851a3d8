package machine

import (
	"math"
	"time"
)

// DistanceContinuous is the jog distance selecting continuous (free) mode,
// as opposed to a fixed discrete step.
const DistanceContinuous float64 = 0

// JogParams are the pacing constants for continuous jogging. The defaults
// are empirical values tuned against grblHAL's planner; keep them as
// fields rather than inlined literals so they can be re-tuned on hardware.
type JogParams struct {
	// Deadzone is the analog magnitude below which input reads as centered.
	Deadzone float64

	// MagnitudeStep is the magnitude change since the last emitted command
	// that forces an emission ahead of the pacing window.
	MagnitudeStep float64

	// DirectionStep is the direction change, in radians, that forces an
	// emission ahead of the pacing window.
	DirectionStep float64

	// ExecutionWindow is how much motion each command should carry. Short
	// enough that motion stops promptly when input is released, long
	// enough that the planner never starves between commands.
	ExecutionWindow time.Duration

	// MinInterval and MaxInterval bound the spacing between commands.
	MinInterval time.Duration
	MaxInterval time.Duration

	// LowBlocks and HighBlocks are the used-planner-block counts mapped
	// linearly to MinInterval and MaxInterval.
	LowBlocks  float64
	HighBlocks float64

	// MaxUsedBlocks caps the used-block estimate from telemetry.
	MaxUsedBlocks float64

	// MinTravel is the smallest |dx|+|dy| worth sending; anything below is
	// sub-resolution.
	MinTravel float64
}

func DefaultJogParams() JogParams {
	return JogParams{
		Deadzone:        0.05,
		MagnitudeStep:   0.1,
		DirectionStep:   30 * math.Pi / 180,
		ExecutionWindow: 25 * time.Millisecond,
		MinInterval:     8 * time.Millisecond,
		MaxInterval:     33 * time.Millisecond,
		LowBlocks:       1,
		HighBlocks:      8,
		MaxUsedBlocks:   15,
		MinTravel:       0.01,
	}
}

// JogInput is one polled input sample.
type JogInput struct {
	// X and Y are the analog vector components, each in [-1, 1].
	X, Y float64

	// CanJog gates jogging on controller presence, online state, firmware
	// detection and machine status. It is evaluated by the caller on every
	// sample; see Snapshot.CanJog.
	CanJog bool

	// StepDistance is the selected jog distance; DistanceContinuous
	// selects free jogging, anything else is a discrete step size.
	StepDistance float64

	// FeedRate is the selected jog feed rate in mm/min.
	FeedRate float64
}

// jogSession is the pacing state private to the controller. It is reset
// whenever jogging stops and is never shared or persisted.
type jogSession struct {
	lastX, lastY  float64
	lastMagnitude float64
	lastCommandAt time.Time
	sent          bool
	jogging       bool
}

// JogController converts polled operator input into a bounded stream of
// jog commands, paced by the controller's planner occupancy so the planner
// is neither overrun nor starved.
type JogController struct {
	params JogParams
	clock  Clock
	model  *Model
	send   func(Command) error

	session jogSession
}

// NewJogController builds a controller around the model's buffer telemetry
// and a non-blocking outbound hook. A nil clock selects the system clock.
func NewJogController(model *Model, send func(Command) error, params JogParams, clock Clock) *JogController {
	if clock == nil {
		clock = SystemClock{}
	}
	return &JogController{params: params, clock: clock, model: model, send: send}
}

// Jogging reports whether a continuous command stream is active.
func (j *JogController) Jogging() bool { return j.session.jogging }

// Sample processes one input sample. It runs on every poll tick and stays
// non-blocking: arithmetic plus at most one Send.
func (j *JogController) Sample(in JogInput) {
	continuous := in.StepDistance == DistanceContinuous
	mag := math.Hypot(in.X, in.Y)
	if mag > 1 {
		mag = 1
	}

	if j.session.jogging {
		// A centered stick stops immediately. The pacing window never
		// applies on this path: stopping is a safety property, not a
		// throughput concern.
		if (in.X == 0 && in.Y == 0) || mag < j.params.Deadzone || !in.CanJog || !continuous {
			j.stop()
			return
		}
	} else if !in.CanJog || !continuous || mag < j.params.Deadzone {
		return
	}

	now := j.clock.Now()
	used := j.model.Snapshot().Buffer.Used(j.params.MaxUsedBlocks)
	interval := j.intervalFor(used)

	significant := !j.session.sent ||
		angleBetween(in.X, in.Y, j.session.lastX, j.session.lastY) > j.params.DirectionStep ||
		math.Abs(mag-j.session.lastMagnitude) > j.params.MagnitudeStep
	if !significant && now.Sub(j.session.lastCommandAt) < interval {
		return
	}

	feed := math.Round(mag * in.FeedRate)
	base := feed / 60 * j.params.ExecutionWindow.Seconds()
	dx := in.X * base
	dy := in.Y * base
	if math.Abs(dx)+math.Abs(dy) <= j.params.MinTravel {
		return
	}

	if j.send(MultiAxisJog{DX: dx, DY: dy, FeedRate: feed}) != nil {
		return
	}
	j.session.lastX, j.session.lastY = in.X, in.Y
	j.session.lastMagnitude = mag
	j.session.lastCommandAt = now
	j.session.sent = true
	j.session.jogging = true
}

// intervalFor maps planner occupancy to command spacing: a fuller planner
// widens spacing to avoid overrun, an emptier one tightens it to keep the
// planner fed.
func (j *JogController) intervalFor(used float64) time.Duration {
	p := j.params
	if used <= p.LowBlocks {
		return p.MinInterval
	}
	if used >= p.HighBlocks {
		return p.MaxInterval
	}
	frac := (used - p.LowBlocks) / (p.HighBlocks - p.LowBlocks)
	return p.MinInterval + time.Duration(frac*float64(p.MaxInterval-p.MinInterval))
}

func (j *JogController) stop() {
	j.send(JogStop{})
	j.session = jogSession{}
}

// Step issues one discrete jog. Discrete moves are bounded in extent and
// bypass pacing entirely.
func (j *JogController) Step(axis Axis, distance, feedRate float64) error {
	return j.send(DiscreteJog{Axis: axis, Distance: distance, FeedRate: feedRate})
}

// angleBetween returns the angle between two direction vectors, normalized
// to [0, π].
func angleBetween(x1, y1, x2, y2 float64) float64 {
	d := math.Atan2(y1, x1) - math.Atan2(y2, x2)
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	return math.Abs(d)
}
