package machine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cmdRecorder struct{ cmds []Command }

func (r *cmdRecorder) send(cmd Command) error {
	r.cmds = append(r.cmds, cmd)
	return nil
}

// newJogFixture builds a controller over a model whose planner telemetry
// shows the given number of used blocks (out of an observed max of 15).
func newJogFixture(used int) (*JogController, *fakeClock, *cmdRecorder) {
	clock := newFakeClock()
	m := NewModel(clock)
	m.ApplyStatus(StatusReport{Status: StatusIdle, PlannerAvailable: iptr(15)})
	if used > 0 {
		m.ApplyStatus(StatusReport{Status: StatusJogging, PlannerAvailable: iptr(15 - used)})
	}
	rec := &cmdRecorder{}
	j := NewJogController(m, rec.send, DefaultJogParams(), clock)
	return j, clock, rec
}

func contIn(x, y float64) JogInput {
	return JogInput{X: x, Y: y, CanJog: true, StepDistance: DistanceContinuous, FeedRate: 1000}
}

func TestJog_FirstSampleEmits(t *testing.T) {
	j, _, rec := newJogFixture(0)

	j.Sample(contIn(1, 0))
	require.Len(t, rec.cmds, 1)
	cmd, ok := rec.cmds[0].(MultiAxisJog)
	require.True(t, ok)

	// full deflection at 1000 mm/min over a 25 ms window
	assert.Equal(t, 1000.0, cmd.FeedRate)
	assert.InDelta(t, 1000.0/60*0.025, cmd.DX, 1e-9)
	assert.Equal(t, 0.0, cmd.DY)
	assert.True(t, j.Jogging())
}

func TestJog_ScaledFeedRate(t *testing.T) {
	j, _, rec := newJogFixture(0)

	j.Sample(contIn(0.5, 0))
	require.Len(t, rec.cmds, 1)
	cmd := rec.cmds[0].(MultiAxisJog)
	assert.Equal(t, 500.0, cmd.FeedRate)
	assert.InDelta(t, 0.5*500.0/60*0.025, cmd.DX, 1e-9)
}

func TestJog_PacingWindow(t *testing.T) {
	j, clock, rec := newJogFixture(0)

	j.Sample(contIn(1, 0))
	require.Len(t, rec.cmds, 1)

	// unchanged input inside the window is suppressed
	clock.advance(7 * time.Millisecond)
	j.Sample(contIn(1, 0))
	assert.Len(t, rec.cmds, 1)

	// at the window boundary it goes out
	clock.advance(time.Millisecond)
	j.Sample(contIn(1, 0))
	assert.Len(t, rec.cmds, 2)
}

func TestJog_BufferWidensSpacing(t *testing.T) {
	j, clock, rec := newJogFixture(8)

	j.Sample(contIn(1, 0))
	require.Len(t, rec.cmds, 1)

	// 8 used blocks puts the interval at the 33 ms ceiling
	clock.advance(20 * time.Millisecond)
	j.Sample(contIn(1, 0))
	assert.Len(t, rec.cmds, 1)

	clock.advance(13 * time.Millisecond)
	j.Sample(contIn(1, 0))
	assert.Len(t, rec.cmds, 2)
}

func TestJog_IntervalMapping(t *testing.T) {
	j, _, _ := newJogFixture(0)

	assert.Equal(t, 8*time.Millisecond, j.intervalFor(0), "lower clamp")
	assert.Equal(t, 8*time.Millisecond, j.intervalFor(1))
	assert.Equal(t, 20500*time.Microsecond, j.intervalFor(4.5), "midpoint")
	assert.Equal(t, 33*time.Millisecond, j.intervalFor(8))
	assert.Equal(t, 33*time.Millisecond, j.intervalFor(15), "upper clamp")
}

func rotated(deg float64) JogInput {
	rad := deg * math.Pi / 180
	return contIn(math.Cos(rad), math.Sin(rad))
}

func TestJog_DirectionChangeForcesEmission(t *testing.T) {
	j, clock, rec := newJogFixture(0)

	j.Sample(rotated(0))
	require.Len(t, rec.cmds, 1)

	clock.advance(time.Millisecond)
	j.Sample(rotated(35))
	assert.Len(t, rec.cmds, 2, "35° change beats the timing gate")
}

func TestJog_SmallDirectionChangeWaits(t *testing.T) {
	j, clock, rec := newJogFixture(0)

	j.Sample(rotated(0))
	require.Len(t, rec.cmds, 1)

	clock.advance(time.Millisecond)
	j.Sample(rotated(10))
	assert.Len(t, rec.cmds, 1, "10° change waits for the window")
}

func TestJog_MagnitudeChangeForcesEmission(t *testing.T) {
	j, clock, rec := newJogFixture(0)

	j.Sample(contIn(0.5, 0))
	require.Len(t, rec.cmds, 1)

	clock.advance(time.Millisecond)
	j.Sample(contIn(0.56, 0))
	assert.Len(t, rec.cmds, 1, "0.06 delta waits for the window")

	j.Sample(contIn(0.65, 0))
	assert.Len(t, rec.cmds, 2, "0.15 delta beats the timing gate")
}

func TestJog_ZeroAlwaysStops(t *testing.T) {
	j, clock, rec := newJogFixture(0)

	j.Sample(contIn(1, 0))
	require.Len(t, rec.cmds, 1)

	// exactly centered, well inside the pacing window
	clock.advance(time.Millisecond)
	j.Sample(contIn(0, 0))
	require.Len(t, rec.cmds, 2)
	assert.Equal(t, JogStop{}, rec.cmds[1])
	assert.False(t, j.Jogging())

	// idle now; another centered sample emits nothing
	j.Sample(contIn(0, 0))
	assert.Len(t, rec.cmds, 2)
}

func TestJog_DeadzoneStops(t *testing.T) {
	j, _, rec := newJogFixture(0)

	j.Sample(contIn(1, 0))
	j.Sample(contIn(0.03, 0))
	require.Len(t, rec.cmds, 2)
	assert.Equal(t, JogStop{}, rec.cmds[1])
}

func TestJog_DeadzoneIgnoredWhileIdle(t *testing.T) {
	j, _, rec := newJogFixture(0)
	j.Sample(contIn(0.03, 0))
	assert.Empty(t, rec.cmds)
	assert.False(t, j.Jogging())
}

func TestJog_GateLossStops(t *testing.T) {
	j, _, rec := newJogFixture(0)

	j.Sample(contIn(1, 0))
	in := contIn(1, 0)
	in.CanJog = false
	j.Sample(in)
	require.Len(t, rec.cmds, 2)
	assert.Equal(t, JogStop{}, rec.cmds[1])
}

func TestJog_ModeSwitchStops(t *testing.T) {
	j, _, rec := newJogFixture(0)

	j.Sample(contIn(1, 0))
	in := contIn(1, 0)
	in.StepDistance = 1.0
	j.Sample(in)
	require.Len(t, rec.cmds, 2)
	assert.Equal(t, JogStop{}, rec.cmds[1])
}

func TestJog_DiscreteModeNeverStreams(t *testing.T) {
	j, _, rec := newJogFixture(0)

	in := contIn(1, 0)
	in.StepDistance = 0.1
	j.Sample(in)
	assert.Empty(t, rec.cmds)
	assert.False(t, j.Jogging())
}

func TestJog_SubResolutionSuppressed(t *testing.T) {
	j, _, rec := newJogFixture(0)

	in := contIn(1, 0)
	in.FeedRate = 1 // 0.0004 mm over the window, not worth sending
	j.Sample(in)
	assert.Empty(t, rec.cmds)
	assert.False(t, j.Jogging())
}

func TestJog_SendFailureLeavesSessionIdle(t *testing.T) {
	clock := newFakeClock()
	m := NewModel(clock)
	m.ApplyStatus(StatusReport{Status: StatusIdle, PlannerAvailable: iptr(15)})
	j := NewJogController(m, func(Command) error { return ErrBusy }, DefaultJogParams(), clock)

	j.Sample(contIn(1, 0))
	assert.False(t, j.Jogging())
}

func TestJog_Step(t *testing.T) {
	j, _, rec := newJogFixture(0)

	require.NoError(t, j.Step(AxisZ, -0.1, 500))
	require.Len(t, rec.cmds, 1)
	assert.Equal(t, DiscreteJog{Axis: AxisZ, Distance: -0.1, FeedRate: 500}, rec.cmds[0])
}

func TestAngleBetween(t *testing.T) {
	assert.InDelta(t, 0, angleBetween(1, 0, 1, 0), 1e-9)
	assert.InDelta(t, math.Pi/2, angleBetween(1, 0, 0, 1), 1e-9)
	assert.InDelta(t, math.Pi, angleBetween(1, 0, -1, 0), 1e-9)
	// wraps across the ±π seam
	assert.InDelta(t, 20*math.Pi/180, angleBetween(math.Cos(170*math.Pi/180), math.Sin(170*math.Pi/180),
		math.Cos(-170*math.Pi/180), math.Sin(-170*math.Pi/180)), 1e-9)
}
