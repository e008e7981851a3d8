package grbl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repentsinner/ghsender-sub001/machine"
)

// TestApplyLine_Session replays a plausible startup conversation and
// checks the model ends up consistent.
func TestApplyLine_Session(t *testing.T) {
	m := machine.NewModel(nil)

	lines := []string{
		"GrblHAL 1.1f ['$' or '$HELP' for help]",
		"<Idle|MPos:0.000,0.000,0.000|Bf:15,128|FS:0,0>",
		"$130=200.000",
		"$131=150.000",
		"$132=50.000",
		"[SETTINGGROUP:27|25|X-axis]",
		"[SETTING:130|27|X max travel|mm|float|###0.000|0|9999|0]",
		"[GC:G0 G54 G17 G21 G90 G94 M5 M9]",
		"ok",
	}
	for _, line := range lines {
		assert.True(t, ApplyLine(m, line), "line=%q", line)
	}

	snap := m.Snapshot()
	assert.Equal(t, "GrblHAL", snap.Firmware)
	assert.Equal(t, "1.1f", snap.Version)
	assert.Equal(t, machine.StatusIdle, snap.Status)
	assert.Equal(t, 15, snap.Buffer.PlannerAvailable)
	assert.Contains(t, snap.ActiveCodes, "G21")

	env, err := m.Envelope()
	require.NoError(t, err)
	assert.Equal(t, -200.0, env.Min.X)

	meta, ok := m.SettingMeta(130)
	require.True(t, ok)
	assert.Equal(t, machine.DataTypeFloat, meta.DataType)
}

// TestApplyLine_AlarmBeforeMetadata covers the ordering hazard: the alarm
// code arrives in the push message well before the enumeration answers.
func TestApplyLine_AlarmBeforeMetadata(t *testing.T) {
	m := machine.NewModel(nil)

	require.True(t, ApplyLine(m, "ALARM:11"))
	active := m.Catalog().Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Alarm 11", active[0].Name())
	assert.Equal(t, machine.RecoverNone, active[0].RecommendedAction())

	require.True(t, ApplyLine(m, "[ALARMCODE:11|Homing required|Home the machine first]"))
	active = m.Catalog().Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Homing required", active[0].Name())
	assert.Equal(t, machine.RecoverHome, active[0].RecommendedAction())
}

func TestApplyLine_ErrorEvent(t *testing.T) {
	m := machine.NewModel(nil)
	require.True(t, ApplyLine(m, "error:20"))
	assert.Equal(t, []int{20}, m.Snapshot().ErrorCodes)

	active := m.Catalog().Active()
	require.Len(t, active, 1)
	assert.False(t, active[0].IsAlarm)
	assert.Equal(t, machine.SeverityError, active[0].Severity())
}

func TestApplyLine_Unrecognized(t *testing.T) {
	m := machine.NewModel(nil)
	for _, line := range []string{
		"",
		"garbage",
		"[PRB:0.000,0.000,0.000:0]",
		"[ALARMCODE:1|too short]",
		"<",
	} {
		assert.False(t, ApplyLine(m, line), "line=%q", line)
	}
	// nothing leaked into the model
	snap := m.Snapshot()
	assert.Equal(t, machine.StatusUnknown, snap.Status)
	assert.Empty(t, snap.AlarmCodes)
}
