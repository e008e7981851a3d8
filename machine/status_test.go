package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		text string
		want MachineStatus
	}{
		{"Idle", StatusIdle},
		{"Run", StatusRunning},
		{"Door:1", StatusDoor},
		{"Hold:0", StatusHold},
		{"  Jog ", StatusJogging},
		{"ALARM", StatusAlarm},
		{"Sleep", StatusSleep},
		{"Check", StatusCheck},
		{"Home", StatusHoming},
		{"", StatusUnknown},
		{"Tool", StatusUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyStatus(c.text), "text=%q", c.text)
	}
}

func TestClassifyStatus_Priority(t *testing.T) {
	// "idle" wins over later tokens when both substrings are present
	assert.Equal(t, StatusIdle, ClassifyStatus("idle (check mode)"))
}

func TestMachineStatus_Predicates(t *testing.T) {
	cases := []struct {
		status   MachineStatus
		ready    bool
		active   bool
		hasError bool
	}{
		{StatusIdle, true, false, false},
		{StatusCheck, true, false, false},
		{StatusRunning, false, true, false},
		{StatusJogging, false, true, false},
		{StatusHoming, false, true, false},
		{StatusAlarm, false, false, true},
		{StatusError, false, false, true},
		{StatusHold, false, false, false},
		{StatusUnknown, false, false, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ready, c.status.IsReady(), "%s ready", c.status)
		assert.Equal(t, c.active, c.status.IsActive(), "%s active", c.status)
		assert.Equal(t, c.hasError, c.status.HasError(), "%s hasError", c.status)
	}
}
