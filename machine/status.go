package machine

import "strings"

// MachineStatus classifies the controller's reported operating state.
type MachineStatus int

const (
	StatusUnknown MachineStatus = iota
	StatusIdle
	StatusRunning
	StatusPaused
	StatusAlarm
	StatusError
	StatusJogging
	StatusHoming
	StatusHold
	StatusDoor
	StatusCheck
	StatusSleep
)

var statusNames = map[MachineStatus]string{
	StatusUnknown: "Unknown",
	StatusIdle:    "Idle",
	StatusRunning: "Run",
	StatusPaused:  "Pause",
	StatusAlarm:   "Alarm",
	StatusError:   "Error",
	StatusJogging: "Jog",
	StatusHoming:  "Home",
	StatusHold:    "Hold",
	StatusDoor:    "Door",
	StatusCheck:   "Check",
	StatusSleep:   "Sleep",
}

func (s MachineStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// statusTokens is checked in order; the first substring match wins.
// Firmware spellings vary across versions ("Hold:0", "Door:1"), so matching
// is deliberately loose.
var statusTokens = []struct {
	token  string
	status MachineStatus
}{
	{"idle", StatusIdle},
	{"run", StatusRunning},
	{"pause", StatusPaused},
	{"alarm", StatusAlarm},
	{"error", StatusError},
	{"jog", StatusJogging},
	{"home", StatusHoming},
	{"hold", StatusHold},
	{"door", StatusDoor},
	{"check", StatusCheck},
	{"sleep", StatusSleep},
}

// ClassifyStatus maps free-form controller status text to a MachineStatus.
func ClassifyStatus(text string) MachineStatus {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return StatusUnknown
	}
	for _, t := range statusTokens {
		if strings.Contains(text, t.token) {
			return t.status
		}
	}
	return StatusUnknown
}

// IsReady reports whether the machine will accept new motion commands.
func (s MachineStatus) IsReady() bool {
	return s == StatusIdle || s == StatusCheck
}

// IsActive reports whether the machine is currently executing motion.
func (s MachineStatus) IsActive() bool {
	return s == StatusRunning || s == StatusJogging || s == StatusHoming
}

// HasError reports whether the machine is in a fault state.
func (s MachineStatus) HasError() bool {
	return s == StatusAlarm || s == StatusError
}
