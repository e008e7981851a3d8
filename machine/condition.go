package machine

import (
	"fmt"
	"time"
)

// Severity orders conditions for display priority and gating.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	case SeverityFatal:
		return "fatal"
	}
	return "unknown"
}

// RecoveryAction is the recommended operator response to an alarm.
type RecoveryAction int

const (
	RecoverNone RecoveryAction = iota
	RecoverUnlock
	RecoverHome
	RecoverReset
	RecoverManual
)

func (a RecoveryAction) String() string {
	switch a {
	case RecoverNone:
		return "none"
	case RecoverUnlock:
		return "unlock"
	case RecoverHome:
		return "home"
	case RecoverReset:
		return "reset"
	case RecoverManual:
		return "manual"
	}
	return "none"
}

// Command returns the outbound command for the action, or nil when no
// command applies.
func (a RecoveryAction) Command() Command {
	switch a {
	case RecoverUnlock:
		return Unlock{}
	case RecoverHome:
		return Home{}
	case RecoverReset:
		return SoftReset{}
	}
	return nil
}

// Alarm codes 1 (hard limit), 2 (soft limit) and 10 (e-stop) mean the
// machine may have lost position or hit something; 11 means homing is
// required before motion is allowed.
var alarmSeverities = map[int]Severity{
	1:  SeverityCritical,
	2:  SeverityCritical,
	10: SeverityCritical,
	11: SeverityWarning,
}

var alarmRecoveries = map[int]RecoveryAction{
	1:  RecoverUnlock,
	2:  RecoverUnlock,
	10: RecoverUnlock,
	11: RecoverHome,
}

var errorSeverities = map[int]Severity{
	1:  SeverityError,
	2:  SeverityError,
	3:  SeverityError,
	20: SeverityWarning,
	21: SeverityWarning,
}

// AlarmSeverity returns the severity for an alarm code; unknown codes
// default to error.
func AlarmSeverity(code int) Severity {
	if s, ok := alarmSeverities[code]; ok {
		return s
	}
	return SeverityError
}

// AlarmRecovery returns the recommended recovery for an alarm code;
// unknown codes default to a soft reset.
func AlarmRecovery(code int) RecoveryAction {
	if a, ok := alarmRecoveries[code]; ok {
		return a
	}
	return RecoverReset
}

// ErrorSeverity returns the severity for an error code; unknown codes
// default to error.
func ErrorSeverity(code int) Severity {
	if s, ok := errorSeverities[code]; ok {
		return s
	}
	return SeverityError
}

// AlarmRecord is the decoded metadata for one alarm code. Severity and
// Action come from the code tables, not from the report text.
type AlarmRecord struct {
	Code        int
	Name        string
	Description string
	GroupID     *int
	Severity    Severity
	Action      RecoveryAction
}

// ErrorRecord mirrors AlarmRecord. Errors carry no recovery action; they
// are not autonomously recoverable.
type ErrorRecord struct {
	Code        int
	Name        string
	Description string
	GroupID     *int
	Severity    Severity
}

// ActiveCondition is an alarm or error currently considered active on the
// controller, independent of whether its descriptive metadata has arrived
// yet. The numeric code usually shows up well before the metadata, which
// comes from a separate, slower enumeration query, so the fallback
// accessors below are a normal path, not an exceptional one.
type ActiveCondition struct {
	Code       int
	IsAlarm    bool
	Alarm      *AlarmRecord
	Err        *ErrorRecord
	DetectedAt time.Time
}

func (c ActiveCondition) kind() string {
	if c.IsAlarm {
		return "Alarm"
	}
	return "Error"
}

// Name returns the metadata name, or a generic placeholder while the
// metadata is still outstanding.
func (c ActiveCondition) Name() string {
	if c.IsAlarm && c.Alarm != nil {
		return c.Alarm.Name
	}
	if !c.IsAlarm && c.Err != nil {
		return c.Err.Name
	}
	return fmt.Sprintf("%s %d", c.kind(), c.Code)
}

func (c ActiveCondition) Description() string {
	if c.IsAlarm && c.Alarm != nil {
		return c.Alarm.Description
	}
	if !c.IsAlarm && c.Err != nil {
		return c.Err.Description
	}
	return fmt.Sprintf("%s code %d occurred", c.kind(), c.Code)
}

// Severity returns the metadata severity, or the conservative default
// (critical for alarms, error for errors) when metadata is absent.
func (c ActiveCondition) Severity() Severity {
	if c.IsAlarm {
		if c.Alarm != nil {
			return c.Alarm.Severity
		}
		return SeverityCritical
	}
	if c.Err != nil {
		return c.Err.Severity
	}
	return SeverityError
}

// RecommendedAction returns the recovery action for an alarm with known
// metadata; errors and metadata-less alarms recommend nothing.
func (c ActiveCondition) RecommendedAction() RecoveryAction {
	if c.IsAlarm && c.Alarm != nil {
		return c.Alarm.Action
	}
	return RecoverNone
}
