package grbl

import (
	"strconv"
	"strings"

	"github.com/repentsinner/ghsender-sub001/machine"
)

// Bracketed report prefixes from the extended enumeration queries.
const (
	alarmPrefix        = "[ALARMCODE:"
	errorPrefix        = "[ERRORCODE:"
	settingPrefix      = "[SETTING:"
	settingGroupPrefix = "[SETTINGGROUP:"
	gcodePrefix        = "[GC:"
)

// innerFields strips a bracketed report down to its pipe-separated fields.
func innerFields(line, prefix string) ([]string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, "]") {
		return nil, false
	}
	return strings.Split(line[len(prefix):len(line)-1], "|"), true
}

// ParseAlarm decodes one [ALARMCODE:code|name|description] metadata line.
// At least three fields are required and the code must be an integer;
// anything else is no match. Severity and recovery come from the code
// tables, never from the report text.
func ParseAlarm(line string) (machine.AlarmRecord, bool) {
	parts, ok := innerFields(line, alarmPrefix)
	if !ok || len(parts) < 3 {
		return machine.AlarmRecord{}, false
	}
	code, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return machine.AlarmRecord{}, false
	}
	rec := machine.AlarmRecord{
		Code:        code,
		Name:        parts[1],
		Description: parts[2],
		Severity:    machine.AlarmSeverity(code),
		Action:      machine.AlarmRecovery(code),
	}
	if len(parts) > 3 {
		if gid, err := strconv.Atoi(strings.TrimSpace(parts[3])); err == nil {
			rec.GroupID = &gid
		}
	}
	return rec, true
}

// ParseError decodes one [ERRORCODE:code|name|description] metadata line
// under the same grammar as ParseAlarm.
func ParseError(line string) (machine.ErrorRecord, bool) {
	parts, ok := innerFields(line, errorPrefix)
	if !ok || len(parts) < 3 {
		return machine.ErrorRecord{}, false
	}
	code, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return machine.ErrorRecord{}, false
	}
	rec := machine.ErrorRecord{
		Code:        code,
		Name:        parts[1],
		Description: parts[2],
		Severity:    machine.ErrorSeverity(code),
	}
	if len(parts) > 3 {
		if gid, err := strconv.Atoi(strings.TrimSpace(parts[3])); err == nil {
			rec.GroupID = &gid
		}
	}
	return rec, true
}

// ParseSetting decodes one [SETTING:id|group|name|unit|type|format|min|max|neg]
// metadata line. Only the id is required; the remaining fields are
// positional and independently optional, and a field that fails to parse
// is left absent rather than rejecting the record.
func ParseSetting(line string) (machine.SettingRecord, bool) {
	parts, ok := innerFields(line, settingPrefix)
	if !ok || len(parts) == 0 {
		return machine.SettingRecord{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return machine.SettingRecord{}, false
	}
	rec := machine.SettingRecord{ID: id, AllowNegative: true}

	field := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	if s := field(1); s != "" {
		if gid, err := strconv.Atoi(s); err == nil {
			rec.GroupID = &gid
		}
	}
	if s := field(2); s != "" {
		rec.Name = &s
	}
	if s := field(3); s != "" {
		rec.Unit = &s
	}
	rec.DataType = machine.ParseDataType(field(4))
	if s := field(5); s != "" {
		rec.Format = &s
	}
	if s := field(6); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			rec.Min = &v
		}
	}
	if s := field(7); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			rec.Max = &v
		}
	}
	if s := field(8); s == "0" || strings.EqualFold(s, "false") {
		rec.AllowNegative = false
	}
	return rec, true
}

// ParseSettingGroup decodes one [SETTINGGROUP:id|parent|name] line. Both
// ids must be non-negative integers.
func ParseSettingGroup(line string) (machine.SettingGroupRecord, bool) {
	parts, ok := innerFields(line, settingGroupPrefix)
	if !ok || len(parts) < 3 {
		return machine.SettingGroupRecord{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || id < 0 {
		return machine.SettingGroupRecord{}, false
	}
	parent, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || parent < 0 {
		return machine.SettingGroupRecord{}, false
	}
	return machine.SettingGroupRecord{ID: id, ParentID: parent, Name: parts[2]}, true
}

// ParseGCodes decodes a [GC:G0 G54 ...] parser-state report into the list
// of active G/M codes.
func ParseGCodes(line string) ([]string, bool) {
	parts, ok := innerFields(line, gcodePrefix)
	if !ok || len(parts) == 0 {
		return nil, false
	}
	return strings.Fields(parts[0]), true
}

// ParseSettingValue decodes one `$id=value` settings dump line.
func ParseSettingValue(line string) (id int, value string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return 0, "", false
	}
	eq := strings.IndexByte(line, '=')
	if eq < 1 {
		return 0, "", false
	}
	id, err := strconv.Atoi(line[1:eq])
	if err != nil {
		return 0, "", false
	}
	return id, line[eq+1:], true
}

// ParseAlarmEvent decodes an asynchronous `ALARM:n` push message.
func ParseAlarmEvent(line string) (int, bool) {
	return parseCodeEvent(line, "ALARM:")
}

// ParseErrorEvent decodes an `error:n` command rejection.
func ParseErrorEvent(line string) (int, bool) {
	return parseCodeEvent(line, "error:")
}

func parseCodeEvent(line, prefix string) (int, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, prefix) {
		return 0, false
	}
	code, err := strconv.Atoi(strings.TrimSpace(line[len(prefix):]))
	if err != nil {
		return 0, false
	}
	return code, true
}

// ParseWelcome matches the reset banner, e.g. `GrblHAL 1.1f ['$' for help]`.
// Seeing it means the controller rebooted and identifies the firmware.
func ParseWelcome(line string) (firmware, version string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(strings.ToLower(line), "grbl") {
		return "", "", false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}
