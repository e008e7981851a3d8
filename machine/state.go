package machine

import (
	"strconv"
	"sync"
	"time"

	"github.com/repentsinner/ghsender-sub001/coord"
)

const mmPerInch = 25.4

// SpindleState is the spindle portion of a status report.
type SpindleState struct {
	Running     bool
	Speed       float64
	TargetSpeed float64
	Clockwise   bool
}

// FeedState is the feed portion of a status report. Rates are always
// mm/min; inch-mode reports are converted on ingestion.
type FeedState struct {
	Rate       float64
	TargetRate float64
	Units      string
}

// BufferState is the planner/RX telemetry from the last status report.
// MaxPlannerBlocks is the highest PlannerAvailable ever observed, which on
// an empty planner equals the controller's total block count.
type BufferState struct {
	PlannerAvailable int
	RXAvailable      int
	MaxPlannerBlocks int
}

// Used returns the estimated number of occupied planner blocks, capped at
// limit.
func (b BufferState) Used(limit float64) float64 {
	used := float64(b.MaxPlannerBlocks - b.PlannerAvailable)
	if used < 0 {
		used = 0
	}
	if used > limit {
		used = limit
	}
	return used
}

// Overrides are the controller's feed/rapid/spindle override percentages.
type Overrides struct {
	Feed    int
	Rapid   int
	Spindle int
}

// StatusReport is one decoded real-time report. Absent sub-fields stay
// nil so the model can keep its previous values.
type StatusReport struct {
	Status    MachineStatus
	RawStatus string

	MPos, WPos, WCO *coord.Point

	PlannerAvailable *int
	RXAvailable      *int

	FeedRate     *float64
	SpindleSpeed *float64

	Overrides *Overrides

	Pins        *string
	Accessories *string
}

// Snapshot is an immutable copy of the machine state. Readers always work
// from a Snapshot; the transport's line pump is the Model's only writer.
type Snapshot struct {
	Firmware string
	Version  string
	Online   bool

	Status    MachineStatus
	RawStatus string

	MPos *coord.Point
	WPos *coord.Point
	WCO  *coord.Point

	Spindle   SpindleState
	Feed      FeedState
	Overrides Overrides

	ActiveCodes []string
	AlarmCodes  []int
	ErrorCodes  []int

	Buffer BufferState

	UpdatedAt time.Time
}

// The predicates delegate to the status field on every call; they are
// never cached.
func (s Snapshot) IsReady() bool  { return s.Status.IsReady() }
func (s Snapshot) IsActive() bool { return s.Status.IsActive() }
func (s Snapshot) HasError() bool { return s.Status.HasError() }

// CanJog reports whether jog commands may be issued: the controller must
// be online, identified, and in a state that accepts jogging.
func (s Snapshot) CanJog() bool {
	if !s.Online || s.Firmware == "" {
		return false
	}
	return s.Status == StatusIdle || s.Status == StatusJogging || s.Status == StatusCheck
}

// Model is the single-writer aggregate of everything reported by the
// controller. All mutation happens on the transport's decode goroutine;
// every other component reads Snapshots.
type Model struct {
	clock   Clock
	catalog *ConditionCatalog

	mx            sync.RWMutex
	cur           Snapshot
	settings      map[int]string
	settingMeta   map[int]SettingRecord
	settingGroups map[int]SettingGroupRecord
	alarmMeta     map[int]AlarmRecord
	errorMeta     map[int]ErrorRecord

	updates chan Snapshot
}

func NewModel(clock Clock) *Model {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Model{
		clock:         clock,
		catalog:       NewConditionCatalog(),
		settings:      make(map[int]string),
		settingMeta:   make(map[int]SettingRecord),
		settingGroups: make(map[int]SettingGroupRecord),
		alarmMeta:     make(map[int]AlarmRecord),
		errorMeta:     make(map[int]ErrorRecord),
		updates:       make(chan Snapshot),
		cur:           Snapshot{Feed: FeedState{Units: "mm/min"}},
	}
}

func (m *Model) Catalog() *ConditionCatalog { return m.catalog }

// Updates delivers a Snapshot after each applied report. Sends never
// block; a slow consumer drops frames.
func (m *Model) Updates() <-chan Snapshot { return m.updates }

// Snapshot returns an isolated copy of the current state.
func (m *Model) Snapshot() Snapshot {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return copySnapshot(m.cur)
}

func copySnapshot(s Snapshot) Snapshot {
	s.MPos = copyPoint(s.MPos)
	s.WPos = copyPoint(s.WPos)
	s.WCO = copyPoint(s.WCO)
	s.ActiveCodes = append([]string(nil), s.ActiveCodes...)
	s.AlarmCodes = append([]int(nil), s.AlarmCodes...)
	s.ErrorCodes = append([]int(nil), s.ErrorCodes...)
	return s
}

func copyPoint(p *coord.Point) *coord.Point {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (m *Model) broadcast() {
	select {
	case m.updates <- copySnapshot(m.cur):
	default:
	}
}

// SetOnline records transport connectivity. It is the transport's flag,
// never derived from report content.
func (m *Model) SetOnline(online bool) {
	m.mx.Lock()
	m.cur.Online = online
	m.cur.UpdatedAt = m.clock.Now()
	m.broadcast()
	m.mx.Unlock()
}

// ApplyReset records a controller welcome banner: identity is updated and
// any previously active conditions are gone.
func (m *Model) ApplyReset(firmware, version string) {
	m.mx.Lock()
	m.cur.Firmware = firmware
	m.cur.Version = version
	m.cur.Status = StatusUnknown
	m.cur.RawStatus = ""
	m.cur.AlarmCodes = nil
	m.cur.ErrorCodes = nil
	m.cur.UpdatedAt = m.clock.Now()
	m.broadcast()
	m.mx.Unlock()
	m.catalog.ClearAll()
}

// reportsInches is only called with the model lock held.
func (m *Model) reportsInches() bool {
	return m.settings[settingReportInches] == "1"
}

// ApplyStatus merges one status report into the model. Positions are
// normalized to millimeters; a missing WPos or MPos is derived from the
// other via WCO.
func (m *Model) ApplyStatus(rep StatusReport) {
	m.mx.Lock()
	defer m.mx.Unlock()

	scale := 1.0
	if m.reportsInches() {
		scale = mmPerInch
	}

	m.cur.Status = rep.Status
	m.cur.RawStatus = rep.RawStatus

	if rep.WCO != nil {
		wco := rep.WCO.Mul(scale)
		m.cur.WCO = &wco
	}
	if rep.MPos != nil {
		mpos := rep.MPos.Mul(scale)
		m.cur.MPos = &mpos
		if rep.WPos == nil && m.cur.WCO != nil {
			wpos := mpos.Sub(*m.cur.WCO)
			m.cur.WPos = &wpos
		}
	}
	if rep.WPos != nil {
		wpos := rep.WPos.Mul(scale)
		m.cur.WPos = &wpos
		if rep.MPos == nil && m.cur.WCO != nil {
			mpos := wpos.Add(*m.cur.WCO)
			m.cur.MPos = &mpos
		}
	}

	if rep.PlannerAvailable != nil {
		m.cur.Buffer.PlannerAvailable = *rep.PlannerAvailable
		if *rep.PlannerAvailable > m.cur.Buffer.MaxPlannerBlocks {
			m.cur.Buffer.MaxPlannerBlocks = *rep.PlannerAvailable
		}
	}
	if rep.RXAvailable != nil {
		m.cur.Buffer.RXAvailable = *rep.RXAvailable
	}

	if rep.Overrides != nil {
		m.cur.Overrides = *rep.Overrides
	}
	if rep.FeedRate != nil {
		m.cur.Feed.Rate = *rep.FeedRate * scale
		m.cur.Feed.TargetRate = m.cur.Feed.Rate
		if m.cur.Overrides.Feed > 0 {
			m.cur.Feed.TargetRate = m.cur.Feed.Rate * 100 / float64(m.cur.Overrides.Feed)
		}
	}
	if rep.SpindleSpeed != nil {
		m.cur.Spindle.Speed = *rep.SpindleSpeed
		m.cur.Spindle.TargetSpeed = m.cur.Spindle.Speed
		if m.cur.Overrides.Spindle > 0 {
			m.cur.Spindle.TargetSpeed = m.cur.Spindle.Speed * 100 / float64(m.cur.Overrides.Spindle)
		}
	}
	if rep.Accessories != nil {
		acc := *rep.Accessories
		cw := containsByte(acc, 'S')
		ccw := containsByte(acc, 'C')
		m.cur.Spindle.Running = cw || ccw
		m.cur.Spindle.Clockwise = cw
	}

	m.cur.UpdatedAt = m.clock.Now()
	m.broadcast()
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// RaiseAlarm marks an alarm code active. Metadata is attached if a prior
// enumeration already supplied it; otherwise the catalog serves fallbacks
// until ApplyAlarm enriches it.
func (m *Model) RaiseAlarm(code int) {
	m.mx.Lock()
	if !containsInt(m.cur.AlarmCodes, code) {
		m.cur.AlarmCodes = append(m.cur.AlarmCodes, code)
	}
	m.cur.Status = StatusAlarm
	m.cur.UpdatedAt = m.clock.Now()
	var rec *AlarmRecord
	if meta, ok := m.alarmMeta[code]; ok {
		rec = &meta
	}
	m.broadcast()
	m.mx.Unlock()
	m.catalog.RegisterAlarm(code, rec, m.clock.Now())
}

// RaiseError marks an error code active. Unlike alarms it does not change
// the machine status; errors are per-command rejections.
func (m *Model) RaiseError(code int) {
	m.mx.Lock()
	if !containsInt(m.cur.ErrorCodes, code) {
		m.cur.ErrorCodes = append(m.cur.ErrorCodes, code)
	}
	m.cur.UpdatedAt = m.clock.Now()
	var rec *ErrorRecord
	if meta, ok := m.errorMeta[code]; ok {
		rec = &meta
	}
	m.broadcast()
	m.mx.Unlock()
	m.catalog.RegisterError(code, rec, m.clock.Now())
}

func containsInt(s []int, v int) bool {
	for _, n := range s {
		if n == v {
			return true
		}
	}
	return false
}

// ApplyAlarm records alarm metadata and enriches the active condition if
// the code is already raised.
func (m *Model) ApplyAlarm(rec AlarmRecord) {
	m.mx.Lock()
	m.alarmMeta[rec.Code] = rec
	m.mx.Unlock()
	m.catalog.EnrichAlarm(rec)
}

// ApplyError records error metadata and enriches the active condition if
// the code is already raised.
func (m *Model) ApplyError(rec ErrorRecord) {
	m.mx.Lock()
	m.errorMeta[rec.Code] = rec
	m.mx.Unlock()
	m.catalog.EnrichError(rec)
}

// ApplyGCodes replaces the active G/M code list from a parser-state
// report.
func (m *Model) ApplyGCodes(codes []string) {
	m.mx.Lock()
	m.cur.ActiveCodes = append([]string(nil), codes...)
	m.cur.UpdatedAt = m.clock.Now()
	m.broadcast()
	m.mx.Unlock()
}

// ApplySetting records setting metadata.
func (m *Model) ApplySetting(rec SettingRecord) {
	m.mx.Lock()
	m.settingMeta[rec.ID] = rec
	m.mx.Unlock()
}

// ApplySettingGroup records a settings group node.
func (m *Model) ApplySettingGroup(rec SettingGroupRecord) {
	m.mx.Lock()
	m.settingGroups[rec.ID] = rec
	m.mx.Unlock()
}

// ApplySettingValue records one `$n=value` setting dump entry.
func (m *Model) ApplySettingValue(id int, value string) {
	m.mx.Lock()
	m.settings[id] = value
	m.mx.Unlock()
}

// Setting returns the raw value of a setting, if reported.
func (m *Model) Setting(id int) (string, bool) {
	m.mx.RLock()
	defer m.mx.RUnlock()
	v, ok := m.settings[id]
	return v, ok
}

// SettingMeta returns the metadata for a setting, if enumerated.
func (m *Model) SettingMeta(id int) (SettingRecord, bool) {
	m.mx.RLock()
	defer m.mx.RUnlock()
	rec, ok := m.settingMeta[id]
	return rec, ok
}

// Travel limit settings per the standard settings map.
const (
	settingReportInches = 13
	settingMaxTravelX   = 130
	settingMaxTravelY   = 131
	settingMaxTravelZ   = 132
)

// TravelLimits returns the configured per-axis max travel in millimeters;
// an axis whose setting is missing or unparseable is nil.
func (m *Model) TravelLimits() (x, y, z *float64) {
	m.mx.RLock()
	defer m.mx.RUnlock()
	parse := func(id int) *float64 {
		raw, ok := m.settings[id]
		if !ok {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return &v
	}
	return parse(settingMaxTravelX), parse(settingMaxTravelY), parse(settingMaxTravelZ)
}

// Envelope derives the current work envelope from the travel-limit
// settings.
func (m *Model) Envelope() (Envelope, error) {
	x, y, z := m.TravelLimits()
	return ComputeEnvelope(x, y, z, m.clock.Now())
}
