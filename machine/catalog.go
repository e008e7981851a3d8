package machine

import (
	"sort"
	"sync"
	"time"
)

type conditionKey struct {
	code    int
	isAlarm bool
}

// ConditionCatalog tracks the active alarms and errors and their
// best-available descriptions. Register accepts a nil record because
// codes typically arrive before their metadata; Enrich fills the metadata
// in once the enumeration query answers.
type ConditionCatalog struct {
	mx     sync.Mutex
	active map[conditionKey]ActiveCondition
}

func NewConditionCatalog() *ConditionCatalog {
	return &ConditionCatalog{active: make(map[conditionKey]ActiveCondition)}
}

// RegisterAlarm marks an alarm code active, with metadata if it is already
// known.
func (c *ConditionCatalog) RegisterAlarm(code int, rec *AlarmRecord, at time.Time) ActiveCondition {
	cond := ActiveCondition{Code: code, IsAlarm: true, Alarm: rec, DetectedAt: at}
	c.mx.Lock()
	c.active[conditionKey{code, true}] = cond
	c.mx.Unlock()
	return cond
}

// RegisterError marks an error code active, with metadata if it is already
// known.
func (c *ConditionCatalog) RegisterError(code int, rec *ErrorRecord, at time.Time) ActiveCondition {
	cond := ActiveCondition{Code: code, IsAlarm: false, Err: rec, DetectedAt: at}
	c.mx.Lock()
	c.active[conditionKey{code, false}] = cond
	c.mx.Unlock()
	return cond
}

// EnrichAlarm attaches late-arriving metadata to an active alarm. It
// reports whether the code was active.
func (c *ConditionCatalog) EnrichAlarm(rec AlarmRecord) (ActiveCondition, bool) {
	c.mx.Lock()
	defer c.mx.Unlock()
	key := conditionKey{rec.Code, true}
	cond, ok := c.active[key]
	if !ok {
		return ActiveCondition{}, false
	}
	cond.Alarm = &rec
	c.active[key] = cond
	return cond, true
}

// EnrichError attaches late-arriving metadata to an active error.
func (c *ConditionCatalog) EnrichError(rec ErrorRecord) (ActiveCondition, bool) {
	c.mx.Lock()
	defer c.mx.Unlock()
	key := conditionKey{rec.Code, false}
	cond, ok := c.active[key]
	if !ok {
		return ActiveCondition{}, false
	}
	cond.Err = &rec
	c.active[key] = cond
	return cond, true
}

// Active returns the active conditions, highest severity first, ties broken
// by detection time.
func (c *ConditionCatalog) Active() []ActiveCondition {
	c.mx.Lock()
	conds := make([]ActiveCondition, 0, len(c.active))
	for _, cond := range c.active {
		conds = append(conds, cond)
	}
	c.mx.Unlock()
	sort.Slice(conds, func(i, j int) bool {
		if conds[i].Severity() != conds[j].Severity() {
			return conds[i].Severity() > conds[j].Severity()
		}
		return conds[i].DetectedAt.Before(conds[j].DetectedAt)
	})
	return conds
}

// Clear drops one active condition.
func (c *ConditionCatalog) Clear(code int, isAlarm bool) {
	c.mx.Lock()
	delete(c.active, conditionKey{code, isAlarm})
	c.mx.Unlock()
}

// ClearAll drops every active condition, as after a controller reset.
func (c *ConditionCatalog) ClearAll() {
	c.mx.Lock()
	c.active = make(map[conditionKey]ActiveCondition)
	c.mx.Unlock()
}
