package machine

import (
	"math"
	"strings"
	"time"

	"github.com/repentsinner/ghsender-sub001/coord"
)

// Envelope is the derived soft-limit bounding box in machine coordinates,
// always in millimeters. Min is component-wise ≤ Max.
type Envelope struct {
	Min       coord.Point
	Max       coord.Point
	UpdatedAt time.Time
}

// MissingTravelError reports which per-axis travel limits were absent from
// the configuration.
type MissingTravelError struct {
	Axes []string
}

func (e *MissingTravelError) Error() string {
	return "machine: max travel not configured for " + strings.Join(e.Axes, ", ")
}

// ComputeEnvelope derives the envelope from the per-axis max-travel
// settings. Travel values are magnitudes regardless of the source's sign
// convention. The homed position is treated as the origin with travel
// extending negative from it, so Max is always zero; this assumes homing
// to the positive limit corner and needs revisiting for other homing
// conventions. No homing pulloff margin is subtracted.
func ComputeEnvelope(x, y, z *float64, at time.Time) (Envelope, error) {
	var missing []string
	if x == nil {
		missing = append(missing, "x")
	}
	if y == nil {
		missing = append(missing, "y")
	}
	if z == nil {
		missing = append(missing, "z")
	}
	if len(missing) > 0 {
		return Envelope{}, &MissingTravelError{Axes: missing}
	}
	return Envelope{
		Min:       coord.Point{X: -math.Abs(*x), Y: -math.Abs(*y), Z: -math.Abs(*z)},
		Max:       coord.Point{},
		UpdatedAt: at,
	}, nil
}

// Contains reports whether p lies inside the envelope.
func (e Envelope) Contains(p coord.Point) bool {
	return p.Equal(p.Max(e.Min).Min(e.Max))
}

// Clamp constrains p to the envelope.
func (e Envelope) Clamp(p coord.Point) coord.Point {
	return p.Max(e.Min).Min(e.Max)
}
