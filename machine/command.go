package machine

// A Command is an outbound instruction for the controller. Commands are
// abstract values; the transport layer owns their wire encoding.
type Command interface {
	command()
}

// Axis names one linear machine axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return "?"
}

// MultiAxisJog moves X and Y together by relative distances at the given
// feed rate (millimeters per minute).
type MultiAxisJog struct {
	DX, DY   float64
	FeedRate float64
}

// DiscreteJog moves a single axis one fixed step.
type DiscreteJog struct {
	Axis     Axis
	Distance float64
	FeedRate float64
}

// JogStop cancels any in-flight jog motion.
type JogStop struct{}

// Unlock clears an alarm lock.
type Unlock struct{}

// Home runs the homing cycle.
type Home struct{}

// SoftReset resets the controller without dropping the connection.
type SoftReset struct{}

// StatusQuery requests a real-time status report.
type StatusQuery struct{}

// ZeroAxes sets the work-coordinate origin for the selected axes.
type ZeroAxes struct {
	X, Y, Z bool
}

// Probe probes toward the work surface along -Z.
type Probe struct {
	Distance float64
	FeedRate float64
}

func (MultiAxisJog) command() {}
func (DiscreteJog) command()  {}
func (JogStop) command()      {}
func (Unlock) command()       {}
func (Home) command()         {}
func (SoftReset) command()    {}
func (StatusQuery) command()  {}
func (ZeroAxes) command()     {}
func (Probe) command()        {}
