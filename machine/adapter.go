package machine

import "errors"

// ErrBusy is returned by Send when the outgoing queue is full. Callers on
// hot paths drop the command; jog streams are regenerative, so a dropped
// sample is replaced by the next one.
var ErrBusy = errors.New("machine: outgoing queue full")

// An Adapter is the transport connection to a controller. Send must never
// block: a command the adapter cannot queue immediately is rejected with
// ErrBusy.
type Adapter interface {
	Send(Command) error
	Close() error
}
