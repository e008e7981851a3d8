package grbl

import (
	"fmt"
	"strconv"

	"github.com/repentsinner/ghsender-sub001/machine"
)

// Realtime control bytes. These bypass the controller's line buffer.
const (
	byteSoftReset   byte = 0x18
	byteStatusQuery byte = '?'
	byteJogCancel   byte = 0x85
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Encode renders a command into the bytes for the wire. Realtime commands
// encode to a single control byte; everything else is a newline-terminated
// line. It reports false for commands it cannot express.
func Encode(cmd machine.Command) ([]byte, bool) {
	switch c := cmd.(type) {
	case machine.MultiAxisJog:
		return []byte(fmt.Sprintf("$J=G91 X%s Y%s F%s\n", num(c.DX), num(c.DY), num(c.FeedRate))), true
	case machine.DiscreteJog:
		return []byte(fmt.Sprintf("$J=G91 %s%s F%s\n", c.Axis, num(c.Distance), num(c.FeedRate))), true
	case machine.JogStop:
		return []byte{byteJogCancel}, true
	case machine.Unlock:
		return []byte("$X\n"), true
	case machine.Home:
		return []byte("$H\n"), true
	case machine.SoftReset:
		return []byte{byteSoftReset}, true
	case machine.StatusQuery:
		return []byte{byteStatusQuery}, true
	case machine.ZeroAxes:
		line := "G92"
		if c.X {
			line += " X0"
		}
		if c.Y {
			line += " Y0"
		}
		if c.Z {
			line += " Z0"
		}
		if line == "G92" {
			return nil, false
		}
		return []byte(line + "\n"), true
	case machine.Probe:
		return []byte(fmt.Sprintf("G38.2 Z-%s F%s\n", num(c.Distance), num(c.FeedRate))), true
	}
	return nil, false
}
