package window

import "strings"

// State is a bitset of toplevel state flags
type State uint32

const (
	StateMaximized State = 1 << iota
	StateMinimized
	StateActivated
	StateFullscreen
)

// Compositor state enum values as carried in the state array
const (
	wireMaximized  = 0
	wireMinimized  = 1
	wireActivated  = 2
	wireFullscreen = 3
)

// StateFromWire builds a flag set from a compositor state array.
// Unknown values are ignored.
func StateFromWire(values []uint32) State {
	var s State
	for _, v := range values {
		switch v {
		case wireMaximized:
			s |= StateMaximized
		case wireMinimized:
			s |= StateMinimized
		case wireActivated:
			s |= StateActivated
		case wireFullscreen:
			s |= StateFullscreen
		}
	}
	return s
}

var stateNames = []struct {
	flag State
	name string
}{
	{StateMaximized, "Maximized"},
	{StateMinimized, "Minimized"},
	{StateActivated, "Active"},
	{StateFullscreen, "Fullscreen"},
}

// String renders the set flags space-joined, or "Normal" when none is set
func (s State) String() string {
	var parts []string
	for _, n := range stateNames {
		if s&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "Normal"
	}
	return strings.Join(parts, " ")
}
