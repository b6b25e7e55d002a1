package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{0, "Normal"},
		{StateMaximized | StateActivated, "Maximized Active"},
		{StateMinimized, "Minimized"},
		{StateFullscreen | StateActivated | StateMaximized | StateMinimized, "Maximized Minimized Active Fullscreen"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestStateFromWire(t *testing.T) {
	assert.Equal(t, State(0), StateFromWire(nil))
	assert.Equal(t, StateMaximized|StateActivated, StateFromWire([]uint32{2, 0}))
	assert.Equal(t, StateFullscreen, StateFromWire([]uint32{3, 42}))
	assert.Equal(t, StateMinimized, StateFromWire([]uint32{1, 1}))
}
