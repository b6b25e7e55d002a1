package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"QUERY\n", Command{Verb: VerbQuery}},
		{"QUERY extra args", Command{Verb: VerbQuery}},
		{"MINIMIZEALL", Command{Verb: VerbMinimizeAll}},
		{"ACTIVATE 3\n", Command{Verb: VerbActivate, ID: 3}},
		{"  MINIMIZE\t12  ", Command{Verb: VerbMinimize, ID: 12}},
		{"UNMINIMIZE 4", Command{Verb: VerbUnminimize, ID: 4}},
		{"CLOSE 5", Command{Verb: VerbClose, ID: 5}},
		{"CLOSE", Command{Verb: VerbClose, ID: 0}},
		{"ACTIVATE abc", Command{Verb: VerbActivate, ID: 0}},
		{"ACTIVATE -1", Command{Verb: VerbActivate, ID: 0}},
		{"ACTIVATE 99999999999", Command{Verb: VerbActivate, ID: 0}},
		{"LIST", Command{Verb: VerbList}},
		{"LAUNCH org.gnome.Terminal", Command{Verb: VerbLaunch, AppID: "org.gnome.Terminal"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("   \n")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("REBOOT now")
	assert.ErrorIs(t, err, ErrUnknown)

	_, err = Parse("activate 3")
	assert.ErrorIs(t, err, ErrUnknown, "verbs are case sensitive")
}

func TestSplitCommand(t *testing.T) {
	argv, err := SplitCommand(`env FOO=1 "my app" --flag 'quoted arg'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"env", "FOO=1", "my app", "--flag", "quoted arg"}, argv)

	_, err = SplitCommand("")
	assert.Error(t, err)

	_, err = SplitCommand(`broken "quote`)
	assert.Error(t, err)
}
