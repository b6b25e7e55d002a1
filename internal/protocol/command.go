// Package protocol implements the line-oriented control channel commands.
package protocol

import (
	"errors"
	"strconv"
	"strings"
)

// Verb is the first token of a control line
type Verb string

const (
	VerbQuery       Verb = "QUERY"
	VerbMinimizeAll Verb = "MINIMIZEALL"
	VerbActivate    Verb = "ACTIVATE"
	VerbMinimize    Verb = "MINIMIZE"
	VerbUnminimize  Verb = "UNMINIMIZE"
	VerbClose       Verb = "CLOSE"
	VerbList        Verb = "LIST"
	VerbLaunch      Verb = "LAUNCH"
)

var (
	// ErrEmpty is returned for blank lines
	ErrEmpty = errors.New("empty command")
	// ErrUnknown is returned for an unrecognized verb
	ErrUnknown = errors.New("unknown command")
)

// Command is one parsed control line
type Command struct {
	Verb Verb
	// ID targets a toplevel. Missing or malformed ids are 0, which no
	// toplevel ever has.
	ID uint32
	// AppID names a catalog entry for LAUNCH
	AppID string
}

// Parse splits a control line into a command
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmpty
	}

	cmd := Command{Verb: Verb(fields[0])}
	var arg string
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd.Verb {
	case VerbQuery, VerbMinimizeAll, VerbList:
	case VerbActivate, VerbMinimize, VerbUnminimize, VerbClose:
		cmd.ID = parseID(arg)
	case VerbLaunch:
		cmd.AppID = arg
	default:
		return Command{}, ErrUnknown
	}
	return cmd, nil
}

func parseID(s string) uint32 {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(id)
}
