package catalog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Lookup finds descriptor files by application id across an ordered list
// of directories. The first directory holding a readable file wins.
type Lookup struct {
	dirs   []string
	suffix string
}

// NewLookup creates a lookup over dirs, highest priority first
func NewLookup(dirs []string, suffix string) *Lookup {
	return &Lookup{dirs: dirs, suffix: suffix}
}

// Open reads the descriptor file for appID
func (l *Lookup) Open(appID string) (*Entry, error) {
	if appID == "" {
		return nil, fmt.Errorf("empty application id")
	}
	var firstErr error
	for _, dir := range l.dirs {
		path := filepath.Join(dir, appID+l.suffix)
		lines, err := readLines(path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return &Entry{Path: path, lines: lines}, nil
	}
	if firstErr == nil {
		firstErr = os.ErrNotExist
	}
	return nil, fmt.Errorf("no readable descriptor for %q: %w", appID, firstErr)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Entry is the text of one descriptor file as Key=Value lines
type Entry struct {
	Path  string
	lines []string
}

// Field returns the value of the first line that starts with key=, or ""
func (e *Entry) Field(key string) string {
	prefix := key + "="
	for _, line := range e.lines {
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):]
		}
	}
	return ""
}

// Exec returns the Exec field cut at its first %-placeholder, without the
// blanks before it
func (e *Entry) Exec() string {
	return trimPlaceholders(e.Field("Exec"))
}

func trimPlaceholders(cmd string) string {
	if i := strings.IndexByte(cmd, '%'); i >= 0 {
		cmd = strings.TrimRight(cmd[:i], " \t")
	}
	return cmd
}

// Actions resolves every id listed in Actions= to its [Desktop Action id]
// section. Actions lacking a Name or Exec are dropped.
func (e *Entry) Actions() []Action {
	var actions []Action
	for _, id := range strings.Split(e.Field("Actions"), ";") {
		if id == "" {
			continue
		}
		if a, ok := e.action(id); ok {
			actions = append(actions, a)
		}
	}
	return actions
}

func (e *Entry) action(id string) (Action, bool) {
	header := "[Desktop Action " + id + "]"
	var name, exec string
	var haveName, haveExec, inSection bool

	for _, raw := range e.lines {
		line := strings.TrimLeft(raw, " \t")
		if !inSection {
			inSection = line == header
			continue
		}
		if strings.HasPrefix(line, "[") {
			break
		}
		switch {
		case !haveName && strings.HasPrefix(line, "Name="):
			name, haveName = line[len("Name="):], true
		case !haveExec && strings.HasPrefix(line, "Exec="):
			exec, haveExec = line[len("Exec="):], true
		}
		if haveName && haveExec {
			break
		}
	}
	return Action{Name: name, Exec: exec}, haveName && haveExec
}
