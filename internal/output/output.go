package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bryanchriswhite/toplevelmon/internal/logger"
)

// Emitter writes status lines to the control channel. Every line is
// flushed as soon as it is written.
type Emitter struct {
	w   *bufio.Writer
	err error
}

// NewEmitter wraps w
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

// Ready announces that the initial compositor handshake completed
func (e *Emitter) Ready() {
	e.line("DAEMON_READY")
}

// New announces a freshly created toplevel
func (e *Emitter) New(id uint32) {
	e.line(fmt.Sprintf("NEW ID=%d", id))
}

// Update describes a toplevel after a coalesced attribute batch
func (e *Emitter) Update(id uint32, appID, state, title string) {
	e.line(fmt.Sprintf("UPDATE ID=%d APPID=%s STATE=%s TITLE=%s",
		id, Quote(appID), Quote(state), Quote(title)))
}

// Closed announces that a toplevel went away
func (e *Emitter) Closed(id uint32) {
	e.line(fmt.Sprintf("CLOSED ID=%d", id))
}

// Descriptor describes one catalog entry found by a scan
func (e *Emitter) Descriptor(appID, name, genericName, icon, bin, actions string) {
	e.line(fmt.Sprintf("DB APPID=%s NAME=%s GENERIC_NAME=%s ICON=%s BIN=%s ACTIONS=%s",
		Quote(appID), Quote(name), Quote(genericName), Quote(icon), Quote(bin), Quote(actions)))
}

// QueryDone marks the end of a catalog scan
func (e *Emitter) QueryDone() {
	e.line("QUERY_DONE")
}

// Err returns the first write error, if any
func (e *Emitter) Err() error {
	return e.err
}

func (e *Emitter) line(s string) {
	if _, err := e.w.WriteString(s + "\n"); err != nil {
		e.fail(err)
		return
	}
	e.fail(e.w.Flush())
}

func (e *Emitter) fail(err error) {
	if err == nil || e.err != nil {
		return
	}
	e.err = err
	logger.WithComponent("output").Warn().Err(err).Msg("Failed to write status line")
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", " ", "\n", " ", "\r", " ")

// Quote wraps a field value in double quotes. Backslashes and quotes are
// escaped and line breaks become spaces so a value never splits a line.
func Quote(v string) string {
	return `"` + quoter.Replace(v) + `"`
}
