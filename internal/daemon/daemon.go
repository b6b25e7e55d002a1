// Package daemon multiplexes the compositor's window feed and the control
// channel on a single goroutine.
package daemon

import (
	"errors"
	"fmt"

	"github.com/bryanchriswhite/toplevelmon/internal/catalog"
	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/bryanchriswhite/toplevelmon/internal/window"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// Feed is a window event source with an explicit prepare/read/cancel
// handshake around blocking waits
type Feed interface {
	Fd() int
	// PrepareRead returns false while read events still await dispatch
	PrepareRead() bool
	ReadEvents() error
	CancelRead()
	DispatchPending() (int, error)
	Flush() error
	Close() error
}

// Handler executes one control line
type Handler interface {
	Handle(line string)
}

// Announcer emits the startup marker
type Announcer interface {
	Ready()
}

// Options wires a Daemon
type Options struct {
	Feed     Feed
	Control  *LineReader
	Registry *window.Registry
	Catalog  *catalog.Catalog
	Engine   Handler
	Out      Announcer
}

// Daemon owns the registry, the catalog and both inputs for the life of
// the process
type Daemon struct {
	feed     Feed
	control  *LineReader
	registry *window.Registry
	catalog  *catalog.Catalog
	engine   Handler
	out      Announcer
	log      *zerolog.Logger
	closed   bool
}

// New creates a daemon
func New(opts Options) *Daemon {
	return &Daemon{
		feed:     opts.Feed,
		control:  opts.Control,
		registry: opts.Registry,
		catalog:  opts.Catalog,
		engine:   opts.Engine,
		out:      opts.Out,
		log:      logger.WithComponent("daemon"),
	}
}

const readyEvents = unix.POLLIN | unix.POLLHUP | unix.POLLERR

// Run announces readiness and loops until the control channel reaches end
// of input, returning nil, or until the feed or the wait fails
func (d *Daemon) Run() error {
	d.out.Ready()
	d.log.Info().Msg("Daemon ready")

	for {
		for !d.feed.PrepareRead() {
			if _, err := d.feed.DispatchPending(); err != nil {
				return fmt.Errorf("failed to dispatch window events: %w", err)
			}
		}
		if err := d.feed.Flush(); err != nil {
			d.feed.CancelRead()
			return fmt.Errorf("failed to flush requests: %w", err)
		}

		// A line already buffered must not wait on new input
		lineReady := d.control.Buffered()
		timeout := -1
		if lineReady {
			timeout = 0
		}
		fds := []unix.PollFd{
			{Fd: int32(d.feed.Fd()), Events: unix.POLLIN},
			{Fd: int32(d.control.Fd()), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(fds, timeout); err != nil {
			d.feed.CancelRead()
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("wait failed: %w", err)
		}
		if fds[0].Revents&unix.POLLNVAL != 0 || fds[1].Revents&unix.POLLNVAL != 0 {
			d.feed.CancelRead()
			return errors.New("wait failed: invalid descriptor")
		}

		if fds[0].Revents&readyEvents != 0 {
			if err := d.feed.ReadEvents(); err != nil {
				return fmt.Errorf("failed to read window events: %w", err)
			}
			if _, err := d.feed.DispatchPending(); err != nil {
				return fmt.Errorf("failed to dispatch window events: %w", err)
			}
		} else {
			d.feed.CancelRead()
		}

		if !lineReady && fds[1].Revents&readyEvents != 0 {
			if err := d.control.Fill(); err != nil {
				return err
			}
		}
		if line, ok := d.control.Next(); ok {
			d.engine.Handle(line)
		}
		if d.control.Done() {
			d.log.Info().Msg("Control channel closed")
			return nil
		}
	}
}

// Close releases every toplevel handle and catalog entry, then closes the
// feed. It is safe to call more than once.
func (d *Daemon) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	toplevels := d.registry.Release()
	descriptors := d.catalog.Release()
	err := d.feed.Close()

	d.log.Info().
		Int("toplevels", toplevels).
		Int("descriptors", descriptors).
		Msg("Released daemon state")
	return err
}
