// Package clicks reports pointer button presses read straight from evdev
// devices.
package clicks

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// DefaultPattern matches every evdev node
const DefaultPattern = "/dev/input/event*"

// ErrNoDevices is returned when no input device could be opened, or when
// the last open device went away
var ErrNoDevices = errors.New("no readable input devices")

const (
	// struct input_event on 64-bit: timeval, type, code, value
	eventSize = 24

	evKey    = 0x01
	btnMouse = 0x110
	btnTask  = 0x117
	keyPress = 1
)

// Event is one decoded input_event
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// Press reports whether the event is a pointer button going down
func (e Event) Press() bool {
	return e.Type == evKey && e.Code >= btnMouse && e.Code <= btnTask && e.Value == keyPress
}

// Decode splits b into whole events; a trailing partial event is ignored
func Decode(b []byte) []Event {
	events := make([]Event, 0, len(b)/eventSize)
	for len(b) >= eventSize {
		events = append(events, Event{
			Type:  binary.NativeEndian.Uint16(b[16:18]),
			Code:  binary.NativeEndian.Uint16(b[18:20]),
			Value: int32(binary.NativeEndian.Uint32(b[20:24])),
		})
		b = b[eventSize:]
	}
	return events
}

type device struct {
	path string
	fd   int
}

// Watcher polls a set of input devices
type Watcher struct {
	devices []device
	log     *zerolog.Logger
}

// Open opens every device matching pattern that is readable. Devices that
// cannot be opened are skipped.
func Open(pattern string) (*Watcher, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid device pattern %q: %w", pattern, err)
	}

	w := &Watcher{log: logger.WithComponent("clicks")}
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err != nil {
			w.log.Debug().Err(err).Str("device", path).Msg("Skipping input device")
			continue
		}
		w.devices = append(w.devices, device{path: path, fd: fd})
	}
	if len(w.devices) == 0 {
		return nil, ErrNoDevices
	}
	w.log.Info().Int("devices", len(w.devices)).Msg("Watching input devices")
	return w, nil
}

// Run blocks, calling fn with the button code of every press. It returns
// the first error fn returns, or ErrNoDevices once every device is gone.
func (w *Watcher) Run(fn func(button uint16) error) error {
	buf := make([]byte, eventSize*64)
	for {
		if len(w.devices) == 0 {
			return ErrNoDevices
		}
		fds := make([]unix.PollFd, len(w.devices))
		for i, d := range w.devices {
			fds[i] = unix.PollFd{Fd: int32(d.fd), Events: unix.POLLIN}
		}
		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("wait failed: %w", err)
		}

		var lost []int
		for i, pfd := range fds {
			if pfd.Revents == 0 {
				continue
			}
			n, err := unix.Read(w.devices[i].fd, buf)
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			if err != nil || n == 0 {
				w.log.Warn().Err(err).Str("device", w.devices[i].path).Msg("Input device went away")
				lost = append(lost, i)
				continue
			}
			for _, ev := range Decode(buf[:n]) {
				if !ev.Press() {
					continue
				}
				if err := fn(ev.Code); err != nil {
					return err
				}
			}
		}
		w.drop(lost)
	}
}

func (w *Watcher) drop(lost []int) {
	for j := len(lost) - 1; j >= 0; j-- {
		i := lost[j]
		unix.Close(w.devices[i].fd)
		w.devices = append(w.devices[:i], w.devices[i+1:]...)
	}
}

// Close closes every device
func (w *Watcher) Close() error {
	var errs []error
	for _, d := range w.devices {
		if err := unix.Close(d.fd); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.path, err))
		}
	}
	w.devices = nil
	return errors.Join(errs...)
}
