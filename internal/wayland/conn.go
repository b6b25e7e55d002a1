package wayland

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	displayID = 1

	displaySync        = 0
	displayGetRegistry = 1

	displayEventError    = 0
	displayEventDeleteID = 1

	readChunk = 4096
)

var (
	// ErrDisconnected is returned when the compositor closes the socket
	ErrDisconnected = errors.New("compositor closed the connection")

	errNotPrepared = errors.New("read events without prepare")
)

// ProtocolError is a fatal error reported by the compositor
type ProtocolError struct {
	Object  uint32
	Code    uint32
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wl_display error on object %d code %d: %s", e.Object, e.Code, e.Message)
}

type object interface {
	dispatch(opcode uint16, d *decoder) error
}

// Conn is a single-threaded client connection. Reading follows the
// prepare/read/cancel discipline: PrepareRead fails while decoded events
// are still queued, and every successful PrepareRead is matched by either
// ReadEvents or CancelRead.
type Conn struct {
	fd      int
	objects map[uint32]object
	nextID  uint32
	in      []byte
	out     []byte
	queue   []message
	reading bool
	log     *zerolog.Logger
}

// Dial connects to the compositor named by WAYLAND_SOCKET or
// WAYLAND_DISPLAY
func Dial() (*Conn, error) {
	fd, err := openSocket()
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set socket nonblocking: %w", err)
	}
	return newConn(fd), nil
}

func openSocket() (int, error) {
	if s := os.Getenv("WAYLAND_SOCKET"); s != "" {
		fd, err := strconv.Atoi(s)
		if err != nil {
			return -1, fmt.Errorf("invalid WAYLAND_SOCKET %q: %w", s, err)
		}
		os.Unsetenv("WAYLAND_SOCKET")
		unix.CloseOnExec(fd)
		return fd, nil
	}

	path, err := SocketPath()
	if err != nil {
		return -1, err
	}
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("failed to create socket: %w", err)
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("failed to connect to %s: %w", path, err)
	}
	return fd, nil
}

// SocketPath resolves WAYLAND_DISPLAY, defaulting to wayland-0, against
// XDG_RUNTIME_DIR unless it is absolute
func SocketPath() (string, error) {
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, display), nil
}

func newConn(fd int) *Conn {
	c := &Conn{
		fd:      fd,
		objects: make(map[uint32]object),
		nextID:  displayID + 1,
		log:     logger.WithComponent("wayland"),
	}
	c.objects[displayID] = &display{conn: c}
	return c
}

// Fd returns the socket descriptor for readiness waits
func (c *Conn) Fd() int {
	return c.fd
}

func (c *Conn) allocate(o object) uint32 {
	id := c.nextID
	c.nextID++
	c.objects[id] = o
	return id
}

func (c *Conn) register(id uint32, o object) {
	c.objects[id] = o
}

func (c *Conn) remove(id uint32) {
	delete(c.objects, id)
}

func (c *Conn) send(e *encoder) {
	c.out = append(c.out, e.bytes()...)
}

// Flush writes every queued request, waiting for the socket to drain
func (c *Conn) Flush() error {
	for len(c.out) > 0 {
		n, err := unix.Write(c.fd, c.out)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			if err := c.wait(unix.POLLOUT); err != nil {
				return err
			}
			continue
		case err != nil:
			return fmt.Errorf("failed to write requests: %w", err)
		}
		c.out = c.out[n:]
	}
	c.out = nil
	return nil
}

// PrepareRead announces an intent to read. It returns false while
// already-read events wait to be dispatched.
func (c *Conn) PrepareRead() bool {
	if len(c.queue) > 0 {
		return false
	}
	c.reading = true
	return true
}

// CancelRead abandons a prepared read
func (c *Conn) CancelRead() {
	c.reading = false
}

// ReadEvents performs one nonblocking read and queues every complete
// message. It must follow a successful PrepareRead.
func (c *Conn) ReadEvents() error {
	if !c.reading {
		return errNotPrepared
	}
	c.reading = false

	buf := make([]byte, readChunk)
	for {
		n, err := unix.Read(c.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read events: %w", err)
		}
		if n == 0 {
			return ErrDisconnected
		}
		c.in = append(c.in, buf[:n]...)
		break
	}
	return c.decode()
}

func (c *Conn) decode() error {
	for len(c.in) >= headerSize {
		sender, opcode, size := parseHeader(c.in)
		if size < headerSize || size%wordSize != 0 {
			return fmt.Errorf("invalid message size %d from object %d", size, sender)
		}
		if len(c.in) < size {
			break
		}
		body := append([]byte(nil), c.in[headerSize:size]...)
		c.queue = append(c.queue, message{sender: sender, opcode: opcode, body: body})
		c.in = c.in[size:]
	}
	if len(c.in) == 0 {
		c.in = nil
	}
	return nil
}

// DispatchPending delivers every queued event and returns how many were
// delivered. Events for objects no longer known are dropped.
func (c *Conn) DispatchPending() (int, error) {
	n := 0
	for len(c.queue) > 0 {
		m := c.queue[0]
		c.queue = c.queue[1:]

		o, ok := c.objects[m.sender]
		if !ok {
			c.log.Debug().Uint32("object", m.sender).Uint16("opcode", m.opcode).Msg("Dropping event for unknown object")
			continue
		}
		d := &decoder{b: m.body}
		if err := o.dispatch(m.opcode, d); err != nil {
			return n, err
		}
		if d.err != nil {
			return n, fmt.Errorf("malformed event %d on object %d: %w", m.opcode, m.sender, d.err)
		}
		n++
	}
	c.queue = nil
	return n, nil
}

// Roundtrip blocks until the compositor has processed every request sent
// so far, dispatching events as they arrive
func (c *Conn) Roundtrip() error {
	cb := &callback{}
	c.send(newMessage(displayID, displaySync).uint(c.allocate(cb)))

	for !cb.done {
		if err := c.Flush(); err != nil {
			return err
		}
		if !c.PrepareRead() {
			if _, err := c.DispatchPending(); err != nil {
				return err
			}
			continue
		}
		if err := c.wait(unix.POLLIN); err != nil {
			c.CancelRead()
			return err
		}
		if err := c.ReadEvents(); err != nil {
			return err
		}
		if _, err := c.DispatchPending(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Conn) wait(events int16) error {
	fds := []unix.PollFd{{Fd: int32(c.fd), Events: events}}
	for {
		_, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to wait on compositor socket: %w", err)
		}
		return nil
	}
}

// Close flushes pending requests and closes the socket
func (c *Conn) Close() error {
	if c.fd < 0 {
		return nil
	}
	if err := c.Flush(); err != nil {
		c.log.Debug().Err(err).Msg("Failed to flush on close")
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}

type display struct {
	conn *Conn
}

func (o *display) dispatch(opcode uint16, d *decoder) error {
	switch opcode {
	case displayEventError:
		object := d.uint()
		code := d.uint()
		msg := d.string()
		if d.err != nil {
			return d.err
		}
		return &ProtocolError{Object: object, Code: code, Message: msg}
	case displayEventDeleteID:
		o.conn.remove(d.uint())
	}
	return nil
}

type callback struct {
	done bool
}

func (o *callback) dispatch(opcode uint16, d *decoder) error {
	if opcode == 0 {
		d.uint()
		o.done = true
	}
	return nil
}
