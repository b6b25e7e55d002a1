package wayland

import (
	"errors"
	"fmt"

	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/bryanchriswhite/toplevelmon/internal/window"
	"github.com/rs/zerolog"
)

const (
	registryBind = 0

	registryEventGlobal       = 0
	registryEventGlobalRemove = 1

	managerInterface = "zwlr_foreign_toplevel_manager_v1"
	managerVersion   = 3
	seatInterface    = "wl_seat"
	seatVersion      = 1
)

// ErrNoToplevelManager is returned when the compositor does not offer the
// foreign toplevel management protocol
var ErrNoToplevelManager = errors.New("compositor does not support " + managerInterface)

// Client is a connection with the toplevel manager, and optionally a seat,
// bound. Toplevel events are delivered to the handler passed to Connect.
type Client struct {
	*Conn
	handler  window.EventHandler
	bindSeat bool
	manager  *manager
	seat     *seat
	log      *zerolog.Logger
}

// Connect dials the compositor and performs the two-roundtrip binding
// handshake
func Connect(handler window.EventHandler, bindSeat bool) (*Client, error) {
	conn, err := Dial()
	if err != nil {
		return nil, err
	}
	c, err := newClient(conn, handler, bindSeat)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func newClient(conn *Conn, handler window.EventHandler, bindSeat bool) (*Client, error) {
	c := &Client{
		Conn:     conn,
		handler:  handler,
		bindSeat: bindSeat,
		log:      logger.WithComponent("wayland"),
	}

	reg := &registry{client: c}
	reg.id = conn.allocate(reg)
	conn.send(newMessage(displayID, displayGetRegistry).uint(reg.id))

	// The first roundtrip collects globals and sends the binds, the
	// second delivers the manager's initial toplevel announcements.
	for i := 0; i < 2; i++ {
		if err := conn.Roundtrip(); err != nil {
			return nil, fmt.Errorf("registry roundtrip failed: %w", err)
		}
	}

	if c.manager == nil {
		return nil, ErrNoToplevelManager
	}
	if c.seat == nil && bindSeat {
		c.log.Warn().Msg("No wl_seat advertised, ACTIVATE will be ignored")
	}
	return c, nil
}

// Seat returns the bound seat, or nil when none is available
func (c *Client) Seat() window.Seat {
	if c.seat == nil {
		return nil
	}
	return c.seat
}

func (c *Client) global(reg *registry, name uint32, iface string, version uint32) {
	switch iface {
	case managerInterface:
		if c.manager != nil {
			return
		}
		m := &manager{client: c}
		m.id = reg.bind(name, iface, min(version, managerVersion), m)
		c.manager = m
		c.log.Info().Uint32("version", min(version, managerVersion)).Msg("Bound toplevel manager")
	case seatInterface:
		if !c.bindSeat || c.seat != nil {
			return
		}
		s := &seat{}
		s.id = reg.bind(name, iface, seatVersion, s)
		c.seat = s
		c.log.Info().Uint32("name", name).Msg("Bound seat")
	}
}

type registry struct {
	id     uint32
	client *Client
}

func (o *registry) bind(name uint32, iface string, version uint32, target object) uint32 {
	conn := o.client.Conn
	id := conn.allocate(target)
	conn.send(newMessage(o.id, registryBind).uint(name).string(iface).uint(version).uint(id))
	return id
}

func (o *registry) dispatch(opcode uint16, d *decoder) error {
	switch opcode {
	case registryEventGlobal:
		name := d.uint()
		iface := d.string()
		version := d.uint()
		if d.err != nil {
			return nil
		}
		o.client.global(o, name, iface, version)
	case registryEventGlobalRemove:
		o.client.log.Debug().Uint32("name", d.uint()).Msg("Global removed")
	}
	return nil
}

type seat struct {
	id uint32
}

// SeatID implements window.Seat
func (s *seat) SeatID() uint32 {
	return s.id
}

func (s *seat) dispatch(uint16, *decoder) error {
	return nil
}
