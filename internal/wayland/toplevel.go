package wayland

import "github.com/bryanchriswhite/toplevelmon/internal/window"

const (
	managerEventToplevel = 0
	managerEventFinished = 1

	handleSetMinimized   = 2
	handleUnsetMinimized = 3
	handleActivate       = 4
	handleClose          = 5
	handleDestroy        = 7

	handleEventTitle       = 0
	handleEventAppID       = 1
	handleEventOutputEnter = 2
	handleEventOutputLeave = 3
	handleEventState       = 4
	handleEventDone        = 5
	handleEventClosed      = 6
	handleEventParent      = 7
)

type manager struct {
	id     uint32
	client *Client
}

func (o *manager) dispatch(opcode uint16, d *decoder) error {
	switch opcode {
	case managerEventToplevel:
		id := d.uint()
		if d.err != nil {
			return nil
		}
		h := &handle{id: id, conn: o.client.Conn}
		o.client.Conn.register(id, h)
		h.handler = o.client.handler
		h.toplevel = h.handler.Opened(h)
	case managerEventFinished:
		o.client.log.Info().Msg("Toplevel manager finished")
	}
	return nil
}

// handle is one zwlr_foreign_toplevel_handle_v1
type handle struct {
	id       uint32
	conn     *Conn
	handler  window.EventHandler
	toplevel uint32
	released bool
}

var _ window.Handle = (*handle)(nil)

func (h *handle) dispatch(opcode uint16, d *decoder) error {
	switch opcode {
	case handleEventTitle:
		title := d.string()
		if d.err == nil {
			h.handler.Title(h.toplevel, title)
		}
	case handleEventAppID:
		appID := d.string()
		if d.err == nil {
			h.handler.AppID(h.toplevel, appID)
		}
	case handleEventState:
		states := d.uints()
		if d.err == nil {
			h.handler.State(h.toplevel, states)
		}
	case handleEventDone:
		h.handler.Done(h.toplevel)
	case handleEventClosed:
		h.handler.Closed(h.toplevel)
	case handleEventOutputEnter, handleEventOutputLeave, handleEventParent:
	}
	return nil
}

func (h *handle) request(opcode uint16) *encoder {
	return newMessage(h.id, opcode)
}

func (h *handle) Activate(s window.Seat) {
	if h.released {
		return
	}
	h.conn.send(h.request(handleActivate).uint(s.SeatID()))
}

func (h *handle) Minimize() {
	if !h.released {
		h.conn.send(h.request(handleSetMinimized))
	}
}

func (h *handle) Unminimize() {
	if !h.released {
		h.conn.send(h.request(handleUnsetMinimized))
	}
}

func (h *handle) Close() {
	if !h.released {
		h.conn.send(h.request(handleClose))
	}
}

// Release sends destroy and forgets the object. Server-allocated ids get
// no delete_id, so the object is dropped right away.
func (h *handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.conn.send(h.request(handleDestroy))
	h.conn.remove(h.id)
}
