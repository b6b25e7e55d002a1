package wayland

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/bryanchriswhite/toplevelmon/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerEvent struct {
	kind   string
	id     uint32
	text   string
	states []uint32
}

// eventLog records feed events and releases handles on close, the way
// the registry does
type eventLog struct {
	events  []handlerEvent
	handles map[uint32]window.Handle
	next    uint32
}

func newEventLog() *eventLog {
	return &eventLog{handles: map[uint32]window.Handle{}, next: 1}
}

func (l *eventLog) Opened(h window.Handle) uint32 {
	id := l.next
	l.next++
	l.handles[id] = h
	l.events = append(l.events, handlerEvent{kind: "opened", id: id})
	return id
}

func (l *eventLog) Title(id uint32, title string) {
	l.events = append(l.events, handlerEvent{kind: "title", id: id, text: title})
}

func (l *eventLog) AppID(id uint32, appID string) {
	l.events = append(l.events, handlerEvent{kind: "app_id", id: id, text: appID})
}

func (l *eventLog) State(id uint32, states []uint32) {
	l.events = append(l.events, handlerEvent{kind: "state", id: id, states: states})
}

func (l *eventLog) Done(id uint32) {
	l.events = append(l.events, handlerEvent{kind: "done", id: id})
}

func (l *eventLog) Closed(id uint32) {
	l.events = append(l.events, handlerEvent{kind: "closed", id: id})
	l.handles[id].Release()
	delete(l.handles, id)
}

// serveHandshake plays the compositor side of newClient: it advertises
// globals, acknowledges both syncs and announces toplevels during the
// second roundtrip. It returns the binds it saw.
func serveHandshake(p *peer, globals map[uint32]string, toplevels []uint32) (map[string][2]uint32, error) {
	binds := map[string][2]uint32{}

	m, err := p.next()
	if err != nil {
		return nil, err
	}
	if m.opcode != displayGetRegistry {
		return nil, fmt.Errorf("expected get_registry, got opcode %d", m.opcode)
	}
	registryID := binary.LittleEndian.Uint32(m.body)

	m, err = p.next()
	if err != nil {
		return nil, err
	}
	sync1 := binary.LittleEndian.Uint32(m.body)

	var out []byte
	for name := uint32(1); name <= uint32(len(globals)); name++ {
		out = append(out, newMessage(registryID, registryEventGlobal).uint(name).string(globals[name]).uint(7).bytes()...)
	}
	out = append(out, newMessage(sync1, 0).uint(0).bytes()...)
	out = append(out, newMessage(displayID, displayEventDeleteID).uint(sync1).bytes()...)
	if _, err := p.f.Write(out); err != nil {
		return nil, err
	}

	var managerID uint32
	for {
		m, err = p.next()
		if err != nil {
			return nil, err
		}
		if m.sender == displayID && m.opcode == displaySync {
			break
		}
		d := &decoder{b: m.body}
		d.uint()
		iface := d.string()
		version := d.uint()
		id := d.uint()
		binds[iface] = [2]uint32{version, id}
		if iface == managerInterface {
			managerID = id
		}
	}
	sync2 := binary.LittleEndian.Uint32(m.body)

	out = nil
	for _, id := range toplevels {
		out = append(out, newMessage(managerID, managerEventToplevel).uint(id).bytes()...)
	}
	out = append(out, newMessage(sync2, 0).uint(0).bytes()...)
	_, err = p.f.Write(out)
	return binds, err
}

type handshakeResult struct {
	binds map[string][2]uint32
	err   error
}

func TestNewClient_Handshake(t *testing.T) {
	conn, p := newTestConn(t)
	log := newEventLog()

	done := make(chan handshakeResult, 1)
	go func() {
		binds, err := serveHandshake(p, map[uint32]string{
			1: "wl_compositor",
			2: managerInterface,
			3: seatInterface,
		}, []uint32{serverIDStart})
		done <- handshakeResult{binds, err}
	}()

	c, err := newClient(conn, log, true)
	require.NoError(t, err)
	res := <-done
	require.NoError(t, res.err)

	assert.Equal(t, uint32(managerVersion), res.binds[managerInterface][0], "manager version is capped")
	assert.Equal(t, uint32(seatVersion), res.binds[seatInterface][0])
	assert.NotContains(t, res.binds, "wl_compositor")

	require.NotNil(t, c.Seat())
	assert.Equal(t, res.binds[seatInterface][1], c.Seat().SeatID())
	require.Len(t, log.events, 1)
	assert.Equal(t, "opened", log.events[0].kind)
}

func TestNewClient_WithoutSeatBinding(t *testing.T) {
	conn, p := newTestConn(t)

	done := make(chan handshakeResult, 1)
	go func() {
		binds, err := serveHandshake(p, map[uint32]string{1: seatInterface, 2: managerInterface}, nil)
		done <- handshakeResult{binds, err}
	}()

	c, err := newClient(conn, newEventLog(), false)
	require.NoError(t, err)
	res := <-done
	require.NoError(t, res.err)

	assert.Nil(t, c.Seat())
	assert.NotContains(t, res.binds, seatInterface)
}

func TestNewClient_NoManager(t *testing.T) {
	conn, p := newTestConn(t)

	done := make(chan handshakeResult, 1)
	go func() {
		binds, err := serveHandshake(p, map[uint32]string{1: seatInterface}, nil)
		done <- handshakeResult{binds, err}
	}()

	_, err := newClient(conn, newEventLog(), true)
	assert.ErrorIs(t, err, ErrNoToplevelManager)
	require.NoError(t, (<-done).err)
}

// boundClient builds a client whose manager is already bound
func boundClient(t *testing.T) (*Client, *peer, *eventLog) {
	t.Helper()
	conn, p := newTestConn(t)
	log := newEventLog()
	c := &Client{Conn: conn, handler: log, log: conn.log}
	c.manager = &manager{client: c}
	c.manager.id = conn.allocate(c.manager)
	return c, p, log
}

func TestClient_ToplevelEvents(t *testing.T) {
	c, p, log := boundClient(t)
	const hid = serverIDStart + 4

	p.send(
		newMessage(c.manager.id, managerEventToplevel).uint(hid),
		newMessage(hid, handleEventAppID).string("firefox"),
		newMessage(hid, handleEventTitle).string("Mozilla Firefox"),
		newMessage(hid, handleEventOutputEnter).uint(9),
		newMessage(hid, handleEventState).array([]byte{0, 0, 0, 0, 2, 0, 0, 0}),
		newMessage(hid, handleEventParent).uint(0),
		newMessage(hid, handleEventDone),
		newMessage(hid, handleEventClosed),
		newMessage(hid, handleEventTitle).string("after close"),
	)
	pump(t, c.Conn)

	assert.Equal(t, []handlerEvent{
		{kind: "opened", id: 1},
		{kind: "app_id", id: 1, text: "firefox"},
		{kind: "title", id: 1, text: "Mozilla Firefox"},
		{kind: "state", id: 1, states: []uint32{0, 2}},
		{kind: "done", id: 1},
		{kind: "closed", id: 1},
	}, log.events)

	require.NoError(t, c.Flush())
	m, err := p.next()
	require.NoError(t, err)
	assert.Equal(t, uint32(hid), m.sender)
	assert.Equal(t, uint16(handleDestroy), m.opcode)
	assert.Empty(t, m.body)
}

func TestClient_HandleRequests(t *testing.T) {
	c, p, log := boundClient(t)
	const hid = serverIDStart

	p.send(newMessage(c.manager.id, managerEventToplevel).uint(hid))
	pump(t, c.Conn)
	h := log.handles[1]
	require.NotNil(t, h)

	s := &seat{id: 12}
	h.Activate(s)
	h.Minimize()
	h.Unminimize()
	h.Close()
	h.Release()
	h.Release()
	h.Minimize()
	require.NoError(t, c.Flush())

	want := []struct {
		opcode uint16
		body   []byte
	}{
		{handleActivate, []byte{12, 0, 0, 0}},
		{handleSetMinimized, nil},
		{handleUnsetMinimized, nil},
		{handleClose, nil},
		{handleDestroy, nil},
	}
	for _, w := range want {
		m, err := p.next()
		require.NoError(t, err)
		assert.Equal(t, uint32(hid), m.sender)
		assert.Equal(t, w.opcode, m.opcode)
		if w.body == nil {
			assert.Empty(t, m.body)
		} else {
			assert.Equal(t, w.body, m.body)
		}
	}
	assert.NotContains(t, c.objects, uint32(hid))
}
