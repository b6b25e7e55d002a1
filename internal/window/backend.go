package window

// Seat is an input seat bound from the compositor. Activation requests
// name the seat they originate from.
type Seat interface {
	SeatID() uint32
}

// Handle is the compositor-side object behind one toplevel. Requests are
// queued on the feed and sent on its next flush.
type Handle interface {
	Activate(seat Seat)
	Minimize()
	Unminimize()
	Close()

	// Release destroys the compositor object. It is called exactly once.
	Release()
}

// EventHandler is driven by a window feed
type EventHandler interface {
	// Opened registers a new window and returns its process-unique id
	Opened(h Handle) uint32
	Title(id uint32, title string)
	AppID(id uint32, appID string)
	// State replaces the flag set with the compositor's state array
	State(id uint32, states []uint32)
	// Done marks the end of one coalesced batch of attribute events
	Done(id uint32)
	Closed(id uint32)
}
