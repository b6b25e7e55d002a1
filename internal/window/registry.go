package window

import (
	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/rs/zerolog"
)

// Resolver maps a reported application id and title to the id shown to
// the shell
type Resolver interface {
	Resolve(appID, title string) string
}

// Reporter receives the registry's status lines
type Reporter interface {
	New(id uint32)
	Update(id uint32, appID, state, title string)
	Closed(id uint32)
}

// Info is a snapshot of one toplevel's attributes
type Info struct {
	ID    uint32
	Title string
	AppID string
	State State
}

type toplevel struct {
	info   Info
	handle Handle
}

// Registry owns every open toplevel. It is driven by a window feed and
// queried by the command engine, all on one goroutine.
type Registry struct {
	nextID    uint32
	toplevels []*toplevel
	resolver  Resolver
	out       Reporter
	log       *zerolog.Logger
}

var _ EventHandler = (*Registry)(nil)

// NewRegistry creates an empty registry. Ids start at 1.
func NewRegistry(resolver Resolver, out Reporter) *Registry {
	return &Registry{
		nextID:   1,
		resolver: resolver,
		out:      out,
		log:      logger.WithComponent("registry"),
	}
}

// Opened registers a toplevel whose attributes are not known yet
func (r *Registry) Opened(h Handle) uint32 {
	t := &toplevel{info: Info{ID: r.nextID}, handle: h}
	r.nextID++
	r.toplevels = append(r.toplevels, t)

	r.log.Debug().Uint32("id", t.info.ID).Msg("Toplevel opened")
	r.out.New(t.info.ID)
	return t.info.ID
}

// Title replaces the toplevel's title
func (r *Registry) Title(id uint32, title string) {
	if t := r.lookup(id); t != nil {
		t.info.Title = title
	}
}

// AppID replaces the toplevel's reported application id
func (r *Registry) AppID(id uint32, appID string) {
	if t := r.lookup(id); t != nil {
		t.info.AppID = appID
	}
}

// State replaces the toplevel's flag set
func (r *Registry) State(id uint32, states []uint32) {
	if t := r.lookup(id); t != nil {
		t.info.State = StateFromWire(states)
	}
}

// Done reports the toplevel's current attributes
func (r *Registry) Done(id uint32) {
	if t := r.lookup(id); t != nil {
		r.report(t)
	}
}

// Closed removes the toplevel and releases its handle
func (r *Registry) Closed(id uint32) {
	i := r.index(id)
	if i < 0 {
		r.log.Debug().Uint32("id", id).Msg("Close for unknown toplevel")
		return
	}
	t := r.toplevels[i]
	r.toplevels = append(r.toplevels[:i], r.toplevels[i+1:]...)
	t.handle.Release()

	r.log.Debug().Uint32("id", id).Msg("Toplevel closed")
	r.out.Closed(id)
}

// Len returns the number of open toplevels
func (r *Registry) Len() int {
	return len(r.toplevels)
}

// List returns a snapshot of every open toplevel, oldest first
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.toplevels))
	for _, t := range r.toplevels {
		infos = append(infos, t.info)
	}
	return infos
}

// Find returns the toplevel with the given id
func (r *Registry) Find(id uint32) (Info, bool) {
	if t := r.lookup(id); t != nil {
		return t.info, true
	}
	return Info{}, false
}

// ReportAll emits an update line for every open toplevel
func (r *Registry) ReportAll() {
	for _, t := range r.toplevels {
		r.report(t)
	}
}

// Activate asks the compositor to focus the toplevel. It does nothing
// without a seat or for an unknown id.
func (r *Registry) Activate(id uint32, seat Seat) bool {
	if seat == nil {
		return false
	}
	t := r.lookup(id)
	if t == nil {
		return false
	}
	t.handle.Activate(seat)
	return true
}

// Minimize asks the compositor to minimize the toplevel
func (r *Registry) Minimize(id uint32) bool {
	t := r.lookup(id)
	if t == nil {
		return false
	}
	t.handle.Minimize()
	return true
}

// Unminimize asks the compositor to restore the toplevel
func (r *Registry) Unminimize(id uint32) bool {
	t := r.lookup(id)
	if t == nil {
		return false
	}
	t.handle.Unminimize()
	return true
}

// Close asks the compositor to close the toplevel. The entry stays until
// the feed reports the closure.
func (r *Registry) Close(id uint32) bool {
	t := r.lookup(id)
	if t == nil {
		return false
	}
	t.handle.Close()
	return true
}

// MinimizeAll minimizes every open toplevel and returns how many
func (r *Registry) MinimizeAll() int {
	for _, t := range r.toplevels {
		t.handle.Minimize()
	}
	return len(r.toplevels)
}

// Release drops every toplevel, releasing each handle once, and returns
// how many were held
func (r *Registry) Release() int {
	n := len(r.toplevels)
	for _, t := range r.toplevels {
		t.handle.Release()
	}
	r.toplevels = nil
	return n
}

func (r *Registry) report(t *toplevel) {
	appID := t.info.AppID
	if r.resolver != nil {
		appID = r.resolver.Resolve(t.info.AppID, t.info.Title)
	}
	r.out.Update(t.info.ID, appID, t.info.State.String(), t.info.Title)
}

func (r *Registry) lookup(id uint32) *toplevel {
	if i := r.index(id); i >= 0 {
		return r.toplevels[i]
	}
	return nil
}

func (r *Registry) index(id uint32) int {
	for i, t := range r.toplevels {
		if t.info.ID == id {
			return i
		}
	}
	return -1
}
