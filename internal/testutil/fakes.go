// Package testutil holds fakes shared by package tests.
package testutil

import (
	"fmt"

	"github.com/bryanchriswhite/toplevelmon/internal/window"
)

// Seat is a fixed seat
type Seat uint32

// SeatID implements window.Seat
func (s Seat) SeatID() uint32 { return uint32(s) }

// Handle records every request issued against it
type Handle struct {
	Activations []uint32
	Minimizes   int
	Unminimizes int
	Closes      int
	Releases    int
}

var _ window.Handle = (*Handle)(nil)

func (h *Handle) Activate(seat window.Seat) { h.Activations = append(h.Activations, seat.SeatID()) }
func (h *Handle) Minimize()                 { h.Minimizes++ }
func (h *Handle) Unminimize()               { h.Unminimizes++ }
func (h *Handle) Close()                    { h.Closes++ }
func (h *Handle) Release()                  { h.Releases++ }

// Requests counts every control request, excluding Release
func (h *Handle) Requests() int {
	return len(h.Activations) + h.Minimizes + h.Unminimizes + h.Closes
}

// Reporter records status lines in their wire form
type Reporter struct {
	Lines []string
}

func (r *Reporter) New(id uint32) {
	r.Lines = append(r.Lines, fmt.Sprintf("NEW ID=%d", id))
}

func (r *Reporter) Update(id uint32, appID, state, title string) {
	r.Lines = append(r.Lines, fmt.Sprintf("UPDATE ID=%d APPID=%q STATE=%q TITLE=%q", id, appID, state, title))
}

func (r *Reporter) Closed(id uint32) {
	r.Lines = append(r.Lines, fmt.Sprintf("CLOSED ID=%d", id))
}

// Resolver maps reported ids through a fixed table
type Resolver map[string]string

func (r Resolver) Resolve(appID, title string) string {
	if v, ok := r[appID+"/"+title]; ok {
		return v
	}
	return appID
}
