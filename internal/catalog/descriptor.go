// Package catalog builds the in-memory catalog of installed application
// descriptors and resolves window identities against it.
package catalog

import "strings"

// Action is one entry of a descriptor's Actions list
type Action struct {
	Name string `json:"name"`
	Exec string `json:"exec"`
}

// Descriptor represents one installed application found by a scan.
// Missing fields are empty strings.
type Descriptor struct {
	AppID       string   `json:"app_id"`
	Name        string   `json:"name"`
	GenericName string   `json:"generic_name"`
	Icon        string   `json:"icon"`
	Exec        string   `json:"exec"`
	Actions     []Action `json:"actions"`
}

// ActionsField serializes the actions as Name|Exec entries joined by ';'
func (d Descriptor) ActionsField() string {
	parts := make([]string, 0, len(d.Actions))
	for _, a := range d.Actions {
		parts = append(parts, a.Name+"|"+a.Exec)
	}
	return strings.Join(parts, ";")
}

// Catalog holds the descriptors of the most recent scan in scan order.
// It is owned by a single goroutine.
type Catalog struct {
	entries []Descriptor
	index   map[string]int
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Len returns the number of descriptors
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Get returns the descriptor with the given application id
func (c *Catalog) Get(appID string) (Descriptor, bool) {
	i, ok := c.index[appID]
	if !ok {
		return Descriptor{}, false
	}
	return c.entries[i], true
}

// All returns a copy of every descriptor in scan order
func (c *Catalog) All() []Descriptor {
	return append([]Descriptor(nil), c.entries...)
}

// Replace swaps in the result of a new scan. Duplicate ids keep the
// first occurrence.
func (c *Catalog) Replace(entries []Descriptor) {
	c.entries = make([]Descriptor, 0, len(entries))
	c.index = make(map[string]int, len(entries))
	for _, d := range entries {
		if _, dup := c.index[d.AppID]; dup {
			continue
		}
		c.index[d.AppID] = len(c.entries)
		c.entries = append(c.entries, d)
	}
}

// Release drops every descriptor and returns how many were held
func (c *Catalog) Release() int {
	n := len(c.entries)
	c.entries = nil
	c.index = make(map[string]int)
	return n
}
