package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCatalog() *Catalog {
	c := New()
	c.Replace([]Descriptor{
		{AppID: "org.mozilla.firefox", Name: "Firefox"},
		{AppID: "settings-a", Name: "Settings"},
		{AppID: "settings-b", Name: "Settings"},
		{AppID: "nameless", Name: ""},
	})
	return c
}

func TestCatalog_Resolve(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		name  string
		appID string
		title string
		want  string
	}{
		{"direct match wins over title", "settings-b", "Firefox", "settings-b"},
		{"title fallback", "firefox", "Firefox", "org.mozilla.firefox"},
		{"title fallback without app id", "", "Firefox", "org.mozilla.firefox"},
		{"first entry wins ties", "unknown", "Settings", "settings-a"},
		{"no match keeps reported id", "unknown", "Some Title", "unknown"},
		{"nothing known", "", "", ""},
		{"empty names never match empty titles", "", "", ""},
		{"exact title only", "x", "Firefox Nightly", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Resolve(tt.appID, tt.title))
		})
	}
}

func TestCatalog_ResolveIsIdempotent(t *testing.T) {
	c := testCatalog()

	first := c.Resolve("firefox", "Firefox")
	assert.Equal(t, first, c.Resolve("firefox", "Firefox"))
}

func TestCatalog_ReplaceKeepsFirstDuplicate(t *testing.T) {
	c := New()
	c.Replace([]Descriptor{{AppID: "a", Name: "One"}, {AppID: "a", Name: "Two"}})

	assert.Equal(t, 1, c.Len())
	d, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "One", d.Name)
}

func TestCatalog_Release(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, 4, c.Release())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "firefox", c.Resolve("firefox", "Firefox"))
}
