package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	lines []string
}

func (s *recordingSink) Descriptor(appID, name, genericName, icon, bin, actions string) {
	s.lines = append(s.lines, fmt.Sprintf("%s|%s|%s|%s|%s|%s", appID, name, genericName, icon, bin, actions))
}

func writeDesktop(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

const fooDesktop = `[Desktop Entry]
Type=Application
Name=Foo
Name[de]=Fuh
Icon=foo-icon
Exec=foo %U
Actions=Open;

[Desktop Action Open]
Name=Open New
Exec=foo --new
`

func TestBuilder_Scan_Descriptor(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "foo.desktop", fooDesktop)

	sink := &recordingSink{}
	got := NewBuilder([]string{dir}, ".desktop", sink).Scan()

	require.Len(t, got, 1)
	assert.Equal(t, Descriptor{
		AppID:   "foo",
		Name:    "Foo",
		Icon:    "foo-icon",
		Exec:    "foo",
		Actions: []Action{{Name: "Open New", Exec: "foo --new"}},
	}, got[0])
	assert.Equal(t, "Open New|foo --new", got[0].ActionsField())
	assert.Equal(t, []string{"foo|Foo||foo-icon|foo|Open New|foo --new"}, sink.lines)
}

func TestBuilder_Scan_UserDirectoryWins(t *testing.T) {
	root := t.TempDir()
	user := filepath.Join(root, "user")
	system := filepath.Join(root, "system")
	writeDesktop(t, user, "foo.desktop", "[Desktop Entry]\nName=User Foo\n")
	writeDesktop(t, system, "foo.desktop", "[Desktop Entry]\nName=System Foo\nIcon=system-icon\n")

	got := NewBuilder([]string{user, system}, ".desktop", nil).Scan()

	require.Len(t, got, 1)
	assert.Equal(t, "User Foo", got[0].Name)
	assert.Empty(t, got[0].Icon, "duplicates are skipped, not merged")
}

func TestBuilder_Scan_SkipsMissingAndForeignEntries(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "apps")
	writeDesktop(t, dir, "a.desktop", "Name=A\n")
	writeDesktop(t, dir, "notes.txt", "Name=Nope\n")
	writeDesktop(t, dir, ".desktop", "Name=Bare suffix\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.desktop"), 0755))

	got := NewBuilder([]string{filepath.Join(root, "missing"), dir}, ".desktop", nil).Scan()

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].AppID)
}

func TestBuilder_Scan_UnreadableFileIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	dir := t.TempDir()
	writeDesktop(t, dir, "locked.desktop", "Name=Locked\n")
	require.NoError(t, os.Chmod(filepath.Join(dir, "locked.desktop"), 0))
	writeDesktop(t, dir, "open.desktop", "Name=Open\n")

	got := NewBuilder([]string{dir}, ".desktop", nil).Scan()

	require.Len(t, got, 1)
	assert.Equal(t, "open", got[0].AppID)
}

func TestBuilder_Scan_MissingFieldsAreEmpty(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "bare.desktop", "[Desktop Entry]\n")

	got := NewBuilder([]string{dir}, ".desktop", nil).Scan()

	require.Len(t, got, 1)
	assert.Equal(t, Descriptor{AppID: "bare"}, got[0])
	assert.Equal(t, "", got[0].ActionsField())
}

func TestBuilder_Rebuild_ReplacesCatalog(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "a.desktop", "Name=A\n")
	writeDesktop(t, dir, "b.desktop", "Name=B\n")

	c := New()
	b := NewBuilder([]string{dir}, ".desktop", nil)
	assert.Equal(t, 2, b.Rebuild(c))

	require.NoError(t, os.Remove(filepath.Join(dir, "b.desktop")))
	assert.Equal(t, 1, b.Rebuild(c))
	_, ok := c.Get("b")
	assert.False(t, ok)
}
