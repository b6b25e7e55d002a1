package catalog

import (
	"os"
	"strings"

	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/rs/zerolog"
)

// Sink receives one notification per descriptor discovered by a scan
type Sink interface {
	Descriptor(appID, name, genericName, icon, bin, actions string)
}

// Builder scans descriptor directories and fills a Catalog
type Builder struct {
	dirs   []string
	suffix string
	lookup *Lookup
	sink   Sink
	log    *zerolog.Logger
}

// NewBuilder creates a builder over dirs in priority order. sink may be nil.
func NewBuilder(dirs []string, suffix string, sink Sink) *Builder {
	return &Builder{
		dirs:   dirs,
		suffix: suffix,
		lookup: NewLookup(dirs, suffix),
		sink:   sink,
		log:    logger.WithComponent("catalog"),
	}
}

// Scan enumerates every directory and returns one descriptor per distinct
// application id, first directory wins. Unreadable directories and files
// are skipped.
func (b *Builder) Scan() []Descriptor {
	processed := make(map[string]struct{})
	var found []Descriptor

	for _, dir := range b.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			b.log.Debug().Err(err).Str("dir", dir).Msg("Skipping descriptor directory")
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || len(name) <= len(b.suffix) || !strings.HasSuffix(name, b.suffix) {
				continue
			}

			appID := strings.TrimSuffix(name, b.suffix)
			if _, seen := processed[appID]; seen {
				continue
			}
			processed[appID] = struct{}{}

			d, err := b.describe(appID)
			if err != nil {
				b.log.Debug().Err(err).Str("app_id", appID).Msg("Skipping unreadable descriptor")
				continue
			}
			if b.sink != nil {
				b.sink.Descriptor(d.AppID, d.Name, d.GenericName, d.Icon, d.Exec, d.ActionsField())
			}
			found = append(found, d)
		}
	}

	b.log.Info().
		Int("applications", len(found)).
		Int("directories", len(b.dirs)).
		Msg("Descriptor scan complete")

	return found
}

// Rebuild scans and replaces the contents of c
func (b *Builder) Rebuild(c *Catalog) int {
	c.Replace(b.Scan())
	return c.Len()
}

func (b *Builder) describe(appID string) (Descriptor, error) {
	entry, err := b.lookup.Open(appID)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		AppID:       appID,
		Name:        entry.Field("Name"),
		GenericName: entry.Field("GenericName"),
		Icon:        entry.Field("Icon"),
		Exec:        entry.Exec(),
		Actions:     entry.Actions(),
	}, nil
}
