package protocol

import (
	"errors"

	"github.com/bryanchriswhite/toplevelmon/internal/catalog"
	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/bryanchriswhite/toplevelmon/internal/window"
	"github.com/rs/zerolog"
)

// Controller is the part of the toplevel registry the engine drives
type Controller interface {
	Activate(id uint32, seat window.Seat) bool
	Minimize(id uint32) bool
	Unminimize(id uint32) bool
	Close(id uint32) bool
	MinimizeAll() int
	ReportAll()
}

// Marker receives the end-of-scan line
type Marker interface {
	QueryDone()
}

// Engine dispatches control lines against the registry and catalog
type Engine struct {
	registry Controller
	catalog  *catalog.Catalog
	builder  *catalog.Builder
	seat     window.Seat
	out      Marker
	launcher Launcher
	log      *zerolog.Logger
}

// Options configures an Engine
type Options struct {
	Registry Controller
	Catalog  *catalog.Catalog
	Builder  *catalog.Builder
	// Seat may be nil, in which case ACTIVATE does nothing
	Seat     window.Seat
	Out      Marker
	Launcher Launcher
}

// NewEngine creates an engine
func NewEngine(opts Options) *Engine {
	launcher := opts.Launcher
	if launcher == nil {
		launcher = ExecLauncher{}
	}
	return &Engine{
		registry: opts.Registry,
		catalog:  opts.Catalog,
		builder:  opts.Builder,
		seat:     opts.Seat,
		out:      opts.Out,
		launcher: launcher,
		log:      logger.WithComponent("protocol"),
	}
}

// Handle parses and executes one control line. Blank, unknown and
// malformed lines are ignored.
func (e *Engine) Handle(line string) {
	cmd, err := Parse(line)
	if err != nil {
		if !errors.Is(err, ErrEmpty) {
			e.log.Debug().Err(err).Str("line", line).Msg("Ignoring control line")
		}
		return
	}
	e.Execute(cmd)
}

// Execute runs a parsed command
func (e *Engine) Execute(cmd Command) {
	e.log.Debug().Str("verb", string(cmd.Verb)).Uint32("id", cmd.ID).Msg("Command")

	switch cmd.Verb {
	case VerbQuery:
		e.builder.Rebuild(e.catalog)
		e.out.QueryDone()
	case VerbMinimizeAll:
		e.registry.MinimizeAll()
	case VerbActivate:
		e.registry.Activate(cmd.ID, e.seat)
	case VerbMinimize:
		e.registry.Minimize(cmd.ID)
	case VerbUnminimize:
		e.registry.Unminimize(cmd.ID)
	case VerbClose:
		e.registry.Close(cmd.ID)
	case VerbList:
		e.registry.ReportAll()
	case VerbLaunch:
		e.launch(cmd.AppID)
	}
}

func (e *Engine) launch(appID string) {
	d, ok := e.catalog.Get(appID)
	if !ok {
		e.log.Debug().Str("app_id", appID).Msg("Launch of unknown application")
		return
	}
	argv, err := SplitCommand(d.Exec)
	if err != nil {
		e.log.Warn().Err(err).Str("app_id", appID).Msg("Cannot launch application")
		return
	}
	if err := e.launcher.Launch(argv); err != nil {
		e.log.Warn().Err(err).Str("app_id", appID).Msg("Launch failed")
		return
	}
	e.log.Info().Str("app_id", appID).Strs("argv", argv).Msg("Launched application")
}
