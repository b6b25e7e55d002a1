package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/toplevelmon/internal/catalog"
	"github.com/bryanchriswhite/toplevelmon/internal/daemon"
	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/bryanchriswhite/toplevelmon/internal/output"
	"github.com/bryanchriswhite/toplevelmon/internal/protocol"
	"github.com/bryanchriswhite/toplevelmon/internal/wayland"
	"github.com/bryanchriswhite/toplevelmon/internal/window"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the window tracking daemon",
	Long: `Connect to the compositor, print DAEMON_READY and serve control
commands from standard input until it is closed.

Control commands:
  QUERY              rescan application descriptors
  LIST               report every open window again
  ACTIVATE <id>      focus a window
  MINIMIZE <id>      minimize a window
  UNMINIMIZE <id>    restore a window
  CLOSE <id>         ask a window to close
  MINIMIZEALL        minimize every window
  LAUNCH <appid>     start an application from the catalog`,
	Example: `  # Drive the daemon by hand
  printf 'QUERY\n' | toplevelmon daemon --log-level debug`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	logger.Init(cfg.LogLevel, cfg.LogPretty)
	log := logger.WithComponent("main")
	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Strs("application_dirs", cfg.ApplicationDirs).
		Msg("Starting toplevelmon")

	out := output.NewEmitter(os.Stdout)
	cat := catalog.New()
	registry := window.NewRegistry(cat, out)

	client, err := wayland.Connect(registry, cfg.Seat)
	if err != nil {
		log.Error().Err(err).Msg("Startup failed")
		return fmt.Errorf("failed to connect to compositor: %w", err)
	}

	engine := protocol.NewEngine(protocol.Options{
		Registry: registry,
		Catalog:  cat,
		Builder:  catalog.NewBuilder(cfg.ApplicationDirs, cfg.DescriptorSuffix, out),
		Seat:     client.Seat(),
		Out:      out,
	})

	d := daemon.New(daemon.Options{
		Feed:     client,
		Control:  daemon.NewLineReader(int(os.Stdin.Fd())),
		Registry: registry,
		Catalog:  cat,
		Engine:   engine,
		Out:      out,
	})

	runErr := d.Run()
	if err := d.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close compositor connection")
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("Daemon stopped")
		return runErr
	}

	log.Info().Msg("Shut down")
	return nil
}
