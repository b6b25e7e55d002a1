package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/toplevelmon/internal/clicks"
	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"github.com/spf13/cobra"
)

var waitForClickCmd = &cobra.Command{
	Use:   "wait-for-click",
	Short: "Print every pointer button press",
	Long: `Read all accessible input devices and print one line per pointer
button press. Shells use it to dismiss popups on outside clicks.

Reading /dev/input usually requires membership in the input group.`,
	Example: `  toplevelmon wait-for-click
  Detected click: button 272`,
	RunE: runWaitForClick,
}

var devicePattern string

func init() {
	rootCmd.AddCommand(waitForClickCmd)

	waitForClickCmd.Flags().StringVar(&devicePattern, "devices", clicks.DefaultPattern, "glob of evdev device nodes to read")
}

func runWaitForClick(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	watcher, err := clicks.Open(devicePattern)
	if err != nil {
		return fmt.Errorf("failed to open input devices: %w", err)
	}
	defer watcher.Close()

	return watcher.Run(func(button uint16) error {
		_, err := fmt.Fprintf(os.Stdout, "Detected click: button %d\n", button)
		return err
	})
}
