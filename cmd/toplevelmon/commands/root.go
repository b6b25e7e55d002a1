package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/toplevelmon/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "toplevelmon",
		Short: "toplevelmon - Wayland window tracking daemon for desktop shells",
		Long: `toplevelmon tracks the top-level windows of a wlroots compositor and
reports them, one status line at a time, on standard output. A desktop
shell drives it with line commands on standard input.

Features:
  • Track window titles, application ids and states
  • Activate, minimize, restore and close windows
  • Scan installed application descriptors
  • Resolve window identities against the catalog
  • Launch applications from the catalog`,
		Example: `  # Run the daemon (default command)
  toplevelmon

  # Run with debug logging on stderr
  toplevelmon --log-level debug --log-pretty`,
		SilenceUsage: true,
		RunE:         runDaemon,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/toplevelmon/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human readable logs on stderr")
	rootCmd.PersistentFlags().StringSlice("app-dir", nil, "application descriptor directory, highest priority first (repeatable)")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))
	viper.BindPFlag("application_dirs", rootCmd.PersistentFlags().Lookup("app-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig reads the config file and applies any flag that was set
func loadConfig() (*config.Manager, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			configMgr.SetLogLevel(level)
		}
	}
	if viper.IsSet("log_pretty") {
		configMgr.SetLogPretty(viper.GetBool("log_pretty"))
	}
	if viper.IsSet("application_dirs") {
		if dirs := viper.GetStringSlice("application_dirs"); len(dirs) > 0 {
			configMgr.SetApplicationDirs(dirs)
		}
	}

	return configMgr, nil
}
