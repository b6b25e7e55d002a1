package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bryanchriswhite/toplevelmon/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDescriptorSuffix is the file suffix of application descriptors
	DefaultDescriptorSuffix = ".desktop"

	systemApplicationsDir  = "/usr/share/applications"
	flatpakApplicationsDir = "/var/lib/flatpak/exports/share/applications"
)

// Config represents the daemon configuration
type Config struct {
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogPretty bool   `json:"log_pretty" yaml:"log_pretty"`

	// ApplicationDirs is the ordered list of descriptor directories.
	// Earlier directories win when two contain the same application id.
	ApplicationDirs  []string `json:"application_dirs" yaml:"application_dirs"`
	DescriptorSuffix string   `json:"descriptor_suffix" yaml:"descriptor_suffix"`

	// Seat controls whether an input seat is bound for ACTIVATE.
	Seat bool `json:"seat" yaml:"seat"`
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// DefaultPath returns $HOME/.config/toplevelmon/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "toplevelmon", "config.yaml"), nil
}

// NewManager creates a configuration manager. A missing config file is not
// an error; defaults are used and nothing is written.
func NewManager(configFile string) (*Manager, error) {
	path := configFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	m := &Manager{configPath: path}

	if err := m.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.WithComponent("config").Debug().
			Str("path", m.configPath).
			Msg("Config file not found, using defaults")
		m.config = Defaults()
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Strs("application_dirs", m.config.ApplicationDirs).
		Msg("Config loaded")

	return m, nil
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		LogLevel:         "info",
		ApplicationDirs:  DefaultApplicationDirs(),
		DescriptorSuffix: DefaultDescriptorSuffix,
		Seat:             true,
	}
}

// DefaultApplicationDirs returns the user data directory followed by the
// system and flatpak export directories. The user directory is omitted
// when neither XDG_DATA_HOME nor HOME is set.
func DefaultApplicationDirs() []string {
	dirs := make([]string, 0, 3)
	if dataHome := userDataDir(); dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}
	return append(dirs, systemApplicationsDir, flatpakApplicationsDir)
}

func userDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share")
	}
	return ""
}

// load reads the configuration from disk
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if len(cfg.ApplicationDirs) == 0 {
		cfg.ApplicationDirs = DefaultApplicationDirs()
	}
	if cfg.DescriptorSuffix == "" {
		cfg.DescriptorSuffix = DefaultDescriptorSuffix
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}

	cfg := *m.config
	cfg.ApplicationDirs = append([]string(nil), m.config.ApplicationDirs...)
	return &cfg
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	cfg := m.Get()

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Saving config")

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Msg("Config saved successfully")
	return nil
}

// SetLogLevel sets the log level
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.LogLevel = level
}

// SetLogPretty toggles the console log writer
func (m *Manager) SetLogPretty(pretty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.LogPretty = pretty
}

// SetApplicationDirs replaces the ordered descriptor directories
func (m *Manager) SetApplicationDirs(dirs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.ApplicationDirs = append([]string(nil), dirs...)
}

// GetConfigPath returns the config file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
