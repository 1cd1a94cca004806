package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/bnema/umbra/internal/logging"
)

// Manager handles settings loading, watching, and reloading.
type Manager struct {
	settings  Settings
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(Settings)
	watching  bool
}

// NewManager creates a new settings manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // current directory for development

	v.SetEnvPrefix("UMBRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Manager{
		viper:     v,
		callbacks: make([]func(Settings), 0),
	}, nil
}

// Load reads the settings from file and environment variables, creating a
// default config file on first run.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}
	return m.reload()
}

func (m *Manager) readConfigFile() error {
	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configFile := m.viper.ConfigFileUsed()
			if configFile == "" {
				configDir, _ := GetConfigDir()
				configFile = filepath.Join(configDir, "config.toml")
			}
			return fmt.Errorf("failed to read config file at %s: %w", configFile, err)
		}
		if createErr := m.createDefaultConfig(); createErr != nil {
			return fmt.Errorf("failed to create default config: %w", createErr)
		}
		if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
			return fmt.Errorf("failed to read newly created config file: %w", rereadErr)
		}
	}
	return nil
}

// reload unmarshals, normalizes, and validates the current viper state.
// Must be called with m.mu held for write.
func (m *Manager) reload() error {
	var s Settings
	if err := m.viper.Unmarshal(&s); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", m.viper.ConfigFileUsed(), err)
	}
	normalizeSettings(&s)
	if err := validateSettings(&s); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	m.settings = s
	return nil
}

// Get returns the current settings (thread-safe copy).
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// GetConfigFile returns the path of the configuration file in use.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}

// Watch starts watching the config file and reloads on external changes.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(e fsnotify.Event) {
		log := logging.NewFromEnv()
		log.Debug().Str("op", e.Op.String()).Str("file", e.Name).Msg("config change detected")

		m.mu.Lock()
		if err := m.reload(); err != nil {
			log.Warn().Err(err).Msg("failed to reload config")
			m.mu.Unlock()
			return
		}
		m.notifyCallbacksLocked()
	})

	m.watching = true
	return nil
}

// notifyCallbacksLocked copies callbacks and settings, releases the lock,
// then notifies. Must be called with m.mu held for write.
func (m *Manager) notifyCallbacksLocked() {
	settings := m.settings
	callbacks := make([]func(Settings), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, callback := range callbacks {
		callback(settings)
	}
}

// OnSettingsChange registers a callback invoked after each successful
// reload triggered by a file change.
func (m *Manager) OnSettingsChange(callback func(Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}
	m.viper.SetConfigType("toml")
	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (m *Manager) setDefaults() {
	defaults := DefaultSettings()

	m.viper.SetDefault("enabled", defaults.Enabled)
	m.viper.SetDefault("strategy", defaults.Strategy)
	m.viper.SetDefault("brightness", defaults.Brightness)
	m.viper.SetDefault("contrast", defaults.Contrast)
	m.viper.SetDefault("sepia", defaults.Sepia)
	m.viper.SetDefault("grayscale", defaults.Grayscale)
	m.viper.SetDefault("blue_shift", defaults.BlueShift)
	m.viper.SetDefault("amoled", defaults.AMOLED)
	m.viper.SetDefault("detect_dark", defaults.DetectDark)
	m.viper.SetDefault("force_override", defaults.ForceOverride)
}
