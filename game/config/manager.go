package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/obstacles"
	"github.com/wricardo/gridsight/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
	ErrInvalidLayer   = errors.New("invalid obstacle layer")
)

// DefaultConfigID is loaded as the default configuration when present
const DefaultConfigID = "classic"

// Manager handles grid configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GridConfig
	configs       map[string]*engine.GridConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GridConfig),
	}

	// Load default config
	m.loadDefaultConfig()

	return m, nil
}

// Dir returns the directory configurations are read from
func (m *Manager) Dir() string {
	return m.configDir
}

// resolve maps a config name, with or without extension, to its ID and file
func (m *Manager) resolve(name string) (id, path string, err error) {
	if ext := strings.ToLower(filepath.Ext(name)); isConfigExt(ext) {
		return strings.TrimSuffix(name, filepath.Ext(name)), filepath.Join(m.configDir, name), nil
	}
	for _, ext := range configExts {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return name, path, nil
		}
	}
	return name, "", ErrConfigNotFound
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GridConfig, error) {
	id := strings.TrimSuffix(name, filepath.Ext(name))
	if !isConfigExt(strings.ToLower(filepath.Ext(name))) {
		id = name
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	id, path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	config, err := ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	// Cache the config
	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !isConfigExt(ext) {
			continue
		}

		// Remove extension for config name
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if seen[name] {
			continue
		}

		// Try to load the config to get details
		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[name] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    name, // This is the identifier to use for session creation
			Name:        config.Name,
			Description: config.Description,
			Width:       config.Width,
			Height:      config.Height,
			TileSize:    config.TileSize,
			SightRadius: config.SightRadius,
			Layers:      len(config.ObstacleLayers),
		})
	}

	return configs, nil
}

// Count returns the number of cached configurations
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GridConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GridConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
	return nil
}

// loadDefaultConfig loads the default configuration, falling back to the
// first valid config on disk and then to the built-in minimal config
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultConfigID)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config = engine.DefaultGridConfig()
		} else if config, err = m.LoadConfig(configs[0].Filename); err != nil {
			config = engine.DefaultGridConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates and writes a configuration to disk. The extension
// of name selects the format; JSON is used when it has none.
func (m *Manager) SaveConfig(name string, config *engine.GridConfig) error {
	// Validate config before saving
	if err := engine.ValidateGridConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := filepath.Base(name)
	if !isConfigExt(strings.ToLower(filepath.Ext(filename))) {
		filename += ".json"
	}
	id := strings.TrimSuffix(filename, filepath.Ext(filename))

	data, err := Encode(config, filepath.Ext(filename))
	if err != nil {
		return err
	}

	configPath := filepath.Join(m.configDir, filename)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	log.Printf("[CONFIG] saved %s", configPath)
	return nil
}

// LoadLayers reads every GeoJSON obstacle layer a configuration names.
// Relative paths are resolved against the config directory.
func (m *Manager) LoadLayers(config *engine.GridConfig) ([]obstacles.Object, error) {
	var out []obstacles.Object
	for _, layer := range config.ObstacleLayers {
		path := layer
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.configDir, layer)
		}
		objects, err := ReadLayer(path)
		if err != nil {
			return nil, err
		}
		out = append(out, objects...)
	}
	return out, nil
}
