package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/gridsight/game/engine"
	"gopkg.in/yaml.v3"
)

// configExts lists supported config file extensions in lookup order
var configExts = []string{".json", ".yaml", ".yml"}

func isConfigExt(ext string) bool {
	for _, e := range configExts {
		if ext == e {
			return true
		}
	}
	return false
}

func isYAML(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".yaml" || ext == ".yml"
}

// Decode parses a grid configuration. ext selects YAML for .yaml and .yml,
// JSON otherwise.
func Decode(data []byte, ext string) (*engine.GridConfig, error) {
	var config engine.GridConfig
	var err error
	if isYAML(ext) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

// Encode serialises a grid configuration in the format selected by ext
func Encode(config *engine.GridConfig, ext string) ([]byte, error) {
	var data []byte
	var err error
	if isYAML(ext) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// ReadFile loads and validates a grid configuration file
func ReadFile(path string) (*engine.GridConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	if err := engine.ValidateGridConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}
