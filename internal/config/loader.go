package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".uidiff"

// xdgConfigFile is the configuration file name under the XDG config directory.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads screen configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
//
// Unknown keys are rejected so that a misspelled setting does not silently
// fall back to its default. The engine options of the defaults and of
// every screen are validated before the file is returned.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cf.Screens == nil {
		cf.Screens = make(map[string]ScreenConfig)
	}

	if err := cf.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cf, nil
}

// validate resolves the engine options of the defaults and every screen.
// Screens are checked in label order so the reported error is stable.
func (f *File) validate() error {
	if _, err := f.EngineOptions(""); err != nil {
		return err
	}
	labels := make([]string, 0, len(f.Screens))
	for label := range f.Screens {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if _, err := f.EngineOptions(label); err != nil {
			return err
		}
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .uidiff in the current directory
// 3. Look for uidiff/config.yaml in the XDG config directory
// 4. Look for .uidiff in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if exists(configPath) {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, XDGConfigFile())
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if exists(candidate) {
			return candidate
		}
	}
	return ""
}

// XDGConfigFile returns the configuration file path under the XDG config
// directory, e.g. ~/.config/uidiff/config.yaml.
func XDGConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, xdgConfigFile)
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
