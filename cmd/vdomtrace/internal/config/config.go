package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/vdom/pkg/log"
)

// FileName is the optional project configuration file.
const FileName = "vdom.yaml"

// Config represents the optional vdom.yaml configuration.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Log       LogConfig       `yaml:"log"`
	Output    OutputConfig    `yaml:"output"`
	Scenarios ScenariosConfig `yaml:"scenarios"`
}

// EngineConfig sizes the tables of every Dom the tool creates.
type EngineConfig struct {
	InitialElements int `yaml:"initial_elements,omitempty"`
	InitialScopes   int `yaml:"initial_scopes,omitempty"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// OutputConfig controls trace rendering.
type OutputConfig struct {
	Color string `yaml:"color,omitempty"`
}

// ScenariosConfig locates scenario files.
type ScenariosConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root string
	// ModulePath is the Go module at Root, empty when there is none.
	ModulePath string
	// Project names the project in output headers.
	Project         string
	InitialElements int
	InitialScopes   int
	LogLevel        slog.Level
	LogJSON         bool
	Color           string
	ScenarioDir     string
}

// LoadOptional reads vdom.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads vdom.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	elements := cfg.Engine.InitialElements
	if elements == 0 {
		elements = 64
	}
	scopes := cfg.Engine.InitialScopes
	if scopes == 0 {
		scopes = 16
	}
	if elements < 0 || scopes < 0 {
		return nil, fmt.Errorf("engine capacities cannot be negative (elements %d, scopes %d)", elements, scopes)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	var jsonLogs bool
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Format)) {
	case "", "text":
	case "json":
		jsonLogs = true
	default:
		return nil, fmt.Errorf("log.format must be text or json (got %q)", cfg.Log.Format)
	}

	color, err := ParseColor(cfg.Output.Color)
	if err != nil {
		return nil, fmt.Errorf("output.color: %w", err)
	}

	scenarioDir := strings.TrimSpace(cfg.Scenarios.Dir)
	if scenarioDir == "" {
		scenarioDir = "scenarios"
	}
	if !filepath.IsAbs(scenarioDir) {
		scenarioDir = filepath.Join(dir, scenarioDir)
	}

	return &Resolved{
		Root:            dir,
		ModulePath:      modulePath,
		Project:         projectName(modulePath, dir),
		InitialElements: elements,
		InitialScopes:   scopes,
		LogLevel:        level,
		LogJSON:         jsonLogs,
		Color:           color,
		ScenarioDir:     scenarioDir,
	}, nil
}

// ParseColor normalizes a color mode to auto, on or off.
func ParseColor(s string) (string, error) {
	switch mode := strings.ToLower(strings.TrimSpace(s)); mode {
	case "":
		return "auto", nil
	case "auto", "on", "off":
		return mode, nil
	default:
		return "", fmt.Errorf("color must be auto, on or off (got %q)", s)
	}
}

// FindProjectRoot walks up from start to the first directory holding
// vdom.yaml or go.mod. It returns start when there is none.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for d := dir; ; {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(d, name)); err == nil {
				return d, nil
			}
		}

		parent := filepath.Dir(d)
		if parent == d {
			return dir, nil
		}
		d = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func projectName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "vdom"
	}
	return base
}
