// Package config holds the declarative settings the tree core
// consults: workspace-to-output assignments, the ordered binding
// table, and layout defaults. Files are YAML; the window manager's
// command language is handled elsewhere.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/sapling/pkg/tree"
)

// Assignment pins a workspace name to an output. The table is
// ordered; the first matching entry wins.
type Assignment struct {
	Name   string `yaml:"name"`
	Output string `yaml:"output"`
}

// Binding maps a key combination to a command. Only the command text
// matters to this core: workspace-switch bindings are scanned when an
// output needs an initial workspace name.
type Binding struct {
	Combo   string `yaml:"combo"`
	Command string `yaml:"command"`
}

// Config is the full configuration surface of the core.
type Config struct {
	// DefaultOrientation is "horizontal", "vertical" or "auto". Auto
	// picks per output: vertical when the output is taller than wide.
	DefaultOrientation string `yaml:"default_orientation"`

	// WorkspaceLayout is "default", "stacked" or "tabbed": the layout
	// new window leaves get wrapped in when attaching to a workspace.
	WorkspaceLayout string `yaml:"workspace_layout"`

	Assignments []Assignment `yaml:"assignments"`
	Bindings    []Binding    `yaml:"bindings"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DefaultOrientation: "auto",
		WorkspaceLayout:    "default",
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) check() error {
	switch c.DefaultOrientation {
	case "", "auto", "horizontal", "vertical":
	default:
		return fmt.Errorf("unknown default_orientation %q", c.DefaultOrientation)
	}
	switch c.WorkspaceLayout {
	case "", "default", "stacked", "tabbed":
	default:
		return fmt.Errorf("unknown workspace_layout %q", c.WorkspaceLayout)
	}
	return nil
}

// Orientation returns the configured default orientation, or
// tree.NoOrientation for "auto".
func (c *Config) Orientation() tree.Orientation {
	switch c.DefaultOrientation {
	case "horizontal":
		return tree.Horizontal
	case "vertical":
		return tree.Vertical
	default:
		return tree.NoOrientation
	}
}

// Layout returns the configured workspace layout.
func (c *Config) Layout() tree.Layout {
	switch c.WorkspaceLayout {
	case "stacked":
		return tree.LayoutStacked
	case "tabbed":
		return tree.LayoutTabbed
	default:
		return tree.LayoutDefault
	}
}

// OutputFor returns the output name the given workspace is assigned
// to, first match wins, or "" when unassigned.
func (c *Config) OutputFor(workspace string) string {
	for _, a := range c.Assignments {
		if a.Name == workspace {
			return a.Output
		}
	}
	return ""
}
