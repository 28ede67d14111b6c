// Package config stores named Docker daemon contexts for the tmn CLI.
//
// The file lives at $XDG_CONFIG_HOME/tmn/config.yaml (~/.config/tmn/config.yaml
// when unset). Each context names a daemon endpoint and, optionally, a
// descriptor file to use instead of the default topology.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrContextNotFound is returned when a named context does not exist.
var ErrContextNotFound = errors.New("context not found")

var hostSchemes = []string{"unix://", "tcp://", "ssh://", "npipe://", "http://", "https://"}

// Context describes one Docker daemon target.
type Context struct {
	Host       string `yaml:"host,omitempty"`       // docker endpoint, e.g. unix:///var/run/docker.sock
	Descriptor string `yaml:"descriptor,omitempty"` // compose file replacing the default topology
}

// Validate checks that Host, when set, has a scheme the Docker client accepts.
func (c Context) Validate() error {
	if c.Host == "" {
		return nil
	}
	for _, s := range hostSchemes {
		if strings.HasPrefix(c.Host, s) {
			return nil
		}
	}
	return fmt.Errorf("host %q: unsupported scheme, want one of %s", c.Host, strings.Join(hostSchemes, ", "))
}

// Config holds named contexts and the current selection.
type Config struct {
	CurrentContext string             `yaml:"current-context,omitempty"`
	Contexts       map[string]Context `yaml:"contexts"`
}

// Path returns the config file location.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "tmn", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "tmn", "config.yaml")
}

// Load reads the config file. A missing file yields an empty Config.
func Load() (*Config, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{Contexts: make(map[string]Context)}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", Path(), err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]Context)
	}
	return &cfg, nil
}

// Save writes the config, creating the directory if needed.
func (c *Config) Save() error {
	p := Path()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Names returns the context names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the named context.
func (c *Config) Get(name string) (Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return Context{}, fmt.Errorf("%w: %q", ErrContextNotFound, name)
	}
	return ctx, nil
}

// Current returns the current context. The bool is false when none is set
// or the selection points at a removed context.
func (c *Config) Current() (string, Context, bool) {
	if c.CurrentContext == "" {
		return "", Context{}, false
	}
	ctx, ok := c.Contexts[c.CurrentContext]
	if !ok {
		return "", Context{}, false
	}
	return c.CurrentContext, ctx, true
}

// Resolve picks the context to use: name when non-empty, otherwise the
// current context. The bool is false when neither applies.
func (c *Config) Resolve(name string) (string, Context, bool, error) {
	if name != "" {
		ctx, err := c.Get(name)
		if err != nil {
			return "", Context{}, false, err
		}
		return name, ctx, true, nil
	}
	n, ctx, ok := c.Current()
	return n, ctx, ok, nil
}

// Use sets the current context.
func (c *Config) Use(name string) error {
	if _, err := c.Get(name); err != nil {
		return err
	}
	c.CurrentContext = name
	return nil
}

// Set adds or replaces a named context. The first context added becomes current.
func (c *Config) Set(name string, ctx Context) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("context name must not be empty")
	}
	if err := ctx.Validate(); err != nil {
		return err
	}
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return nil
}

// Remove deletes a context and clears the selection if it was current.
func (c *Config) Remove(name string) error {
	if _, err := c.Get(name); err != nil {
		return err
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return nil
}
