// Package config loads the cksetup.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// SourceConfig is a directory scripts are discovered in.
type SourceConfig struct {
	Name  string `yaml:"name"`
	Path  string `yaml:"path"`
	Index int    `yaml:"index"`
}

// ItemConfig is a setup item and its children, in dependency order.
type ItemConfig struct {
	Name     string       `yaml:"name"`
	Version  string       `yaml:"version,omitempty"`
	Children []ItemConfig `yaml:"children,omitempty"`
}

type ProjectConfig struct {
	Connection string         `yaml:"connection,omitempty"`
	Timeout    string         `yaml:"timeout,omitempty"`
	Strict     bool           `yaml:"strict,omitempty"`
	Handlers   []string       `yaml:"handlers,omitempty"`
	Sources    []SourceConfig `yaml:"sources"`
	Items      []ItemConfig   `yaml:"items"`
}

const ConfigFileName = "cksetup.yaml"

func Load(projectPath string) (*ProjectConfig, error) {
	configPath := filepath.Join(projectPath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", configPath, cksetup.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Validate reports every problem of the configuration at once.
func (c *ProjectConfig) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format+": %w", append(args, cksetup.ErrInvalidConfig)...))
	}

	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}

	if len(c.Sources) == 0 {
		fail("no script source configured")
	}
	sourceNames := map[string]bool{}
	for i, s := range c.Sources {
		switch {
		case strings.TrimSpace(s.Name) == "":
			fail("sources[%d]: name is required", i)
		case sourceNames[strings.ToLower(s.Name)]:
			fail("sources[%d]: duplicate source name %q", i, s.Name)
		}
		sourceNames[strings.ToLower(s.Name)] = true
		if strings.TrimSpace(s.Path) == "" {
			fail("sources[%d]: path is required", i)
		}
	}

	for i, h := range c.Handlers {
		if strings.TrimSpace(h) == "" || strings.ContainsAny(h, ". ") {
			fail("handlers[%d]: invalid script type %q", i, h)
		}
	}

	itemNames := map[string]bool{}
	var checkItems func(prefix string, items []ItemConfig)
	checkItems = func(prefix string, items []ItemConfig) {
		for i, it := range items {
			where := fmt.Sprintf("%s[%d]", prefix, i)
			switch {
			case strings.TrimSpace(it.Name) == "":
				fail("%s: name is required", where)
			case itemNames[it.Name]:
				fail("%s: duplicate item %q", where, it.Name)
			}
			itemNames[it.Name] = true
			if it.Version != "" {
				if _, err := cksetup.ParseVersion(it.Version); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", where, err))
				}
			}
			checkItems(where+".children", it.Children)
		}
	}
	checkItems("items", c.Items)

	return errors.Join(errs...)
}

// TimeoutDuration returns the configured run timeout, or the default.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return cksetup.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("timeout %q is not a positive duration: %w", c.Timeout, cksetup.ErrInvalidConfig)
	}
	return d, nil
}

// ScriptTypes returns the enabled handlers, defaulting to sql.
func (c *ProjectConfig) ScriptTypes() []string {
	if len(c.Handlers) == 0 {
		return []string{cksetup.DefaultScriptType}
	}
	out := make([]string, len(c.Handlers))
	for i, h := range c.Handlers {
		out[i] = strings.ToLower(h)
	}
	return out
}

// SourcePath resolves a source path against the project directory.
func SourcePath(projectPath string, s SourceConfig) string {
	if filepath.IsAbs(s.Path) {
		return s.Path
	}
	return filepath.Join(projectPath, s.Path)
}

// SetupItems converts the item tree. Validate first.
func (c *ProjectConfig) SetupItems() ([]*cksetup.SetupItem, error) {
	var convert func(items []ItemConfig) ([]*cksetup.SetupItem, error)
	convert = func(items []ItemConfig) ([]*cksetup.SetupItem, error) {
		out := make([]*cksetup.SetupItem, 0, len(items))
		for _, it := range items {
			item := &cksetup.SetupItem{FullName: it.Name}
			if it.Version != "" {
				v, err := cksetup.ParseVersion(it.Version)
				if err != nil {
					return nil, fmt.Errorf("item %s: %w", it.Name, err)
				}
				item.DesiredVersion = v
			}
			children, err := convert(it.Children)
			if err != nil {
				return nil, err
			}
			item.Children = children
			out = append(out, item)
		}
		return out, nil
	}
	return convert(c.Items)
}
