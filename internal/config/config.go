// Package config holds blight's run configuration.
//
// A wrapper process builds one Config from its environment at startup and
// hands it to every component; nothing re-reads the environment afterwards.
// The launcher additionally reads an optional TOML file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/tool"
)

// Environment variables blight consumes.
const (
	EnvActions     = "BLIGHT_ACTIONS"
	EnvJournalPath = "BLIGHT_JOURNAL_PATH"
	EnvLogLevel    = "BLIGHT_LOGLEVEL"
)

// Config is the immutable configuration of one run.
type Config struct {
	actions     []string
	journalPath string
	logLevel    string
	wrapped     map[tool.Kind]string
	settings    map[string]string
	environ     []string
}

// FromEnviron builds a Config from KEY=VALUE pairs, as os.Environ returns
// them. Later duplicates win, matching the C library's getenv.
func FromEnviron(environ []string) *Config {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	c := &Config{
		actions:     action.Dedup(action.ParseList(env[EnvActions])),
		journalPath: env[EnvJournalPath],
		logLevel:    env[EnvLogLevel],
		wrapped:     map[tool.Kind]string{},
		settings:    map[string]string{},
		environ:     append([]string(nil), environ...),
	}
	for _, k := range tool.AllKinds {
		if v := env[k.WrappedEnv()]; v != "" {
			c.wrapped[k] = v
		}
	}
	for k, v := range env {
		if strings.HasPrefix(k, "BLIGHT_ACTION_") {
			c.settings[k] = v
		}
	}
	return c
}

// FromProcess builds a Config from the current process environment.
func FromProcess() *Config {
	return FromEnviron(os.Environ())
}

// Actions returns the deduplicated action list.
func (c *Config) Actions() []string {
	return append([]string(nil), c.actions...)
}

// JournalPath returns the shared journal path, empty when journaling is off.
func (c *Config) JournalPath() string { return c.journalPath }

// LogLevel returns the requested log level name, empty for the default.
func (c *Config) LogLevel() string { return c.logLevel }

// Wrapped returns the explicitly configured real tool for k.
func (c *Config) Wrapped(k tool.Kind) string { return c.wrapped[k] }

// ActionSettings returns the raw settings string for the named action.
func (c *Config) ActionSettings(name string) string {
	return c.settings[action.EnvVar(name)]
}

// Getenv returns a variable from the environment the Config was built from.
func (c *Config) Getenv(key string) string {
	v := ""
	prefix := key + "="
	for _, kv := range c.environ {
		if strings.HasPrefix(kv, prefix) {
			v = kv[len(prefix):]
		}
	}
	return v
}

// Environ returns a copy of the environment the Config was built from.
func (c *Config) Environ() []string {
	return append([]string(nil), c.environ...)
}

// Paths are blight's XDG locations.
type Paths struct {
	ConfigDir  string
	ConfigFile string
}

// GetPaths returns the resolved paths, respecting XDG_CONFIG_HOME.
func GetPaths() Paths {
	home, _ := os.UserHomeDir()
	dir := filepath.Join(envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config")), "blight")
	return Paths{
		ConfigDir:  dir,
		ConfigFile: filepath.Join(dir, "config.toml"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
