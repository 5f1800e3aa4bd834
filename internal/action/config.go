package action

import (
	"errors"
	"strings"

	"github.com/rnwolfe/blight/internal/errs"
)

// Config is one action's key=value settings.
type Config map[string]string

// Get returns the value for key, or "" when unset.
func (c Config) Get(key string) string { return c[key] }

// Lookup returns the value for key and whether it was set.
func (c Config) Lookup(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// EnvVar names the variable carrying an action's settings, e.g.
// BLIGHT_ACTION_RECORD for Record.
func EnvVar(name string) string {
	return "BLIGHT_ACTION_" + strings.ToUpper(name)
}

// ParseConfig parses the settings for action from raw. Pairs are separated
// by whitespace or commas; single or double quotes group a value that
// contains separators, as in CFLAGS='-g -O0'.
func ParseConfig(action, raw string) (Config, error) {
	fields, err := split(raw, true)
	if err != nil {
		return nil, errs.Configf(raw, "settings for action %s: %v", action, err)
	}
	cfg := make(Config, len(fields))
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, errs.Configf(f, "malformed setting for action %s, want key=value", action)
		}
		cfg[key] = value
	}
	return cfg, nil
}

// validate checks cfg against the spec's key schema.
func validate(spec Spec, cfg Config) error {
	known := make(map[string]bool, len(spec.Keys))
	for _, k := range spec.Keys {
		known[k.Name] = true
		if _, ok := cfg[k.Name]; k.Required && !ok {
			return errs.Configf(k.Name, "action %s requires setting", spec.Name)
		}
	}
	for key := range cfg {
		if !known[key] {
			return errs.Configf(key, "unknown setting for action %s", spec.Name)
		}
	}
	return nil
}

// Fields splits s on whitespace, honoring single and double quotes. Actions
// use it to split flag lists carried in a setting value.
func Fields(s string) ([]string, error) {
	return split(s, false)
}

func split(s string, commas bool) ([]string, error) {
	var (
		fields []string
		cur    strings.Builder
		open   bool
		quote  rune
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, open = r, true
		case (commas && r == ',') || r == ' ' || r == '\t' || r == '\n':
			if open {
				fields = append(fields, cur.String())
				cur.Reset()
				open = false
			}
		default:
			cur.WriteRune(r)
			open = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if open {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
