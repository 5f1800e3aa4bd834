package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/errs"
)

// LocalFile is the per-project launcher file looked up in the working
// directory.
const LocalFile = "blight.toml"

// File is the launcher configuration file.
type File struct {
	Actions      []string                     `toml:"actions"`
	JournalPath  string                       `toml:"journal_path"`
	GuessWrapped bool                         `toml:"guess_wrapped"`
	SwizzlePath  bool                         `toml:"swizzle_path"`
	Stubs        []string                     `toml:"stubs"`
	Shims        []string                     `toml:"shims"`
	Tools        []string                     `toml:"tools"`
	Action       map[string]map[string]string `toml:"action"`

	// Path is where the file was read from.
	Path string `toml:"-"`
}

// FindFile returns the launcher file to use: explicit if set, else
// ./blight.toml, else the XDG config file. It returns "" when none exists.
func FindFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errs.Configf(explicit, "reading config file: %v", err)
		}
		return explicit, nil
	}
	for _, p := range []string{LocalFile, GetPaths().ConfigFile} {
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", p, err)
		}
	}
	return "", nil
}

// LoadFile decodes the launcher file at path. Unknown keys are rejected.
func LoadFile(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, errs.Configf(path, "parsing config file: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.Configf(undecoded[0].String(), "unknown key in %s", path)
	}
	f.Path = path
	return &f, nil
}

// Load finds and decodes the launcher file. A missing file yields an empty
// File.
func Load(explicit string) (*File, error) {
	path, err := FindFile(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &File{}, nil
	}
	return LoadFile(path)
}

// ActionEnv renders the [action.<Name>] tables as BLIGHT_ACTION_<NAME>
// values, sorted by variable name.
func (f *File) ActionEnv() ([][2]string, error) {
	names := make([]string, 0, len(f.Action))
	for name := range f.Action {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([][2]string, 0, len(names))
	for _, name := range names {
		table := f.Action[name]
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			v, err := quoteSetting(table[k])
			if err != nil {
				return nil, errs.Configf(name+"."+k, "%v", err)
			}
			pairs = append(pairs, k+"="+v)
		}
		out = append(out, [2]string{action.EnvVar(name), strings.Join(pairs, " ")})
	}
	return out, nil
}

// quoteSetting quotes v so that action.ParseConfig reads it back unchanged.
func quoteSetting(v string) (string, error) {
	if v != "" && !strings.ContainsAny(v, " \t\n,'\"") {
		return v, nil
	}
	switch {
	case !strings.Contains(v, "'"):
		return "'" + v + "'", nil
	case !strings.Contains(v, `"`):
		return `"` + v + `"`, nil
	default:
		return "", errors.New("value contains both quote characters")
	}
}
