package swizzle

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rnwolfe/blight/internal/errs"
	"github.com/rnwolfe/blight/internal/tool"
)

// template renders the body of one swizzle executable.
type template func(wrapper string) string

func forwardScript(wrapper string) string {
	return "#!/bin/sh\nexec " + Quote(wrapper) + " \"$@\"\n"
}

func stubScript(string) string {
	return "#!/bin/sh\nexit 0\n"
}

// Shim forwards the command Name to the wrapper of Kind.
type Shim struct {
	Name string
	Kind tool.Kind
}

// ParseShim parses a "cmd:kind" shim spec, e.g. "tcc:cc".
func ParseShim(spec string) (Shim, error) {
	name, kind, ok := strings.Cut(spec, ":")
	if !ok {
		return Shim{}, errs.Configf(spec, "malformed shim spec, expected cmd:kind")
	}
	if err := validName(name); err != nil {
		return Shim{}, err
	}
	k, err := tool.ParseKind(kind)
	if err != nil {
		return Shim{}, errs.Configf(spec, "shim names an unknown tool kind")
	}
	return Shim{Name: name, Kind: k}, nil
}

func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return errs.Configf(name, "invalid shim or stub name")
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, 0):
		return errs.Configf(name, "shim or stub name must not contain a path separator")
	}
	return nil
}

var clangVersions = []string{"3.8", "7", "9", "10", "11", "12", "13", "14", "15"}

// Aliases returns the well known command names shimmed to kind besides its
// conventional command.
func Aliases(kind tool.Kind) []string {
	switch kind {
	case tool.CC:
		out := []string{"gcc", "clang"}
		for _, v := range clangVersions {
			out = append(out, "clang-"+v)
		}
		return out
	case tool.CXX:
		out := []string{"g++", "clang++"}
		for _, v := range clangVersions {
			out = append(out, "clang++-"+v)
		}
		return out
	case tool.LD:
		return []string{"gold", "lld"}
	case tool.AS:
		return []string{"gas"}
	}
	return nil
}

func writeScript(dir, name string, tmpl template, wrapper string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(tmpl(wrapper)), 0o755); err != nil {
		return err
	}
	// WriteFile is subject to the umask.
	return os.Chmod(path, 0o755)
}
