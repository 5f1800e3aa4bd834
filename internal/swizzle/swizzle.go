// Package swizzle builds the environment a build runs under: tool variables
// pointing at blight's wrappers, optionally a guess of the real tools, and
// optionally a PATH whose first entry is a fresh directory of shims.
package swizzle

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/phuslu/log"

	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/config"
	"github.com/rnwolfe/blight/internal/errs"
	"github.com/rnwolfe/blight/internal/logging"
	"github.com/rnwolfe/blight/internal/tool"
)

// Request describes one environment to build.
type Request struct {
	// Kinds limits the tools set up; empty means every kind.
	Kinds   []tool.Kind
	Guess   bool
	Swizzle bool
	Shims   []Shim
	Stubs   []string

	Actions     []string
	JournalPath string
	// ActionConfigs are BLIGHT_ACTION_<NAME> pairs exported verbatim.
	ActionConfigs [][2]string
}

// Var is one variable of the emitted delta.
type Var struct {
	Name  string
	Value string
}

// Environment is the result of a build. The launcher that asked for it owns
// Dir and must call Cleanup once the build is finished.
type Environment struct {
	Tools   map[tool.Kind]string
	Guessed map[tool.Kind]string
	Dir     string
	Path    string
	Extra   []Var

	// Wrapped holds BLIGHT_WRAPPED_<KIND> values already present in the
	// base environment. They are not part of the delta but are reverted
	// by UnsetLines.
	Wrapped map[tool.Kind]string
}

// Builder builds environments. The zero value reads the process
// environment and creates directories under os.TempDir.
type Builder struct {
	Getenv   func(string) string
	LookPath func(file, path string) (string, error)
	TempDir  string
	Log      *log.Logger
}

func (b *Builder) getenv(k string) string {
	if b.Getenv == nil {
		return os.Getenv(k)
	}
	return b.Getenv(k)
}

func (b *Builder) lookPath(file, path string) (string, error) {
	if b.LookPath == nil {
		return LookPath(file, path)
	}
	return b.LookPath(file, path)
}

func (b *Builder) logger() *log.Logger {
	if b.Log == nil {
		return logging.Nop()
	}
	return b.Log
}

// Build computes the environment for req. Shims and stubs are rejected
// unless req.Swizzle is set; without it Build has no filesystem effects.
func (b *Builder) Build(req Request) (*Environment, error) {
	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = tool.AllKinds
	}
	if !req.Swizzle && (len(req.Shims) > 0 || len(req.Stubs) > 0) {
		token := strings.Join(req.Stubs, ",")
		if len(req.Shims) > 0 {
			token = req.Shims[0].Name
		}
		return nil, errs.Configf(token, "shims and stubs require PATH swizzling")
	}
	for _, s := range req.Stubs {
		if err := validName(s); err != nil {
			return nil, err
		}
	}
	for _, s := range req.Shims {
		if err := validName(s.Name); err != nil {
			return nil, err
		}
		if !s.Kind.Valid() {
			return nil, errs.Configf(string(s.Kind), "shim names an unknown tool kind")
		}
	}

	env := &Environment{
		Tools:   make(map[tool.Kind]string, len(kinds)),
		Guessed: map[tool.Kind]string{},
		Wrapped: map[tool.Kind]string{},
	}
	for _, k := range kinds {
		env.Tools[k] = k.Wrapper()
		if v := b.getenv(k.WrappedEnv()); v != "" {
			env.Wrapped[k] = v
		}
	}

	basePath := UnswizzledPath(b.getenv("PATH"))
	if req.Guess {
		b.guess(env, kinds, basePath)
	}

	if req.Swizzle {
		dir, err := os.MkdirTemp(b.TempDir, "*"+DirSuffix)
		if err != nil {
			return nil, fmt.Errorf("creating swizzle directory: %w", err)
		}
		env.Dir = dir
		if err := b.populate(dir, kinds, req); err != nil {
			os.RemoveAll(dir)
			return nil, fmt.Errorf("populating swizzle directory: %w", err)
		}
		env.Path = dir
		if basePath != "" {
			env.Path += string(filepath.ListSeparator) + basePath
		}
	}

	if len(req.Actions) > 0 {
		env.Extra = append(env.Extra, Var{config.EnvActions, strings.Join(action.Dedup(req.Actions), ":")})
	}
	if req.JournalPath != "" {
		jp, err := filepath.Abs(req.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("resolving journal path: %w", err)
		}
		env.Extra = append(env.Extra, Var{config.EnvJournalPath, jp})
	}
	for _, kv := range req.ActionConfigs {
		env.Extra = append(env.Extra, Var{kv[0], kv[1]})
	}
	return env, nil
}

// guess fills env.Guessed for every kind that has no explicit
// BLIGHT_WRAPPED_<KIND>. A pre-set tool variable wins over a PATH lookup
// unless it already names a blight wrapper or does not resolve to an
// executable.
func (b *Builder) guess(env *Environment, kinds []tool.Kind, path string) {
	for _, k := range kinds {
		if _, ok := env.Wrapped[k]; ok {
			continue
		}
		if v := b.getenv(k.Env()); v != "" {
			if _, wrapper := tool.KindForWrapper(filepath.Base(v)); !wrapper {
				found, err := b.lookPath(v, path)
				if err == nil {
					env.Guessed[k] = found
					continue
				}
				b.logger().Warn().Str("kind", string(k)).Str("var", k.Env()).Str("value", v).Err(err).Msg("ignoring pre-set tool variable")
			}
		}
		found, err := b.lookPath(k.Cmd(), path)
		if err != nil {
			b.logger().Warn().Str("kind", string(k)).Str("cmd", k.Cmd()).Err(err).Msg("could not guess the real tool")
			continue
		}
		env.Guessed[k] = found
	}
}

func (b *Builder) populate(dir string, kinds []tool.Kind, req Request) error {
	defaults := map[string]tool.Kind{}
	for _, k := range kinds {
		names := append([]string{k.Cmd()}, Aliases(k)...)
		for _, name := range names {
			if err := writeScript(dir, name, forwardScript, k.Wrapper()); err != nil {
				return err
			}
			defaults[name] = k
		}
	}
	for _, s := range req.Shims {
		if k, ok := defaults[s.Name]; ok {
			b.logger().Warn().Str("shim", s.Name).Str("default", string(k)).Str("kind", string(s.Kind)).Msg("overriding default shim")
		}
		if err := writeScript(dir, s.Name, forwardScript, s.Kind.Wrapper()); err != nil {
			return err
		}
		defaults[s.Name] = s.Kind
	}
	for _, s := range req.Stubs {
		if _, ok := defaults[s]; ok {
			b.logger().Warn().Str("stub", s).Msg("stub replaces a shim")
		}
		if err := writeScript(dir, s, stubScript, ""); err != nil {
			return err
		}
	}
	return nil
}

// Vars returns the delta in a stable order: tool variables, guessed real
// tools, PATH, then the action settings.
func (e *Environment) Vars() []Var {
	var out []Var
	for _, k := range tool.AllKinds {
		if w, ok := e.Tools[k]; ok {
			out = append(out, Var{k.Env(), w})
		}
	}
	for _, k := range tool.AllKinds {
		if p, ok := e.Guessed[k]; ok {
			out = append(out, Var{k.WrappedEnv(), p})
		}
	}
	if e.Path != "" {
		out = append(out, Var{"PATH", e.Path})
	}
	return append(out, e.Extra...)
}

// Apply merges the delta over environ and returns the result. Existing
// variables are replaced in place.
func (e *Environment) Apply(environ []string) []string {
	vars := e.Vars()
	out := slices.Clone(environ)
	for _, v := range vars {
		kv := v.Name + "=" + v.Value
		idx := slices.IndexFunc(out, func(s string) bool { return strings.HasPrefix(s, v.Name+"=") })
		if idx < 0 {
			out = append(out, kv)
			continue
		}
		out[idx] = kv
		out = slices.DeleteFunc(out, func(s string) bool {
			return s != kv && strings.HasPrefix(s, v.Name+"=")
		})
	}
	return out
}

// ExportLines renders the delta as shell assignments.
func (e *Environment) ExportLines(sh Shell) []string {
	vars := e.Vars()
	out := make([]string, 0, len(vars))
	for _, v := range vars {
		out = append(out, sh.export(v.Name, v.Value))
	}
	return out
}

// UnsetLines renders lines that revert the delta, including real tools a
// previous build exported. PATH is never unset; it is restored with its
// swizzle directories removed.
func (e *Environment) UnsetLines(sh Shell) []string {
	vars := e.Vars()
	out := make([]string, 0, len(vars)+len(e.Wrapped))
	for _, v := range vars {
		if v.Name == "PATH" {
			out = append(out, sh.export("PATH", UnswizzledPath(v.Value)))
			continue
		}
		out = append(out, sh.unset(v.Name))
	}
	for _, k := range tool.AllKinds {
		if _, ok := e.Wrapped[k]; !ok {
			continue
		}
		if _, ok := e.Guessed[k]; ok {
			continue
		}
		out = append(out, sh.unset(k.WrappedEnv()))
	}
	return out
}

// Cleanup removes the swizzle directory, if any.
func (e *Environment) Cleanup() error {
	if e.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(e.Dir); err != nil {
		return fmt.Errorf("removing swizzle directory: %w", err)
	}
	return nil
}
