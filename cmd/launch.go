package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/pflag"

	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/config"
	"github.com/rnwolfe/blight/internal/logging"
	"github.com/rnwolfe/blight/internal/swizzle"
	"github.com/rnwolfe/blight/internal/tool"
)

// launchFlags are shared by env and exec.
type launchFlags struct {
	guess       bool
	swizzle     bool
	stubs       []string
	shims       []string
	actions     []string
	tools       []string
	journalPath string
	configPath  string
	envFile     string
}

func (f *launchFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.guess, "guess-wrapped", false, "Guess the real tools from CC etc. or the PATH")
	fs.BoolVar(&f.swizzle, "swizzle-path", false, "Put shims for the standard tool names first on the PATH")
	fs.StringArrayVar(&f.stubs, "stub", nil, "Replace `CMD` with a no-op while swizzling (repeatable)")
	fs.StringArrayVar(&f.shims, "shim", nil, "Forward `CMD:KIND` to the KIND wrapper while swizzling (repeatable)")
	fs.StringArrayVar(&f.actions, "action", nil, "Enable an action (repeatable)")
	fs.StringArrayVar(&f.tools, "tool", nil, "Only set up this tool `KIND` (repeatable, default all)")
	fs.StringVar(&f.journalPath, "journal-path", "", "Shared journal `FILE` for action results")
	fs.StringVar(&f.configPath, "config", "", "Launcher config `FILE` (default ./blight.toml, then the XDG config)")
	fs.StringVar(&f.envFile, "env-file", "", "Load variables from a dotenv `FILE` before building")
}

// baseEnviron is the process environment plus any --env-file variables
// that are not already set.
func (f *launchFlags) baseEnviron() ([]string, error) {
	environ := os.Environ()
	if f.envFile == "" {
		return environ, nil
	}
	vars, err := godotenv.Read(f.envFile)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", f.envFile, err)
	}
	for k, v := range vars {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		environ = append(environ, k+"="+v)
	}
	return environ, nil
}

// request merges the config file with the flags; flags extend list values
// and override scalars.
func (f *launchFlags) request(file *config.File, base *config.Config) (swizzle.Request, error) {
	req := swizzle.Request{
		Guess:       f.guess || file.GuessWrapped,
		Swizzle:     f.swizzle || file.SwizzlePath,
		Stubs:       append(append([]string(nil), file.Stubs...), f.stubs...),
		JournalPath: file.JournalPath,
	}
	if f.journalPath != "" {
		req.JournalPath = f.journalPath
	} else if req.JournalPath == "" {
		req.JournalPath = base.JournalPath()
	}

	for _, spec := range append(append([]string(nil), file.Shims...), f.shims...) {
		shim, err := swizzle.ParseShim(spec)
		if err != nil {
			return req, err
		}
		req.Shims = append(req.Shims, shim)
	}
	for _, name := range append(append([]string(nil), file.Tools...), f.tools...) {
		k, err := tool.ParseKind(name)
		if err != nil {
			return req, err
		}
		req.Kinds = append(req.Kinds, k)
	}

	names := base.Actions()
	names = append(names, file.Actions...)
	for _, a := range f.actions {
		names = append(names, action.ParseList(a)...)
	}
	req.Actions = action.Dedup(names)

	settings, err := file.ActionEnv()
	if err != nil {
		return req, err
	}
	req.ActionConfigs = settings
	return req, nil
}

// build loads the launcher file and builds the environment. It returns the
// base environment the delta applies to.
func (f *launchFlags) build(logger *log.Logger, adjust func(*swizzle.Request)) (*swizzle.Environment, []string, error) {
	environ, err := f.baseEnviron()
	if err != nil {
		return nil, nil, err
	}
	file, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	if file.Path != "" {
		logger.Debug().Str("path", file.Path).Msg("loaded launcher config")
	}

	base := config.FromEnviron(environ)
	req, err := f.request(file, base)
	if err != nil {
		return nil, nil, err
	}
	if adjust != nil {
		adjust(&req)
	}

	b := &swizzle.Builder{Getenv: base.Getenv, Log: logger}
	env, err := b.Build(req)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("dir", env.Dir).Strs("actions", req.Actions).Msg("built environment")
	return env, environ, nil
}

func launcherLogger() *log.Logger {
	return logging.New(os.Getenv(config.EnvLogLevel), os.Stderr)
}

func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = swizzle.Quote(a)
	}
	return strings.Join(quoted, " ")
}
