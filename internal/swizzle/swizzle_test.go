package swizzle

import (
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/rnwolfe/blight/internal/errs"
	"github.com/rnwolfe/blight/internal/tool"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

// fakeWrapper writes an executable blight-cc that echoes its arguments.
func fakeWrapper(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\necho wrapped \"$@\"\n"
	if err := os.WriteFile(filepath.Join(dir, "blight-cc"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestBuildToolsOnly(t *testing.T) {
	b := &Builder{Getenv: fakeEnv(map[string]string{"PATH": "/usr/bin"}), TempDir: t.TempDir()}
	env, err := b.Build(Request{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if env.Dir != "" || env.Path != "" {
		t.Errorf("no swizzle requested, got dir %q path %q", env.Dir, env.Path)
	}
	if len(env.Tools) != len(tool.AllKinds) || env.Tools[tool.CXX] != "blight-c++" {
		t.Errorf("Tools = %v", env.Tools)
	}
	vars := env.Vars()
	if vars[0] != (Var{"CC", "blight-cc"}) {
		t.Errorf("first var = %v", vars[0])
	}
}

func TestStubsWithoutSwizzle(t *testing.T) {
	b := &Builder{}
	_, err := b.Build(Request{Stubs: []string{"echo"}})
	if !errs.IsConfig(err) {
		t.Errorf("stub without swizzle: err = %v, want a configuration error", err)
	}
	_, err = b.Build(Request{Shims: []Shim{{Name: "tcc", Kind: tool.CC}}})
	if !errs.IsConfig(err) {
		t.Errorf("shim without swizzle: err = %v, want a configuration error", err)
	}
}

func TestStubEcho(t *testing.T) {
	b := &Builder{Getenv: fakeEnv(map[string]string{"PATH": "/usr/bin:/bin"}), TempDir: t.TempDir()}
	env, err := b.Build(Request{Swizzle: true, Stubs: []string{"echo"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { env.Cleanup() })

	out, err := exec.Command(filepath.Join(env.Dir, "echo"), "hello", "world").CombinedOutput()
	if err != nil {
		t.Fatalf("stub failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("stub printed %q", out)
	}
}

func TestShimForwardsLikeDefault(t *testing.T) {
	wrappers := fakeWrapper(t)
	b := &Builder{
		Getenv:  fakeEnv(map[string]string{"PATH": wrappers + ":/usr/bin:/bin"}),
		TempDir: t.TempDir(),
	}
	shim, err := ParseShim("tcc:cc")
	if err != nil {
		t.Fatalf("ParseShim: %v", err)
	}
	env, err := b.Build(Request{Swizzle: true, Shims: []Shim{shim}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { env.Cleanup() })

	if !strings.HasPrefix(env.Path, env.Dir+":") {
		t.Errorf("PATH %q does not start with %q", env.Path, env.Dir)
	}

	run := func(name string) string {
		cmd := exec.Command(filepath.Join(env.Dir, name), "-c", "a b.c")
		cmd.Env = []string{"PATH=" + env.Path}
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("%s: %v: %s", name, err, out)
		}
		return string(out)
	}
	if got, want := run("tcc"), run("cc"); got != want || got != "wrapped -c a b.c\n" {
		t.Errorf("tcc shim printed %q, cc shim printed %q", got, want)
	}

	for _, alias := range []string{"gcc", "clang", "clang-15", "clang++", "gold", "gas", "lld"} {
		if _, err := os.Stat(filepath.Join(env.Dir, alias)); err != nil {
			t.Errorf("missing alias %s: %v", alias, err)
		}
	}
}

func TestBuildsNeverShareDirectories(t *testing.T) {
	b := &Builder{Getenv: fakeEnv(nil), TempDir: t.TempDir()}
	first, err := b.Build(Request{Swizzle: true})
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(Request{Swizzle: true})
	if err != nil {
		t.Fatal(err)
	}
	if first.Dir == second.Dir {
		t.Errorf("both builds used %s", first.Dir)
	}
	if !IsSwizzleDir(first.Dir) {
		t.Errorf("%s lacks the swizzle suffix", first.Dir)
	}

	if err := first.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(first.Dir); !os.IsNotExist(err) {
		t.Errorf("Cleanup left %s behind", first.Dir)
	}
	if _, err := os.Stat(second.Dir); err != nil {
		t.Errorf("cleaning one build removed the other: %v", err)
	}
}

func TestGuess(t *testing.T) {
	bin := t.TempDir()
	for _, name := range []string{"cc", "ld", "g++"} {
		if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	b := &Builder{Getenv: fakeEnv(map[string]string{
		"PATH":              "/tmp/x" + DirSuffix + ":" + bin,
		"CC":                "ccache gcc",
		"CXX":               "g++",
		"AS":                "blight-as",
		"BLIGHT_WRAPPED_LD": "/custom/ld",
	})}
	env, err := b.Build(Request{Guess: true, Kinds: []tool.Kind{tool.CC, tool.CXX, tool.LD, tool.AS}})
	if err != nil {
		t.Fatal(err)
	}

	if got := env.Guessed[tool.CC]; got != filepath.Join(bin, "cc") {
		t.Errorf("an unresolvable CC should fall back to the PATH, got %q", got)
	}
	if got := env.Guessed[tool.CXX]; got != filepath.Join(bin, "g++") {
		t.Errorf("pre-set CXX should win and be resolved, got %q", got)
	}
	if _, ok := env.Guessed[tool.LD]; ok {
		t.Error("an explicit BLIGHT_WRAPPED_LD must not be guessed over")
	}
	if env.Wrapped[tool.LD] != "/custom/ld" {
		t.Errorf("Wrapped = %v", env.Wrapped)
	}
	if _, ok := env.Guessed[tool.AS]; ok {
		t.Error("AS has no real tool on PATH and should be absent")
	}
}

func TestUnswizzledPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/usr/bin:/bin", "/usr/bin:/bin"},
		{"/tmp/abc" + DirSuffix + ":/usr/bin", "/usr/bin"},
		{"/usr/bin:/tmp/a" + DirSuffix + "/:/bin:/tmp/b" + DirSuffix, "/usr/bin:/bin"},
	}
	for _, tt := range tests {
		if got := UnswizzledPath(tt.in); got != tt.want {
			t.Errorf("UnswizzledPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseShim(t *testing.T) {
	tests := []struct {
		spec    string
		want    Shim
		wantErr bool
	}{
		{"tcc:cc", Shim{"tcc", tool.CC}, false},
		{"mold:LD", Shim{"mold", tool.LD}, false},
		{"tcc", Shim{}, true},
		{"tcc:fortran", Shim{}, true},
		{"../x:cc", Shim{}, true},
		{":cc", Shim{}, true},
	}
	for _, tt := range tests {
		got, err := ParseShim(tt.spec)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseShim(%q) err = %v", tt.spec, err)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseShim(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestApplyAndLines(t *testing.T) {
	env := &Environment{
		Tools: map[tool.Kind]string{tool.CC: "blight-cc"},
		Path:  "/tmp/d" + DirSuffix + ":/usr/bin",
		Extra: []Var{{"BLIGHT_ACTIONS", "Record:Demo"}},
	}
	got := env.Apply([]string{"HOME=/root", "PATH=/usr/bin", "CC=gcc", "CC=clang"})
	want := []string{"HOME=/root", "PATH=/tmp/d" + DirSuffix + ":/usr/bin", "CC=blight-cc", "BLIGHT_ACTIONS=Record:Demo"}
	if !slices.Equal(got, want) {
		t.Errorf("Apply =\n%v\nwant\n%v", got, want)
	}

	exports := env.ExportLines(ShellPosix)
	if exports[0] != "export CC='blight-cc'" {
		t.Errorf("posix export = %q", exports[0])
	}
	if fish := env.ExportLines(ShellFish); fish[0] != "set -gx CC 'blight-cc'" {
		t.Errorf("fish export = %q", fish[0])
	}
	unsets := env.UnsetLines(ShellPosix)
	if !slices.Contains(unsets, "unset CC") || !slices.Contains(unsets, "export PATH='/usr/bin'") {
		t.Errorf("UnsetLines = %v", unsets)
	}
}

func TestQuote(t *testing.T) {
	if got := Quote("it's"); got != `'it'\''s'` {
		t.Errorf("Quote = %s", got)
	}
}

func TestUnsetRevertsInheritedRealTools(t *testing.T) {
	b := &Builder{Getenv: fakeEnv(map[string]string{
		"PATH":              "/usr/bin:/bin",
		"BLIGHT_WRAPPED_CC": "/usr/bin/cc",
		"BLIGHT_WRAPPED_AR": "/usr/bin/ar",
	})}
	env, err := b.Build(Request{Guess: true, Kinds: []tool.Kind{tool.CC, tool.LD}})
	if err != nil {
		t.Fatal(err)
	}
	unsets := env.UnsetLines(ShellPosix)
	if !slices.Contains(unsets, "unset BLIGHT_WRAPPED_CC") {
		t.Errorf("UnsetLines = %v, want BLIGHT_WRAPPED_CC reverted", unsets)
	}
	if slices.Contains(unsets, "unset BLIGHT_WRAPPED_AR") {
		t.Errorf("UnsetLines = %v, AR was not requested", unsets)
	}
	for _, v := range env.Vars() {
		if v.Name == "BLIGHT_WRAPPED_CC" {
			t.Error("an inherited real tool must not be re-exported")
		}
	}
}
