package action

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/phuslu/log"

	"github.com/rnwolfe/blight/internal/errs"
	"github.com/rnwolfe/blight/internal/journal"
	"github.com/rnwolfe/blight/internal/tool"
)

// tracer records every hook call into a shared trace.
type tracer struct {
	name    string
	trace   *[]string
	before  func(*Context) error
	after   func(*Context, Result) error
	lastRes *Result
}

func (p *tracer) BeforeRun(ctx *Context) error {
	*p.trace = append(*p.trace, p.name+":before")
	if p.before != nil {
		return p.before(ctx)
	}
	return nil
}

func (p *tracer) AfterRun(ctx *Context, res Result) error {
	*p.trace = append(*p.trace, p.name+":after")
	if p.lastRes != nil {
		*p.lastRes = res
	}
	if p.after != nil {
		return p.after(ctx, res)
	}
	return nil
}

func quietLogger() *log.Logger {
	return &log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}

func newInvocation(t *testing.T, kind tool.Kind, args ...string) *tool.Invocation {
	t.Helper()
	inv, err := tool.New(kind, "/bin/true", args)
	if err != nil {
		t.Fatal(err)
	}
	return inv
}

func TestParseList(t *testing.T) {
	got := Dedup(ParseList("Foo:Bar::Foo: Baz"))
	if want := []string{"Foo", "Bar", "Baz"}; !slices.Equal(got, want) {
		t.Errorf("Dedup(ParseList) = %v, want %v", got, want)
	}
	if got := Dedup([]string{"Foo", "Bar", "Foo"}); !slices.Equal(got, []string{"Foo", "Bar"}) {
		t.Errorf("Dedup = %v, want [Foo Bar]", got)
	}
	if got := Dedup([]string{"demo", "Demo"}); len(got) != 2 {
		t.Errorf("Dedup should be case-sensitive, got %v", got)
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		raw  string
		want Config
	}{
		{"", Config{}},
		{"output=/tmp/x.jsonl", Config{"output": "/tmp/x.jsonl"}},
		{"a=1 b=2,c=3", Config{"a": "1", "b": "2", "c": "3"}},
		{"CFLAGS='-g -O0' CXXFLAGS=\"-std=c++17, -O2\"", Config{"CFLAGS": "-g -O0", "CXXFLAGS": "-std=c++17, -O2"}},
		{"empty=", Config{"empty": ""}},
		{"k=a=b", Config{"k": "a=b"}},
	}
	for _, tt := range tests {
		got, err := ParseConfig("Test", tt.raw)
		if err != nil {
			t.Errorf("ParseConfig(%q) error: %v", tt.raw, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseConfig(%q) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("ParseConfig(%q)[%s] = %q, want %q", tt.raw, k, got[k], v)
			}
		}
	}

	for _, bad := range []string{"justakey", "=value", "k='open"} {
		if _, err := ParseConfig("Test", bad); !errs.IsConfig(err) {
			t.Errorf("ParseConfig(%q) = %v, want ConfigError", bad, err)
		}
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("FindOutputs"); got != "BLIGHT_ACTION_FINDOUTPUTS" {
		t.Errorf("EnvVar = %q", got)
	}
}

func testRegistry(trace *[]string) *Registry {
	reg := NewRegistry()
	mk := func(name string, kinds tool.KindSet, keys ...Key) Spec {
		return Spec{Name: name, Kinds: kinds, Keys: keys, New: func(Config) (Action, error) {
			return &tracer{name: name, trace: trace}, nil
		}}
	}
	reg.MustRegister(
		mk("Foo", tool.Everything),
		mk("Bar", tool.Everything),
		mk("LinkOnly", tool.Kinds(tool.LD)),
		mk("Needs", tool.Everything, Key{Name: "output", Required: true}, Key{Name: "mode"}),
	)
	return reg
}

func TestRegistryResolve(t *testing.T) {
	var trace []string
	reg := testRegistry(&trace)

	insts, err := reg.Resolve([]string{"Foo", "Bar", "Foo"}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	var names []string
	for _, in := range insts {
		names = append(names, in.Name)
	}
	if !slices.Equal(names, []string{"Foo", "Bar"}) {
		t.Errorf("resolved %v, want [Foo Bar]", names)
	}

	if len(reg.Specs()) != 4 || reg.Specs()[0].Name != "Foo" {
		t.Errorf("Specs() not in registration order")
	}
	if err := reg.Register(Spec{Name: "Foo", New: func(Config) (Action, error) { return Base{}, nil }}); err == nil {
		t.Error("duplicate Register should fail")
	}
}

func TestRegistryResolveErrors(t *testing.T) {
	var trace []string
	reg := testRegistry(&trace)
	settings := map[string]string{}
	lookup := func(name string) string { return settings[name] }

	tests := []struct {
		name     string
		names    []string
		settings string
		token    string
	}{
		{"unknown action", []string{"Foo", "Nope"}, "", "Nope"},
		{"missing required", []string{"Needs"}, "mode=fast", "output"},
		{"unknown key", []string{"Needs"}, "output=x typo=1", "typo"},
		{"malformed", []string{"Needs"}, "output", "output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings["Needs"] = tt.settings
			_, err := reg.Resolve(tt.names, lookup)
			var ce *errs.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Resolve = %v, want ConfigError", err)
			}
			if ce.Token != tt.token {
				t.Errorf("token = %q, want %q", ce.Token, tt.token)
			}
		})
	}

	settings["Needs"] = "output=/tmp/x mode=fast"
	if _, err := reg.Resolve([]string{"Needs"}, lookup); err != nil {
		t.Errorf("valid settings rejected: %v", err)
	}
}

func TestPipelineOrder(t *testing.T) {
	var trace []string
	reg := testRegistry(&trace)
	insts, err := reg.Resolve([]string{"Bar", "Foo"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPipeline(insts, journal.Open(""), quietLogger())
	inv := newInvocation(t, tool.CC, "-c", "foo.c")

	if skip, failed := p.Before(inv); skip || len(failed) != 0 {
		t.Fatalf("Before = %v, %v", skip, failed)
	}
	if failed := p.After(inv, Result{}); len(failed) != 0 {
		t.Fatalf("After = %v", failed)
	}
	want := []string{"Bar:before", "Foo:before", "Bar:after", "Foo:after"}
	if !slices.Equal(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestPipelineKindFilter(t *testing.T) {
	var trace []string
	reg := testRegistry(&trace)
	insts, err := reg.Resolve([]string{"LinkOnly", "Foo"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	p := NewPipeline(insts, journal.Open(path), quietLogger())

	inv := newInvocation(t, tool.CC, "foo.c")
	p.Before(inv)
	p.After(inv, Result{})
	if slices.ContainsFunc(trace, func(s string) bool { return strings.HasPrefix(s, "LinkOnly") }) {
		t.Errorf("LD-only action fired for CC: %v", trace)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	err = journal.Each(f, func(e journal.Entry) error {
		if e.Action == "LinkOnly" {
			t.Errorf("journal has LinkOnly entry: %+v", e)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPipelineHookErrors(t *testing.T) {
	var trace []string
	var stderr bytes.Buffer
	boom := errors.New("boom")
	insts := []Instance{
		{Name: "Fails", Kinds: tool.Everything, Action: &tracer{name: "Fails", trace: &trace,
			before: func(*Context) error { return boom }}},
		{Name: "Panics", Kinds: tool.Everything, Action: &tracer{name: "Panics", trace: &trace,
			after: func(*Context, Result) error { panic("kaboom") }}},
		{Name: "Fine", Kinds: tool.Everything, Action: &tracer{name: "Fine", trace: &trace}},
	}
	logger := &log.Logger{Level: log.WarnLevel, Writer: &log.IOWriter{Writer: &stderr}}
	p := NewPipeline(insts, journal.Open(""), logger)
	inv := newInvocation(t, tool.LD, "a.o")

	skip, failed := p.Before(inv)
	if skip {
		t.Error("a failing hook must not skip the run")
	}
	if len(failed) != 1 || failed[0].Action != "Fails" || failed[0].Phase != journal.PhaseBefore || !errors.Is(failed[0], boom) {
		t.Errorf("Before failures = %v", failed)
	}

	failed = p.After(inv, Result{ExitCode: 3})
	if len(failed) != 1 || failed[0].Action != "Panics" || !strings.Contains(failed[0].Error(), "kaboom") {
		t.Errorf("After failures = %v", failed)
	}
	if len(trace) != 6 {
		t.Errorf("every hook should fire, trace = %v", trace)
	}
	if !strings.Contains(stderr.String(), "Fails") {
		t.Errorf("hook failure not logged: %q", stderr.String())
	}
}

func TestPipelineSkipRun(t *testing.T) {
	var trace []string
	var res Result
	insts := []Instance{{Name: "Skip", Kinds: tool.Everything, Action: &tracer{name: "Skip", trace: &trace,
		lastRes: &res, before: func(*Context) error { return ErrSkipRun }}}}
	p := NewPipeline(insts, journal.Open(""), quietLogger())
	inv := newInvocation(t, tool.STRIP, "a.out")

	skip, failed := p.Before(inv)
	if !skip || len(failed) != 0 {
		t.Fatalf("Before = %v, %v; want skip without failures", skip, failed)
	}
	p.After(inv, Result{Skipped: true})
	if !res.Skipped {
		t.Error("after hook should see Skipped")
	}
}

func TestPipelineSkipStillReportsJournalFailure(t *testing.T) {
	var trace []string
	insts := []Instance{{Name: "Skip", Kinds: tool.Everything, Action: &tracer{name: "Skip", trace: &trace,
		before: func(*Context) error { return ErrSkipRun }}}}
	p := NewPipeline(insts, journal.Open("/nonexistent/dir/journal.jsonl"), quietLogger())
	inv := newInvocation(t, tool.STRIP, "a.out")

	skip, failed := p.Before(inv)
	if !skip {
		t.Error("Before should still skip the run")
	}
	if len(failed) != 1 {
		t.Fatalf("Before reported %d failures, want the journal write failure", len(failed))
	}
	if errors.Is(failed[0], ErrSkipRun) {
		t.Errorf("reported error %v should not carry the skip request", failed[0])
	}
}

func TestPipelineJournalsPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	var trace []string
	insts := []Instance{{Name: "Payload", Kinds: tool.Everything, Action: &tracer{name: "Payload", trace: &trace,
		before: func(ctx *Context) error {
			if !ctx.Journaling() {
				t.Error("Journaling() should be true")
			}
			ctx.SetResult(map[string]string{"phase": string(ctx.Phase())})
			return nil
		}}}}
	p := NewPipeline(insts, journal.Open(path), quietLogger())
	inv := newInvocation(t, tool.CC, "a.c")
	p.Before(inv)
	p.After(inv, Result{})

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var entries []journal.Entry
	if err := journal.Each(f, func(e journal.Entry) error { entries = append(entries, e); return nil }); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Phase != journal.PhaseBefore || string(entries[0].Payload) != `{"phase":"before"}` {
		t.Errorf("before entry = %+v", entries[0])
	}
	if entries[1].Phase != journal.PhaseAfter || entries[1].Payload != nil {
		t.Errorf("after entry = %+v", entries[1])
	}
	if entries[0].RunID == "" || entries[0].RunID != entries[1].RunID || entries[0].ToolKind != "CC" {
		t.Errorf("entries not paired: %q %q", entries[0].RunID, entries[1].RunID)
	}
}
