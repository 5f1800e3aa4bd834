// Package actions is the catalogue of actions bundled with blight.
package actions

import (
	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/tool"
)

// Specs returns the bundled action specs in display order.
func Specs() []action.Spec {
	return []action.Spec{
		{
			Name:  "Record",
			Kinds: tool.Everything,
			Doc:   "append a record of every invocation, before and after the run",
			Keys:  []action.Key{{Name: "output", Required: true, Doc: "JSON lines file to append to"}},
			New:   newRecord,
		},
		{
			Name:  "Benchmark",
			Kinds: tool.Everything,
			Doc:   "append the wall time of every invocation in microseconds",
			Keys:  []action.Key{{Name: "output", Required: true, Doc: "JSON lines file to append to"}},
			New:   newBenchmark,
		},
		{
			Name:  "Demo",
			Kinds: tool.Everything,
			Doc:   "print a line to stderr before and after each run",
			New:   func(action.Config) (action.Action, error) { return demo{}, nil },
		},
		{
			Name:  "FindInputs",
			Kinds: tool.Everything,
			Doc:   "report the inputs of each invocation and their kinds",
			Keys: []action.Key{
				{Name: "output", Doc: "JSON lines file; the journal is used when unset"},
				{Name: "store", Doc: "directory for content-addressed copies of inputs"},
			},
			New: newFindInputs,
		},
		{
			Name:  "FindOutputs",
			Kinds: tool.Everything,
			Doc:   "report the outputs of each invocation and their kinds",
			Keys: []action.Key{
				{Name: "output", Doc: "JSON lines file; the journal is used when unset"},
				{Name: "store", Doc: "directory for content-addressed copies of outputs"},
			},
			New: newFindOutputs,
		},
		{
			Name:  "InjectFlags",
			Kinds: tool.Compilers,
			Doc:   "append flags to compiler invocations by language",
			Keys: []action.Key{
				{Name: "CFLAGS", Doc: "flags for C"},
				{Name: "CXXFLAGS", Doc: "flags for C++"},
				{Name: "CPPFLAGS", Doc: "preprocessor flags for both"},
			},
			New: newInjectFlags,
		},
		{
			Name:  "IgnoreFlags",
			Kinds: tool.Compilers,
			Doc:   "remove the given flags from compiler invocations",
			Keys:  []action.Key{{Name: "FLAGS", Doc: "flags to remove"}},
			New:   newIgnoreFlags,
		},
		{
			Name:  "IgnoreWerror",
			Kinds: tool.Compilers,
			Doc:   "remove -Werror from compiler invocations",
			New:   func(action.Config) (action.Action, error) { return ignoreWerror{}, nil },
		},
		{
			Name:  "IgnoreFlto",
			Kinds: tool.Compilers,
			Doc:   "remove -flto and -flto=... from compiler invocations",
			New:   func(action.Config) (action.Action, error) { return ignoreFlto{}, nil },
		},
		{
			Name:  "SkipStrip",
			Kinds: tool.Kinds(tool.STRIP),
			Doc:   "do not run strip at all",
			New:   func(action.Config) (action.Action, error) { return skipStrip{}, nil },
		},
		{
			Name:  "CCForCXX",
			Kinds: tool.Kinds(tool.CC),
			Doc:   "force C++ mode when the C compiler is given a C++ -std=",
			New:   func(action.Config) (action.Action, error) { return ccForCXX{}, nil },
		},
		{
			Name:  "Lint",
			Kinds: tool.Compilers,
			Doc:   "warn about common command-line mistakes",
			New:   func(action.Config) (action.Action, error) { return lint{}, nil },
		},
	}
}

// Register adds the bundled catalogue to reg.
func Register(reg *action.Registry) {
	reg.MustRegister(Specs()...)
}

// Registry returns a new registry holding the bundled catalogue.
func Registry() *action.Registry {
	reg := action.NewRegistry()
	Register(reg)
	return reg
}
