package actions

import (
	"slices"
	"strings"

	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/tool"
)

type injectFlags struct {
	cflags, cxxflags, cppflags []string
}

func newInjectFlags(cfg action.Config) (action.Action, error) {
	var a injectFlags
	for key, dst := range map[string]*[]string{"CFLAGS": &a.cflags, "CXXFLAGS": &a.cxxflags, "CPPFLAGS": &a.cppflags} {
		fields, err := action.Fields(cfg.Get(key))
		if err != nil {
			return nil, err
		}
		*dst = fields
	}
	return &a, nil
}

func (a *injectFlags) BeforeRun(ctx *action.Context) error {
	args := ctx.Tool.Args()
	switch ctx.Tool.Lang() {
	case tool.LangC:
		args = append(append(args, a.cflags...), a.cppflags...)
	case tool.LangCxx:
		args = append(append(args, a.cxxflags...), a.cppflags...)
	default:
		ctx.Log.Debug().Msg("not injecting flags for an unknown language")
		return nil
	}
	return ctx.Tool.SetArgs(args)
}

func (*injectFlags) AfterRun(*action.Context, action.Result) error { return nil }

type ignoreFlags struct {
	action.Base
	flags []string
}

func newIgnoreFlags(cfg action.Config) (action.Action, error) {
	fields, err := action.Fields(cfg.Get("FLAGS"))
	if err != nil {
		return nil, err
	}
	return &ignoreFlags{flags: fields}, nil
}

func (a *ignoreFlags) BeforeRun(ctx *action.Context) error {
	if ctx.Tool.Lang() == tool.LangUnknown {
		return nil
	}
	return removeArgs(ctx.Tool, func(s string) bool { return slices.Contains(a.flags, s) })
}

type ignoreWerror struct{ action.Base }

func (ignoreWerror) BeforeRun(ctx *action.Context) error {
	if ctx.Tool.Lang() == tool.LangUnknown {
		return nil
	}
	return removeArgs(ctx.Tool, func(s string) bool { return s == "-Werror" })
}

type ignoreFlto struct{ action.Base }

func (ignoreFlto) BeforeRun(ctx *action.Context) error {
	return removeArgs(ctx.Tool, func(s string) bool { return strings.HasPrefix(s, "-flto") })
}

func removeArgs(inv *tool.Invocation, drop func(string) bool) error {
	args := inv.Args()
	kept := slices.DeleteFunc(args, drop)
	return inv.SetArgs(kept)
}

type skipStrip struct{ action.Base }

func (skipStrip) BeforeRun(*action.Context) error { return action.ErrSkipRun }

// ccForCXX catches builds that point CC at a C++ compiler and pass a C++
// -std=. It only sees the standard; a C++ build on the default standard goes
// unnoticed.
type ccForCXX struct{ action.Base }

func (ccForCXX) BeforeRun(ctx *action.Context) error {
	if ctx.Tool.Std().Lang() != tool.LangCxx {
		return nil
	}
	return ctx.Tool.SetArgs(append([]string{"-x", "c++"}, ctx.Tool.Args()...))
}

type lint struct{ action.Base }

func (lint) BeforeRun(ctx *action.Context) error {
	for _, d := range ctx.Tool.Defines() {
		if d.Name == "FORTIFY_SOURCE" {
			ctx.Log.Warn().Str("define", "FORTIFY_SOURCE").Msg("found -DFORTIFY_SOURCE; you probably meant -D_FORTIFY_SOURCE")
		}
	}
	return nil
}
