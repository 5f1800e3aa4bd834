// Package tool models one invocation of a wrapped build tool.
//
// An Invocation classifies its raw argument vector into inputs, outputs and
// flags using small per-kind flag tables rather than a full grammar of each
// tool's option language. Every raw argument gets exactly one role, so the
// three views always partition the argument vector.
package tool

import (
	"errors"
	"os"

	"github.com/rnwolfe/blight/internal/errs"
)

// ErrFrozen is returned by SetArgs once the argument list has been handed to
// the real tool.
var ErrFrozen = errors.New("tool arguments are frozen after the before-run phase")

// Role is the classification of a single raw argument.
type Role uint8

const (
	RoleFlag Role = iota
	RoleInput
	RoleOutput
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	default:
		return "flag"
	}
}

// Arg is one classified raw argument.
type Arg struct {
	Index int
	Raw   string
	Role  Role
	// Path is the file path carried by an input or output. It equals Raw
	// except for attached output forms such as "-ofoo" or "--output=foo".
	Path string
}

// Invocation is a single execution of a single tool.
type Invocation struct {
	kind   Kind
	path   string
	cwd    string
	args   []string
	frozen bool

	// classified is nil whenever args changed since the last classification.
	classified []Arg
}

// New builds an invocation for kind with the real tool at path. It only fails
// for a kind outside the closed set; unrecognized flags degrade to RoleFlag.
func New(kind Kind, path string, args []string) (*Invocation, error) {
	if !kind.Valid() {
		return nil, errs.Configf(string(kind), "unknown tool kind")
	}
	cwd, _ := os.Getwd()
	return &Invocation{
		kind: kind,
		path: path,
		cwd:  cwd,
		args: append([]string(nil), args...),
	}, nil
}

// Kind returns the invocation's tool kind.
func (i *Invocation) Kind() Kind { return i.kind }

// Path returns the resolved real tool executable.
func (i *Invocation) Path() string { return i.path }

// Cwd returns the working directory the tool was invoked in.
func (i *Invocation) Cwd() string { return i.cwd }

// Args returns a copy of the current argument list.
func (i *Invocation) Args() []string {
	return append([]string(nil), i.args...)
}

// SetArgs atomically replaces the argument list and invalidates every derived
// view. It is only permitted before Freeze.
func (i *Invocation) SetArgs(args []string) error {
	if i.frozen {
		return ErrFrozen
	}
	i.args = append([]string(nil), args...)
	i.classified = nil
	return nil
}

// Freeze makes the argument list immutable.
func (i *Invocation) Freeze() { i.frozen = true }

// Classified returns every raw argument with its role, in order.
func (i *Invocation) Classified() []Arg {
	if i.classified == nil {
		i.classified = classify(i.kind, i.args)
	}
	return append([]Arg(nil), i.classified...)
}

// Inputs returns the input file arguments in order.
func (i *Invocation) Inputs() []string {
	return i.collect(RoleInput, true)
}

// Outputs returns the explicitly designated output paths in order.
func (i *Invocation) Outputs() []string {
	return i.collect(RoleOutput, true)
}

// Flags returns every argument that is neither an input nor an output,
// including values consumed by value-taking flags.
func (i *Invocation) Flags() []string {
	return i.collect(RoleFlag, false)
}

func (i *Invocation) collect(role Role, path bool) []string {
	out := []string{}
	for _, a := range i.Classified() {
		if a.Role != role {
			continue
		}
		if path {
			out = append(out, a.Path)
		} else {
			out = append(out, a.Raw)
		}
	}
	return out
}

// Snapshot is a serializable view of an invocation, used in journal payloads.
type Snapshot struct {
	Kind    Kind     `json:"kind"`
	Wrapped string   `json:"wrapped_tool"`
	Cwd     string   `json:"cwd"`
	Args    []string `json:"args"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
	Lang    string   `json:"lang,omitempty"`
	Std     string   `json:"std,omitempty"`
	Stage   string   `json:"stage,omitempty"`
	Opt     string   `json:"opt,omitempty"`
}

// Snapshot captures the invocation's current state.
func (i *Invocation) Snapshot() Snapshot {
	s := Snapshot{
		Kind:    i.kind,
		Wrapped: i.path,
		Cwd:     i.cwd,
		Args:    i.Args(),
		Inputs:  i.Inputs(),
		Outputs: i.Outputs(),
	}
	if i.kind == CC || i.kind == CXX {
		s.Lang = i.Lang().String()
		s.Std = string(i.Std())
		s.Stage = i.Stage().String()
		s.Opt = string(i.Opt())
	} else if i.kind == CPP {
		s.Lang = i.Lang().String()
		s.Std = string(i.Std())
	}
	return s
}
