package tool

import (
	"strings"

	"github.com/rnwolfe/blight/internal/errs"
)

// Kind identifies one of the build tool roles blight understands.
type Kind string

const (
	CC      Kind = "CC"
	CXX     Kind = "CXX"
	CPP     Kind = "CPP"
	LD      Kind = "LD"
	AS      Kind = "AS"
	AR      Kind = "AR"
	STRIP   Kind = "STRIP"
	INSTALL Kind = "INSTALL"
)

// AllKinds is the closed set of tool kinds in their canonical order.
var AllKinds = []Kind{CC, CXX, CPP, LD, AS, AR, STRIP, INSTALL}

var kindCmds = map[Kind]string{
	CC:      "cc",
	CXX:     "c++",
	CPP:     "cpp",
	LD:      "ld",
	AS:      "as",
	AR:      "ar",
	STRIP:   "strip",
	INSTALL: "install",
}

// WrapperPrefix is prepended to a kind's command to name its wrapper.
const WrapperPrefix = "blight-"

// ParseKind accepts a symbolic name ("CC", "cxx") or a conventional command
// ("cc", "c++"). Anything else is a configuration error.
func ParseKind(s string) (Kind, error) {
	up := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := kindCmds[up]; ok {
		return up, nil
	}
	for k, c := range kindCmds {
		if c == s {
			return k, nil
		}
	}
	return "", errs.Configf(s, "unknown tool kind")
}

// KindForWrapper maps a wrapper basename ("blight-ld") to its kind.
func KindForWrapper(name string) (Kind, bool) {
	cmd, ok := strings.CutPrefix(name, WrapperPrefix)
	if !ok {
		return "", false
	}
	for k, c := range kindCmds {
		if c == cmd {
			return k, true
		}
	}
	return "", false
}

// Valid reports whether k is a member of the closed set.
func (k Kind) Valid() bool {
	_, ok := kindCmds[k]
	return ok
}

// Cmd is the conventional command name for the kind, e.g. "c++".
func (k Kind) Cmd() string { return kindCmds[k] }

// Env is the symbolic variable a build system reads, e.g. "CXX".
func (k Kind) Env() string { return string(k) }

// Wrapper is the wrapper command name, e.g. "blight-c++".
func (k Kind) Wrapper() string { return WrapperPrefix + kindCmds[k] }

// WrappedEnv is the variable holding the real tool, e.g. "BLIGHT_WRAPPED_CXX".
func (k Kind) WrappedEnv() string { return "BLIGHT_WRAPPED_" + string(k) }

func (k Kind) String() string { return string(k) }

// KindSet is a set of tool kinds, used by actions to declare applicability.
type KindSet uint16

// Everything matches every kind.
const Everything KindSet = 1<<8 - 1

var kindBits = map[Kind]uint{CC: 0, CXX: 1, CPP: 2, LD: 3, AS: 4, AR: 5, STRIP: 6, INSTALL: 7}

// Compilers matches the C and C++ compiler frontends.
var Compilers = Kinds(CC, CXX)

// Kinds builds a set from the given kinds.
func Kinds(ks ...Kind) KindSet {
	var s KindSet
	for _, k := range ks {
		if b, ok := kindBits[k]; ok {
			s |= 1 << b
		}
	}
	return s
}

// Has reports whether k is in the set.
func (s KindSet) Has(k Kind) bool {
	b, ok := kindBits[k]
	return ok && s&(1<<b) != 0
}

// List returns the members in canonical order.
func (s KindSet) List() []Kind {
	var out []Kind
	for _, k := range AllKinds {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s KindSet) String() string {
	if s == Everything {
		return "*"
	}
	parts := make([]string, 0, len(AllKinds))
	for _, k := range s.List() {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ",")
}
