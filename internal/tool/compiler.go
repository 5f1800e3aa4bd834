package tool

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// Stage is the furthest compilation stage a compiler invocation runs.
type Stage uint8

const (
	StageUnknown Stage = iota
	StagePreprocess
	StageSyntaxOnly
	StageAssemble
	StageCompileObject
	StageAllStages
)

func (s Stage) String() string {
	switch s {
	case StagePreprocess:
		return "preprocess"
	case StageSyntaxOnly:
		return "syntax-only"
	case StageAssemble:
		return "assemble"
	case StageCompileObject:
		return "compile-object"
	case StageAllStages:
		return "all-stages"
	default:
		return "unknown"
	}
}

// stageFlags is checked in order; the first flag present wins.
var stageFlags = []struct {
	flag  string
	stage Stage
}{
	{"-v", StageUnknown},
	{"-###", StageUnknown},
	{"-E", StagePreprocess},
	{"-fsyntax-only", StageSyntaxOnly},
	{"-S", StageAssemble},
	{"-c", StageCompileObject},
}

// Stage reports the stage selected by the argument list. Without a stage flag
// the frontend runs every stage through linking.
func (i *Invocation) Stage() Stage {
	if len(i.args) == 0 {
		return StageUnknown
	}
	for _, sf := range stageFlags {
		if slices.Contains(i.args, sf.flag) {
			return sf.stage
		}
	}
	return StageAllStages
}

// Lang is a source language.
type Lang uint8

const (
	LangUnknown Lang = iota
	LangC
	LangCxx
)

func (l Lang) String() string {
	switch l {
	case LangC:
		return "C"
	case LangCxx:
		return "C++"
	default:
		return "unknown"
	}
}

var xLangs = map[string]Lang{
	"c":          LangC,
	"c-header":   LangC,
	"c++":        LangCxx,
	"c++-header": LangCxx,
}

// Lang reports the language the frontend compiles. The rightmost "-x" wins,
// in either the "-x c++" or the attached "-xc++" form; otherwise the kind's
// default applies.
func (i *Invocation) Lang() Lang {
	if idx := rindexPrefix(i.args, "-x"); idx >= 0 {
		x := i.args[idx][2:]
		if x == "" {
			if idx+1 >= len(i.args) {
				return LangUnknown
			}
			x = i.args[idx+1]
		}
		return xLangs[x]
	}
	switch i.kind {
	case CC:
		return LangC
	case CXX:
		return LangCxx
	default:
		return LangUnknown
	}
}

// Std is a language standard, named the way "-std=" spells its canonical form.
type Std string

const (
	StdC89   Std = "c89"
	StdC94   Std = "c94"
	StdC99   Std = "c99"
	StdC11   Std = "c11"
	StdC17   Std = "c17"
	StdC2x   Std = "c2x"
	StdGnu89 Std = "gnu89"
	StdGnu99 Std = "gnu99"
	StdGnu11 Std = "gnu11"
	StdGnu17 Std = "gnu17"
	StdGnu2x Std = "gnu2x"

	StdCxx03   Std = "c++03"
	StdCxx11   Std = "c++11"
	StdCxx14   Std = "c++14"
	StdCxx17   Std = "c++17"
	StdCxx2a   Std = "c++2a"
	StdGnuxx03 Std = "gnu++03"
	StdGnuxx11 Std = "gnu++11"
	StdGnuxx14 Std = "gnu++14"
	StdGnuxx17 Std = "gnu++17"
	StdGnuxx2a Std = "gnu++2a"

	// Partially recognized families, and the frontends' default modes.
	StdCUnknown     Std = "c-unknown"
	StdCxxUnknown   Std = "c++-unknown"
	StdGnuUnknown   Std = "gnu-unknown"
	StdGnuxxUnknown Std = "gnu++-unknown"
	StdUnknown      Std = "unknown"
)

var stdAliases = map[string]Std{
	"c89":            StdC89,
	"c90":            StdC89,
	"iso9899:1990":   StdC89,
	"iso9899:199409": StdC94,
	"c99":            StdC99,
	"c9x":            StdC99,
	"iso9899:1999":   StdC99,
	"iso9899:199x":   StdC99,
	"c11":            StdC11,
	"c1x":            StdC11,
	"iso9899:2011":   StdC11,
	"c17":            StdC17,
	"c18":            StdC17,
	"iso9899:2017":   StdC17,
	"iso9899:2018":   StdC17,
	"c2x":            StdC2x,
	"gnu89":          StdGnu89,
	"gnu90":          StdGnu89,
	"gnu99":          StdGnu99,
	"gnu9x":          StdGnu99,
	"gnu11":          StdGnu11,
	"gnu1x":          StdGnu11,
	"gnu17":          StdGnu17,
	"gnu18":          StdGnu17,
	"gnu2x":          StdGnu2x,
	"c++98":          StdCxx03,
	"c++03":          StdCxx03,
	"c++11":          StdCxx11,
	"c++0x":          StdCxx11,
	"c++14":          StdCxx14,
	"c++1y":          StdCxx14,
	"c++17":          StdCxx17,
	"c++1z":          StdCxx17,
	"c++2a":          StdCxx2a,
	"c++20":          StdCxx2a,
	"gnu++98":        StdGnuxx03,
	"gnu++03":        StdGnuxx03,
	"gnu++11":        StdGnuxx11,
	"gnu++0x":        StdGnuxx11,
	"gnu++14":        StdGnuxx14,
	"gnu++1y":        StdGnuxx14,
	"gnu++17":        StdGnuxx17,
	"gnu++1z":        StdGnuxx17,
	"gnu++2a":        StdGnuxx2a,
	"gnu++20":        StdGnuxx2a,
}

// Lang reports the language a standard belongs to.
func (s Std) Lang() Lang {
	n := string(s)
	switch {
	case s == StdUnknown:
		return LangUnknown
	case strings.HasPrefix(n, "c++"), strings.HasPrefix(n, "gnu++"):
		return LangCxx
	case strings.HasPrefix(n, "c"), strings.HasPrefix(n, "gnu"):
		return LangC
	default:
		return LangUnknown
	}
}

// IsUnknown reports whether s is only partially recognized.
func (s Std) IsUnknown() bool {
	switch s {
	case StdCUnknown, StdCxxUnknown, StdGnuUnknown, StdGnuxxUnknown, StdUnknown:
		return true
	}
	return false
}

// Std reports the effective language standard. "-ansi" selects C89 or C++03;
// otherwise the last "-std=" wins, and without one the GNU default of the
// invocation's language applies.
func (i *Invocation) Std() Std {
	lang := i.Lang()
	if slices.Contains(i.args, "-ansi") {
		switch lang {
		case LangC:
			return StdC89
		case LangCxx:
			return StdCxx03
		default:
			return StdUnknown
		}
	}

	idx := rindexPrefix(i.args, "-std=")
	if idx < 0 {
		switch lang {
		case LangC:
			return StdGnuUnknown
		case LangCxx:
			return StdGnuxxUnknown
		default:
			return StdUnknown
		}
	}

	name := strings.TrimPrefix(i.args[idx], "-std=")
	if std, ok := stdAliases[name]; ok {
		return std
	}
	switch {
	case strings.HasPrefix(name, "c++"):
		return StdCxxUnknown
	case strings.HasPrefix(name, "gnu++"):
		return StdGnuxxUnknown
	case strings.HasPrefix(name, "gnu"):
		return StdGnuUnknown
	case strings.HasPrefix(name, "c"), strings.HasPrefix(name, "iso9899"):
		return StdCUnknown
	default:
		return StdUnknown
	}
}

// OptLevel is an optimization level as spelled after "-O".
type OptLevel string

const (
	OptO0      OptLevel = "O0"
	OptO1      OptLevel = "O1"
	OptO2      OptLevel = "O2"
	OptO3      OptLevel = "O3"
	OptFast    OptLevel = "Ofast"
	OptSize    OptLevel = "Os"
	OptSizeZ   OptLevel = "Oz"
	OptDebug   OptLevel = "Og"
	OptUnknown OptLevel = "unknown"
)

var optFlags = map[string]OptLevel{
	"-O0":    OptO0,
	"-O":     OptO1,
	"-O1":    OptO1,
	"-O2":    OptO2,
	"-O3":    OptO3,
	"-Ofast": OptFast,
	"-Os":    OptSize,
	"-Oz":    OptSizeZ,
	"-Og":    OptDebug,
}

// -O4 and above behave as -O3 in both GCC and Clang.
var highOpt = regexp.MustCompile(`^-O[1-9]\d*$`)

// Opt reports the effective optimization level: the last "-O" flag wins and
// the default is O0.
func (i *Invocation) Opt() OptLevel {
	for _, a := range slices.Backward(i.args) {
		if o, ok := optFlags[a]; ok {
			return o
		}
		if !strings.HasPrefix(a, "-O") {
			continue
		}
		if highOpt.MatchString(a) {
			return OptO3
		}
		return OptUnknown
	}
	return OptO0
}

// Define is one effective preprocessor macro.
type Define struct {
	Name  string
	Value string
}

// Defines returns the "-D" macros not cancelled by a later "-U" of the same
// name. A define without "=value" has the value "1".
func (i *Invocation) Defines() []Define {
	undefs := map[string]int{}
	for idx := range i.args {
		if name, ok := macroOperand(i.args, idx, "-U"); ok {
			undefs[name] = idx
		}
	}

	var out []Define
	for idx := range i.args {
		def, ok := macroOperand(i.args, idx, "-D")
		if !ok {
			continue
		}
		name, value, found := strings.Cut(def, "=")
		if !found {
			value = "1"
		}
		if u, ok := undefs[name]; ok && u > idx {
			continue
		}
		out = append(out, Define{Name: name, Value: value})
	}
	return out
}

// macroOperand returns the operand of a "-D"/"-U" style flag at idx, in either
// the attached or the separate form.
func macroOperand(args []string, idx int, flag string) (string, bool) {
	a := args[idx]
	if !strings.HasPrefix(a, flag) {
		return "", false
	}
	if a != flag {
		return a[len(flag):], true
	}
	if idx+1 < len(args) {
		return args[idx+1], true
	}
	return "", false
}

// CodeModel reports the "-mcmodel=" selection, "small" by default.
func (i *Invocation) CodeModel() string {
	idx := rindexPrefix(i.args, "-mcmodel=")
	if idx < 0 {
		return "small"
	}
	switch m := strings.TrimPrefix(i.args[idx], "-mcmodel="); m {
	case "small", "medlow":
		return "small"
	case "medium", "medany":
		return "medium"
	case "large", "kernel":
		return m
	default:
		return "unknown"
	}
}

// ExpectedOutputs is Outputs plus the files a tool writes by default when no
// output is named: "a.out" for a link, "<input>.o" or "<input>.s" in the
// current directory for -c and -S, and "-" (stdout) for -E.
func (i *Invocation) ExpectedOutputs() []string {
	outs := i.Outputs()
	if len(outs) > 0 {
		return outs
	}
	switch i.kind {
	case LD:
		return []string{"a.out"}
	case CC, CXX:
	default:
		return outs
	}

	switch i.Stage() {
	case StagePreprocess:
		return []string{"-"}
	case StageAssemble:
		return withSuffix(i.Inputs(), ".s")
	case StageCompileObject:
		return withSuffix(i.Inputs(), ".o")
	case StageAllStages:
		return []string{"a.out"}
	default:
		return outs
	}
}

func withSuffix(inputs []string, ext string) []string {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		base := filepath.Base(in)
		out = append(out, strings.TrimSuffix(base, filepath.Ext(base))+ext)
	}
	return out
}

// rindexPrefix returns the index of the last argument starting with prefix,
// or -1.
func rindexPrefix(args []string, prefix string) int {
	for idx := len(args) - 1; idx >= 0; idx-- {
		if strings.HasPrefix(args[idx], prefix) {
			return idx
		}
	}
	return -1
}
