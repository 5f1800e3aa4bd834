package tool

import "strings"

// table lists the flag patterns a kind cares about. Flags not listed still
// classify as flags; the table only matters where a flag consumes the next
// token or designates an output.
type table struct {
	boolean map[string]bool // never take a value
	valued  map[string]bool // take the next token as their value
	output  map[string]bool // take the next token as an output path

	// outputPrefixes are attached output forms, e.g. "-o" in "-ofoo".
	outputPrefixes []string
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var compilerTable = &table{
	boolean: set("-c", "-S", "-E", "-v", "-###", "-g", "-w", "-M", "-MM", "-MD", "-MMD", "-MP",
		"-pipe", "-shared", "-static", "-pthread", "-fsyntax-only", "-ansi", "-pedantic", "-rdynamic"),
	valued: set("-I", "-D", "-U", "-x", "-include", "-imacros", "-isystem", "-iquote", "-idirafter",
		"-isysroot", "-iprefix", "-MF", "-MT", "-MQ", "-L", "-Xlinker", "-Xassembler",
		"-Xpreprocessor", "-Xclang", "-aux-info", "-arch", "-target", "-u", "-T", "--param", "-B",
		"-z", "-l"),
	output:         set("-o"),
	outputPrefixes: []string{"-o"},
}

var tables = map[Kind]*table{
	CC:  compilerTable,
	CXX: compilerTable,
	CPP: compilerTable,
	LD: {
		boolean: set("-shared", "-static", "-r", "-s", "-S", "-v", "--as-needed", "--no-as-needed",
			"--gc-sections", "-pie", "--whole-archive", "--no-whole-archive", "-Bstatic", "-Bdynamic"),
		valued: set("-L", "-l", "-T", "-e", "-m", "-h", "-soname", "-rpath", "-rpath-link", "-z",
			"-Map", "-plugin", "--sysroot", "-y", "-Y", "-u", "--entry", "--library",
			"--library-path", "--script", "--dynamic-linker", "-dynamic-linker"),
		output:         set("-o", "--output"),
		outputPrefixes: []string{"--output=", "-o"},
	},
	AS: {
		boolean:        set("-v", "-g", "--32", "--64", "-W", "--fatal-warnings"),
		valued:         set("-I", "--defsym", "-march", "-mcpu", "-mfpu", "-arch"),
		output:         set("-o"),
		outputPrefixes: []string{"-o"},
	},
	STRIP: {
		boolean: set("-s", "-g", "-S", "-d", "-x", "-X", "-p", "-v", "-D", "-U",
			"--strip-all", "--strip-debug", "--strip-unneeded", "--preserve-dates"),
		valued: set("-F", "-I", "-O", "-K", "-N", "-R", "--target", "--input-target",
			"--output-target", "--keep-symbol", "--strip-symbol", "--remove-section"),
		output:         set("-o"),
		outputPrefixes: []string{"-o"},
	},
	AR: {
		valued: set("--plugin", "--target", "--output"),
	},
	INSTALL: {
		boolean: set("-d", "--directory", "-D", "-c", "-C", "--compare", "-p", "--preserve-timestamps",
			"-s", "--strip", "-v", "--verbose", "-T", "--no-target-directory", "-b"),
		valued:         set("-m", "-g", "-o", "-S", "--mode", "--owner", "--group", "--suffix"),
		output:         set("-t"),
		outputPrefixes: []string{"--target-directory="},
	},
}

type expect uint8

const (
	expectNothing expect = iota
	expectValue
	expectOutput
)

// token classifies a standalone token and reports what the next token is.
func (t *table) token(a string) (Role, string, expect) {
	switch {
	case t.output[a]:
		return RoleFlag, "", expectOutput
	case t.valued[a]:
		return RoleFlag, "", expectValue
	case t.boolean[a]:
		return RoleFlag, "", expectNothing
	}
	for _, p := range t.outputPrefixes {
		if len(a) > len(p) && strings.HasPrefix(a, p) {
			return RoleOutput, a[len(p):], expectNothing
		}
	}
	if a == "-" {
		return RoleInput, a, expectNothing
	}
	if strings.HasPrefix(a, "-") || strings.HasPrefix(a, "@") {
		return RoleFlag, "", expectNothing
	}
	return RoleInput, a, expectNothing
}

// classifyTable applies a table left to right. A token following a
// value-taking flag is always that flag's value, even if it looks like a file.
func classifyTable(t *table, args []string) []Arg {
	out := make([]Arg, len(args))
	next := expectNothing
	operands := false
	for i, a := range args {
		arg := Arg{Index: i, Raw: a}
		switch {
		case next == expectValue:
			arg.Role = RoleFlag
			next = expectNothing
		case next == expectOutput:
			arg.Role, arg.Path = RoleOutput, a
			next = expectNothing
		case operands:
			arg.Role, arg.Path = RoleInput, a
		case a == "--":
			arg.Role = RoleFlag
			operands = true
		default:
			arg.Role, arg.Path, next = t.token(a)
		}
		out[i] = arg
	}
	return out
}

func classify(kind Kind, args []string) []Arg {
	switch kind {
	case AR:
		return classifyAR(args)
	case CPP:
		return classifyCPP(args)
	case INSTALL:
		return classifyInstall(args)
	default:
		return classifyTable(tables[kind], args)
	}
}

// classifyCPP follows "cpp [options] infile [outfile]": the second operand is
// the output.
func classifyCPP(args []string) []Arg {
	out := classifyTable(tables[CPP], args)
	seen := 0
	for i := range out {
		if out[i].Role != RoleInput {
			continue
		}
		if seen++; seen == 2 {
			out[i].Role = RoleOutput
			break
		}
	}
	return out
}

// classifyInstall handles install's positional destination: every operand is
// a directory to create with -d, otherwise the final operand is the
// destination unless -t already named it.
func classifyInstall(args []string) []Arg {
	out := classifyTable(tables[INSTALL], args)
	dirMode, hasTarget := false, false
	var operands []int
	for i, a := range out {
		switch {
		case a.Role == RoleFlag && (a.Raw == "-d" || a.Raw == "--directory"):
			dirMode = true
		case a.Role == RoleOutput:
			hasTarget = true
		case a.Role == RoleInput:
			operands = append(operands, i)
		}
	}
	switch {
	case dirMode:
		for _, i := range operands {
			out[i].Role = RoleOutput
		}
	case !hasTarget && len(operands) >= 2:
		out[operands[len(operands)-1]].Role = RoleOutput
	}
	return out
}

type arState uint8

const (
	arOptions arState = iota
	arRelpos
	arCount
	arArchive
	arMembers
)

// classifyAR follows "ar [--plugin p] [-]op[mods] [relpos] [count] archive
// [member...]". The archive is an output for operations that write it and an
// input for the read-only ones.
func classifyAR(args []string) []Arg {
	t := tables[AR]
	out := make([]Arg, len(args))
	state := arOptions
	relpos, count, modifying, skipValue := false, false, false, false

	advance := func(s arState) arState {
		for {
			s++
			if (s == arRelpos && !relpos) || (s == arCount && !count) {
				continue
			}
			return s
		}
	}

	for i, a := range args {
		arg := Arg{Index: i, Raw: a, Role: RoleFlag}
		switch {
		case skipValue:
			skipValue = false
		case state == arOptions && t.valued[a]:
			skipValue = true
		case state == arOptions && strings.HasPrefix(a, "--"):
		case state == arOptions:
			op := strings.TrimPrefix(a, "-")
			modifying = modifyingOp(op)
			relpos = strings.ContainsAny(op, "rm") && strings.ContainsAny(op, "abi")
			count = strings.Contains(op, "N")
			state = advance(state)
		case state == arRelpos, state == arCount:
			state = advance(state)
		case state == arArchive:
			arg.Role, arg.Path = RoleInput, a
			if modifying {
				arg.Role = RoleOutput
			}
			state = arMembers
		default:
			arg.Role, arg.Path = RoleInput, a
		}
		out[i] = arg
	}
	return out
}

// modifyingOp reports whether an operation bundle writes the archive. The
// operation is the first of "dmpqrstx" in the bundle; the rest are modifiers.
func modifyingOp(op string) bool {
	for _, c := range op {
		switch c {
		case 'r', 'q', 'm', 'd', 's':
			return true
		case 't', 'x', 'p':
			return false
		}
	}
	return false
}
