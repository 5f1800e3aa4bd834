package swizzle

import (
	"strings"

	"github.com/rnwolfe/blight/internal/errs"
)

// Shell selects the syntax of emitted environment lines.
type Shell string

const (
	ShellPosix Shell = "posix"
	ShellFish  Shell = "fish"
)

// ParseShell accepts "posix" (also "sh", "bash", "zsh") or "fish".
func ParseShell(s string) (Shell, error) {
	switch strings.ToLower(s) {
	case "", "posix", "sh", "bash", "zsh":
		return ShellPosix, nil
	case "fish":
		return ShellFish, nil
	}
	return "", errs.Configf(s, "unsupported shell")
}

func (s Shell) export(name, value string) string {
	if s == ShellFish {
		return "set -gx " + name + " " + fishQuote(value)
	}
	return "export " + name + "=" + Quote(value)
}

func (s Shell) unset(name string) string {
	if s == ShellFish {
		return "set -e " + name
	}
	return "unset " + name
}

// Quote single-quotes s for a POSIX shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func fishQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
