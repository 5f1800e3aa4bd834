// Package ui prints short human-facing lines. Everything goes to stderr:
// when blight runs as a wrapper, stdout belongs to the real tool, and
// `blight env` output is meant to be eval'd.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Out is where messages go.
var Out io.Writer = os.Stderr

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func render(s lipgloss.Style, msg string) string {
	if !IsTTY(Out) {
		return msg
	}
	return s.Render(msg)
}

// Warn prints a warning message.
func Warn(msg string) {
	fmt.Fprintln(Out, render(Warning, IconWarn+msg))
}

// Err prints an error message.
func Err(msg string) {
	fmt.Fprintln(Out, render(Error, IconError+msg))
}

// Ok prints a success message.
func Ok(msg string) {
	fmt.Fprintln(Out, render(Success, IconOk+msg))
}

// Inf prints an info message.
func Inf(msg string) {
	fmt.Fprintln(Out, render(Info, "  "+msg))
}

// Tip prints a hint.
func Tip(msg string) {
	fmt.Fprintln(Out, render(Muted, "  tip: "+msg))
}

// Header prints a section header to w.
func Header(w io.Writer, s string) {
	if !IsTTY(w) {
		fmt.Fprintln(w, s)
		return
	}
	fmt.Fprintln(w, Title.Render(s))
	fmt.Fprintln(w, Muted.Render(strings.Repeat("─", len(s)+2)))
}

// Kv prints a padded key-value pair to w.
func Kv(w io.Writer, key, value string) {
	k := fmt.Sprintf("  %-12s", key)
	if IsTTY(w) {
		k, value = KeyStyle.Render(k), ValueStyle.Render(value)
	}
	fmt.Fprintf(w, "%s %s\n", k, value)
}
