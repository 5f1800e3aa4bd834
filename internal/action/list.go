package action

import "strings"

// ParseList splits a colon-delimited action list, dropping empty names.
func ParseList(s string) []string {
	var out []string
	for _, name := range strings.Split(s, ":") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Dedup removes repeated names, keeping each name at its first position.
// Names are case-sensitive.
func Dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
