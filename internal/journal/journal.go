// Package journal is the shared append-only record of action hook firings.
//
// A journal is a file of JSON lines written by many unrelated wrapper
// processes at once. Each append opens the file with O_APPEND, takes an
// exclusive advisory lock on the file itself, issues a single write and lets
// go; nothing ever rewrites the file in place.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Version is the record format version written in every entry's "v" field.
const Version = 1

// Phase is the hook phase an entry was recorded in.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// Entry is one journal record.
type Entry struct {
	V         int             `json:"v"`
	RunID     string          `json:"run_id"`
	Action    string          `json:"action"`
	ToolKind  string          `json:"tool_kind"`
	Phase     Phase           `json:"phase"`
	Timestamp time.Time       `json:"timestamp"`
	PID       int             `json:"pid"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	// Error is the hook's failure, if any.
	Error string `json:"error,omitempty"`
}

// Journal appends entries to one path. The zero value and a Journal opened
// with an empty path are disabled: Record does nothing.
type Journal struct {
	path string
}

// Open returns a journal writing to path. No file is touched until the first
// Record.
func Open(path string) *Journal {
	return &Journal{path: path}
}

// Enabled reports whether records are written anywhere.
func (j *Journal) Enabled() bool {
	return j != nil && j.path != ""
}

// Path returns the journal file path, empty when disabled.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Record appends e as one line. Missing version, pid and timestamp fields are
// filled in.
func (j *Journal) Record(e Entry) error {
	if !j.Enabled() {
		return nil
	}
	if e.V == 0 {
		e.V = Version
	}
	if e.PID == 0 {
		e.PID = os.Getpid()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding journal entry: %w", err)
	}
	return AppendLine(j.path, line)
}

// AppendLine atomically appends line plus a trailing newline to path,
// creating the file if needed. It is safe across processes.
func AppendLine(path string, line []byte) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if err := lock(f); err != nil {
		return fmt.Errorf("locking journal: %w", err)
	}
	defer unlock(f)

	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("appending to journal: %w", err)
	}
	return nil
}

// AppendJSON marshals v and appends it as one line to path.
func AppendJSON(path string, v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return AppendLine(path, line)
}
