package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MaxLineSize bounds a single journal line. Payloads larger than this are
// reported as errors rather than silently split.
const MaxLineSize = 16 << 20

// Reader streams entries from a journal one line at a time.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), MaxLineSize)
	return &Reader{sc: sc}
}

// Next returns the next entry, or io.EOF when the journal is exhausted. Blank
// lines are skipped and fields this version does not know are ignored.
func (r *Reader) Next() (Entry, error) {
	for r.sc.Scan() {
		r.line++
		b := bytes.TrimSpace(r.sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return Entry{}, fmt.Errorf("journal line %d: %w", r.line, err)
		}
		return e, nil
	}
	if err := r.sc.Err(); err != nil {
		return Entry{}, fmt.Errorf("reading journal: %w", err)
	}
	return Entry{}, io.EOF
}

// Each calls fn for every entry in r until fn returns an error or the journal
// ends.
func Each(r io.Reader, fn func(Entry) error) error {
	jr := NewReader(r)
	for {
		e, err := jr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}
