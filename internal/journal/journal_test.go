package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
)

func TestDisabledJournal(t *testing.T) {
	j := Open("")
	if j.Enabled() {
		t.Fatal("empty path should disable the journal")
	}
	if err := j.Record(Entry{Action: "Record"}); err != nil {
		t.Fatalf("Record on disabled journal: %v", err)
	}

	var nilJournal *Journal
	if nilJournal.Enabled() || nilJournal.Record(Entry{}) != nil {
		t.Error("nil journal should be disabled and silent")
	}
}

func TestRecordFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j := Open(path)
	if err := j.Record(Entry{RunID: "r1", Action: "Demo", ToolKind: "CC", Phase: PhaseBefore,
		Payload: json.RawMessage(`{"k":"v"}`)}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	e, err := NewReader(f).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if e.V != Version || e.PID != os.Getpid() || e.Timestamp.IsZero() {
		t.Errorf("defaults not filled: %+v", e)
	}
	if e.Action != "Demo" || e.Phase != PhaseBefore || string(e.Payload) != `{"k":"v"}` {
		t.Errorf("entry = %+v", e)
	}
}

func TestReaderSkipsBlankAndUnknownFields(t *testing.T) {
	in := strings.Join([]string{
		`{"v":1,"action":"A","tool_kind":"CC","phase":"before","future":"field"}`,
		``,
		`   `,
		`{"v":2,"action":"B","tool_kind":"LD","phase":"after","payload":[1,2]}`,
	}, "\n")

	r := NewReader(strings.NewReader(in))
	var got []string
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, e.Action+"/"+e.ToolKind)
	}
	if strings.Join(got, ",") != "A/CC,B/LD" {
		t.Errorf("entries = %v", got)
	}
}

func TestReaderMalformedLine(t *testing.T) {
	r := NewReader(strings.NewReader("{\"v\":1}\nnot json\n"))
	if _, err := r.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	_, err := r.Next()
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line 2 error, got %v", err)
	}
}

func TestAppendJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	for i := range 3 {
		if err := AppendJSON(path, map[string]int{"i": i}); err != nil {
			t.Fatalf("AppendJSON: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "{\"i\":0}\n{\"i\":1}\n{\"i\":2}\n" {
		t.Errorf("file = %q", got)
	}
}

// TestHelperProcessAppend is not a real test; it is the child half of
// TestConcurrentProcessAppends.
func TestHelperProcessAppend(t *testing.T) {
	if os.Getenv("BLIGHT_JOURNAL_HELPER") != "1" {
		t.Skip("helper process")
	}
	path := os.Getenv("BLIGHT_JOURNAL_HELPER_PATH")
	count, _ := strconv.Atoi(os.Getenv("BLIGHT_JOURNAL_HELPER_COUNT"))
	payload, _ := json.Marshal(strings.Repeat("x", 8192))
	j := Open(path)
	for i := range count {
		err := j.Record(Entry{RunID: fmt.Sprintf("%d-%d", os.Getpid(), i), Action: "Helper",
			ToolKind: "CC", Phase: PhaseBefore, Payload: payload})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	os.Exit(0)
}

func TestConcurrentProcessAppends(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns processes")
	}
	const procs, perProc = 8, 25
	path := filepath.Join(t.TempDir(), "shared.jsonl")

	var wg sync.WaitGroup
	errc := make(chan error, procs)
	for range procs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd := exec.Command(os.Args[0], "-test.run=^TestHelperProcessAppend$")
			cmd.Env = append(os.Environ(),
				"BLIGHT_JOURNAL_HELPER=1",
				"BLIGHT_JOURNAL_HELPER_PATH="+path,
				"BLIGHT_JOURNAL_HELPER_COUNT="+strconv.Itoa(perProc),
			)
			if out, err := cmd.CombinedOutput(); err != nil {
				errc <- fmt.Errorf("helper: %v: %s", err, out)
			}
		}()
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	seen := map[string]bool{}
	err = Each(f, func(e Entry) error {
		if seen[e.RunID] {
			return fmt.Errorf("duplicate record %s", e.RunID)
		}
		seen[e.RunID] = true
		var p string
		if err := json.Unmarshal(e.Payload, &p); err != nil || len(p) != 8192 {
			return fmt.Errorf("truncated payload in %s", e.RunID)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != procs*perProc {
		t.Errorf("got %d records, want %d", len(seen), procs*perProc)
	}
}
