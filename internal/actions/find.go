package actions

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rnwolfe/blight/internal/action"
	"github.com/rnwolfe/blight/internal/journal"
	"github.com/rnwolfe/blight/internal/tool"
)

var inputKinds = map[string]string{
	".c":   "c",
	".cc":  "c++",
	".cpp": "c++",
	".cxx": "c++",
	".c++": "c++",
	".C":   "c++",
	".h":   "header",
	".hh":  "header",
	".hpp": "header",
	".i":   "preprocessed",
	".ii":  "preprocessed",
	".s":   "assembly",
	".S":   "assembly",
	".asm": "assembly",
	".o":   "object",
	".obj": "object",
	".a":   "static",
	".lib": "static",
	".so":  "shared",
}

var outputKinds = map[string]string{
	".o":     "object",
	".obj":   "object",
	".so":    "shared",
	".dylib": "shared",
	".dll":   "shared",
	".a":     "static",
	".lib":   "static",
	"":       "executable",
	".exe":   "executable",
	".bin":   "executable",
	".elf":   "executable",
	".com":   "executable",
	".ko":    "kernel",
	".sys":   "kernel",
}

type file struct {
	Kind          string `json:"kind"`
	Prenormalized string `json:"prenormalized_path"`
	Path          string `json:"path"`
	StorePath     string `json:"store_path,omitempty"`
	ContentHash   string `json:"content_hash,omitempty"`
}

type filesRecord struct {
	RunID   string         `json:"run_id"`
	Tool    *tool.Snapshot `json:"tool,omitempty"`
	Inputs  []file         `json:"inputs,omitempty"`
	Outputs []file         `json:"outputs,omitempty"`
}

// finder implements both FindInputs and FindOutputs. Files are collected
// before the run and stored after it, once outputs exist.
type finder struct {
	outputs bool
	output  string
	store   string
	files   []file
}

func newFindInputs(cfg action.Config) (action.Action, error) {
	return &finder{output: cfg.Get("output"), store: cfg.Get("store")}, nil
}

func newFindOutputs(cfg action.Config) (action.Action, error) {
	return &finder{outputs: true, output: cfg.Get("output"), store: cfg.Get("store")}, nil
}

func (f *finder) BeforeRun(ctx *action.Context) error {
	inv := ctx.Tool
	paths := inv.Inputs()
	if f.outputs {
		paths = inv.ExpectedOutputs()
	}
	f.files = f.files[:0]
	for _, p := range paths {
		abs := p
		if p != "-" && !filepath.IsAbs(p) {
			abs = filepath.Join(inv.Cwd(), p)
		}
		f.files = append(f.files, file{Kind: f.kindOf(inv.Kind(), abs), Prenormalized: p, Path: abs})
	}
	return nil
}

func (f *finder) kindOf(k tool.Kind, path string) string {
	if !f.outputs {
		if kind, ok := inputKinds[filepath.Ext(path)]; ok {
			return kind
		}
		return "unknown"
	}
	if filepath.Base(path) == "a.out" && (k == tool.CC || k == tool.CXX || k == tool.LD) {
		return "executable"
	}
	if kind, ok := outputKinds[filepath.Ext(path)]; ok {
		return kind
	}
	return "unknown"
}

func (f *finder) AfterRun(ctx *action.Context, res action.Result) error {
	if f.store != "" && !res.Skipped {
		if err := os.MkdirAll(f.store, 0o755); err != nil {
			return fmt.Errorf("creating store: %w", err)
		}
		for i := range f.files {
			if err := f.keep(ctx, &f.files[i]); err != nil {
				return err
			}
		}
	}

	rec := filesRecord{RunID: ctx.RunID}
	if f.outputs {
		rec.Outputs = f.files
	} else {
		rec.Inputs = f.files
	}

	if ctx.Journaling() {
		ctx.SetResult(rec)
	}
	if f.output == "" {
		if !ctx.Journaling() {
			return errors.New("no output setting and no journal configured")
		}
		return nil
	}
	snap := ctx.Tool.Snapshot()
	rec.Tool = &snap
	return journal.AppendJSON(f.output, rec)
}

// keep copies fl into the store under a name derived from its content, so
// that identically named files from different directories never collide.
func (f *finder) keep(ctx *action.Context, fl *file) error {
	src, err := os.Open(fl.Path)
	if errors.Is(err, os.ErrNotExist) {
		ctx.Log.Warn().Str("path", fl.Path).Msg("expected file does not exist")
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	h := sha256.New()
	if _, err := io.Copy(h, src); err != nil {
		return fmt.Errorf("hashing %s: %w", fl.Path, err)
	}
	fl.ContentHash = hex.EncodeToString(h.Sum(nil))
	dst := filepath.Join(f.store, filepath.Base(fl.Path)+"-"+fl.ContentHash)
	fl.StorePath = dst
	if _, err := os.Stat(dst); err == nil {
		return nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.store, ".blight-store-*")
	if err != nil {
		return fmt.Errorf("storing %s: %w", fl.Path, err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storing %s: %w", fl.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
