package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rnwolfe/blight/internal/config"
	"github.com/rnwolfe/blight/internal/errs"
	"github.com/rnwolfe/blight/internal/swizzle"
	"github.com/rnwolfe/blight/internal/tool"
)

// Resolve finds the real tool for kind from BLIGHT_WRAPPED_<KIND>. Bare
// names are looked up on the PATH with swizzle directories removed, and a
// value that leads back to a blight wrapper is rejected.
func Resolve(cfg *config.Config, kind tool.Kind) (string, error) {
	wrapped := cfg.Wrapped(kind)
	if wrapped == "" {
		return "", &errs.ResolutionError{Kind: string(kind), Reason: kind.WrappedEnv() + " is not set"}
	}
	if _, self := tool.KindForWrapper(filepath.Base(wrapped)); self {
		return "", &errs.ResolutionError{Kind: string(kind), Reason: fmt.Sprintf("%s names a blight wrapper (%s)", kind.WrappedEnv(), wrapped)}
	}

	path, err := swizzle.LookPath(wrapped, swizzle.UnswizzledPath(cfg.Getenv("PATH")))
	if err != nil {
		return "", &errs.ResolutionError{Kind: string(kind), Reason: err.Error()}
	}
	if sameAsSelf(path) {
		return "", &errs.ResolutionError{Kind: string(kind), Reason: fmt.Sprintf("%s resolves to blight itself (%s)", kind.WrappedEnv(), path)}
	}
	return path, nil
}

func sameAsSelf(path string) bool {
	self, err := os.Executable()
	if err != nil {
		return false
	}
	a, err := os.Stat(self)
	if err != nil {
		return false
	}
	b, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(a, b)
}
