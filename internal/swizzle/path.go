package swizzle

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DirSuffix marks a swizzle directory. Any PATH entry ending in it is
// blight's own and is removed before a real tool is looked up or run.
const DirSuffix = "@blight-swizzle@"

// IsSwizzleDir reports whether dir is a swizzle directory.
func IsSwizzleDir(dir string) bool {
	return strings.HasSuffix(strings.TrimRight(dir, string(filepath.Separator)), DirSuffix)
}

// UnswizzledPath removes every swizzle directory from a PATH value.
func UnswizzledPath(path string) string {
	if path == "" {
		return ""
	}
	kept := make([]string, 0, 8)
	for _, dir := range filepath.SplitList(path) {
		if IsSwizzleDir(dir) {
			continue
		}
		kept = append(kept, dir)
	}
	return strings.Join(kept, string(filepath.ListSeparator))
}

// UnswizzleEnviron returns a copy of environ whose PATH has its swizzle
// directories removed.
func UnswizzleEnviron(environ []string) []string {
	out := make([]string, 0, len(environ))
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, "PATH="); ok {
			kv = "PATH=" + UnswizzledPath(v)
		}
		out = append(out, kv)
	}
	return out
}

// LookPath searches the directories of path, rather than the process PATH,
// for an executable named file. A file containing a slash is checked as is.
// The result is absolute.
func LookPath(file, path string) (string, error) {
	if strings.Contains(file, "/") {
		if err := executable(file); err != nil {
			return "", &exec.Error{Name: file, Err: err}
		}
		return filepath.Abs(file)
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if executable(candidate) == nil {
			return filepath.Abs(candidate)
		}
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

func executable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() || fi.Mode().Perm()&0o111 == 0 {
		return os.ErrPermission
	}
	return nil
}
