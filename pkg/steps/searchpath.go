package steps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

const pathEnv = "PATH"

// SearchPath is the ordered list of directories used to resolve tools.
// It starts from the process PATH and is extended by path steps; the
// process environment itself is never modified.
type SearchPath struct {
	dirs []string
}

// NewSearchPath returns a SearchPath seeded with dirs.
func NewSearchPath(dirs []string) *SearchPath {
	p := &SearchPath{}
	p.Append(dirs...)
	return p
}

// SystemSearchPath returns a SearchPath seeded from the process PATH. On
// Unix an empty PATH entry names the current directory.
func SystemSearchPath() *SearchPath {
	dirs := filepath.SplitList(os.Getenv(pathEnv))
	if runtime.GOOS != "windows" {
		for i, dir := range dirs {
			if dir == "" {
				dirs[i] = "."
			}
		}
	}
	return NewSearchPath(dirs)
}

// Append adds dirs to the end of the path, skipping empty entries and
// directories already present. It returns the directories actually added.
func (p *SearchPath) Append(dirs ...string) []string {
	var added []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		dir = filepath.Clean(dir)
		if slices.ContainsFunc(p.dirs, func(d string) bool { return samePath(d, dir) }) {
			continue
		}
		p.dirs = append(p.dirs, dir)
		added = append(added, dir)
	}
	return added
}

// Dirs returns a copy of the directories.
func (p *SearchPath) Dirs() []string {
	return slices.Clone(p.dirs)
}

func (p *SearchPath) String() string {
	return strings.Join(p.dirs, string(os.PathListSeparator))
}

// LookPath resolves name against the search path. Names containing a path
// separator are resolved as-is. Relative entries resolve against the
// current working directory.
func (p *SearchPath) LookPath(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, name, err)
		}
		return path, nil
	}

	for _, dir := range p.dirs {
		if !filepath.IsAbs(dir) {
			abs, err := filepath.Abs(dir)
			if err != nil {
				continue
			}
			dir = abs
		}
		path, err := exec.LookPath(filepath.Join(dir, name))
		if err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %d directories)", ErrToolNotFound, name, len(p.dirs))
}

// Environ returns base with PATH replaced by the search path and the
// overrides applied.
func (p *SearchPath) Environ(base []string, overrides map[string]string) []string {
	env := setEnv(base, pathEnv, p.String())

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		env = setEnv(env, k, overrides[k])
	}
	return env
}

func setEnv(env []string, key, value string) []string {
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		if sameEnvKey(k, key) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, key+"="+value)
}

func sameEnvKey(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func samePath(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
