// Package workdir locates the lightface project a command runs against and
// names the files kept in its state directory.
package workdir

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// RootFile redirects a directory to another project root.
	RootFile = ".lightface-root"
	// StateDir holds the config and the repository database.
	StateDir = ".lightface"
	// EnvDir overrides discovery entirely.
	EnvDir = "LIGHTFACE_DIR"

	configName = "config.json"
)

// Project is a resolved project directory.
type Project struct {
	Root string
}

// At returns the project rooted at dir without any discovery.
func At(dir string) Project {
	return Project{Root: filepath.Clean(dir)}
}

// StateDir returns the project's state directory.
func (p Project) StateDir() string {
	return filepath.Join(p.Root, StateDir)
}

// ConfigPath returns the path of the project config file.
func (p Project) ConfigPath() string {
	return filepath.Join(p.StateDir(), configName)
}

// Path resolves a configured path. Absolute paths are kept; relative ones
// are taken from the project root.
func (p Project) Path(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(p.Root, name)
}

// Initialized reports whether the state directory exists.
func (p Project) Initialized() bool {
	return isDir(p.StateDir())
}

// Resolve finds the project for start:
//  1. $LIGHTFACE_DIR, relative to start when not absolute.
//  2. The nearest directory from start up to the git top level that holds a
//     .lightface-root redirect or a .lightface state directory. Outside git
//     only start itself is checked.
//  3. start.
func Resolve(start string) Project {
	if start == "" {
		return Project{}
	}
	start = filepath.Clean(start)

	if env := strings.TrimSpace(os.Getenv(EnvDir)); env != "" {
		if !filepath.IsAbs(env) {
			env = filepath.Join(start, env)
		}
		return At(env)
	}

	stop := start
	if top, err := gitTopLevel(start); err == nil && top != "" && within(start, top) {
		stop = filepath.Clean(top)
	}

	for dir := start; ; dir = filepath.Dir(dir) {
		if target, ok := readRedirect(dir); ok {
			return At(target)
		}
		if isDir(filepath.Join(dir, StateDir)) {
			return At(dir)
		}
		if dir == stop || filepath.Dir(dir) == dir {
			break
		}
	}
	return At(start)
}

func readRedirect(dir string) (string, bool) {
	content, err := os.ReadFile(filepath.Join(dir, RootFile))
	if err != nil {
		return "", false
	}
	target := strings.TrimSpace(string(content))
	if target == "" {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return target, true
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// within reports whether dir is root or below it.
func within(dir, root string) bool {
	rel, err := filepath.Rel(root, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func gitTopLevel(dir string) (string, error) {
	out, err := exec.Command("git", "-C", dir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
