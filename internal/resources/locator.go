package resources

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"osassist/internal/fileutil"
)

// ErrNotFound reports that no resources directory could be located.
var ErrNotFound = errors.New("resources directory not found")

// Locator finds the assistant's bundled resources directory. The zero value
// uses the running executable and working directory.
type Locator struct {
	// ResourcesDir, when set, short-circuits discovery.
	ResourcesDir string
	Executable   func() (string, error)
	WorkingDir   func() (string, error)
}

// NewLocator returns a Locator honouring an optional configured directory.
func NewLocator(resourcesDir string) *Locator {
	return &Locator{ResourcesDir: strings.TrimSpace(resourcesDir)}
}

func (l *Locator) exeDir() (string, bool) {
	fn := os.Executable
	if l != nil && l.Executable != nil {
		fn = l.Executable
	}
	exe, err := fn()
	if err != nil || exe == "" {
		return "", false
	}
	return filepath.Dir(exe), true
}

func (l *Locator) cwd() (string, bool) {
	fn := os.Getwd
	if l != nil && l.WorkingDir != nil {
		fn = l.WorkingDir
	}
	dir, err := fn()
	if err != nil || dir == "" {
		return "", false
	}
	return dir, true
}

// BaseDir resolves the resources directory: the configured override, then the
// bundle layout <exe_dir>/resources, then the development layouts
// <cwd>/resources and <cwd>/src-tauri/resources.
func (l *Locator) BaseDir() (string, bool) {
	if l != nil && l.ResourcesDir != "" {
		return l.ResourcesDir, true
	}
	var candidates []string
	if dir, ok := l.exeDir(); ok {
		candidates = append(candidates, filepath.Join(dir, "resources"))
	}
	if dir, ok := l.cwd(); ok {
		candidates = append(candidates,
			filepath.Join(dir, "resources"),
			filepath.Join(dir, "src-tauri", "resources"),
		)
	}
	for _, candidate := range candidates {
		if fileutil.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// LogPath returns where the assistant writes name. It prefers
// <base>/logs/<name>, falls back to <base>/<name>, and returns the logs/
// location when neither exists yet so pollers watch a stable path.
func (l *Locator) LogPath(name string) (string, error) {
	base, ok := l.BaseDir()
	if !ok {
		return "", ErrNotFound
	}
	preferred := filepath.Join(base, "logs", name)
	if fileutil.Exists(preferred) {
		return absolute(preferred), nil
	}
	if flat := filepath.Join(base, name); fileutil.Exists(flat) {
		return absolute(flat), nil
	}
	return absolute(preferred), nil
}

// SettingsPath returns the settings document location. Unlike logs, settings
// always resolve: an existing resources copy wins, otherwise the file sits next
// to the executable.
func (l *Locator) SettingsPath(name string) string {
	return l.documentPath(name, false)
}

// AuthCachePath returns the auth cache location. When no copy exists yet the
// working directory's resources folder is preferred, because the assistant
// process reads it from there in development layouts.
func (l *Locator) AuthCachePath(name string) string {
	return l.documentPath(name, true)
}

func (l *Locator) documentPath(name string, preferCwdResources bool) string {
	if l != nil && l.ResourcesDir != "" {
		return absolute(filepath.Join(l.ResourcesDir, name))
	}
	exeDir, haveExe := l.exeDir()
	cwd, haveCwd := l.cwd()

	if haveExe {
		if candidate := filepath.Join(exeDir, "resources", name); fileutil.Exists(candidate) {
			return absolute(candidate)
		}
	}
	if haveCwd {
		candidate := filepath.Join(cwd, "resources", name)
		if preferCwdResources || fileutil.Exists(candidate) {
			return absolute(candidate)
		}
	}
	if haveExe {
		return absolute(filepath.Join(exeDir, name))
	}
	return absolute(name)
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
