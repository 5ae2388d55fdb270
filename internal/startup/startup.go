// Package startup registers the assistant sidecar to launch at user login.
package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"osassist/internal/fileutil"
)

// ErrUnsupported is returned by SetEnabled on platforms without autostart support.
var ErrUnsupported = errors.New("startup management is not supported on this platform")

// Manager toggles login autostart for the sidecar.
type Manager interface {
	Enabled() (bool, error)
	SetEnabled(enable bool) error
}

// SidecarResolver returns the executable path to register.
type SidecarResolver func() (string, error)

// New returns the Manager for the running platform.
func New(appName string, sidecar SidecarResolver) Manager {
	return newPlatformManager(appName, sidecar)
}

// ConfiguredSidecar resolves the sidecar from an explicit path when one is
// configured, otherwise by searching next to the running executable.
func ConfiguredSidecar(path, processName string) SidecarResolver {
	return func() (string, error) {
		if explicit := strings.TrimSpace(path); explicit != "" {
			if !fileutil.Exists(explicit) {
				return "", fmt.Errorf("sidecar executable %s does not exist", explicit)
			}
			return filepath.Abs(explicit)
		}
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("resolve executable path: %w", err)
		}
		return FindSidecar(filepath.Dir(exe), processName)
	}
}

// FindSidecar searches appDir for the sidecar: the exact name with and
// without .exe, the same under resources/, then the first versioned
// <name>-*.exe build in either directory.
func FindSidecar(appDir, name string) (string, error) {
	resources := filepath.Join(appDir, "resources")
	candidates := []string{
		filepath.Join(appDir, name+".exe"),
		filepath.Join(appDir, name),
		filepath.Join(resources, name+".exe"),
		filepath.Join(resources, name),
	}
	for _, candidate := range candidates {
		if isFile(candidate) {
			return candidate, nil
		}
	}
	for _, dir := range []string{appDir, resources} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			fileName := entry.Name()
			if !strings.HasPrefix(fileName, name+"-") || !strings.HasSuffix(fileName, ".exe") {
				continue
			}
			if path := filepath.Join(dir, fileName); isFile(path) {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("sidecar executable %q not found in expected locations", name)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
