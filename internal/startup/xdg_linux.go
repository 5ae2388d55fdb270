//go:build linux

package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"osassist/internal/fileutil"
)

type xdgManager struct {
	appName string
	sidecar SidecarResolver
}

func newPlatformManager(appName string, sidecar SidecarResolver) Manager {
	return &xdgManager{appName: appName, sidecar: sidecar}
}

// desktopPath honours XDG_CONFIG_HOME through os.UserConfigDir.
func (m *xdgManager) desktopPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "autostart", m.appName+".desktop"), nil
}

func (m *xdgManager) Enabled() (bool, error) {
	path, err := m.desktopPath()
	if err != nil {
		return false, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read autostart entry: %w", err)
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "Hidden=true" {
			return false, nil
		}
	}
	return true, nil
}

func (m *xdgManager) SetEnabled(enable bool) error {
	path, err := m.desktopPath()
	if err != nil {
		return err
	}
	if !enable {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove autostart entry: %w", err)
		}
		return nil
	}
	sidecar, err := m.sidecar()
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, []byte(desktopEntry(m.appName, sidecar)), 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

func desktopEntry(appName, exec string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=" + appName + "\n")
	b.WriteString("Exec=" + quoteExec(exec) + "\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// quoteExec applies the desktop entry quoting rules for Exec arguments.
func quoteExec(arg string) string {
	if !strings.ContainsAny(arg, " \t\"'\\`$><~|&;*?#()") {
		return arg
	}
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + replacer.Replace(arg) + `"`
}
