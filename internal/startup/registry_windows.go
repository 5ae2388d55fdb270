//go:build windows

package startup

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

type registryManager struct {
	appName string
	sidecar SidecarResolver
}

func newPlatformManager(appName string, sidecar SidecarResolver) Manager {
	return &registryManager{appName: appName, sidecar: sidecar}
}

func (m *registryManager) Enabled() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false, fmt.Errorf("open registry key: %w", err)
	}
	defer key.Close()

	if _, _, err := key.GetStringValue(m.appName); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *registryManager) SetEnabled(enable bool) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open registry key: %w", err)
	}
	defer key.Close()

	if !enable {
		if err := key.DeleteValue(m.appName); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("delete registry value: %w", err)
		}
		return nil
	}
	path, err := m.sidecar()
	if err != nil {
		return err
	}
	if err := key.SetStringValue(m.appName, path); err != nil {
		return fmt.Errorf("set registry value: %w", err)
	}
	return nil
}
