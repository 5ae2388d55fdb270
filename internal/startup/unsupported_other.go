//go:build !windows && !linux

package startup

type unsupportedManager struct{}

func newPlatformManager(string, SidecarResolver) Manager {
	return unsupportedManager{}
}

func (unsupportedManager) Enabled() (bool, error) { return false, nil }

func (unsupportedManager) SetEnabled(bool) error { return ErrUnsupported }
