package panelaccess

import (
	"fmt"

	"osassist/internal/ipc"
	"osassist/internal/panel"
)

// Session represents a panel access handle and its cleanup function.
type Session struct {
	Access Access
	// Remote reports whether operations go to a running panel over IPC.
	Remote bool
	close  func() error
}

// Close releases resources associated with the session.
func (s Session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenWithFallback tries IPC-backed access first, then falls back to an
// in-process panel service that is never started.
func OpenWithFallback(
	dial func() (*ipc.Client, error),
	openLocal func() (*panel.Service, error),
) (Session, error) {
	if dial != nil {
		if client, err := dial(); err == nil {
			return Session{
				Access: NewIPCAccess(client),
				Remote: true,
				close:  client.Close,
			}, nil
		}
	}

	if openLocal == nil {
		return Session{}, fmt.Errorf("open panel: no local opener configured")
	}
	svc, err := openLocal()
	if err != nil {
		return Session{}, fmt.Errorf("open panel: %w", err)
	}
	return Session{Access: NewLocalAccess(svc)}, nil
}
