package panelaccess

import (
	"context"
	"encoding/json"

	"osassist/internal/auth"
	"osassist/internal/health"
	"osassist/internal/ipc"
	"osassist/internal/logs"
	"osassist/internal/panel"
	"osassist/internal/settings"
)

// Access provides panel operations regardless of IPC or in-process backing.
type Access interface {
	Status(ctx context.Context) (panel.Status, error)
	TailLog(ctx context.Context, req logs.TailRequest) (logs.LogChunk, error)
	LoadSettings(ctx context.Context) (settings.SaveResult, error)
	SaveSettings(ctx context.Context, doc settings.Settings) (settings.SaveResult, error)
	ExportSettings(ctx context.Context, format settings.Format) ([]byte, error)
	ImportSettings(ctx context.Context, data []byte, format settings.Format) (settings.SaveResult, error)
	AddListItem(ctx context.Context, list settings.List, item json.RawMessage) error
	UpdateListItem(ctx context.Context, list settings.List, index int, item json.RawMessage) error
	RemoveListItem(ctx context.Context, list settings.List, index int) error
	Health(ctx context.Context) (health.Status, error)
	StopAssistant(ctx context.Context) (health.Status, error)
	Cleanup(ctx context.Context) (string, error)
	StartupEnabled(ctx context.Context) (bool, error)
	SetStartup(ctx context.Context, enabled bool) error
	UpdateAuthCache(ctx context.Context, data auth.Data) (string, error)
	ClearAuthCache(ctx context.Context) (string, error)
}

// NewIPCAccess returns an Access backed by panel IPC.
func NewIPCAccess(client *ipc.Client) Access {
	return &ipcAccess{client: client}
}

// NewLocalAccess returns an Access that runs operations in-process.
func NewLocalAccess(svc *panel.Service) Access {
	return &localAccess{svc: svc}
}

type ipcAccess struct {
	client *ipc.Client
}

func (a *ipcAccess) Status(_ context.Context) (panel.Status, error) {
	resp, err := a.client.Status()
	if err != nil {
		return panel.Status{}, err
	}
	return resp.Status, nil
}

func (a *ipcAccess) TailLog(_ context.Context, req logs.TailRequest) (logs.LogChunk, error) {
	return a.client.LogTail(req)
}

func (a *ipcAccess) LoadSettings(_ context.Context) (settings.SaveResult, error) {
	resp, err := a.client.LoadSettings()
	if err != nil {
		return settings.SaveResult{}, err
	}
	return settings.SaveResult{Settings: resp.Settings, Path: resp.Path}, nil
}

func (a *ipcAccess) SaveSettings(_ context.Context, doc settings.Settings) (settings.SaveResult, error) {
	resp, err := a.client.SaveSettings(doc)
	if err != nil {
		return settings.SaveResult{}, err
	}
	return settings.SaveResult{Settings: resp.Settings, Path: resp.Path}, nil
}

func (a *ipcAccess) ExportSettings(_ context.Context, format settings.Format) ([]byte, error) {
	data, err := a.client.ExportSettings(format)
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (a *ipcAccess) ImportSettings(_ context.Context, data []byte, format settings.Format) (settings.SaveResult, error) {
	resp, err := a.client.ImportSettings(data, format)
	if err != nil {
		return settings.SaveResult{}, err
	}
	return settings.SaveResult{Settings: resp.Settings, Path: resp.Path}, nil
}

func (a *ipcAccess) AddListItem(_ context.Context, list settings.List, item json.RawMessage) error {
	return a.client.AddListItem(list, item)
}

func (a *ipcAccess) UpdateListItem(_ context.Context, list settings.List, index int, item json.RawMessage) error {
	return a.client.UpdateListItem(list, index, item)
}

func (a *ipcAccess) RemoveListItem(_ context.Context, list settings.List, index int) error {
	return a.client.RemoveListItem(list, index)
}

func (a *ipcAccess) Health(_ context.Context) (health.Status, error) {
	resp, err := a.client.Health()
	if err != nil {
		return health.Status{}, err
	}
	return resp.Status, nil
}

func (a *ipcAccess) StopAssistant(_ context.Context) (health.Status, error) {
	resp, err := a.client.StopAssistant()
	if err != nil {
		return health.Status{}, err
	}
	return resp.Status, nil
}

func (a *ipcAccess) Cleanup(_ context.Context) (string, error) {
	return a.client.Cleanup()
}

func (a *ipcAccess) StartupEnabled(_ context.Context) (bool, error) {
	return a.client.StartupStatus()
}

func (a *ipcAccess) SetStartup(_ context.Context, enabled bool) error {
	return a.client.SetStartup(enabled)
}

func (a *ipcAccess) UpdateAuthCache(_ context.Context, data auth.Data) (string, error) {
	return a.client.UpdateAuthCache(data)
}

func (a *ipcAccess) ClearAuthCache(_ context.Context) (string, error) {
	return a.client.ClearAuthCache()
}

type localAccess struct {
	svc *panel.Service
}

func (a *localAccess) Status(ctx context.Context) (panel.Status, error) {
	return a.svc.Status(ctx), nil
}

func (a *localAccess) TailLog(_ context.Context, req logs.TailRequest) (logs.LogChunk, error) {
	return a.svc.TailLog(req)
}

func (a *localAccess) LoadSettings(_ context.Context) (settings.SaveResult, error) {
	doc, err := a.svc.LoadSettings()
	if err != nil {
		return settings.SaveResult{}, err
	}
	return settings.SaveResult{Settings: doc, Path: a.svc.SettingsPath()}, nil
}

func (a *localAccess) SaveSettings(ctx context.Context, doc settings.Settings) (settings.SaveResult, error) {
	return a.svc.SaveSettings(ctx, doc)
}

func (a *localAccess) ExportSettings(_ context.Context, format settings.Format) ([]byte, error) {
	return a.svc.ExportSettings(format)
}

func (a *localAccess) ImportSettings(ctx context.Context, data []byte, format settings.Format) (settings.SaveResult, error) {
	return a.svc.ImportSettings(ctx, data, format)
}

func (a *localAccess) AddListItem(ctx context.Context, list settings.List, item json.RawMessage) error {
	return a.svc.AddListItem(ctx, list, item)
}

func (a *localAccess) UpdateListItem(ctx context.Context, list settings.List, index int, item json.RawMessage) error {
	return a.svc.UpdateListItem(ctx, list, index, item)
}

func (a *localAccess) RemoveListItem(ctx context.Context, list settings.List, index int) error {
	return a.svc.RemoveListItem(ctx, list, index)
}

func (a *localAccess) Health(ctx context.Context) (health.Status, error) {
	return a.svc.Health(ctx), nil
}

func (a *localAccess) StopAssistant(ctx context.Context) (health.Status, error) {
	return a.svc.StopAssistant(ctx), nil
}

func (a *localAccess) Cleanup(ctx context.Context) (string, error) {
	return a.svc.Cleanup(ctx)
}

func (a *localAccess) StartupEnabled(_ context.Context) (bool, error) {
	return a.svc.StartupEnabled()
}

func (a *localAccess) SetStartup(_ context.Context, enabled bool) error {
	return a.svc.SetStartup(enabled)
}

func (a *localAccess) UpdateAuthCache(_ context.Context, data auth.Data) (string, error) {
	return a.svc.UpdateAuthCache(data)
}

func (a *localAccess) ClearAuthCache(_ context.Context) (string, error) {
	return a.svc.ClearAuthCache()
}
