package ipc

import (
	"encoding/json"

	"osassist/internal/auth"
	"osassist/internal/health"
	"osassist/internal/logs"
	"osassist/internal/panel"
	"osassist/internal/settings"
)

// ServiceName is the JSON-RPC service the server registers.
const ServiceName = "Panel"

// Envelope carries per-call metadata.
type Envelope struct {
	CorrelationID string `json:"correlation_id,omitempty"`
}

// StatusRequest fetches the panel snapshot.
type StatusRequest struct {
	Envelope
}

// StatusResponse mirrors panel.Status.
type StatusResponse struct {
	panel.Status
}

// LogTailRequest mirrors logs.TailRequest.
type LogTailRequest struct {
	Envelope
	Offset    uint64  `json:"offset"`
	MaxBytes  *uint64 `json:"max_bytes,omitempty"`
	LastLines int     `json:"last_lines"`
}

// LogTailResponse carries one log chunk.
type LogTailResponse struct {
	logs.LogChunk
}

// LoadSettingsRequest fetches the settings document.
type LoadSettingsRequest struct {
	Envelope
}

// SaveSettingsRequest replaces the settings document.
type SaveSettingsRequest struct {
	Envelope
	Settings settings.Settings `json:"settings"`
}

// SettingsResponse returns a document and where it is stored.
type SettingsResponse struct {
	Settings settings.Settings `json:"settings"`
	Path     string            `json:"path"`
}

// ExportSettingsRequest renders the document in Format.
type ExportSettingsRequest struct {
	Envelope
	Format string `json:"format"`
}

// ExportSettingsResponse carries the rendered document.
type ExportSettingsResponse struct {
	Data string `json:"data"`
}

// ImportSettingsRequest replaces the document with Data encoded in Format.
type ImportSettingsRequest struct {
	Envelope
	Data   string `json:"data"`
	Format string `json:"format"`
}

// ListItemRequest addresses one entry of a settings list. Index is ignored
// when adding; Item is ignored when removing.
type ListItemRequest struct {
	Envelope
	List  string          `json:"list"`
	Index int             `json:"index"`
	Item  json.RawMessage `json:"item,omitempty"`
}

// ListItemResponse acknowledges a list mutation.
type ListItemResponse struct {
	OK bool `json:"ok"`
}

// HealthRequest probes the sidecar.
type HealthRequest struct {
	Envelope
}

// HealthResponse mirrors health.Status.
type HealthResponse struct {
	health.Status
}

// StopAssistantRequest asks the sidecar to shut down.
type StopAssistantRequest struct {
	Envelope
}

// CleanupRequest kills leftover sidecar processes.
type CleanupRequest struct {
	Envelope
}

// MessageResponse carries a human-readable result.
type MessageResponse struct {
	Message string `json:"message"`
}

// StartupStatusRequest queries autostart registration.
type StartupStatusRequest struct {
	Envelope
}

// SetStartupRequest toggles autostart registration.
type SetStartupRequest struct {
	Envelope
	Enabled bool `json:"enabled"`
}

// StartupResponse reports autostart registration.
type StartupResponse struct {
	Enabled bool `json:"enabled"`
}

// UpdateAuthCacheRequest stores credentials for the sidecar.
type UpdateAuthCacheRequest struct {
	Envelope
	Auth auth.Data `json:"auth"`
}

// ClearAuthCacheRequest removes stored credentials.
type ClearAuthCacheRequest struct {
	Envelope
}

// ShutdownRequest asks the panel process to exit.
type ShutdownRequest struct {
	Envelope
}

// ShutdownResponse acknowledges a shutdown request.
type ShutdownResponse struct {
	Stopping bool `json:"stopping"`
}
