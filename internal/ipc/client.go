package ipc

import (
	"encoding/json"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"github.com/google/uuid"

	"osassist/internal/auth"
	"osassist/internal/logs"
	"osassist/internal/settings"
)

// Client provides RPC access to the panel.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func newEnvelope() Envelope {
	return Envelope{CorrelationID: uuid.NewString()}
}

func (c *Client) call(method string, req, resp any) error {
	return c.client.Call(ServiceName+"."+method, req, resp)
}

// Status retrieves the panel snapshot.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{Envelope: newEnvelope()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail reads one chunk of the assistant log.
func (c *Client) LogTail(req logs.TailRequest) (logs.LogChunk, error) {
	var resp LogTailResponse
	err := c.call("LogTail", LogTailRequest{
		Envelope:  newEnvelope(),
		Offset:    req.Offset,
		MaxBytes:  req.MaxBytes,
		LastLines: req.LastLines,
	}, &resp)
	if err != nil {
		return logs.LogChunk{}, err
	}
	return resp.LogChunk, nil
}

// LoadSettings fetches the settings document.
func (c *Client) LoadSettings() (*SettingsResponse, error) {
	var resp SettingsResponse
	if err := c.call("LoadSettings", LoadSettingsRequest{Envelope: newEnvelope()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveSettings replaces the settings document.
func (c *Client) SaveSettings(doc settings.Settings) (*SettingsResponse, error) {
	var resp SettingsResponse
	if err := c.call("SaveSettings", SaveSettingsRequest{Envelope: newEnvelope(), Settings: doc}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExportSettings renders the settings document in format.
func (c *Client) ExportSettings(format settings.Format) (string, error) {
	var resp ExportSettingsResponse
	if err := c.call("ExportSettings", ExportSettingsRequest{Envelope: newEnvelope(), Format: string(format)}, &resp); err != nil {
		return "", err
	}
	return resp.Data, nil
}

// ImportSettings replaces the settings document with data.
func (c *Client) ImportSettings(data []byte, format settings.Format) (*SettingsResponse, error) {
	var resp SettingsResponse
	req := ImportSettingsRequest{Envelope: newEnvelope(), Data: string(data), Format: string(format)}
	if err := c.call("ImportSettings", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddListItem appends item to list.
func (c *Client) AddListItem(list settings.List, item any) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	var resp ListItemResponse
	return c.call("AddListItem", ListItemRequest{Envelope: newEnvelope(), List: string(list), Item: raw}, &resp)
}

// UpdateListItem replaces the entry at index.
func (c *Client) UpdateListItem(list settings.List, index int, item any) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	var resp ListItemResponse
	return c.call("UpdateListItem", ListItemRequest{Envelope: newEnvelope(), List: string(list), Index: index, Item: raw}, &resp)
}

// RemoveListItem deletes the entry at index.
func (c *Client) RemoveListItem(list settings.List, index int) error {
	var resp ListItemResponse
	return c.call("RemoveListItem", ListItemRequest{Envelope: newEnvelope(), List: string(list), Index: index}, &resp)
}

// Health probes the sidecar through the panel.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.call("Health", HealthRequest{Envelope: newEnvelope()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopAssistant asks the sidecar to shut down.
func (c *Client) StopAssistant() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.call("StopAssistant", StopAssistantRequest{Envelope: newEnvelope()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cleanup kills leftover sidecar processes.
func (c *Client) Cleanup() (string, error) {
	var resp MessageResponse
	if err := c.call("Cleanup", CleanupRequest{Envelope: newEnvelope()}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// StartupStatus reports autostart registration.
func (c *Client) StartupStatus() (bool, error) {
	var resp StartupResponse
	if err := c.call("StartupStatus", StartupStatusRequest{Envelope: newEnvelope()}, &resp); err != nil {
		return false, err
	}
	return resp.Enabled, nil
}

// SetStartup toggles autostart registration.
func (c *Client) SetStartup(enabled bool) error {
	var resp StartupResponse
	return c.call("SetStartup", SetStartupRequest{Envelope: newEnvelope(), Enabled: enabled}, &resp)
}

// UpdateAuthCache stores credentials for the sidecar.
func (c *Client) UpdateAuthCache(data auth.Data) (string, error) {
	var resp MessageResponse
	if err := c.call("UpdateAuthCache", UpdateAuthCacheRequest{Envelope: newEnvelope(), Auth: data}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ClearAuthCache removes stored credentials.
func (c *Client) ClearAuthCache() (string, error) {
	var resp MessageResponse
	if err := c.call("ClearAuthCache", ClearAuthCacheRequest{Envelope: newEnvelope()}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Shutdown asks the panel process to exit. The process closes the socket
// once its own cleanup is done.
func (c *Client) Shutdown() (bool, error) {
	var resp ShutdownResponse
	if err := c.call("Shutdown", ShutdownRequest{Envelope: newEnvelope()}, &resp); err != nil {
		return false, err
	}
	return resp.Stopping, nil
}
