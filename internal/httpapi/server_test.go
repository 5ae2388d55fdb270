package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"osassist/internal/config"
	"osassist/internal/health"
	"osassist/internal/httpapi"
	"osassist/internal/logs"
	"osassist/internal/panel"
	"osassist/internal/settings"
	"osassist/internal/startup"
	"osassist/internal/testsupport"
)

type stubStartup struct {
	enabled bool
	err     error
}

func (s *stubStartup) Enabled() (bool, error) { return s.enabled, nil }
func (s *stubStartup) SetEnabled(on bool) error {
	if s.err != nil {
		return s.err
	}
	s.enabled = on
	return nil
}

func newAPI(t *testing.T, token string, opts ...testsupport.ConfigOption) (*httptest.Server, *config.Config, *stubStartup) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	stub := &stubStartup{}
	svc, err := panel.New(cfg, nil,
		panel.WithStartupManager(stub),
		panel.WithCommandRunner(func(context.Context, string, ...string) error { return nil }))
	if err != nil {
		t.Fatalf("panel.New: %v", err)
	}
	api, err := httpapi.New("127.0.0.1:0", token, svc, nil)
	if err != nil {
		t.Fatalf("httpapi.New: %v", err)
	}
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv, cfg, stub
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("expected error JSON, got %q", data)
	}
	return body.Error
}

func TestNewDisabledWithoutBind(t *testing.T) {
	api, err := httpapi.New("  ", "", nil, nil)
	if err != nil || api != nil {
		t.Fatalf("expected nil server, got %v %v", api, err)
	}
}

func TestLogsEndpoint(t *testing.T) {
	srv, _, _ := newAPI(t, "", testsupport.WithLogContent("one\ntwo\nthree\n"))

	resp, data := do(t, http.MethodGet, srv.URL+"/api/logs?last_lines=2", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, data)
	}
	var chunk logs.LogChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		t.Fatalf("decode chunk: %v", err)
	}
	if chunk.Content != "two\nthree" || chunk.Offset != 14 {
		t.Fatalf("unexpected chunk: %+v", chunk)
	}

	resp, data = do(t, http.MethodGet, srv.URL+"/api/logs?offset=4&max_bytes=3", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, &chunk); err != nil {
		t.Fatal(err)
	}
	if chunk.Content != "two" {
		t.Fatalf("expected capped forward read, got %q", chunk.Content)
	}

	resp, data = do(t, http.MethodGet, srv.URL+"/api/logs?offset=-1", "")
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(errorMessage(t, data), "offset") {
		t.Fatalf("expected 400 for bad offset, got %d %s", resp.StatusCode, data)
	}
}

func TestLogsDecodeErrorIs422(t *testing.T) {
	srv, cfg, _ := newAPI(t, "")
	path := filepath.Join(cfg.Paths.ResourcesDir, "logs", cfg.Paths.LogFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{0xff, 0xfe}, 0o644); err != nil {
		t.Fatal(err)
	}
	resp, data := do(t, http.MethodGet, srv.URL+"/api/logs", "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", resp.StatusCode, data)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _, _ := newAPI(t, "")

	resp, data := do(t, http.MethodGet, srv.URL+"/api/settings", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"wake_phrase":"ola jarvis"`) {
		t.Fatalf("unexpected defaults %d: %s", resp.StatusCode, data)
	}

	resp, data = do(t, http.MethodPut, srv.URL+"/api/settings", `{"wake_phrase":"computer"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save failed %d: %s", resp.StatusCode, data)
	}
	var saved settings.SaveResult
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if saved.Settings.WakePhrase != "computer" || saved.Settings.LLMProvider != "ollama" || saved.Path == "" {
		t.Fatalf("unexpected save result: %+v", saved)
	}

	resp, data = do(t, http.MethodPost, srv.URL+"/api/settings/custom_apps", `{"name":"notes","exe_path":"notes.exe"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add failed %d: %s", resp.StatusCode, data)
	}
	resp, data = do(t, http.MethodPut, srv.URL+"/api/settings/custom_apps/0", `{"name":"editor","exe_path":"ed.exe"}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update failed %d: %s", resp.StatusCode, data)
	}
	resp, data = do(t, http.MethodDelete, srv.URL+"/api/settings/custom_apps/3", "")
	if resp.StatusCode != http.StatusNotFound || errorMessage(t, data) != "custom app index out of bounds" {
		t.Fatalf("expected 404 index error, got %d %s", resp.StatusCode, data)
	}
	resp, data = do(t, http.MethodDelete, srv.URL+"/api/settings/widgets/0", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown list, got %d %s", resp.StatusCode, data)
	}

	resp, data = do(t, http.MethodGet, srv.URL+"/api/settings/export?format=yaml", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "exe_path: ed.exe") {
		t.Fatalf("unexpected export %d: %s", resp.StatusCode, data)
	}
	resp, data = do(t, http.MethodPost, srv.URL+"/api/settings/import?format=yaml", "wake_phrase: hey\n")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"wake_phrase":"hey"`) {
		t.Fatalf("unexpected import %d: %s", resp.StatusCode, data)
	}
	resp, _ = do(t, http.MethodPost, srv.URL+"/api/settings/import?format=yaml", "wake_phrase: [")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed import, got %d", resp.StatusCode)
	}
}

func TestAssistantAndStartupEndpoints(t *testing.T) {
	srv, _, stub := newAPI(t, "")

	resp, data := do(t, http.MethodGet, srv.URL+"/api/health", "")
	var status health.Status
	if err := json.Unmarshal(data, &status); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %d %s %v", resp.StatusCode, data, err)
	}
	if status.Status != health.StatusOffline || status.Message != health.OfflineMessage {
		t.Fatalf("unexpected health: %+v", status)
	}

	resp, data = do(t, http.MethodPost, srv.URL+"/api/assistant/cleanup", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), health.CleanupSucceeded) {
		t.Fatalf("cleanup: %d %s", resp.StatusCode, data)
	}

	resp, data = do(t, http.MethodPut, srv.URL+"/api/startup", `{"enabled":true}`)
	if resp.StatusCode != http.StatusOK || !stub.enabled {
		t.Fatalf("set startup: %d %s", resp.StatusCode, data)
	}
	stub.err = startup.ErrUnsupported
	resp, _ = do(t, http.MethodPut, srv.URL+"/api/startup", `{"enabled":false}`)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501 on unsupported platform, got %d", resp.StatusCode)
	}

	resp, data = do(t, http.MethodPut, srv.URL+"/api/auth", `{"access_token":"t","subscription_status":"active","user_id":"u"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update auth: %d %s", resp.StatusCode, data)
	}
	resp, data = do(t, http.MethodDelete, srv.URL+"/api/auth", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "cleared") {
		t.Fatalf("clear auth: %d %s", resp.StatusCode, data)
	}
}

func TestBearerTokenRequired(t *testing.T) {
	srv, _, _ := newAPI(t, "secret")

	resp, _ := do(t, http.MethodGet, srv.URL+"/api/health", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer secret")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", authed.StatusCode)
	}
}

func TestStartServesOnBind(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLogContent("x\n"))
	svc, err := panel.New(cfg, nil, panel.WithStartupManager(&stubStartup{}))
	if err != nil {
		t.Fatal(err)
	}
	api, err := httpapi.New("127.0.0.1:0", "", svc, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	if err := api.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer api.Stop()

	client, err := logs.NewAPIClient(api.Addr())
	if err != nil {
		t.Fatal(err)
	}
	chunk, err := client.Fetch(ctx, logs.TailRequest{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if chunk.Content != "x\n" {
		t.Fatalf("unexpected chunk: %+v", chunk)
	}
}
