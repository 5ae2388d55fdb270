package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"osassist/internal/resources"
	"osassist/internal/settings"
	"osassist/internal/testsupport"
)

func strPtr(s string) *string { return &s }

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_Failures(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"", filepath.Join(t.TempDir(), "nope"), file} {
		result := CheckDirectoryAccess("test", path)
		if result.Passed || result.Detail == "" {
			t.Fatalf("expected failure with detail for %q, got %#v", path, result)
		}
	}
}

func TestCheckSettings(t *testing.T) {
	dir := t.TempDir()
	store := settings.NewStore(filepath.Join(dir, "settings.json"))
	doc, result := CheckSettings(store)
	if !result.Passed || !strings.Contains(result.Detail, "defaults apply") || doc.LLMProvider != settings.DefaultLLMProvider {
		t.Fatalf("unexpected result for missing file: %#v", result)
	}

	testsupport.WriteText(t, store.Path(), "{broken")
	if _, result := CheckSettings(store); result.Passed {
		t.Fatal("expected malformed settings to fail")
	}
}

func TestCheckLLM_OllamaModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest"}]}`))
	}))
	defer srv.Close()

	doc := settings.Default()
	doc.LLMModel = strPtr("llama3")
	if result := CheckLLM(context.Background(), srv.Client(), doc, srv.URL); !result.Passed {
		t.Fatalf("expected pulled model to pass, got: %s", result.Detail)
	}
	doc.LLMModel = strPtr("mistral")
	if result := CheckLLM(context.Background(), srv.Client(), doc, srv.URL); result.Passed {
		t.Fatal("expected missing model to fail")
	}
}

func TestCheckLLM_OpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" || r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	doc := settings.Default()
	doc.LLMProvider = "openai"
	if result := CheckLLM(context.Background(), srv.Client(), doc, ""); result.Passed || result.Detail != "API key missing" {
		t.Fatalf("expected missing key failure, got %#v", result)
	}
	doc.OpenAIBaseURL = strPtr(srv.URL + "/v1")
	doc.OpenAIAPIKey = strPtr("good-key")
	if result := CheckLLM(context.Background(), srv.Client(), doc, ""); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	doc.OpenAIAPIKey = strPtr("bad-key")
	if result := CheckLLM(context.Background(), srv.Client(), doc, ""); result.Passed || !strings.Contains(result.Detail, "auth failed") {
		t.Fatalf("expected auth failure, got %#v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReportsEachCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	results := RunAll(context.Background(), cfg,
		WithLocator(resources.NewLocator(cfg.Paths.ResourcesDir)),
		WithHTTPClient(srv.Client()),
		WithOllamaURL(srv.URL),
		WithSidecarResolver(func() (string, error) { return "", errors.New("sidecar executable \"main\" not found") }),
	)

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	for _, name := range []string{"State directory", "Resources directory", "Settings", "LLM (ollama)"} {
		if !byName[name].Passed {
			t.Errorf("check %q failed: %s", name, byName[name].Detail)
		}
	}
	sidecar := byName["Assistant"]
	if sidecar.Passed || !sidecar.Optional || !strings.Contains(sidecar.Detail, "not found") {
		t.Fatalf("unexpected sidecar result: %#v", sidecar)
	}
}

func TestRunAll_MissingResources(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutResources())
	results := RunAll(context.Background(), cfg,
		WithLocator(resources.NewLocator(cfg.Paths.ResourcesDir)),
		WithSidecarResolver(func() (string, error) { return "", errors.New("none") }),
	)
	if !Failed(results) {
		t.Fatal("expected a required check to fail")
	}
}
