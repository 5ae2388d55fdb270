package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strings"

	"osassist/internal/fileutil"
	"osassist/internal/settings"
)

const (
	defaultOllamaURL = "http://localhost:11434"
	defaultOpenAIURL = "https://api.openai.com/v1"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSettings loads the settings document. A missing file passes because
// the defaults apply until the first save.
func CheckSettings(store *settings.Store) (settings.Settings, Result) {
	const name = "Settings"
	doc, err := store.Load()
	if err != nil {
		return settings.Settings{}, Result{Name: name, Detail: err.Error()}
	}
	if !fileutil.Exists(store.Path()) {
		return doc, Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet, defaults apply)", store.Path())}
	}
	return doc, Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d plans, %d profiles, %d apps)",
		store.Path(), len(doc.ExecutionPlans), len(doc.ChromeProfiles), len(doc.CustomApps))}
}

// CheckLLM verifies that the provider selected in doc answers and, for
// Ollama, that the configured model has been pulled. An empty ollamaURL
// means the local default.
func CheckLLM(ctx context.Context, client *http.Client, doc settings.Settings, ollamaURL string) Result {
	name := "LLM (" + doc.LLMProvider + ")"
	switch doc.LLMProvider {
	case "ollama":
		if ollamaURL == "" {
			ollamaURL = defaultOllamaURL
		}
		return checkOllama(ctx, client, name, strings.TrimRight(ollamaURL, "/"), deref(doc.LLMModel))
	case "openai":
		key := strings.TrimSpace(deref(doc.OpenAIAPIKey))
		if key == "" {
			return Result{Name: name, Detail: "API key missing"}
		}
		base := strings.TrimSpace(deref(doc.OpenAIBaseURL))
		if base == "" {
			base = defaultOpenAIURL
		}
		return checkOpenAI(ctx, client, name, base, key)
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unknown provider %q", doc.LLMProvider)}
	}
}

func checkOllama(ctx context.Context, client *http.Client, name, base, model string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/tags", nil)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (%d)", resp.StatusCode)}
	}
	if model == "" {
		return Result{Name: name, Passed: true, Detail: "API reachable"}
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("parse model list: %v", err)}
	}
	for _, m := range tags.Models {
		if m.Name == model || strings.TrimSuffix(m.Name, ":latest") == model {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("model %s available", model)}
		}
	}
	return Result{Name: name, Detail: fmt.Sprintf("model %s not pulled", model)}
}

func checkOpenAI(ctx context.Context, client *http.Client, name, base, key string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/models", nil)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+key)
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "API reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (%d)", resp.StatusCode)}
	}
}

func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
