package preflight

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"osassist/internal/config"
	"osassist/internal/deps"
	"osassist/internal/resources"
	"osassist/internal/settings"
	"osassist/internal/startup"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// Failed reports whether a required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}

type options struct {
	locator *resources.Locator
	client  *http.Client
	goos    string
	sidecar startup.SidecarResolver
	ollama  string
}

// Option customizes RunAll.
type Option func(*options)

// WithLocator overrides how the resources directory is discovered.
func WithLocator(l *resources.Locator) Option {
	return func(o *options) { o.locator = l }
}

// WithHTTPClient sets the client used for the language-model check.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithSidecarResolver overrides how the assistant executable is found.
func WithSidecarResolver(r startup.SidecarResolver) Option {
	return func(o *options) { o.sidecar = r }
}

// WithOllamaURL points the Ollama check at a non-default server.
func WithOllamaURL(url string) Option {
	return func(o *options) { o.ollama = url }
}

// RunAll executes every check for cfg in display order.
func RunAll(ctx context.Context, cfg *config.Config, opts ...Option) []Result {
	if cfg == nil {
		return nil
	}
	o := options{goos: runtime.GOOS}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locator == nil {
		o.locator = resources.NewLocator(cfg.Paths.ResourcesDir)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: 5 * time.Second}
	}
	if o.sidecar == nil {
		o.sidecar = startup.ConfiguredSidecar(cfg.Startup.SidecarPath, cfg.Assistant.ProcessName)
	}

	results := []Result{CheckDirectoryAccess("State directory", cfg.Paths.StateDir)}

	if base, ok := o.locator.BaseDir(); ok {
		results = append(results, CheckDirectoryAccess("Resources directory", base))
	} else {
		results = append(results, Result{Name: "Resources directory", Detail: "not found (set paths.resources_dir)"})
	}

	store := settings.NewStore(o.locator.SettingsPath(cfg.Paths.SettingsFile))
	doc, settingsResult := CheckSettings(store)
	results = append(results, settingsResult)

	sidecarPath, sidecarErr := o.sidecar()
	for _, status := range deps.CheckBinaries(deps.PanelRequirements(o.goos, sidecarPath)) {
		r := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: status.Resolved}
		if !status.Available {
			r.Detail = status.Detail
			if status.Command == "" && sidecarErr != nil {
				r.Detail = sidecarErr.Error()
			}
		}
		results = append(results, r)
	}

	if settingsResult.Passed {
		results = append(results, CheckLLM(ctx, o.client, doc, o.ollama))
	}
	return results
}
