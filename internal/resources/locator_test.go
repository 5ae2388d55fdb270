package resources_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"osassist/internal/resources"
)

func fixedLocator(exeDir, cwd string) *resources.Locator {
	return &resources.Locator{
		Executable: func() (string, error) {
			if exeDir == "" {
				return "", errors.New("no executable")
			}
			return filepath.Join(exeDir, "osassist"), nil
		},
		WorkingDir: func() (string, error) {
			if cwd == "" {
				return "", errors.New("no cwd")
			}
			return cwd, nil
		},
	}
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	mkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestBaseDirDiscoveryOrder(t *testing.T) {
	exeDir := t.TempDir()
	cwd := t.TempDir()
	loc := fixedLocator(exeDir, cwd)

	if _, ok := loc.BaseDir(); ok {
		t.Fatal("expected no base dir before any candidate exists")
	}

	mkdir(t, filepath.Join(cwd, "src-tauri", "resources"))
	if got, ok := loc.BaseDir(); !ok || got != filepath.Join(cwd, "src-tauri", "resources") {
		t.Fatalf("expected src-tauri fallback, got %q (ok=%v)", got, ok)
	}

	mkdir(t, filepath.Join(cwd, "resources"))
	if got, _ := loc.BaseDir(); got != filepath.Join(cwd, "resources") {
		t.Fatalf("expected cwd resources, got %q", got)
	}

	mkdir(t, filepath.Join(exeDir, "resources"))
	if got, _ := loc.BaseDir(); got != filepath.Join(exeDir, "resources") {
		t.Fatalf("expected bundle resources, got %q", got)
	}
}

func TestBaseDirOverride(t *testing.T) {
	loc := resources.NewLocator("/opt/assistant/resources")
	got, ok := loc.BaseDir()
	if !ok || got != "/opt/assistant/resources" {
		t.Fatalf("expected override, got %q (ok=%v)", got, ok)
	}
}

func TestLogPathPreference(t *testing.T) {
	exeDir := t.TempDir()
	base := filepath.Join(exeDir, "resources")
	mkdir(t, base)
	loc := fixedLocator(exeDir, "")

	got, err := loc.LogPath("os_assistant.log")
	if err != nil {
		t.Fatalf("LogPath: %v", err)
	}
	if want := filepath.Join(base, "logs", "os_assistant.log"); got != want {
		t.Fatalf("expected stable logs/ path %q, got %q", want, got)
	}

	touch(t, filepath.Join(base, "os_assistant.log"))
	got, _ = loc.LogPath("os_assistant.log")
	if want := filepath.Join(base, "os_assistant.log"); got != want {
		t.Fatalf("expected flat fallback %q, got %q", want, got)
	}

	touch(t, filepath.Join(base, "logs", "os_assistant.log"))
	got, _ = loc.LogPath("os_assistant.log")
	if want := filepath.Join(base, "logs", "os_assistant.log"); got != want {
		t.Fatalf("expected logs/ preferred %q, got %q", want, got)
	}
}

func TestLogPathWithoutBase(t *testing.T) {
	loc := fixedLocator(t.TempDir(), t.TempDir())
	if _, err := loc.LogPath("os_assistant.log"); !errors.Is(err, resources.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSettingsPathFallsBackToExeDir(t *testing.T) {
	exeDir := t.TempDir()
	cwd := t.TempDir()
	loc := fixedLocator(exeDir, cwd)

	if got := loc.SettingsPath("settings.json"); got != filepath.Join(exeDir, "settings.json") {
		t.Fatalf("unexpected fallback: %q", got)
	}

	touch(t, filepath.Join(cwd, "resources", "settings.json"))
	if got := loc.SettingsPath("settings.json"); got != filepath.Join(cwd, "resources", "settings.json") {
		t.Fatalf("expected cwd resources copy, got %q", got)
	}

	touch(t, filepath.Join(exeDir, "resources", "settings.json"))
	if got := loc.SettingsPath("settings.json"); got != filepath.Join(exeDir, "resources", "settings.json") {
		t.Fatalf("expected bundle copy, got %q", got)
	}
}

func TestAuthCachePathPrefersCwdResources(t *testing.T) {
	exeDir := t.TempDir()
	cwd := t.TempDir()
	loc := fixedLocator(exeDir, cwd)

	if got := loc.AuthCachePath(".auth_cache"); got != filepath.Join(cwd, "resources", ".auth_cache") {
		t.Fatalf("unexpected auth cache path: %q", got)
	}
}

func TestDocumentPathsAreAbsolute(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	loc := fixedLocator("bundle", "work")

	checks := []struct {
		name string
		got  func() string
		want string
	}{
		{"settings next to exe", func() string { return loc.SettingsPath("settings.json") }, filepath.Join("bundle", "settings.json")},
		{"auth cache in cwd resources", func() string { return loc.AuthCachePath(".auth_cache") }, filepath.Join("work", "resources", ".auth_cache")},
	}
	for _, tc := range checks {
		got := tc.got()
		if !filepath.IsAbs(got) || !strings.HasSuffix(got, string(filepath.Separator)+tc.want) {
			t.Fatalf("%s: expected absolute path ending in %q, got %q", tc.name, tc.want, got)
		}
	}

	touch(t, filepath.Join("bundle", "resources", "settings.json"))
	if got := loc.SettingsPath("settings.json"); !filepath.IsAbs(got) || !strings.HasSuffix(got, filepath.Join("bundle", "resources", "settings.json")) {
		t.Fatalf("expected absolute bundle copy, got %q", got)
	}
}
