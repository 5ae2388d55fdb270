package startup_test

import (
	"os"
	"path/filepath"
	"testing"

	"osassist/internal/startup"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("bin"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestFindSidecarPrecedence(t *testing.T) {
	cases := []struct {
		name  string
		files []string
		want  string
	}{
		{"exe next to app", []string{"main.exe", "main", "resources/main.exe"}, "main.exe"},
		{"extensionless next to app", []string{"main", "resources/main.exe"}, "main"},
		{"resources exe", []string{"resources/main.exe", "resources/main"}, "resources/main.exe"},
		{"resources extensionless", []string{"resources/main", "main-x86_64.exe"}, "resources/main"},
		{"versioned build", []string{"resources/main-x86_64-pc-windows-msvc.exe"}, "resources/main-x86_64-pc-windows-msvc.exe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tc.files {
				touch(t, filepath.Join(dir, filepath.FromSlash(f)))
			}
			got, err := startup.FindSidecar(dir, "main")
			if err != nil {
				t.Fatalf("FindSidecar returned error: %v", err)
			}
			if want := filepath.Join(dir, filepath.FromSlash(tc.want)); got != want {
				t.Fatalf("got %s, want %s", got, want)
			}
		})
	}
}

func TestFindSidecarIgnoresDirectoriesAndMissing(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "main"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "mainframe.exe"))
	if _, err := startup.FindSidecar(dir, "main"); err == nil {
		t.Fatal("expected error when no sidecar exists")
	}
}

func TestConfiguredSidecarPrefersExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.exe")
	touch(t, path)
	got, err := startup.ConfiguredSidecar(path, "main")()
	if err != nil || got != path {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := startup.ConfiguredSidecar(path+".missing", "main")(); err == nil {
		t.Fatal("expected error for missing configured sidecar")
	}
}
