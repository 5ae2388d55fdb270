package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteSizedLog writes exactly size bytes of numbered ASCII log lines to
// path. The final line is cut short when size does not land on a boundary.
func WriteSizedLog(t testing.TB, path string, size int) {
	t.Helper()

	var buf strings.Builder
	buf.Grow(size + 64)
	for i := 0; buf.Len() < size; i++ {
		fmt.Fprintf(&buf, "%s INFO assistant: line %06d\n", "2026-01-02T03:04:05Z", i)
	}
	WriteText(t, path, buf.String()[:size])
}

// WriteText replaces path with content, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// AppendText appends content to path, creating it when missing.
func AppendText(t testing.TB, path, content string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append %s: %v", path, err)
	}
}
