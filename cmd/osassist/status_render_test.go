package main

import (
	"io"
	"strings"
	"testing"

	"osassist/internal/health"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Panel", statusOK, "Running (pid 42)", false)
	want := "  Panel:" + strings.Repeat(" ", statusLabelWidth-len("Panel:")) + " [OK] Running (pid 42)"
	if line != want {
		t.Fatalf("unexpected line %q", line)
	}
	colored := renderStatusLine("Panel", statusError, "", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red line, got %q", colored)
	}
	if !strings.Contains(colored, "[ERROR]") {
		t.Fatalf("missing label in %q", colored)
	}
}

func TestShouldColorizeNonTerminal(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("non-file writer should not be colorized")
	}
}

func TestHealthKind(t *testing.T) {
	cases := []struct {
		status health.Status
		want   statusKind
	}{
		{health.Status{Status: "online"}, statusOK},
		{health.Status{Status: health.StatusOffline}, statusError},
		{health.Status{}, statusWarn},
	}
	for _, tc := range cases {
		if got := healthKind(tc.status); got != tc.want {
			t.Fatalf("healthKind(%+v) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestRenderIndexedTable(t *testing.T) {
	out := renderIndexedTable([]string{"Name", "Path"}, [][]string{{"editor"}, {"shell", "/bin/sh"}})
	for _, want := range []string{"NAME", "editor", "/bin/sh"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
	if renderIndexedTable(nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestStatusWriterSections(t *testing.T) {
	var buf strings.Builder
	out := newStatusWriter(&buf)
	out.section("One")
	out.line("Panel", statusWarn, "Not running")
	out.section("Two")
	out.item("morning")

	want := "== One ==\n---------\n" +
		renderStatusLine("Panel", statusWarn, "Not running", false) + "\n" +
		"\n== Two ==\n---------\n  morning\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}
