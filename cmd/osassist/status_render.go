package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"osassist/internal/health"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

var statusKinds = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// statusWriter prints aligned "label: [KIND] message" lines, colored when
// the destination is a terminal.
type statusWriter struct {
	w        io.Writer
	colorize bool
	sections int
}

func newStatusWriter(w io.Writer) *statusWriter {
	return &statusWriter{w: w, colorize: shouldColorize(w)}
}

func (s *statusWriter) line(label string, kind statusKind, message string) {
	fmt.Fprintln(s.w, renderStatusLine(label, kind, message, s.colorize))
}

// section starts a titled block, separated from the previous one by a blank line.
func (s *statusWriter) section(title string) {
	if s.sections > 0 {
		fmt.Fprintln(s.w)
	}
	s.sections++
	header := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(header))
	if s.colorize {
		header, rule = ansiBlue+header+ansiReset, ansiBlue+rule+ansiReset
	}
	fmt.Fprintln(s.w, header)
	fmt.Fprintln(s.w, rule)
}

func (s *statusWriter) item(text string) {
	fmt.Fprintln(s.w, statusIndent+text)
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusKinds[kind]
	if !ok {
		style = statusKinds[statusInfo]
	}
	text := fmt.Sprintf("%s%-*s [%s]", statusIndent, statusLabelWidth, label+":", style.label)
	if message != "" {
		text += " " + message
	}
	if colorize {
		return style.color + text + ansiReset
	}
	return text
}

// healthKind grades a sidecar probe: offline is an error, any answer that is
// not "online" is a warning.
func healthKind(status health.Status) statusKind {
	switch {
	case status.Online():
		return statusOK
	case status.Status == health.StatusOffline:
		return statusError
	default:
		return statusWarn
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
