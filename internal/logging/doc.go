// Package logging assembles the structured slog loggers used by the panel
// server and CLI.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// the panel log file, and exposes attribute helpers plus standardized field
// keys so transports tag their lines with components and correlation IDs the
// same way. NewNop serves tests and wiring code that cannot fail.
package logging
