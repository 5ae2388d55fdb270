// Package preflight provides readiness checks for the directories, files,
// helper programs and language-model endpoint the assistant depends on.
//
// The CLI "osassist doctor" command runs RunAll and prints each Result.
// A failed optional check is reported but does not fail the command.
package preflight
