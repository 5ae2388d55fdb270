// Package logs serves incremental reads of the assistant's log file to
// polling UIs.
//
// Each call is independent: the caller hands back the offset it was last
// given and receives the text appended since, capped at a byte budget per
// call. A cursor past end-of-file (the producer truncated or rotated the log)
// resets to the final window instead of failing, and a first call may ask for
// the last N lines instead of paging from the start. The package also ships
// the client for the panel's HTTP log endpoint and a Follow loop shared by the
// CLI.
package logs
