// Package health probes and controls the assistant sidecar over loopback TCP.
//
// The sidecar serves a minimal HTTP health endpoint and accepts a raw
// "shutdown" command on a separate control port. Both are reached with short
// timeouts so an unresponsive sidecar never stalls the panel.
package health
