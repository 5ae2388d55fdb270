// Package ipc exposes the panel service over JSON-RPC Unix sockets and ships
// the matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs. Every
// request carries a correlation id that the server attaches to its log lines,
// so a CLI invocation can be traced through the panel log.
//
// Reuse these types when adding new RPC endpoints to keep the protocol stable
// and compatible with existing command implementations.
package ipc
