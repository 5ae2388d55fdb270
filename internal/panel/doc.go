// Package panel aggregates the control-panel operations behind one service.
//
// A Service owns the log reader, settings store, auth cache, sidecar prober,
// and autostart manager, and exposes one method per operation the UI
// invokes. Both the IPC and HTTP transports call into it. While serving, the
// Service holds a single-instance lock in the state directory.
package panel
