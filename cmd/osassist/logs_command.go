package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"osassist/internal/logs"
	"osassist/internal/panelaccess"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines    int
		maxBytes uint64
		offset   uint64
		follow   bool
		interval time.Duration
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the assistant log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("lines") {
				lines = cfg.Tail.LastLines
			}
			if !cmd.Flags().Changed("interval") {
				interval = cfg.PollInterval()
			}
			req := logs.TailRequest{Offset: offset, LastLines: max(lines, 0)}
			if cmd.Flags().Changed("max-bytes") {
				req.MaxBytes = logs.Cap(maxBytes)
			}

			api, err := logs.NewAPIClient(cfg.Paths.APIBind)
			if err != nil {
				return fmt.Errorf("log api client: %w", err)
			}
			source := &logSource{
				api: api,
				open: func() (panelaccess.Session, error) {
					return panelaccess.OpenWithFallback(ctx.dialClient, ctx.localPanel)
				},
			}
			defer source.Close()

			runCtx := cmd.Context()
			stdout := cmd.OutOrStdout()
			emit := func(chunk logs.LogChunk, tailMode bool) error {
				if asJSON {
					return json.NewEncoder(stdout).Encode(chunk)
				}
				return printChunk(stdout, chunk, tailMode)
			}

			if !follow {
				chunk, err := source.fetch(runCtx, req)
				if err != nil {
					return fmt.Errorf("tail logs: %w", err)
				}
				if chunk.Content == "" && !asJSON {
					fmt.Fprintln(stdout, "No log entries available")
					return nil
				}
				return emit(chunk, req.LastLines > 0 && req.Offset == 0)
			}

			first := true
			tailMode := req.LastLines > 0 && req.Offset == 0
			fetch := func(r logs.TailRequest) (logs.LogChunk, error) { return source.fetch(runCtx, r) }
			err = logs.Follow(runCtx, fetch, req, interval, func(chunk logs.LogChunk) error {
				defer func() { first = false }()
				if chunk.Content == "" && !asJSON {
					return nil
				}
				return emit(chunk, first && tailMode)
			})
			if err != nil {
				return fmt.Errorf("follow logs: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of trailing lines for the first read (0 reads from --offset; default from tail.last_lines)")
	cmd.Flags().Uint64Var(&maxBytes, "max-bytes", 0, "Cap on bytes read per request (default from tail.max_bytes)")
	cmd.Flags().Uint64Var(&offset, "offset", 0, "Byte offset returned by a previous read")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep polling for new output")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Polling interval in follow mode (default from tail.poll_interval_ms)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print each chunk as a JSON object with content, offset and path")
	return cmd
}

// logSource reads through the panel HTTP API while it answers and falls back
// to IPC or an in-process reader otherwise. Offsets are file lengths, so a
// cursor from one source stays valid for the others.
type logSource struct {
	api     *logs.APIClient
	open    func() (panelaccess.Session, error)
	session *panelaccess.Session
}

func (s *logSource) fetch(ctx context.Context, req logs.TailRequest) (logs.LogChunk, error) {
	if s.api != nil {
		chunk, err := s.api.Fetch(ctx, req)
		if err == nil || !logs.IsAPIUnavailable(err) {
			return chunk, err
		}
		s.api = nil
	}
	if s.session == nil {
		session, err := s.open()
		if err != nil {
			return logs.LogChunk{}, err
		}
		s.session = &session
	}
	return s.session.Access.TailLog(ctx, req)
}

func (s *logSource) Close() {
	if s.session != nil {
		_ = s.session.Close()
	}
}

// printChunk writes chunk content. Tail-mode content has its final newline
// trimmed, so one is restored.
func printChunk(w io.Writer, chunk logs.LogChunk, tailMode bool) error {
	if chunk.Content == "" {
		return nil
	}
	content := chunk.Content
	if tailMode && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	_, err := io.WriteString(w, content)
	return err
}
