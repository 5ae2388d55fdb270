package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"github.com/google/uuid"

	"osassist/internal/logging"
	"osassist/internal/logs"
	"osassist/internal/panel"
	"osassist/internal/settings"
)

// Server exposes the panel via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, svc *panel.Service, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("ipc server requires panel service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName(ServiceName, &service{panel: svc, logger: logger, ctx: serverCtx}); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the panel if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file. Connected clients are
// served until they hang up.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually"))
	}
}

type service struct {
	panel  *panel.Service
	logger *slog.Logger
	ctx    context.Context
}

// call returns a logger tagged with the request's correlation id, minting
// one when the client did not send it.
func (s *service) call(method string, env Envelope) *slog.Logger {
	id := env.CorrelationID
	if id == "" {
		id = uuid.NewString()
	}
	logger := s.logger.With(
		logging.String(logging.FieldCorrelationID, id),
		logging.String("method", method),
	)
	logger.Debug("rpc call")
	return logger
}

func (s *service) fail(logger *slog.Logger, err error) error {
	logger.Warn("rpc call failed", logging.Error(err))
	return err
}

func (s *service) Status(req StatusRequest, resp *StatusResponse) error {
	s.call("Status", req.Envelope)
	resp.Status = s.panel.Status(s.ctx)
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logger := s.call("LogTail", req.Envelope)
	chunk, err := s.panel.TailLog(logs.TailRequest{
		Offset:    req.Offset,
		MaxBytes:  req.MaxBytes,
		LastLines: req.LastLines,
	})
	if err != nil {
		return s.fail(logger, err)
	}
	resp.LogChunk = chunk
	return nil
}

func (s *service) LoadSettings(req LoadSettingsRequest, resp *SettingsResponse) error {
	logger := s.call("LoadSettings", req.Envelope)
	doc, err := s.panel.LoadSettings()
	if err != nil {
		return s.fail(logger, err)
	}
	resp.Settings = doc
	resp.Path = s.panel.SettingsPath()
	return nil
}

func (s *service) SaveSettings(req SaveSettingsRequest, resp *SettingsResponse) error {
	logger := s.call("SaveSettings", req.Envelope)
	result, err := s.panel.SaveSettings(s.ctx, req.Settings)
	if err != nil {
		return s.fail(logger, err)
	}
	resp.Settings = result.Settings
	resp.Path = result.Path
	return nil
}

func (s *service) ExportSettings(req ExportSettingsRequest, resp *ExportSettingsResponse) error {
	logger := s.call("ExportSettings", req.Envelope)
	format, err := settings.ParseFormat(req.Format)
	if err != nil {
		return s.fail(logger, err)
	}
	data, err := s.panel.ExportSettings(format)
	if err != nil {
		return s.fail(logger, err)
	}
	resp.Data = string(data)
	return nil
}

func (s *service) ImportSettings(req ImportSettingsRequest, resp *SettingsResponse) error {
	logger := s.call("ImportSettings", req.Envelope)
	format, err := settings.ParseFormat(req.Format)
	if err != nil {
		return s.fail(logger, err)
	}
	result, err := s.panel.ImportSettings(s.ctx, []byte(req.Data), format)
	if err != nil {
		return s.fail(logger, err)
	}
	resp.Settings = result.Settings
	resp.Path = result.Path
	return nil
}

func (s *service) AddListItem(req ListItemRequest, resp *ListItemResponse) error {
	logger := s.call("AddListItem", req.Envelope)
	list, err := settings.ParseList(req.List)
	if err == nil {
		err = s.panel.AddListItem(s.ctx, list, req.Item)
	}
	if err != nil {
		return s.fail(logger, err)
	}
	resp.OK = true
	return nil
}

func (s *service) UpdateListItem(req ListItemRequest, resp *ListItemResponse) error {
	logger := s.call("UpdateListItem", req.Envelope)
	list, err := settings.ParseList(req.List)
	if err == nil {
		err = s.panel.UpdateListItem(s.ctx, list, req.Index, req.Item)
	}
	if err != nil {
		return s.fail(logger, err)
	}
	resp.OK = true
	return nil
}

func (s *service) RemoveListItem(req ListItemRequest, resp *ListItemResponse) error {
	logger := s.call("RemoveListItem", req.Envelope)
	list, err := settings.ParseList(req.List)
	if err == nil {
		err = s.panel.RemoveListItem(s.ctx, list, req.Index)
	}
	if err != nil {
		return s.fail(logger, err)
	}
	resp.OK = true
	return nil
}

func (s *service) Health(req HealthRequest, resp *HealthResponse) error {
	s.call("Health", req.Envelope)
	resp.Status = s.panel.Health(s.ctx)
	return nil
}

func (s *service) StopAssistant(req StopAssistantRequest, resp *HealthResponse) error {
	logger := s.call("StopAssistant", req.Envelope)
	resp.Status = s.panel.StopAssistant(s.ctx)
	logger.Info("assistant stop via IPC",
		logging.String(logging.FieldEventType, "assistant_stop"),
		logging.String("status", resp.Status.Status))
	return nil
}

func (s *service) Cleanup(req CleanupRequest, resp *MessageResponse) error {
	logger := s.call("Cleanup", req.Envelope)
	msg, err := s.panel.Cleanup(s.ctx)
	if err != nil {
		return s.fail(logger, err)
	}
	resp.Message = msg
	return nil
}

func (s *service) StartupStatus(req StartupStatusRequest, resp *StartupResponse) error {
	logger := s.call("StartupStatus", req.Envelope)
	enabled, err := s.panel.StartupEnabled()
	if err != nil {
		return s.fail(logger, err)
	}
	resp.Enabled = enabled
	return nil
}

func (s *service) SetStartup(req SetStartupRequest, resp *StartupResponse) error {
	logger := s.call("SetStartup", req.Envelope)
	if err := s.panel.SetStartup(req.Enabled); err != nil {
		return s.fail(logger, err)
	}
	resp.Enabled = req.Enabled
	return nil
}

func (s *service) UpdateAuthCache(req UpdateAuthCacheRequest, resp *MessageResponse) error {
	logger := s.call("UpdateAuthCache", req.Envelope)
	msg, err := s.panel.UpdateAuthCache(req.Auth)
	if err != nil {
		return s.fail(logger, err)
	}
	resp.Message = msg
	return nil
}

func (s *service) ClearAuthCache(req ClearAuthCacheRequest, resp *MessageResponse) error {
	logger := s.call("ClearAuthCache", req.Envelope)
	msg, err := s.panel.ClearAuthCache()
	if err != nil {
		return s.fail(logger, err)
	}
	resp.Message = msg
	return nil
}

func (s *service) Shutdown(req ShutdownRequest, resp *ShutdownResponse) error {
	s.call("Shutdown", req.Envelope)
	s.panel.RequestStop()
	resp.Stopping = true
	return nil
}
