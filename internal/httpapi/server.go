package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"osassist/internal/logging"
	"osassist/internal/panel"
)

// Server is the loopback HTTP API.
type Server struct {
	bind   string
	token  string
	logger *slog.Logger
	panel  *panel.Service

	router   chi.Router
	listener net.Listener
	server   *http.Server
}

// New returns nil when bind is empty, which disables the API.
func New(bind, token string, svc *panel.Service, logger *slog.Logger) (*Server, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if svc == nil {
		return nil, errors.New("http api requires panel service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		bind:   bind,
		token:  token,
		logger: logging.NewComponentLogger(logger, "api-server"),
		panel:  svc,
	}
	s.router = s.routes()
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler exposes the router for in-process use.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(bearerAuth(s.token))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/logs", s.handleLogs)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleLoadSettings)
			r.Put("/", s.handleSaveSettings)
			r.Get("/export", s.handleExportSettings)
			r.Post("/import", s.handleImportSettings)
			r.Post("/{list}", s.handleAddListItem)
			r.Put("/{list}/{index}", s.handleUpdateListItem)
			r.Delete("/{list}/{index}", s.handleRemoveListItem)
		})

		r.Get("/health", s.handleHealth)
		r.Post("/assistant/stop", s.handleStopAssistant)
		r.Post("/assistant/cleanup", s.handleCleanup)

		r.Get("/startup", s.handleStartupStatus)
		r.Put("/startup", s.handleSetStartup)

		r.Put("/auth", s.handleUpdateAuth)
		r.Delete("/auth", s.handleClearAuth)
	})
	return r
}

// Start listens on the bind address and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("api request",
			logging.String(logging.FieldCorrelationID, middleware.GetReqID(r.Context())),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("elapsed", time.Since(start)))
	})
}
