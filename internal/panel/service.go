package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"osassist/internal/auth"
	"osassist/internal/config"
	"osassist/internal/health"
	"osassist/internal/logging"
	"osassist/internal/logs"
	"osassist/internal/resources"
	"osassist/internal/settings"
	"osassist/internal/startup"
)

// ErrAlreadyRunning is returned by Start when another panel holds the lock.
var ErrAlreadyRunning = errors.New("another osassist panel instance is already running")

// Option customizes collaborators, mainly for tests.
type Option func(*Service)

// WithStartupManager replaces the platform autostart manager.
func WithStartupManager(m startup.Manager) Option {
	return func(s *Service) { s.startup = m }
}

// WithCommandRunner replaces the process runner used by Cleanup.
func WithCommandRunner(r health.CommandRunner) Option {
	return func(s *Service) { s.runner = r }
}

// WithLocator replaces the resources locator.
func WithLocator(l *resources.Locator) Option {
	return func(s *Service) { s.locator = l }
}

// Service implements every control-panel operation.
type Service struct {
	cfg     *config.Config
	logger  *slog.Logger
	locator *resources.Locator
	runner  health.CommandRunner

	logs     *logs.Reader
	settings *settings.Store
	auth     *auth.Cache
	prober   *health.Prober
	startup  startup.Manager

	lock     *flock.Flock
	running  atomic.Bool
	bg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New wires the collaborators from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("panel requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Service{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "panel"),
		lock:   flock.New(cfg.LockPath()),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locator == nil {
		s.locator = resources.NewLocator(cfg.Paths.ResourcesDir)
	}
	if s.startup == nil {
		s.startup = startup.New(cfg.Startup.AppName, startup.ConfiguredSidecar(cfg.Startup.SidecarPath, cfg.Assistant.ProcessName))
	}

	s.logs = logs.NewReader(s.locator, cfg.Paths.LogFile, uint64(cfg.Tail.MaxBytes))
	s.settings = settings.NewStore(s.locator.SettingsPath(cfg.Paths.SettingsFile))
	s.auth = auth.NewCache(s.locator.AuthCachePath(cfg.Paths.AuthCacheFile))
	s.prober = health.NewProber(health.Options{
		HealthAddr:     cfg.Assistant.HealthAddr,
		ControlAddr:    cfg.Assistant.ControlAddr,
		ConnectTimeout: cfg.ConnectTimeout(),
		ReadTimeout:    cfg.ReadTimeout(),
		WriteTimeout:   cfg.WriteTimeout(),
		ShutdownGrace:  cfg.ShutdownGrace(),
		ProcessName:    cfg.Assistant.ProcessName,
		Runner:         s.runner,
		Logger:         logger,
	})
	return s, nil
}

// Start acquires the single-instance lock.
func (s *Service) Start() error {
	if s.running.Load() {
		return errors.New("panel already running")
	}
	if err := s.cfg.EnsureDirectories(); err != nil {
		return err
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	s.running.Store(true)
	s.logger.Info("panel started", logging.String("lock", s.cfg.LockPath()))
	return nil
}

// Close releases the lock and kicks off a background sidecar cleanup, the
// same thing closing the panel window does. Use Wait to block until the
// cleanup finishes.
func (s *Service) Close() {
	if !s.running.Swap(false) {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		msg, err := s.prober.Cleanup(ctx)
		if err != nil {
			logging.WarnWithContext(s.logger, "sidecar cleanup failed", "panel_cleanup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "assistant processes may keep running"),
				logging.String(logging.FieldErrorHint, "run osassist cleanup"))
			return
		}
		s.logger.Info("sidecar cleanup finished", logging.String("result", msg))
	}()
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release panel lock", logging.Error(err))
	}
	s.logger.Info("panel stopped")
}

// RequestStop asks whoever runs the panel to shut it down. It is safe to call
// more than once.
func (s *Service) RequestStop() {
	s.stopOnce.Do(func() {
		s.logger.Info("panel stop requested", logging.String(logging.FieldEventType, "panel_stop_requested"))
		close(s.stopCh)
	})
}

// StopRequested is closed once RequestStop has been called.
func (s *Service) StopRequested() <-chan struct{} {
	return s.stopCh
}

// Wait blocks until background work started by Close completes or ctx ends.
func (s *Service) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Status summarizes the panel and the sidecar it manages.
type Status struct {
	Running        bool          `json:"running"`
	PID            int           `json:"pid"`
	Assistant      health.Status `json:"assistant"`
	StartupEnabled bool          `json:"startup_enabled"`
	StartupError   string        `json:"startup_error,omitempty"`
	LogPath        string        `json:"log_path"`
	SettingsPath   string        `json:"settings_path"`
	AuthCachePath  string        `json:"auth_cache_path"`
	LockPath       string        `json:"lock_path"`
	StartupPlans   []string      `json:"startup_plans"`
}

// Status gathers a snapshot. Collaborator failures are reported inline.
func (s *Service) Status(ctx context.Context) Status {
	status := Status{
		Running:       s.running.Load(),
		PID:           os.Getpid(),
		Assistant:     s.prober.Status(ctx),
		SettingsPath:  s.settings.Path(),
		AuthCachePath: s.auth.Path(),
		LockPath:      s.cfg.LockPath(),
		StartupPlans:  []string{},
	}
	if path, err := s.logs.Path(); err == nil {
		status.LogPath = path
	}
	enabled, err := s.startup.Enabled()
	status.StartupEnabled = enabled
	if err != nil {
		status.StartupError = err.Error()
	}
	if doc, err := s.settings.Load(); err == nil {
		for _, plan := range doc.StartupPlans() {
			status.StartupPlans = append(status.StartupPlans, plan.Name)
		}
	}
	return status
}

// TailLog reads the next chunk of the assistant log.
func (s *Service) TailLog(req logs.TailRequest) (logs.LogChunk, error) {
	return s.logs.Tail(req)
}

// Health probes the sidecar; it never fails.
func (s *Service) Health(ctx context.Context) health.Status {
	return s.prober.Status(ctx)
}

// StopAssistant asks the sidecar to exit and reports its status afterwards.
func (s *Service) StopAssistant(ctx context.Context) health.Status {
	status := s.prober.Stop(ctx)
	s.logger.Info("assistant stop requested", logging.String("status", status.Status))
	return status
}

// Cleanup kills leftover sidecar processes.
func (s *Service) Cleanup(ctx context.Context) (string, error) {
	return s.prober.Cleanup(ctx)
}

// StartupEnabled reports whether the sidecar is registered to run at login.
func (s *Service) StartupEnabled() (bool, error) {
	return s.startup.Enabled()
}

// SetStartup registers or unregisters the sidecar for login autostart.
func (s *Service) SetStartup(enable bool) error {
	if err := s.startup.SetEnabled(enable); err != nil {
		return err
	}
	s.logger.Info("startup registration changed", logging.Bool("enabled", enable))
	return nil
}

// UpdateAuthCache stores credentials for the assistant process.
func (s *Service) UpdateAuthCache(data auth.Data) (string, error) {
	return s.auth.Update(data)
}

// ClearAuthCache removes stored credentials.
func (s *Service) ClearAuthCache() (string, error) {
	return s.auth.Clear()
}
