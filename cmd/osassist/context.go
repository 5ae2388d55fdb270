package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"osassist/internal/config"
	"osassist/internal/ipc"
	"osassist/internal/logging"
	"osassist/internal/panel"
	"osassist/internal/panelaccess"
)

// commandContext carries the persistent flags and the lazily loaded config
// shared by every subcommand.
type commandContext struct {
	socket     string
	configFile string

	load   sync.Once
	cfg    *config.Config
	cfgErr error

	// panelOptions customize every in-process panel the commands build.
	panelOptions []panel.Option
}

func (c *commandContext) bindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.socket, "socket", "", "Path to the panel socket (default: <state_dir>/osassist.sock)")
	flags.StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
}

// ensureConfig loads the configuration once and creates the state directory.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.load.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err == nil {
			err = cfg.EnsureDirectories()
		}
		if err != nil {
			c.cfgErr = err
			return
		}
		c.cfg = cfg
	})
	return c.cfg, c.cfgErr
}

func (c *commandContext) configPath() string {
	return strings.TrimSpace(c.configFile)
}

func (c *commandContext) socketPath() string {
	if socket := strings.TrimSpace(c.socket); socket != "" {
		return socket
	}
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.SocketPath()
	}
	return ""
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(err, socket)
	}
	return client, nil
}

// withAccess runs fn against the running panel, or in-process when no panel
// answers on the socket.
func (c *commandContext) withAccess(fn func(panelaccess.Session) error) error {
	session, err := panelaccess.OpenWithFallback(c.dialClient, c.localPanel)
	if err != nil {
		return err
	}
	defer session.Close()
	return fn(session)
}

// localPanel builds an unstarted panel that only logs warnings, so command
// output stays clean.
func (c *commandContext) localPanel() (*panel.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: "warn", Format: cfg.Logging.Format, Console: os.Stderr})
	if err != nil {
		return nil, err
	}
	return panel.New(cfg, logger, c.panelOptions...)
}

func wrapDialError(err error, socket string) error {
	if errors.Is(err, syscall.ENOENT) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("connect to panel: socket %s not found; start the panel with `osassist panel start`", socket)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to panel: socket %s refused the connection; verify the panel is running", socket)
	}
	return fmt.Errorf("connect to panel: %w", err)
}

func skipsConfigLoad(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
