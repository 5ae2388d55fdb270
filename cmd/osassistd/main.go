package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"osassist/internal/config"
	"osassist/internal/daemonrun"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("osassistd", flag.ContinueOnError)
	configPath := flags.String("config", "", "Configuration file path")
	logLevel := flags.String("log-level", "", "Override logging.level")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel})
}
