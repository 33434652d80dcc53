package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/s0l0c0ding/solocoding/config"
	"github.com/s0l0c0ding/solocoding/site"
	"github.com/s0l0c0ding/solocoding/templatex"
)

const defaultConfigPath = "config.json"

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *site.Service
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	a := &app{}

	root := &cobra.Command{
		Use:           "solocoding",
		Short:         "Pre-renders the soloCoding blog into static HTML",
		Version:       SERVER_SIGNATURE,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cfgPath, cmd.Flags().Changed("config"))
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, "path to configuration file")

	root.AddCommand(newBuildCmd(a), newServeCmd(a), newRoutesCmd(a))
	return root
}

// load loads the configuration and wires the site service. A missing default
// config file is not an error; the built-in defaults are used instead.
func (a *app) load(cfgPath string, explicit bool) error {
	if !explicit && !config.FileExists(cfgPath) {
		cfgPath = ""
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.LogLevel)

	templates, err := templatex.Load(cfg.TemplateDir)
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	svc, err := site.NewService(cfg, templates, nil, SERVER_SIGNATURE, a.logger)
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
