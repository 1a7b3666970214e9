// Command goguard runs the goGuard demo application and its developer tools.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "goguard"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	logLevel string
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Session and role-based authorization runtime",
		Long: `goguard hosts a demo application guarded by goGuard and ships the
tools used while developing against it.

Configuration is read from GOGUARD_* environment variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(g),
		tokenCmd(),
		decodeCmd(),
		signInCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// loadConfig reads the environment and validates the result.
func loadConfig() (goGuard.Config, error) {
	cfg, err := goGuard.ConfigFromEnv()
	if err != nil {
		return goGuard.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return goGuard.Config{}, err
	}
	return cfg, nil
}

// newLogger builds a development logger for local environments and a JSON
// production logger otherwise.
func newLogger(env, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zc := zap.NewProductionConfig()
	if env == goGuard.EnvDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
