// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Command suzy is an IRC bot that keeps a persistent connection to one
// network and answers chat commands through loadable modules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mau.fi/util/exzerolog"

	"github.com/BackupTheBerlios/suzy-svn/pkg/bot"
	"github.com/BackupTheBerlios/suzy-svn/pkg/bot/modules"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		saveConfig bool
	)
	rootCmd := &cobra.Command{
		Use:          "suzy",
		Short:        "Suzy, a modular IRC bot",
		Long:         "suzy connects to one IRC network, keeps the connection alive and answers chat commands through loadable modules.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, saveConfig)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
	rootCmd.Flags().BoolVar(&saveConfig, "save-config", false, "write missing keys from the example config back to the config file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "suzy %s (commit %s, built %s)\n", Tag, Commit, BuildTime)
				return err
			},
		},
		&cobra.Command{
			Use:   "example-config",
			Short: "Print the example config",
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := fmt.Fprint(cmd.OutOrStdout(), bot.ExampleConfig)
				return err
			},
		},
	)
	return rootCmd
}

func run(ctx context.Context, configPath string, saveConfig bool) error {
	cfg, err := bot.LoadConfig(configPath, saveConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		Level(level).
		With().Timestamp().Logger()
	exzerolog.SetupDefaults(&log)
	log.Info().
		Str("version", Tag).
		Str("commit", Commit).
		Str("build_time", BuildTime).
		Msg("Starting suzy")

	client, err := bot.NewClient(cfg, log, modules.Factories(cfg, log))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return client.Run(ctx)
}
