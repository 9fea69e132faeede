// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/batchfx/cmd/batchfx/opts"
	"github.com/walteh/batchfx/pkg/config"
	"github.com/walteh/batchfx/pkg/log"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile    string
	debug         bool
	workers       int
	caseSensitive bool
	quiet         bool
	progress      bool
)

func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batchfx",
		Short: "Batch file operations driven by filter expressions",
		Long: `batchfx searches, renames, copies, moves, deletes and inspects files in
batches. Every command runs as a task on a bounded worker pool and reports
each file as it completes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := prepare(cmd.Context(), cmd, o)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
	}
	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: .batchfx.{yaml,yml,json,hcl} in the working directory)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "maximum number of concurrently running tasks")
	cmd.PersistentFlags().BoolVar(&caseSensitive, "case-sensitive", false, "match names case-sensitively")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only report failed files")
	cmd.PersistentFlags().BoolVar(&progress, "progress", false, "show a progress bar")
}

// prepare loads the configuration, applies flag overrides and fills o.
func prepare(ctx context.Context, cmd *cobra.Command, o *opts.RootOpts) (context.Context, error) {
	logger := setupLogging(zerolog.InfoLevel)
	ctx = logger.WithContext(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return ctx, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		if workers < 0 {
			return ctx, errors.Errorf("--workers must not be negative")
		}
		if workers > 0 {
			cfg.Workers = workers
		}
	}
	if flags.Changed("case-sensitive") {
		cfg.CaseSensitive = caseSensitive
	}
	cfg.Apply()

	level := cfg.Level()
	if debug {
		level = zerolog.DebugLevel
	}
	logger = setupLogging(level)
	ctx = logger.WithContext(ctx)

	o.Config = cfg
	o.Quiet = quiet
	o.Progress = progress
	o.Reporter = log.New(os.Stdout, level).
		WithLogger(logger).
		WithQuiet(quiet).
		WithProgress(progress)
	return log.NewContext(ctx, o.Reporter), nil
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	path := configFile
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Errorf("getting working directory: %w", err)
		}
		path = config.Find(wd)
	}
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// setupLogging builds the structured logger carried in the context
func setupLogging(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
