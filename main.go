// opsdesk - an embeddable data assistant for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/jeranaias/opsdesk/internal/cli"
	"github.com/jeranaias/opsdesk/internal/config"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	// A .env next to the working directory may carry OPSDESK_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}

	cmd, args := cli.Parse()

	// Commands that need no configuration.
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdUnknown:
		msg := fmt.Sprintf("unknown command %q", args.Name)
		if s := cli.SuggestCommand(args.Name); s != "" {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		cli.DisplayError(os.Stderr, &cli.UsageError{Reason: msg})
		fmt.Fprintln(os.Stderr, "Run 'opsdesk help' for usage.")
		return cli.ExitUsageError
	}

	cfg, err := loadConfig(args)
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}

	ctx := context.Background()
	switch cmd {
	case cli.CmdTUI:
		err = cli.HandleTUI(ctx, cfg, args)
	case cli.CmdAsk:
		err = cli.HandleAsk(ctx, cfg, args)
	case cli.CmdChat:
		err = cli.HandleChat(ctx, cfg, args)
	case cli.CmdSession:
		err = cli.HandleSession(ctx, cfg, args)
	case cli.CmdServeMock:
		err = cli.HandleServeMock(ctx, cfg, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(cfg, args)
	case cli.CmdDoctor:
		err = cli.HandleDoctor(ctx, cfg, args)
	}

	// An interrupted reply already said so on stderr.
	if err != nil && !errors.Is(err, cli.ErrReplyInterrupted) {
		cli.DisplayError(os.Stderr, err)
	}
	return cli.GetExitCode(err)
}

// loadConfig reads --config when given, else ~/.opsdesk/config.toml. A
// config file that fails to parse is fatal only when named explicitly.
func loadConfig(args cli.Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		return config.LoadFromPath(args.ConfigPath)
	}
	cfg, err := config.Load()
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return cfg, nil
}
