// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - Runs the bundled mock assistant backend.
//
// Usage:
//
//	opsdesk serve-mock [--addr 127.0.0.1:8787]
//
// The mock streams a canned reply word by word over server-sent events and
// honors the same wire format as the real backend, so the widget and the
// chat commands can be tried without one.

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/opsdesk/internal/config"
	"github.com/jeranaias/opsdesk/internal/logging"
	"github.com/jeranaias/opsdesk/internal/mockapi"
)

// HandleServeMock runs the mock backend until SIGINT or SIGTERM.
func HandleServeMock(ctx context.Context, cfg *config.Config, args Args) error {
	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  "text",
		Output:  os.Stderr,
		Verbose: args.Verbose,
		Quiet:   args.Quiet,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	mcfg := mockapi.DefaultConfig()
	mcfg.Addr = cfg.Mock.Addr
	if args.Addr != "" {
		mcfg.Addr = args.Addr
	}
	mcfg.ChunkDelay = cfg.ChunkDelay()
	mcfg.APIToken = cfg.Backend.APIToken

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return mockapi.NewServer(mcfg, logger).Run(ctx)
}
