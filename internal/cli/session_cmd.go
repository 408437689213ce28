// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Inspect or forget the persisted widget session.
//
// Command: session [subcommand]
// Aliases: sessions
//
// Subcommands:
//
//	show (default)      Print the state backend, session id and open flag
//	clear               Forget the session id; the next reply starts a new one
//
// Examples:
//
//	opsdesk session
//	opsdesk session show --json
//	opsdesk --ephemeral session show
//	opsdesk session clear

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/opsdesk/internal/config"
	"github.com/jeranaias/opsdesk/internal/session"
	"github.com/jeranaias/opsdesk/internal/storage"
)

// SessionInfo is the persisted state as printed by "session show".
type SessionInfo struct {
	Backend    string `json:"backend"`
	Location   string `json:"location,omitempty"`
	SessionID  string `json:"session_id"`
	WidgetOpen bool   `json:"widget_open"`
}

// HandleSession runs the session command.
func HandleSession(ctx context.Context, cfg *config.Config, args Args) error {
	ApplyArgs(cfg, args)

	kv, err := storage.Open(ctx, stateOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to open %s state store: %w", cfg.State.Backend, err)
	}
	defer kv.Close()

	store := session.NewStore(kv)
	if err := store.Load(ctx); err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "show":
		return showSession(cfg, store, args.JSON)
	case "clear", "reset":
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Println(SuccessStyle.Render("Session cleared."))
		return nil
	default:
		return &UsageError{Command: "session", Reason: fmt.Sprintf("unknown subcommand %q (use show or clear)", args.Subcommand)}
	}
}

func showSession(cfg *config.Config, store *session.Store, jsonMode bool) error {
	info := SessionInfo{
		Backend:    cfg.State.Backend,
		Location:   stateLocation(cfg),
		SessionID:  store.SessionID(),
		WidgetOpen: store.WidgetOpen(),
	}
	return OutputJSON(os.Stdout, jsonMode, "session show", func() (interface{}, error) {
		if jsonMode {
			return info, nil
		}
		fmt.Println(TitleStyle.Render("Session"))
		fmt.Println(RenderField("Backend", info.Backend))
		if info.Location != "" {
			fmt.Println(RenderField("Location", info.Location))
		}
		id := info.SessionID
		if id == "" {
			id = DimStyle.Render("(none)")
		}
		fmt.Println(RenderField("Session ID", id))
		fmt.Println(RenderField("Widget open", fmt.Sprint(info.WidgetOpen)))
		return info, nil
	})
}

// stateOptions maps the [state] config section to storage options.
func stateOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Backend:       cfg.State.Backend,
		Path:          cfg.State.Path,
		RedisAddr:     cfg.State.RedisAddr,
		RedisPassword: cfg.State.RedisPassword,
		RedisDB:       cfg.State.RedisDB,
		KeyPrefix:     cfg.State.KeyPrefix,
	}
}

// stateLocation describes where the state backend keeps its data.
func stateLocation(cfg *config.Config) string {
	switch cfg.State.Backend {
	case storage.BackendRedis:
		return fmt.Sprintf("%s db %d", cfg.State.RedisAddr, cfg.State.RedisDB)
	case storage.BackendMemory:
		return ""
	default:
		return cfg.State.Path
	}
}
