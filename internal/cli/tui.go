// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Starts the full-screen assistant widget.

package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opsdesk/internal/config"
	"github.com/jeranaias/opsdesk/internal/ui/render"
	"github.com/jeranaias/opsdesk/internal/ui/styles"
	"github.com/jeranaias/opsdesk/internal/ui/widget"
)

// HandleTUI runs the widget until the user quits. Logs go to the configured
// log file because the terminal belongs to the widget.
func HandleTUI(ctx context.Context, cfg *config.Config, args Args) error {
	if !IsTTY() || !IsStdoutTTY() {
		return &UsageError{Command: "tui", Reason: "needs an interactive terminal, use ask or chat when piping"}
	}
	app, err := NewApp(ctx, cfg, args, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	opts := widget.Options{
		Theme:           styles.NewThemeNamed(cfg.UI.Theme),
		MaxFPS:          cfg.UI.MaxFPS,
		SuggestionLimit: cfg.UI.SuggestionLimit,
		Logger:          app.Logger,
	}
	if cfg.UI.RenderMarkdown {
		opts.Markdown = render.NewMarkdown(markdownStyle(cfg))
	}

	m := widget.New(app.Controller, app.Catalog, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	app.Logger.Info("widget started", "session", app.Store.SessionID())
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	return err
}
