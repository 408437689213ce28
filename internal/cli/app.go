// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring shared by the commands that talk to the assistant.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jeranaias/opsdesk/internal/catalog"
	"github.com/jeranaias/opsdesk/internal/chat"
	"github.com/jeranaias/opsdesk/internal/config"
	"github.com/jeranaias/opsdesk/internal/logging"
	"github.com/jeranaias/opsdesk/internal/session"
	"github.com/jeranaias/opsdesk/internal/storage"
	"github.com/jeranaias/opsdesk/internal/transport"
)

// App bundles the long-lived pieces of a running opsdesk: the persisted
// session, the streaming client, the table catalog and the controller.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	KV         storage.Store
	Store      *session.Store
	Client     *transport.Client
	Catalog    *catalog.Catalog
	Watcher    *catalog.Watcher
	Controller *chat.Controller

	logCloser io.Closer
}

// ApplyArgs folds the global command line flags into cfg.
func ApplyArgs(cfg *config.Config, args Args) {
	if args.BackendURL != "" {
		cfg.Backend.BaseURL = args.BackendURL
	}
	if args.Ephemeral {
		cfg.State.Backend = storage.BackendMemory
	}
}

// NewApp opens everything a chat surface needs. Logs go to logOut when it is
// non-nil, otherwise to the configured log file. The caller must Close the
// returned App.
func NewApp(ctx context.Context, cfg *config.Config, args Args, logOut io.Writer) (app *App, err error) {
	ApplyArgs(cfg, args)

	logOpts := logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: args.Verbose,
		Quiet:   args.Quiet,
	}
	if logOut != nil {
		logOpts.Output = logOut
	} else {
		logOpts.Path = cfg.Log.Path
	}
	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	app = &App{Config: cfg, Logger: logger, logCloser: logCloser}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	app.KV, err = storage.Open(ctx, stateOptions(cfg))
	if err != nil {
		return app, fmt.Errorf("failed to open %s state store: %w", cfg.State.Backend, err)
	}

	app.Store = session.NewStore(app.KV)
	if err := app.Store.Load(ctx); err != nil {
		// A broken state store costs the session id, not the chat.
		logger.Warn("failed to restore session state", "error", err)
	}

	if err := app.openCatalog(ctx); err != nil {
		return app, err
	}

	app.Client = transport.NewClient(&transport.ClientConfig{
		BaseURL:           cfg.Backend.BaseURL,
		APIToken:          cfg.Backend.APIToken,
		HeaderTimeout:     cfg.HeaderTimeout(),
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
		Logger:            logger,
	})

	app.Controller = chat.NewController(app.Store, app.Client, chat.Options{
		Endpoint:        cfg.Backend.StreamEndpoint,
		Method:          cfg.Backend.Method,
		PageContext:     transport.PageContextFromString(cfg.Page.Context),
		ContextSettings: cfg.Page.ContextSettings,
		IdleTimeout:     cfg.IdleTimeout(),
		SyncInterval:    cfg.SyncInterval(),
		Logger:          logger,
	})

	logger.Debug("app ready",
		"backend", cfg.Backend.BaseURL,
		"state", cfg.State.Backend,
		"tables", app.Catalog.Len())
	return app, nil
}

// openCatalog loads the mentionable tables from catalog.path, or from the
// inline tables when no path is set.
func (a *App) openCatalog(ctx context.Context) error {
	cc := a.Config.Catalog
	if cc.Path == "" {
		a.Catalog = catalog.New(cc.Tables)
		return nil
	}

	tables, err := catalog.LoadFile(cc.Path)
	if err != nil {
		return err
	}
	a.Catalog = catalog.New(tables)

	if !cc.Watch {
		return nil
	}
	w, err := catalog.NewWatcher(a.Catalog, cc.Path, catalog.DefaultDebounce, a.Logger)
	if err != nil {
		return err
	}
	if err := w.Watch(ctx); err != nil {
		w.Close()
		return err
	}
	a.Watcher = w
	return nil
}

// Close stops the controller and releases the stores and the log file.
func (a *App) Close() error {
	var errs []error
	if a.Controller != nil {
		a.Controller.Close()
	}
	if a.Watcher != nil {
		errs = append(errs, a.Watcher.Close())
	}
	if a.KV != nil {
		errs = append(errs, a.KV.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
