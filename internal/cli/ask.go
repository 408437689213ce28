// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question with a streamed reply.
//
// Usage:
//
//	opsdesk ask "how many orders shipped last week?" -m orders
//
// On a terminal the reply is rendered as markdown once it completes. Piped
// output (or --plain) receives the raw chunks as they arrive.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jeranaias/opsdesk/internal/catalog"
	"github.com/jeranaias/opsdesk/internal/chat"
	"github.com/jeranaias/opsdesk/internal/config"
	"github.com/jeranaias/opsdesk/internal/model"
	"github.com/jeranaias/opsdesk/internal/ui/render"
)

// HandleAsk runs the ask command.
func HandleAsk(ctx context.Context, cfg *config.Config, args Args) error {
	if strings.TrimSpace(args.Query) == "" && len(args.Mentions) == 0 {
		return &UsageError{Command: "ask", Reason: "a question or at least one --mention is required"}
	}

	app, err := NewApp(ctx, cfg, args, os.Stderr)
	if err != nil {
		return err
	}
	defer app.Close()

	mentions, err := resolveMentions(app.Catalog, args.Mentions)
	if err != nil {
		return err
	}

	rendered := IsStdoutTTY() && !args.Plain && cfg.UI.RenderMarkdown
	out := os.Stdout

	if !rendered {
		app.Controller.SetSink(chat.SinkFuncs{
			AppendFunc: func(_, text string) bool {
				fmt.Fprint(out, text)
				return true
			},
		})
	} else {
		fmt.Fprintln(os.Stderr, DimStyle.Render("thinking..."))
	}

	msg := model.NewUserMessage(strings.TrimSpace(args.Query), mentions)
	turn := app.Controller.Start(msg)
	waitTurn(ctx, app.Controller, turn)

	reply, _ := app.Store.Get(turn.ID())
	return reportReply(out, reply, rendered, render.NewMarkdown(markdownStyle(cfg)))
}

// resolveMentions looks up every name in cat. A leading @ is optional.
// Repeated names are mentioned once.
func resolveMentions(cat *catalog.Catalog, names []string) ([]model.TableReference, error) {
	var refs []model.TableReference
	for _, name := range names {
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		if name == "" {
			continue
		}
		ref, ok := cat.Lookup(name)
		if !ok {
			return nil, &NotFoundError{Resource: "table", ID: name}
		}
		if !model.ContainsTable(refs, ref.ID) {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// waitTurn blocks until turn reaches a terminal state. SIGINT and SIGTERM
// stop the stream instead of killing the process, so the partial reply is
// kept and marked as interrupted.
func waitTurn(ctx context.Context, ctrl *chat.Controller, turn *chat.Turn) {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-turn.Done():
	case <-sigCtx.Done():
		ctrl.Stop()
		<-turn.Done()
	}
}

// reportReply prints the terminal state of a reply. Streamed output has
// already been written when rendered is false.
func reportReply(w io.Writer, reply model.Message, rendered bool, md *render.Markdown) error {
	switch reply.Status {
	case model.StatusErrored:
		if !rendered {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(reply.Content))
		return ErrReplyFailed

	case model.StatusInterrupted:
		partial := strings.TrimSpace(strings.TrimSuffix(reply.Content, chat.InterruptedMarker))
		if rendered && partial != "" {
			fmt.Fprintln(w, md.Render(partial, GetTerminalWidth()))
		} else if !rendered {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Message interrupted"))
		return ErrReplyInterrupted

	default:
		if rendered {
			fmt.Fprintln(w, md.Render(reply.Content, GetTerminalWidth()))
		} else {
			fmt.Fprintln(w)
		}
		return nil
	}
}

// markdownStyle maps the UI theme to a glamour style.
func markdownStyle(cfg *config.Config) string {
	if strings.EqualFold(cfg.UI.Theme, "light") {
		return "light"
	}
	return "dark"
}
