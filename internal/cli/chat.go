// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat with @ mention completion.
//
// Usage:
//
//	opsdesk chat
//
// Type a question and press Enter. Words starting with @ that name a table
// in the catalog are sent as mentions; Tab completes them. Ctrl+C while a
// reply streams stops it; Ctrl+C at the prompt exits.
//
// Commands:
//
//	/help, /h      Show help
//	/clear, /c     Forget the conversation and start a new session
//	/session       Show the session id
//	/tables        List the tables that can be mentioned
//	/quit, /q      Exit chat

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/opsdesk/internal/catalog"
	"github.com/jeranaias/opsdesk/internal/chat"
	"github.com/jeranaias/opsdesk/internal/config"
	"github.com/jeranaias/opsdesk/internal/model"
	"github.com/jeranaias/opsdesk/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history, line editing and mention completion.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI whose Tab key completes @ mentions from cat.
func NewChatCLI(cat *catalog.Catalog) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	if cat != nil {
		line.SetWordCompleter(mentionCompleter(cat))
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history, owner read/write only.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// mentionCompleter completes the @ word under the cursor with table names.
func mentionCompleter(cat *catalog.Catalog) liner.WordCompleter {
	return func(line string, pos int) (string, []string, string) {
		runes := []rune(line)
		if pos > len(runes) {
			pos = len(runes)
		}
		before, tail := string(runes[:pos]), string(runes[pos:])

		start := strings.LastIndexAny(before, " \t") + 1
		word := before[start:]
		if !strings.HasPrefix(word, "@") {
			return before, nil, tail
		}

		var completions []string
		for _, t := range cat.Match(word[1:], 0) {
			completions = append(completions, "@"+t.Name+" ")
		}
		return before[:start], completions, tail
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

// turnRecorder hands submissions to the controller and remembers the turn
// so the REPL can wait for it.
type turnRecorder struct {
	ctrl *chat.Controller
	last *chat.Turn
}

func (r *turnRecorder) Start(user model.Message) *chat.Turn {
	r.last = r.ctrl.Start(user)
	return r.last
}

// composeLine feeds a typed line through the input coordinator as if it had
// been typed into the widget: every @name that resolves becomes a pending
// mention and is removed from the text. It returns the @words that did not
// resolve; they stay in the text.
func composeLine(ic *chat.InputCoordinator, cat chat.Catalog, line string) []string {
	var unknown []string
	text := ""
	join := func(word string) string {
		if t := strings.TrimSpace(text); t != "" {
			return t + " " + word
		}
		return word
	}

	for _, word := range strings.Fields(line) {
		if !strings.HasPrefix(word, "@") || len(word) == 1 {
			text = join(word)
			continue
		}
		name := strings.TrimRight(word[1:], ".,;:!?")
		rest := word[1+len(name):]
		if _, ok := cat.Lookup(name); !ok {
			unknown = append(unknown, word)
			text = join(word)
			continue
		}
		ic.OnInputChange(join("@"+name), -1)
		ic.OnMentionSelect(name)
		text = ic.Text()
		if rest != "" {
			text = strings.TrimSpace(text) + rest
		}
	}

	ic.OnInputChange(strings.TrimSpace(text), -1)
	return unknown
}

// =============================================================================
// REPL
// =============================================================================

// HandleChat runs the interactive chat loop.
func HandleChat(ctx context.Context, cfg *config.Config, args Args) error {
	app, err := NewApp(ctx, cfg, args, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	out := os.Stdout
	app.Controller.SetSink(chat.SinkFuncs{
		AppendFunc: func(_, text string) bool {
			fmt.Fprint(out, text)
			return true
		},
	})

	recorder := &turnRecorder{ctrl: app.Controller}
	input := chat.NewInputCoordinator(app.Catalog, recorder, chat.InputHooks{})

	term := NewChatCLI(app.Catalog)
	defer term.Close()

	printChatBanner(app)

	for {
		line, err := term.ReadInput(PromptStyle.Render("opsdesk> "))
		if err != nil {
			// Ctrl+C (liner.ErrPromptAborted) and Ctrl+D both end the session.
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := handleSlashCommand(ctx, app, line)
			if err != nil {
				DisplayError(os.Stderr, err)
			}
			if quit {
				return nil
			}
			continue
		}

		for _, word := range composeLine(input, app.Catalog, line) {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("unknown table "+word+", sent as text"))
		}
		if mentions := input.PendingMentions(); len(mentions) > 0 {
			fmt.Println(DimStyle.Render("mentioning " + formatMentions(mentions)))
		}

		recorder.last = nil
		if !input.Submit() || recorder.last == nil {
			continue
		}
		turn := recorder.last
		waitTurn(ctx, app.Controller, turn)

		reply, _ := app.Store.Get(turn.ID())
		fmt.Println()
		switch reply.Status {
		case model.StatusErrored:
			fmt.Println(ErrorStyle.Render(reply.Content))
		case model.StatusInterrupted:
			fmt.Println(WarningStyle.Render("Message interrupted"))
		}
		fmt.Println()
	}
}

// handleSlashCommand runs a /command. It reports whether chat should end.
func handleSlashCommand(ctx context.Context, app *App, line string) (bool, error) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h", "/?":
		printChatHelp()

	case "/clear", "/c":
		if err := app.Controller.Clear(ctx); err != nil {
			return false, err
		}
		fmt.Println(SuccessStyle.Render("Conversation cleared. The next message starts a new session."))

	case "/session":
		if id := app.Store.SessionID(); id != "" {
			fmt.Println(RenderField("Session", id))
		} else {
			fmt.Println(DimStyle.Render("No session yet. One starts with the first reply."))
		}
		fmt.Println(RenderField("Messages", fmt.Sprint(app.Store.Len())))
		if last := lastPreview(app.Store.Messages(), 60); last != "" {
			fmt.Println(RenderField("Last", last))
		}

	case "/tables":
		tables := app.Catalog.All()
		if len(tables) == 0 {
			fmt.Println(DimStyle.Render("No tables configured."))
			break
		}
		for _, t := range tables {
			fmt.Println(RenderField(MentionStyle.Render("@"+t.Name), t.Description))
		}

	default:
		reason := "unknown command, try /help"
		if s := SuggestSlashCommand(fields[0]); s != "" {
			reason = "unknown command, did you mean " + s + "?"
		}
		return false, &UsageError{Command: fields[0], Reason: reason}
	}
	return false, nil
}

// lastPreview summarizes the newest message on one line, or returns "" when
// there is none.
func lastPreview(msgs []model.Message, maxLen int) string {
	if len(msgs) == 0 {
		return ""
	}
	m := msgs[len(msgs)-1]
	m.Content = util.FirstLine(m.Content)
	return m.Sender.DisplayName() + ": " + m.Preview(maxLen)
}

func formatMentions(refs []model.TableReference) string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = MentionStyle.Render("@" + r.Name)
	}
	return strings.Join(names, " ")
}

func printChatBanner(app *App) {
	fmt.Println(TitleStyle.Render("opsdesk chat"))
	fmt.Println(RenderField("Backend", app.Config.Backend.BaseURL))
	if id := app.Store.SessionID(); id != "" {
		fmt.Println(RenderField("Session", util.ShortID(id, 8)))
	}
	fmt.Println(RenderField("Tables", fmt.Sprint(app.Catalog.Len())))
	fmt.Println(DimStyle.Render("Type @ and Tab to mention a table, /help for commands."))
	fmt.Println(RenderSeparator())
}

func printChatHelp() {
	cmds := []struct{ name, desc string }{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Forget the conversation and start a new session"},
		{"/session", "Show the session id"},
		{"/tables", "List the tables that can be mentioned"},
		{"/quit, /q", "Exit chat"},
	}
	for _, c := range cmds {
		fmt.Println(RenderField(c.name, c.desc))
	}
	fmt.Println(DimStyle.Render("Ctrl+C stops a streaming reply."))
}
