// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jeranaias/opsdesk/internal/catalog"
	"github.com/jeranaias/opsdesk/internal/chat"
	"github.com/jeranaias/opsdesk/internal/config"
	"github.com/jeranaias/opsdesk/internal/model"
	"github.com/jeranaias/opsdesk/internal/transport"
)

var testTables = []model.TableReference{
	{ID: "t1", Name: "orders", Description: "One row per order"},
	{ID: "t2", Name: "order_items"},
	{ID: "t3", Name: "customers"},
}

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		values   []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "value flag",
			args:    []string{"serve", "--addr", ":9000"},
			values:  []string{"addr"},
			wantSub: "serve",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("addr") != ":9000" {
					t.Errorf("Flag(addr) = %q, want %q", p.Flag("addr"), ":9000")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"show", "--since=2024-01-01"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("since") != "2024-01-01" {
					t.Errorf("Flag(since) = %q, want %q", p.Flag("since"), "2024-01-01")
				}
			},
		},
		{
			name:    "boolean flag does not take the next word",
			args:    []string{"--plain", "how", "many"},
			wantSub: "how",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("plain") {
					t.Error("BoolFlag(plain) should be true")
				}
				if p.PositionalCount() != 2 {
					t.Errorf("PositionalCount() = %d, want 2", p.PositionalCount())
				}
			},
		},
		{
			name:    "boolean flag with explicit false",
			args:    []string{"--json=false"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be false")
				}
				if !p.HasFlag("json") {
					t.Error("HasFlag(json) should be true")
				}
			},
		},
		{
			name:    "repeated value flag",
			args:    []string{"q", "-m", "orders", "--m", "customers"},
			values:  []string{"m"},
			wantSub: "q",
			validate: func(t *testing.T, p *ArgParser) {
				want := []string{"orders", "customers"}
				if got := p.Values("m"); !reflect.DeepEqual(got, want) {
					t.Errorf("Values(m) = %v, want %v", got, want)
				}
				if p.Flag("m") != "customers" {
					t.Errorf("Flag(m) = %q, want last value", p.Flag("m"))
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"ask", "--", "--not-a-flag"},
			wantSub: "ask",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(1) != "--not-a-flag" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "--not-a-flag")
				}
			},
		},
		{
			name:    "multiple positional args",
			args:    []string{"set", "page.context", "{}"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				joined := strings.Join(p.PositionalFrom(1), " ")
				if joined != "page.context {}" {
					t.Errorf("PositionalFrom(1) joined = %q", joined)
				}
				if p.PositionalFrom(5) != nil {
					t.Error("PositionalFrom past the end should be nil")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args, tt.values...)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		defaultVal int
		want       int
	}{
		{"flag present", []string{"cmd", "--limit", "10"}, 5, 10},
		{"flag missing uses default", []string{"cmd"}, 5, 5},
		{"invalid int uses default", []string{"cmd", "--limit", "abc"}, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args, "limit")
			if got := parser.FlagIntOrDefault("limit", tt.defaultVal); got != tt.want {
				t.Errorf("FlagIntOrDefault(limit, %d) = %d, want %d", tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestArgParser_FlagOrDefault(t *testing.T) {
	parser := NewArgParser([]string{"cmd", "--present", "value"}, "present")

	if parser.FlagOrDefault("present", "default") != "value" {
		t.Error("FlagOrDefault should return actual value when present")
	}
	if parser.FlagOrDefault("missing", "default") != "default" {
		t.Error("FlagOrDefault should return default when missing")
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	parser := NewArgParser([]string{})
	if parser.Subcommand() != "" {
		t.Errorf("Subcommand() = %q, want empty", parser.Subcommand())
	}
	if parser.PositionalCount() != 0 {
		t.Errorf("PositionalCount() = %d, want 0", parser.PositionalCount())
	}
	if parser.Positional(0) != "" {
		t.Error("Positional(0) should be empty")
	}
}

func TestParseBoolString(t *testing.T) {
	trueValues := []string{"true", "TRUE", "yes", "y", "1", "on", " On "}
	falseValues := []string{"false", "FALSE", "no", "n", "0", "off"}

	for _, v := range trueValues {
		got, err := ParseBoolString(v)
		if err != nil || !got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want true", v, got, err)
		}
	}
	for _, v := range falseValues {
		got, err := ParseBoolString(v)
		if err != nil || got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want false", v, got, err)
		}
	}
	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should error")
	}
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantCommand Command
		validate    func(*testing.T, Args)
	}{
		{
			name:        "no args starts the widget",
			args:        nil,
			wantCommand: CmdTUI,
		},
		{
			name:        "ask with mentions",
			args:        []string{"ask", "how many", "-m", "orders", "--mention", "customers", "shipped?"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "how many shipped?" {
					t.Errorf("Query = %q", a.Query)
				}
				want := []string{"customers", "orders"}
				if !reflect.DeepEqual(a.Mentions, want) {
					t.Errorf("Mentions = %v, want %v", a.Mentions, want)
				}
			},
		},
		{
			name:        "ask plain",
			args:        []string{"ask", "--plain", "hello"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if !a.Plain || a.Query != "hello" {
					t.Errorf("Plain = %v, Query = %q", a.Plain, a.Query)
				}
			},
		},
		{
			name:        "global flags anywhere",
			args:        []string{"-v", "ask", "hi", "--backend", "http://x:1", "--ephemeral", "--config=/tmp/c.toml"},
			wantCommand: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if !a.Verbose || !a.Ephemeral {
					t.Errorf("Verbose = %v, Ephemeral = %v", a.Verbose, a.Ephemeral)
				}
				if a.BackendURL != "http://x:1" || a.ConfigPath != "/tmp/c.toml" {
					t.Errorf("BackendURL = %q, ConfigPath = %q", a.BackendURL, a.ConfigPath)
				}
				if a.Query != "hi" {
					t.Errorf("Query = %q, want hi", a.Query)
				}
			},
		},
		{
			name:        "chat",
			args:        []string{"chat", "-q"},
			wantCommand: CmdChat,
			validate: func(t *testing.T, a Args) {
				if !a.Quiet {
					t.Error("Quiet should be true")
				}
			},
		},
		{
			name:        "session alias with json",
			args:        []string{"sessions", "show", "--json"},
			wantCommand: CmdSession,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "show" || !a.JSON {
					t.Errorf("Subcommand = %q, JSON = %v", a.Subcommand, a.JSON)
				}
			},
		},
		{
			name:        "serve-mock addr",
			args:        []string{"serve-mock", "--addr", ":9999"},
			wantCommand: CmdServeMock,
			validate: func(t *testing.T, a Args) {
				if a.Addr != ":9999" {
					t.Errorf("Addr = %q", a.Addr)
				}
			},
		},
		{
			name:        "config set joins the value",
			args:        []string{"config", "set", "page.context_settings", "a", "b"},
			wantCommand: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "set" || a.ConfigKey != "page.context_settings" || a.ConfigVal != "a b" {
					t.Errorf("got %q %q %q", a.Subcommand, a.ConfigKey, a.ConfigVal)
				}
			},
		},
		{
			name:        "doctor",
			args:        []string{"doctor", "--json"},
			wantCommand: CmdDoctor,
		},
		{
			name:        "version flag",
			args:        []string{"--version"},
			wantCommand: CmdVersion,
		},
		{
			name:        "help flag",
			args:        []string{"-h"},
			wantCommand: CmdHelp,
		},
		{
			name:        "unknown keeps the name",
			args:        []string{"Aks"},
			wantCommand: CmdUnknown,
			validate: func(t *testing.T, a Args) {
				if a.Name != "aks" {
					t.Errorf("Name = %q, want aks", a.Name)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.args)
			if cmd != tt.wantCommand {
				t.Fatalf("command = %v, want %v", cmd, tt.wantCommand)
			}
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

func TestPrintUsageMentionsEveryCommand(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	for _, c := range []Command{CmdTUI, CmdAsk, CmdChat, CmdSession, CmdServeMock, CmdConfig, CmdDoctor, CmdVersion, CmdHelp} {
		if !strings.Contains(buf.String(), c.String()) {
			t.Errorf("usage does not mention %q", c)
		}
	}
}

// =============================================================================
// SUGGESTION TESTS (suggest.go)
// =============================================================================

func TestSuggestions(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{SuggestCommand("asc"), "ask"},
		{SuggestCommand("chta"), "chat"},
		{SuggestCommand("doctr"), "doctor"},
		{SuggestCommand("ask"), ""},
		{SuggestCommand("x"), ""},
		{SuggestCommand("zzzzzz"), ""},
		{SuggestSlashCommand("/claer"), "/clear"},
		{SuggestConfigKey("backend.base_ur"), "backend.base_url"},
	}
	for i, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("case %d: got %q, want %q", i, tt.got, tt.want)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"chat", "chat", 0},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

// =============================================================================
// ERROR TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Command: "ask", Reason: "x"}, ExitUsageError},
		{"not found wrapped", fmt.Errorf("resolve: %w", &NotFoundError{Resource: "table", ID: "x"}), ExitNotFoundError},
		{"config", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}), ExitConfigError},
		{"interrupted", ErrReplyInterrupted, ExitInterrupted},
		{"auth", &transport.ClientError{Type: transport.ErrTypeAuth, Message: "no"}, ExitAuthError},
		{"server", &transport.ClientError{Type: transport.ErrTypeServer, Message: "boom"}, ExitNetworkError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

// =============================================================================
// MENTION TESTS (ask.go, chat.go)
// =============================================================================

func TestResolveMentions(t *testing.T) {
	cat := catalog.New(testTables)

	refs, err := resolveMentions(cat, []string{"@Orders", "customers", "orders", " "})
	if err != nil {
		t.Fatalf("resolveMentions() error = %v", err)
	}
	if len(refs) != 2 || refs[0].ID != "t1" || refs[1].ID != "t3" {
		t.Errorf("resolveMentions() = %v", refs)
	}

	_, err = resolveMentions(cat, []string{"nope"})
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != "nope" {
		t.Errorf("resolveMentions(nope) error = %v, want NotFoundError", err)
	}
}

type recordingSubmitter struct {
	msgs []model.Message
}

func (r *recordingSubmitter) Start(m model.Message) *chat.Turn {
	r.msgs = append(r.msgs, m)
	return nil
}

func TestComposeLine(t *testing.T) {
	cat := catalog.New(testTables)
	sub := &recordingSubmitter{}
	ic := chat.NewInputCoordinator(cat, sub, chat.InputHooks{})

	unknown := composeLine(ic, cat, "how many @orders shipped @nope?")
	if !reflect.DeepEqual(unknown, []string{"@nope?"}) {
		t.Errorf("unknown = %v", unknown)
	}
	if got := ic.Text(); got != "how many shipped @nope?" {
		t.Errorf("Text() = %q", got)
	}

	if !ic.Submit() {
		t.Fatal("Submit() rejected")
	}
	if len(sub.msgs) != 1 {
		t.Fatalf("submitted %d messages, want 1", len(sub.msgs))
	}
	msg := sub.msgs[0]
	if msg.Content != "how many shipped @nope?" {
		t.Errorf("Content = %q", msg.Content)
	}
	if names := msg.MentionNames(); !reflect.DeepEqual(names, []string{"orders"}) {
		t.Errorf("mentions = %v", names)
	}
}

func TestComposeLine_MentionOnlyAndDuplicates(t *testing.T) {
	cat := catalog.New(testTables)
	sub := &recordingSubmitter{}
	ic := chat.NewInputCoordinator(cat, sub, chat.InputHooks{})

	composeLine(ic, cat, "@customers @CUSTOMERS")
	if ic.Text() != "" {
		t.Errorf("Text() = %q, want empty", ic.Text())
	}
	if n := len(ic.PendingMentions()); n != 1 {
		t.Errorf("pending = %d, want 1", n)
	}
	if !ic.Submit() || sub.msgs[0].Content != "" {
		t.Error("a mention-only message should submit with empty content")
	}
}

func TestLastPreview(t *testing.T) {
	if got := lastPreview(nil, 20); got != "" {
		t.Errorf("lastPreview(nil) = %q, want empty", got)
	}

	msgs := []model.Message{
		{Sender: model.SenderUser, Content: "hi"},
		{Sender: model.SenderAssistant, Content: "\nfirst line of a long reply\nsecond"},
	}
	want := "Assistant: first line o..."
	if got := lastPreview(msgs, 15); got != want {
		t.Errorf("lastPreview() = %q, want %q", got, want)
	}
}

func TestMentionCompleter(t *testing.T) {
	complete := mentionCompleter(catalog.New(testTables))

	head, completions, tail := complete("show @ord please", 9)
	if head != "show " || tail != " please" {
		t.Errorf("head = %q, tail = %q", head, tail)
	}
	want := []string{"@orders ", "@order_items "}
	if !reflect.DeepEqual(completions, want) {
		t.Errorf("completions = %v, want %v", completions, want)
	}

	if _, completions, _ := complete("show ord", 8); completions != nil {
		t.Errorf("plain words should not complete, got %v", completions)
	}
}

// =============================================================================
// OUTPUT TESTS (json_output.go)
// =============================================================================

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	err := OutputJSON(&buf, true, "session show", func() (interface{}, error) {
		return SessionInfo{Backend: "memory", SessionID: "abc"}, nil
	})
	if err != nil {
		t.Fatalf("OutputJSON() error = %v", err)
	}
	var resp struct {
		Success bool        `json:"success"`
		Command string      `json:"command"`
		Data    SessionInfo `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Success || resp.Command != "session show" || resp.Data.SessionID != "abc" {
		t.Errorf("unexpected response: %+v", resp)
	}

	buf.Reset()
	boom := errors.New("boom")
	err = OutputJSON(&buf, true, "x", func() (interface{}, error) { return nil, boom })
	if !errors.Is(err, boom) || !strings.Contains(buf.String(), `"error": "boom"`) {
		t.Errorf("error response = %q, err = %v", buf.String(), err)
	}

	buf.Reset()
	OutputJSON(&buf, false, "x", func() (interface{}, error) { return 1, nil })
	if buf.Len() != 0 {
		t.Error("text mode should not write JSON")
	}
}

// =============================================================================
// COMMAND TESTS
// =============================================================================

func TestConfigSetAndGet(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	args := Args{ConfigPath: path, Subcommand: "set", ConfigKey: "ui.max_fps", ConfigVal: "45"}

	if err := HandleConfig(config.Default(), args); err != nil {
		t.Fatalf("config set error = %v", err)
	}
	args.ConfigKey, args.ConfigVal = "ui.render_markdown", "off"
	if err := HandleConfig(config.Default(), args); err != nil {
		t.Fatalf("config set bool error = %v", err)
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.UI.MaxFPS != 45 || cfg.UI.RenderMarkdown {
		t.Errorf("MaxFPS = %d, RenderMarkdown = %v", cfg.UI.MaxFPS, cfg.UI.RenderMarkdown)
	}

	args.ConfigKey, args.ConfigVal = "ui.max_fsp", "10"
	err = HandleConfig(config.Default(), args)
	var usage *UsageError
	if !errors.As(err, &usage) || !strings.Contains(usage.Reason, "ui.max_fps") {
		t.Errorf("unknown key error = %v, want a suggestion", err)
	}

	args.ConfigKey, args.ConfigVal = "ui.max_fps", "500"
	if GetExitCode(HandleConfig(config.Default(), args)) != ExitConfigError {
		t.Error("an out of range value should fail validation")
	}
}

func TestSessionCommand_Ephemeral(t *testing.T) {
	cfg := config.Default()
	cfg.SetDefaults()
	args := Args{Ephemeral: true}

	if err := HandleSession(context.Background(), cfg, args); err != nil {
		t.Fatalf("session show error = %v", err)
	}
	args.Subcommand = "clear"
	if err := HandleSession(context.Background(), cfg, args); err != nil {
		t.Fatalf("session clear error = %v", err)
	}
	args.Subcommand = "bogus"
	if GetExitCode(HandleSession(context.Background(), cfg, args)) != ExitUsageError {
		t.Error("unknown subcommand should be a usage error")
	}
}

func TestDoctor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.SetDefaults()
	cfg.Catalog.Tables = testTables

	if err := HandleDoctor(context.Background(), cfg, Args{Ephemeral: true, BackendURL: srv.URL, JSON: true}); err != nil {
		t.Errorf("doctor with a reachable backend error = %v", err)
	}

	srv.Close()
	err := HandleDoctor(context.Background(), cfg, Args{Ephemeral: true, JSON: true})
	if !errors.Is(err, ErrChecksFailed) {
		t.Errorf("doctor with a dead backend error = %v, want ErrChecksFailed", err)
	}
}
