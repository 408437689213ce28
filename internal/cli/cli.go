// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSession
	CmdServeMock
	CmdConfig
	CmdDoctor
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdSession:
		return "session"
	case CmdServeMock:
		return "serve-mock"
	case CmdConfig:
		return "config"
	case CmdDoctor:
		return "doctor"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	BackendURL string
	Ephemeral  bool
	Verbose    bool
	Quiet      bool

	// Command-specific
	Query      string
	Mentions   []string
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Addr       string
	Plain      bool
	JSON       bool

	// Name is the unrecognized command for CmdUnknown
	Name string

	// Raw args (remaining after the command name)
	Raw []string
}

const usageText = `opsdesk - data assistant widget for the terminal

Usage:
  opsdesk [global flags] [command]

Commands:
  tui                        Start the assistant widget (default)
  chat                       Line-mode chat with @ completion
  ask "question"             Ask a single question and stream the reply
    --mention, -m NAME       Mention a table (repeatable)
    --plain                  Never render markdown
  session [show|clear]       Show or forget the persisted session
    --json                   Print show output as JSON
  serve-mock                 Run the local mock backend
    --addr HOST:PORT         Listen address (default from mock.addr)
  config [show|path]         Print the effective configuration
    --json                   Print show output as JSON
  config get KEY             Print one setting (dot notation)
  config set KEY VALUE       Change one setting and save it
  config reset               Write the default configuration
  doctor                     Check config, state store, catalog and backend
  version                    Show version information
  help                       Show this help

Global Flags:
  --config PATH              Use this config file instead of ~/.opsdesk/config.toml
  --backend URL              Override backend.base_url
  --ephemeral                Keep session state in memory only
  -v, --verbose              Debug logging
  -q, --quiet                Errors only

In chat and the widget, type @ followed by a table name to mention it.

Examples:
  opsdesk serve-mock &
  opsdesk ask "how many orders shipped last week?" -m orders
  opsdesk chat
  opsdesk config set stream.idle_timeout_secs 60

Version: %s
`

// PrintUsage writes the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "opsdesk version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments and returns the command and args.
// Global flags may appear before or after the command name.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	name := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining
	p := NewArgParser(remaining, "mention", "m", "addr")

	switch name {
	case "tui":
		return CmdTUI, args

	case "ask":
		args.Mentions = append(p.Values("mention"), p.Values("m")...)
		args.Plain = p.BoolFlag("plain")
		args.Query = strings.Join(p.PositionalFrom(0), " ")
		return CmdAsk, args

	case "chat":
		return CmdChat, args

	case "session", "sessions":
		args.Subcommand = p.Subcommand()
		args.JSON = p.BoolFlag("json")
		return CmdSession, args

	case "serve-mock", "mock":
		args.Addr = p.Flag("addr")
		return CmdServeMock, args

	case "config":
		args.Subcommand = p.Subcommand()
		args.ConfigKey = p.Positional(1)
		args.ConfigVal = strings.Join(p.PositionalFrom(2), " ")
		args.JSON = p.BoolFlag("json")
		return CmdConfig, args

	case "doctor":
		args.JSON = p.BoolFlag("json")
		return CmdDoctor, args

	case "version", "--version":
		return CmdVersion, args

	case "help", "--help", "-h":
		return CmdHelp, args

	default:
		args.Name = name
		return CmdUnknown, args
	}
}

// parseGlobalFlags extracts the global flags wherever they appear and
// returns the other arguments in order.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		name, value, hasValue := strings.Cut(arg, "=")

		takeValue := func() (string, bool) {
			if hasValue {
				return value, true
			}
			if i+1 < len(argv) {
				i++
				return argv[i], true
			}
			return "", false
		}

		switch name {
		case "--config":
			if v, ok := takeValue(); ok {
				args.ConfigPath = v
			}
		case "--backend":
			if v, ok := takeValue(); ok {
				args.BackendURL = v
			}
		case "--ephemeral":
			args.Ephemeral = true
		case "-v", "--verbose":
			args.Verbose = true
		case "-q", "--quiet":
			args.Quiet = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}
