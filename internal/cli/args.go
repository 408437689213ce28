// args.go - Argument parsing shared by the CLI commands.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits command arguments into flags and positionals.
// It handles:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Repeated flags: --mention a --mention b
//
// Only flags named in valueFlags consume the following argument, so a bare
// boolean flag never swallows a positional.
type ArgParser struct {
	subcommand string
	flags      map[string][]string
	boolFlags  map[string]bool
	positional []string
	raw        []string
}

// NewArgParser parses raw. valueFlags lists the flag names (without dashes)
// that take a value.
//
// Example:
//
//	args := NewArgParser([]string{"how many?", "--mention", "orders", "--plain"}, "mention")
//	args.Positional(0)      // "how many?"
//	args.Values("mention")  // []string{"orders"}
//	args.BoolFlag("plain")  // true
func NewArgParser(raw []string, valueFlags ...string) *ArgParser {
	takesValue := make(map[string]bool, len(valueFlags))
	for _, f := range valueFlags {
		takesValue[f] = true
	}

	p := &ArgParser{
		flags:     make(map[string][]string),
		boolFlags: make(map[string]bool),
		raw:       raw,
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		// "--" ends flag parsing; "-" alone is a positional.
		if arg == "--" {
			p.positional = append(p.positional, raw[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			p.positional = append(p.positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		switch {
		case hasValue && !takesValue[name] && (value == "true" || value == "false"):
			p.boolFlags[name] = value == "true"
		case hasValue:
			p.flags[name] = append(p.flags[name], value)
		case takesValue[name] && i+1 < len(raw):
			i++
			p.flags[name] = append(p.flags[name], raw[i])
		default:
			p.boolFlags[name] = true
		}
	}

	if len(p.positional) > 0 {
		p.subcommand = p.positional[0]
	}
	return p
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the last value given for a flag, or "".
func (p *ArgParser) Flag(name string) string {
	vals := p.flags[strings.TrimLeft(name, "-")]
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}

// Values returns every value given for a repeatable flag, in order.
func (p *ArgParser) Values(name string) []string {
	vals := p.flags[strings.TrimLeft(name, "-")]
	if len(vals) == 0 {
		return nil
	}
	return append([]string(nil), vals...)
}

// FlagOrDefault returns the flag value or a default if not found.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// FlagIntOrDefault returns the flag value as an integer or a default.
func (p *ArgParser) FlagIntOrDefault(name string, defaultValue int) int {
	val, err := strconv.Atoi(p.Flag(name))
	if err != nil {
		return defaultValue
	}
	return val
}

// BoolFlag returns the value of a boolean flag.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[strings.TrimLeft(name, "-")]
}

// HasFlag returns true if the flag was given in either form.
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// Positional returns the positional argument at index, or "".
// Index 0 is the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns all positional arguments starting from index.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return nil
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// Raw returns the original raw arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}

// =============================================================================
// VALUE HELPERS
// =============================================================================

// ParseBoolString parses a boolean from various string representations.
// Accepts: true/false, yes/no, y/n, 1/0, on/off (case-insensitive)
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", s)
	}
}
