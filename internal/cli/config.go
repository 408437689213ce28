// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
//
// Subcommands:
//
//	show (default)      Display the effective configuration
//	path                Show the configuration file path
//	get <key>           Print one value (dot notation)
//	set <key> <value>   Change one value and save the file
//	reset               Write the default configuration
//
// Examples:
//
//	opsdesk config show --json
//	opsdesk config get backend.base_url
//	opsdesk config set backend.base_url https://assistant.example.com
//	opsdesk config set state.backend sqlite
//	opsdesk config set stream.idle_timeout_secs 60
//
// Environment overrides (OPSDESK_*) apply to show and get but are never
// written by set.

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/opsdesk/internal/config"
)

// secretKeys are masked by show and get.
var secretKeys = map[string]bool{
	"backend.api_token":    true,
	"state.redis_password": true,
}

// HandleConfig runs the config command.
func HandleConfig(cfg *config.Config, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return showConfig(cfg, args.JSON)
	case "path":
		path, err := configFilePath(args)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	case "get":
		return getConfigValue(cfg, args.ConfigKey)
	case "set":
		return setConfigValue(args)
	case "reset":
		return resetConfig(args)
	default:
		return &UsageError{Command: "config", Reason: fmt.Sprintf("unknown subcommand %q", args.Subcommand)}
	}
}

// configFilePath returns --config when given, else the default TOML path.
func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func showConfig(cfg *config.Config, jsonMode bool) error {
	return OutputJSON(os.Stdout, jsonMode, "config show", func() (interface{}, error) {
		values := make(map[string]string)
		for _, key := range config.GetAllKeys() {
			values[key] = displayValue(cfg, key)
		}
		if jsonMode {
			return values, nil
		}

		fmt.Println(TitleStyle.Render("opsdesk configuration"))
		section := ""
		for _, key := range config.GetAllKeys() {
			head, field, found := strings.Cut(key, ".")
			if !found {
				field = head
				head = ""
			}
			if head != section {
				section = head
				fmt.Println()
				fmt.Println(TitleStyle.Render("[" + section + "]"))
			}
			fmt.Println(LabelStyle.Width(24).Render(field) + ValueStyle.Render(values[key]))
		}
		if n := len(cfg.Catalog.Tables); n > 0 {
			fmt.Println(RenderField("inline tables", fmt.Sprint(n)))
		}
		return values, nil
	})
}

// displayValue formats a config value, masking secrets.
func displayValue(cfg *config.Config, key string) string {
	v, err := cfg.Get(key)
	if err != nil {
		return ""
	}
	s := fmt.Sprint(v)
	if secretKeys[key] && s != "" {
		return "********"
	}
	return s
}

func getConfigValue(cfg *config.Config, key string) error {
	if key == "" {
		return &UsageError{Command: "config get", Reason: "a key is required"}
	}
	if _, err := cfg.Get(key); err != nil {
		return unknownKeyError("config get", key, err)
	}
	fmt.Println(displayValue(cfg, key))
	return nil
}

// loadFileConfig reads the config file without environment overrides so
// set never persists them. A missing file yields the defaults.
func loadFileConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

func setConfigValue(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return &UsageError{Command: "config set", Reason: "usage: config set KEY VALUE"}
	}
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	cfg, err := loadFileConfig(path)
	if err != nil {
		return err
	}

	value := args.ConfigVal
	if current, err := cfg.Get(args.ConfigKey); err == nil {
		if _, isBool := current.(bool); isBool {
			b, err := ParseBoolString(value)
			if err != nil {
				return &UsageError{Command: "config set", Reason: err.Error()}
			}
			value = fmt.Sprint(b)
		}
	}
	if err := cfg.Set(args.ConfigKey, value); err != nil {
		return unknownKeyError("config set", args.ConfigKey, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return err
	}

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("Set"), args.ConfigKey, displayValue(cfg, args.ConfigKey))
	return nil
}

// unknownKeyError wraps a Get/Set failure, suggesting a close key.
func unknownKeyError(command, key string, err error) error {
	reason := err.Error()
	if s := SuggestConfigKey(key); s != "" {
		reason += " (did you mean " + s + "?)"
	}
	return &UsageError{Command: command, Reason: reason}
}

func resetConfig(args Args) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	cfg := config.Default()
	cfg.SetDefaults()
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Configuration reset: " + path))
	return nil
}
