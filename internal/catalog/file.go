// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/opsdesk/internal/model"
)

// catalogFile is the on-disk layout:
//
//	[[tables]]
//	id = "t_orders"
//	name = "orders"
//	description = "One row per order"
type catalogFile struct {
	Tables []model.TableReference `toml:"tables"`
}

// LoadFile reads a catalog file. Every table needs an id and a name, and ids
// must be unique.
func LoadFile(path string) ([]model.TableReference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes catalog TOML.
func Parse(data string) ([]model.TableReference, error) {
	var f catalogFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Tables))
	for i, t := range f.Tables {
		t.ID = strings.TrimSpace(t.ID)
		t.Name = strings.TrimSpace(t.Name)
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("catalog table %d: id and name are required", i+1)
		}
		if strings.ContainsAny(t.Name, " \t\n") {
			return nil, fmt.Errorf("catalog table %q: name must not contain whitespace", t.Name)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("catalog table %q: duplicate id", t.ID)
		}
		seen[t.ID] = true
		f.Tables[i] = t
	}
	return f.Tables, nil
}
