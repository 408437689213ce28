// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/opsdesk/internal/model"
)

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is the read-only list of tables a user can mention. Its contents
// can be swapped wholesale by Replace. Safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	tables []model.TableReference
	byName map[string]int // folded name -> index
	byID   map[string]int
	folded []string // folded names, parallel to tables
}

// New creates a catalog holding tables in the given order.
func New(tables []model.TableReference) *Catalog {
	c := &Catalog{}
	c.Replace(tables)
	return c
}

// Replace swaps the catalog contents. On duplicate names or ids the first
// entry wins.
func (c *Catalog) Replace(tables []model.TableReference) {
	fold := cases.Fold()
	next := make([]model.TableReference, 0, len(tables))
	byName := make(map[string]int, len(tables))
	byID := make(map[string]int, len(tables))
	folded := make([]string, 0, len(tables))

	for _, t := range tables {
		key := fold.String(t.Name)
		if _, dup := byName[key]; dup {
			continue
		}
		if _, dup := byID[t.ID]; dup {
			continue
		}
		byName[key] = len(next)
		byID[t.ID] = len(next)
		next = append(next, t)
		folded = append(folded, lower(t.Name))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = next
	c.byName = byName
	c.byID = byID
	c.folded = folded
}

// Lookup finds a table by name, ignoring case.
func (c *Catalog) Lookup(name string) (model.TableReference, bool) {
	key := cases.Fold().String(strings.TrimSpace(name))
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byName[key]
	if !ok {
		return model.TableReference{}, false
	}
	return c.tables[i], true
}

// Get finds a table by id.
func (c *Catalog) Get(id string) (model.TableReference, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return model.TableReference{}, false
	}
	return c.tables[i], true
}

// All returns a copy of every table in catalog order.
func (c *Catalog) All() []model.TableReference {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.CloneTables(c.tables)
}

// Len returns the number of tables.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Match returns up to limit tables for a mention filter: names starting with
// filter first, then names containing it, each group in catalog order. The
// filter is compared lowercased. A limit <= 0 means no limit.
func (c *Catalog) Match(filter string, limit int) []model.TableReference {
	filter = lower(filter)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var prefix, contains []model.TableReference
	for i, name := range c.folded {
		switch {
		case strings.HasPrefix(name, filter):
			prefix = append(prefix, c.tables[i])
		case strings.Contains(name, filter):
			contains = append(contains, c.tables[i])
		}
	}

	out := append(prefix, contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Names returns every table name in catalog order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name
	}
	return names
}

// lower is the same Unicode-aware lowercasing the input filter uses.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
