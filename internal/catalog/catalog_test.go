// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opsdesk/internal/model"
)

var sample = []model.TableReference{
	{ID: "t1", Name: "orders", Description: "One row per order"},
	{ID: "t2", Name: "order_items"},
	{ID: "t3", Name: "customers"},
	{ID: "t4", Name: "backorders"},
}

// =============================================================================
// CATALOG TESTS
// =============================================================================

func TestLookup_IgnoresCase(t *testing.T) {
	cat := New(sample)

	got, ok := cat.Lookup("ORDERS")
	require.True(t, ok)
	assert.Equal(t, "t1", got.ID)

	_, ok = cat.Lookup("missing")
	assert.False(t, ok)
}

func TestGet(t *testing.T) {
	cat := New(sample)
	got, ok := cat.Get("t3")
	require.True(t, ok)
	assert.Equal(t, "customers", got.Name)
}

func TestMatch_PrefixBeforeContains(t *testing.T) {
	cat := New(sample)

	names := func(refs []model.TableReference) []string {
		out := make([]string, len(refs))
		for i, r := range refs {
			out[i] = r.Name
		}
		return out
	}

	assert.Equal(t, []string{"orders", "order_items", "backorders"}, names(cat.Match("order", 0)))
	assert.Equal(t, []string{"orders", "order_items"}, names(cat.Match("Order", 2)))
	assert.Len(t, cat.Match("", 0), 4, "empty filter lists everything")
	assert.Empty(t, cat.Match("zzz", 5))
}

func TestReplace_DropsDuplicates(t *testing.T) {
	cat := New(nil)
	assert.Zero(t, cat.Len())

	cat.Replace([]model.TableReference{
		{ID: "a", Name: "orders"},
		{ID: "b", Name: "Orders"},
		{ID: "a", Name: "other"},
		{ID: "c", Name: "customers"},
	})
	assert.Equal(t, []string{"orders", "customers"}, cat.Names())
}

func TestAll_ReturnsCopy(t *testing.T) {
	cat := New(sample)
	all := cat.All()
	all[0].Name = "changed"
	got, _ := cat.Get("t1")
	assert.Equal(t, "orders", got.Name)
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tables, err := Parse(`
[[tables]]
id = "t1"
name = "orders"
description = "One row per order"

[[tables]]
id = "t2"
name = " customers "
`)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "One row per order", tables[0].Description)
	assert.Equal(t, "customers", tables[1].Name)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad toml", "[[tables]\n"},
		{"missing id", "[[tables]]\nname = \"x\"\n"},
		{"missing name", "[[tables]]\nid = \"x\"\n"},
		{"space in name", "[[tables]]\nid = \"x\"\nname = \"a b\"\n"},
		{"duplicate id", "[[tables]]\nid = \"x\"\nname = \"a\"\n[[tables]]\nid = \"x\"\nname = \"b\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.data)
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[tables]]\nid = \"t1\"\nname = \"orders\"\n"), 0o600))

	tables, err := LoadFile(path)
	require.NoError(t, err)
	cat := New(tables)

	w, err := NewWatcher(cat, path, 20*time.Millisecond, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Watch(ctx))
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[[tables]]\nid = \"t1\"\nname = \"orders\"\n[[tables]]\nid = \"t2\"\nname = \"customers\"\n"), 0o600))

	assert.Eventually(t, func() bool {
		_, ok := cat.Lookup("customers")
		return ok
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_KeepsTablesOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[tables]]\nid = \"t1\"\nname = \"orders\"\n"), 0o600))

	cat := New(sample[:1])
	w, err := NewWatcher(cat, path, 20*time.Millisecond, nil)
	require.NoError(t, err)

	reloads := make(chan error, 8)
	w.OnReload = func(err error) { reloads <- err }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Watch(ctx))
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o600))

	select {
	case err := <-reloads:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload attempted")
	}
	assert.Equal(t, 1, cat.Len())
}
