// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// TableReference is a catalog entry (table or dataset) that a user can
// @-mention to scope the assistant's context. Read-only here.
type TableReference struct {
	ID          string `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description,omitempty" toml:"description"`
}

// CloneTables copies a slice of references. Nil stays nil.
func CloneTables(refs []TableReference) []TableReference {
	if refs == nil {
		return nil
	}
	out := make([]TableReference, len(refs))
	copy(out, refs)
	return out
}

// ContainsTable reports whether refs holds an entry with the given id.
func ContainsTable(refs []TableReference, id string) bool {
	for _, r := range refs {
		if r.ID == id {
			return true
		}
	}
	return false
}
