// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

// Package catalog models the perfume dataset and loads it from CSV.
//
// The catalog is loaded once at startup and treated as immutable
// afterwards. Recommendation scorers index into the table by position,
// so row order is stable for the lifetime of a Table.
package catalog

import (
	"fmt"
	"strings"
)

// Key uniquely identifies a perfume within the catalog. Two rows with
// the same brand and name refer to the same product.
type Key struct {
	Brand string
	Name  string
}

// String renders the key for logging and cache keys.
func (k Key) String() string {
	return k.Brand + "/" + k.Name
}

// Item is a single perfume row from the dataset.
type Item struct {
	Brand string `json:"brand"`
	Name  string `json:"name"`

	// CoreKeywords are the curated scent keywords for this perfume,
	// space separated. Rows without them are excluded at load time.
	CoreKeywords string `json:"core_keywords"`

	// Description is the one-line marketing description.
	Description string `json:"description"`

	TopNoteKeywords    string `json:"top_note_keywords"`
	MiddleNoteKeywords string `json:"middle_note_keywords"`
	BaseNoteKeywords   string `json:"base_note_keywords"`

	TopNoteDescription    string `json:"top_note_description"`
	MiddleNoteDescription string `json:"middle_note_description"`
	BaseNoteDescription   string `json:"base_note_description"`

	Gender string `json:"gender"`
	Season string `json:"season"`
	Place  string `json:"place"`

	ImageURL          string `json:"image_url"`
	RemovedBgImageURL string `json:"removebg_image_url"`
}

// Key returns the identity key for the item.
func (it Item) Key() Key {
	return Key{Brand: it.Brand, Name: it.Name}
}

// NoteKeywords joins the three note keyword fields into one string.
func (it Item) NoteKeywords() string {
	return joinNonEmpty(" ", it.TopNoteKeywords, it.MiddleNoteKeywords, it.BaseNoteKeywords)
}

// NoteDescriptions joins the three note description fields.
func (it Item) NoteDescriptions() string {
	return joinNonEmpty(" ", it.TopNoteDescription, it.MiddleNoteDescription, it.BaseNoteDescription)
}

// DisplayDescription returns the one-line description, falling back to
// the core keywords when the description is empty.
func (it Item) DisplayDescription() string {
	if it.Description != "" {
		return it.Description
	}
	return it.CoreKeywords
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// Table is an immutable, positionally indexed view of the catalog.
type Table struct {
	items []Item
	byKey map[Key]int
}

// NewTable builds a Table from raw items, excluding rows that are
// missing a name or core keywords. Both fields are required by every
// scorer, so a row without them can never be recommended.
//
// The number of excluded rows is returned so callers can log it.
func NewTable(raw []Item) (*Table, int) {
	items := make([]Item, 0, len(raw))
	byKey := make(map[Key]int, len(raw))
	excluded := 0

	for _, it := range raw {
		if strings.TrimSpace(it.Name) == "" || strings.TrimSpace(it.CoreKeywords) == "" {
			excluded++
			continue
		}
		key := it.Key()
		if _, dup := byKey[key]; dup {
			excluded++
			continue
		}
		byKey[key] = len(items)
		items = append(items, it)
	}

	return &Table{items: items, byKey: byKey}, excluded
}

// Len returns the number of usable catalog rows.
func (t *Table) Len() int {
	return len(t.items)
}

// At returns the item at position i. Positions are stable for the
// lifetime of the table.
func (t *Table) At(i int) Item {
	return t.items[i]
}

// Items returns the underlying slice. Callers must not mutate it.
func (t *Table) Items() []Item {
	return t.items
}

// Lookup finds an item by key.
func (t *Table) Lookup(key Key) (Item, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return Item{}, false
	}
	return t.items[i], true
}

// Index returns the stable row position for a key.
func (t *Table) Index(key Key) (int, bool) {
	i, ok := t.byKey[key]
	return i, ok
}

// Validate reports an error for an empty table. An empty catalog means
// the service can never produce a recommendation.
func (t *Table) Validate() error {
	if t.Len() == 0 {
		return fmt.Errorf("catalog contains no usable rows")
	}
	return nil
}
