// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell implements the interactive swarmsh REPL: line editing,
// persistent history, tab completion, and the built-in commands.
package shell

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// =============================================================================
// COMMAND HISTORY
// =============================================================================

// DefaultHistoryLimit caps retained history when none is configured.
const DefaultHistoryLimit = 1000

// History is a bounded, persistent command history. Blank lines and
// immediate repeats are skipped; once the cap is reached the oldest
// entry is evicted. Safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []string
	limit   int
	path    string
}

// NewHistory creates a history persisted at path, holding at most limit
// entries. Existing history at path is loaded; a missing or unreadable
// file just starts empty.
func NewHistory(path string, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	h := &History{limit: limit, path: path}
	h.load()
	return h
}

func (h *History) load() {
	f, err := os.Open(h.path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		h.append(line)
	}
}

// append adds one line, applying the dedup and eviction rules, and
// reports whether the line was accepted. Callers hold no lock during
// load; Add takes the lock.
func (h *History) append(line string) bool {
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == line {
		return false
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	return true
}

// Add records a command line. Blank input and a line identical to the
// most recent entry are ignored. The file is rewritten after every
// accepted entry; persistence failures are swallowed so a full disk
// never takes the session down.
func (h *History) Add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.append(line) {
		_ = h.persistLocked()
	}
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Search returns entries containing term, oldest first. Matching is
// case-sensitive substring containment.
func (h *History) Search(term string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var matches []string
	for _, e := range h.entries {
		if strings.Contains(e, term) {
			matches = append(matches, e)
		}
	}
	return matches
}

// Clear drops all in-memory entries and truncates the persisted file.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
	if h.path == "" {
		return nil
	}
	if err := os.WriteFile(h.path, nil, 0o600); err != nil {
		return fmt.Errorf("failed to clear history file: %w", err)
	}
	return nil
}

// Save rewrites the persisted file from the retained entries. The whole
// file is rewritten so the on-disk cap matches the in-memory cap.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.persistLocked()
}

func (h *History) persistLocked() error {
	if h.path == "" {
		return nil
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range h.entries {
		fmt.Fprintln(w, e)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}
