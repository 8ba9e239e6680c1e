// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistoryAddRules(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history"), 10)

	h.Add("agent list")
	h.Add("")
	h.Add("   ")
	h.Add("agent list") // adjacent duplicate, skipped
	h.Add("task list")
	h.Add("agent list") // non-adjacent repeat, kept

	want := []string{"agent list", "task list", "agent list"}
	if !reflect.DeepEqual(h.Entries(), want) {
		t.Errorf("Entries = %v, want %v", h.Entries(), want)
	}
}

func TestHistoryEviction(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history"), 3)

	for i := 1; i <= 5; i++ {
		h.Add(fmt.Sprintf("command-%d", i))
	}

	want := []string{"command-3", "command-4", "command-5"}
	if !reflect.DeepEqual(h.Entries(), want) {
		t.Errorf("Entries = %v, want %v", h.Entries(), want)
	}
	if h.Len() != 3 {
		t.Errorf("Len = %d, want 3", h.Len())
	}
}

func TestHistorySearchCaseSensitive(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history"), 10)
	h.Add("agent spawn Researcher")
	h.Add("task create research analyze")
	h.Add("memory list")

	if got := h.Search("research"); !reflect.DeepEqual(got, []string{"task create research analyze"}) {
		t.Errorf("Search(research) = %v", got)
	}
	if got := h.Search("Researcher"); !reflect.DeepEqual(got, []string{"agent spawn Researcher"}) {
		t.Errorf("Search(Researcher) = %v", got)
	}
	if got := h.Search("absent"); got != nil {
		t.Errorf("Search(absent) = %v, want nil", got)
	}
}

func TestHistorySaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")

	h := NewHistory(path, 10)
	h.Add("agent list")
	h.Add("task list")
	if err := h.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := NewHistory(path, 10)
	if !reflect.DeepEqual(reloaded.Entries(), h.Entries()) {
		t.Errorf("reloaded = %v, want %v", reloaded.Entries(), h.Entries())
	}
}

func TestHistoryLoadAppliesCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	var content string
	for i := 1; i <= 10; i++ {
		content += fmt.Sprintf("command-%d\n", i)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	h := NewHistory(path, 4)
	want := []string{"command-7", "command-8", "command-9", "command-10"}
	if !reflect.DeepEqual(h.Entries(), want) {
		t.Errorf("Entries = %v, want %v", h.Entries(), want)
	}
}

func TestHistoryPersistsOnAdd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path, 10)
	h.Add("agent list")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("history file should exist after Add: %v", err)
	}
	if string(data) != "agent list\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestHistoryAddFailSoft(t *testing.T) {
	// Unwritable path: Add must still record in memory and not panic.
	h := NewHistory(filepath.Join(t.TempDir(), "missing-dir", "history"), 10)
	h.Add("agent list")
	if h.Len() != 1 {
		t.Errorf("Len = %d, want 1", h.Len())
	}
}

func TestHistoryMissingFileStartsEmpty(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "nope", "history"), 10)
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}

func TestHistoryClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path, 10)
	h.Add("agent list")
	if err := h.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := h.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len after clear = %d, want 0", h.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("file should be truncated, got %q", data)
	}
}
