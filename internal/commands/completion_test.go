// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"reflect"
	"testing"
)

func staticVocabulary() []string {
	return []string{"agent", "clear", "exit", "help", "history", "memory", "status", "task"}
}

func TestCompleterFirstWord(t *testing.T) {
	c := NewCompleter(staticVocabulary)

	tests := []struct {
		name         string
		line         string
		want         []string
		wantFragment string
	}{
		{"empty line offers everything", "", staticVocabulary(), ""},
		{"unique prefix", "ag", []string{"agent"}, "ag"},
		{"shared prefix", "he", []string{"help"}, "he"},
		{"multiple matches", "h", []string{"help", "history"}, "h"},
		{"no match", "zz", nil, "zz"},
		{"exact word still matches itself", "exit", []string{"exit"}, "exit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fragment := c.Complete(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.line, got, tt.want)
			}
			if fragment != tt.wantFragment {
				t.Errorf("Complete(%q) fragment = %q, want %q", tt.line, fragment, tt.wantFragment)
			}
		})
	}
}

func TestCompleterSubcommands(t *testing.T) {
	c := NewCompleter(staticVocabulary)

	tests := []struct {
		name         string
		line         string
		want         []string
		wantFragment string
	}{
		{
			"trailing space offers all subcommands",
			"agent ",
			[]string{"info", "list", "spawn", "terminate"},
			"",
		},
		{"subcommand prefix", "agent sp", []string{"spawn"}, "sp"},
		{"task prefix", "task c", []string{"cancel", "create"}, "c"},
		{
			"memory subcommands",
			"memory ",
			[]string{"delete", "export", "get", "import", "list", "search", "store"},
			"",
		},
		{
			"status components",
			"status ",
			[]string{"history", "orchestrator", "shell"},
			"",
		},
		{"unknown first word has no table", "frobnicate ", nil, ""},
		{
			"third segment fixed set",
			"agent spawn ",
			[]string{"analyst", "coder", "coordinator", "researcher"},
			"",
		},
		{"third segment prefix", "task create re", []string{"research"}, "re"},
		{"too deep yields nothing", "agent spawn researcher ", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fragment := c.Complete(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.line, got, tt.want)
			}
			if fragment != tt.wantFragment {
				t.Errorf("Complete(%q) fragment = %q, want %q", tt.line, fragment, tt.wantFragment)
			}
		})
	}
}

func TestCompleterUsesLiveVocabulary(t *testing.T) {
	vocab := []string{"alpha"}
	c := NewCompleter(func() []string { return vocab })

	got, _ := c.Complete("a")
	if !reflect.DeepEqual(got, []string{"alpha"}) {
		t.Fatalf("Complete = %v, want [alpha]", got)
	}

	vocab = []string{"alpha", "apex"}
	got, _ = c.Complete("a")
	if !reflect.DeepEqual(got, []string{"alpha", "apex"}) {
		t.Errorf("completer should observe vocabulary changes, got %v", got)
	}
}
