// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   \t  ", nil},
		{"single word", "help", []string{"help"}},
		{"simple words", "agent list", []string{"agent", "list"}},
		{"collapses whitespace", "agent   list\t  --all", []string{"agent", "list", "--all"}},
		{"leading and trailing space", "  status  ", []string{"status"}},
		{
			"double quoted span",
			`task create research "analyze the data"`,
			[]string{"task", "create", "research", "analyze the data"},
		},
		{
			"single quoted span",
			`echo 'hello world'`,
			[]string{"echo", "hello world"},
		},
		{
			"other quote verbatim inside span",
			`echo "it's fine"`,
			[]string{"echo", "it's fine"},
		},
		{
			"single quotes protecting doubles",
			`echo 'say "hi"'`,
			[]string{"echo", `say "hi"`},
		},
		{
			"quote glued to word",
			`memory store key"multi word value"`,
			[]string{"memory", "store", "keymulti word value"},
		},
		{"empty quoted token", `echo ""`, []string{"echo", ""}},
		{
			"unterminated quote takes rest of line",
			`task create "unfinished descr`,
			[]string{"task", "create", "unfinished descr"},
		},
		{
			"backslash is an ordinary character",
			`echo a\b "c\d"`,
			[]string{"echo", `a\b`, `c\d`},
		},
		{
			"tabs inside quotes preserved",
			"echo \"a\tb\"",
			[]string{"echo", "a\tb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}
