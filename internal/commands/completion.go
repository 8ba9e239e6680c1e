// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// TAB COMPLETION
// =============================================================================

// subcommands is the static second-segment completion vocabulary. The
// first segment completes against the live registry; deeper segments
// complete against these fixed tables, which describe the orchestrator
// surface rather than tracking registration.
var subcommands = map[string][]string{
	"agent":    {"info", "list", "spawn", "terminate"},
	"task":     {"assign", "cancel", "create", "list", "status"},
	"memory":   {"delete", "export", "get", "import", "list", "search", "store"},
	"session":  {"attach", "detach", "kill", "list"},
	"workflow": {"list", "run", "status", "stop"},
	"monitor":  {"start", "status", "stop"},
	"history":  {"--search", "clear"},
	"status":   {"history", "orchestrator", "shell"},
}

// subsubcommands completes the third segment for the few operations
// with a small fixed argument set.
var subsubcommands = map[string][]string{
	"agent spawn": {"analyst", "coder", "coordinator", "researcher"},
	"task create": {"analysis", "implementation", "research"},
}

// Completer produces tab-completion candidates for the shell. The
// first-word vocabulary is supplied live so registry changes and shell
// built-ins are both visible.
type Completer struct {
	vocabulary func() []string
}

// NewCompleter creates a completer over the given first-word vocabulary
// provider. The provider is called on every completion request.
func NewCompleter(vocabulary func() []string) *Completer {
	return &Completer{vocabulary: vocabulary}
}

// Complete returns the candidate completions for line together with the
// fragment they replace (the partial final word, empty when the line
// ends in whitespace). Candidates are sorted and share the fragment as
// prefix.
func (c *Completer) Complete(line string) ([]string, string) {
	trailing := strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t")
	words := Tokenize(line)

	var fragment string
	var completed []string
	if trailing || len(words) == 0 {
		completed = words
	} else {
		fragment = words[len(words)-1]
		completed = words[:len(words)-1]
	}

	var universe []string
	switch len(completed) {
	case 0:
		universe = c.vocabulary()
	case 1:
		universe = subcommands[completed[0]]
	case 2:
		universe = subsubcommands[completed[0]+" "+completed[1]]
	}

	var candidates []string
	for _, word := range universe {
		if strings.HasPrefix(word, fragment) {
			candidates = append(candidates, word)
		}
	}
	sort.Strings(candidates)
	return candidates, fragment
}
