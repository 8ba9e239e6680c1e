// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "strings"

// =============================================================================
// TOKENIZER
// =============================================================================

// Tokenize splits an input line into tokens on spaces and tabs, honoring
// double- and single-quoted spans. Quoted content is preserved verbatim,
// including whitespace and the other quote character; the delimiting
// quotes themselves are stripped. There is no escape syntax: a backslash
// is an ordinary character. An unterminated quote is tolerated, the
// remainder of the line becomes the final token.
//
//	Tokenize(`task create research "analyze the data"`)
//	  -> ["task", "create", "research", "analyze the data"]
func Tokenize(line string) []string {
	var tokens []string
	var current strings.Builder
	inToken := false
	inQuote := false
	var quote rune

	flush := func() {
		if inToken {
			tokens = append(tokens, current.String())
			current.Reset()
			inToken = false
		}
	}

	for _, ch := range line {
		switch {
		case inQuote:
			if ch == quote {
				inQuote = false
			} else {
				current.WriteRune(ch)
			}
		case ch == '"' || ch == '\'':
			inQuote = true
			quote = ch
			inToken = true
		case ch == ' ' || ch == '\t':
			flush()
		default:
			current.WriteRune(ch)
			inToken = true
		}
	}
	flush()

	return tokens
}
