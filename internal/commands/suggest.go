// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "sort"

// =============================================================================
// DID-YOU-MEAN SUGGESTIONS
// =============================================================================

// maxSuggestions caps how many alternatives an unknown command offers.
const maxSuggestions = 3

// Suggest returns up to maxSuggestions candidates resembling input,
// using character membership: a candidate qualifies when at least
// min(2, len(input)/2) distinct characters of the input occur in it.
// Matching is deliberately loose; candidates come back sorted so the
// output is stable.
func Suggest(input string, candidates []string) []string {
	if input == "" {
		return nil
	}

	threshold := len(input) / 2
	if threshold > 2 {
		threshold = 2
	}

	inputChars := make(map[rune]bool, len(input))
	for _, ch := range input {
		inputChars[ch] = true
	}

	var matches []string
	for _, candidate := range candidates {
		if candidate == input {
			continue
		}
		candidateChars := make(map[rune]bool, len(candidate))
		for _, ch := range candidate {
			candidateChars[ch] = true
		}
		shared := 0
		for ch := range inputChars {
			if candidateChars[ch] {
				shared++
			}
		}
		if shared >= threshold {
			matches = append(matches, candidate)
		}
	}

	sort.Strings(matches)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}
