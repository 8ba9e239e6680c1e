// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.

// Purple - banner and branding
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - prompt, info, command names
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - success, connected state
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - warnings, connecting state
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Rose - errors, disconnected state
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// TextSecondary - dimmed secondary text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9399B2"}

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true)

	connectedStyle    = lipgloss.NewStyle().Foreground(Emerald)
	connectingStyle   = lipgloss.NewStyle().Foreground(Amber)
	disconnectedStyle = lipgloss.NewStyle().Foreground(Rose)
)
