// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/danielhkuo/featurevotes/settings"
)

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	accent   lipgloss.Style
	votes    lipgloss.Style
	disabled lipgloss.Style
	selected lipgloss.Style
	errorBox lipgloss.Style
	help     lipgloss.Style
	panel    lipgloss.Style
}

// newStyles builds the palette for a theme. Anything but light gets dark.
func newStyles(theme string) styles {
	var (
		fg, muted, accent, errFg, border lipgloss.Color
	)
	if theme == settings.ThemeLight {
		fg, muted, accent, errFg, border = "235", "244", "27", "160", "250"
	} else {
		fg, muted, accent, errFg, border = "255", "245", "75", "203", "8"
	}

	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(fg),
		muted:    lipgloss.NewStyle().Foreground(muted),
		accent:   lipgloss.NewStyle().Foreground(accent),
		votes:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		disabled: lipgloss.NewStyle().Faint(true),
		selected: lipgloss.NewStyle().Bold(true).Foreground(accent),
		errorBox: lipgloss.NewStyle().
			Foreground(errFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errFg).
			Padding(0, 1),
		help: lipgloss.NewStyle().Faint(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}

// resolveTheme maps an unset theme to the terminal's background.
func resolveTheme(theme string) string {
	if theme == settings.ThemeLight || theme == settings.ThemeDark {
		return theme
	}
	if lipgloss.HasDarkBackground() {
		return settings.ThemeDark
	}
	return settings.ThemeLight
}
