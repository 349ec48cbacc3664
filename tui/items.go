// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielhkuo/featurevotes/models"
)

// featureItem adapts a feature row to bubbles/list.Item
type featureItem struct {
	feature  models.Feature
	inFlight bool
	age      string
}

func (i featureItem) FilterValue() string { return i.feature.Title }

// Single-line delegate: "> ▲ 12  Dark mode · 3 minutes ago"
type featureDelegate struct {
	styles *styles
}

func (d featureDelegate) Height() int                               { return 1 }
func (d featureDelegate) Spacing() int                              { return 0 }
func (d featureDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d featureDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(featureItem)
	if !ok {
		return
	}
	s := d.styles

	votes := s.votes.Render(fmt.Sprintf("▲ %3d", it.feature.Votes))
	title := it.feature.Title
	if it.inFlight {
		votes = s.disabled.Render(fmt.Sprintf("▲ %3d", it.feature.Votes))
		title = s.disabled.Render(title)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = s.selected.Render("> ")
		if !it.inFlight {
			title = s.selected.Render(title)
		}
	}

	fmt.Fprintf(w, "%s%s  %s %s", prefix, votes, title, s.muted.Render("· "+it.age))
}
