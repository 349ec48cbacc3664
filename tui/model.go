// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/featurevotes/featuresync"
	"github.com/danielhkuo/featurevotes/models"
	"github.com/danielhkuo/featurevotes/settings"
)

// Controller is the part of *featuresync.Controller the UI drives.
type Controller interface {
	Trigger(featuresync.Trigger)
	Upvote(id int64)
	ToggleSort()
	DismissError()
}

// Creator submits new features. *client.Client satisfies it.
type Creator interface {
	CreateFeature(ctx context.Context, title string) (models.Feature, error)
}

// Preferences is satisfied by *settings.Store.
type Preferences interface {
	Get() settings.Settings
	SetTheme(theme string) error
	SetReduceHaptics(on bool) error
}

// StateMsg delivers a controller snapshot to the program.
type StateMsg featuresync.State

type createResultMsg struct {
	feature models.Feature
	err     error
}

type screen int

const (
	screenHome screen = iota
	screenNew
	screenSettings
)

const (
	settingTheme = iota
	settingHaptics
	settingCount
)

// Reserved rows around the list: header, error banner, footer.
const chromeHeight = 8

var (
	upvoteKey   = key.NewBinding(key.WithKeys("u", "enter"), key.WithHelp("u", "upvote"))
	sortKey     = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort"))
	refreshKey  = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	newKey      = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new"))
	settingsKey = key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings"))
	dismissKey  = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss"))
	quitKey     = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	suspendKey  = key.NewBinding(key.WithKeys("ctrl+z"))
	backKey     = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	submitKey   = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "create"))
	toggleKey   = key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle"))
	upKey       = key.NewBinding(key.WithKeys("up", "k"))
	downKey     = key.NewBinding(key.WithKeys("down", "j"))
)

// Options wires the model to its collaborators.
type Options struct {
	Controller  Controller
	Creator     Creator
	Preferences Preferences
	// Created is notified after a successful create.
	Created *featuresync.Signal
	Version string
	// Theme used when the preferences leave it unset.
	DefaultTheme string
	Now          func() time.Time
	// Bell receives the terminal bell on upvote.
	Bell   io.Writer
	Logger *slog.Logger
}

type Model struct {
	ctrl    Controller
	creator Creator
	prefs   Preferences
	created *featuresync.Signal
	version string
	now     func() time.Time
	bell    io.Writer
	logger  *slog.Logger

	screen screen
	state  featuresync.State
	list   list.Model
	input  textinput.Model
	styles *styles
	theme  string

	width, height int

	submitting bool
	formErr    string

	settingsCursor int
	settingsErr    string
}

func New(opts Options) Model {
	m := Model{
		ctrl:    opts.Controller,
		creator: opts.Creator,
		prefs:   opts.Preferences,
		created: opts.Created,
		version: opts.Version,
		now:     opts.Now,
		bell:    opts.Bell,
		logger:  opts.Logger,
		state:   featuresync.State{Loading: true, SortMode: models.SortTop},
		width:   80,
		height:  24,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.bell == nil {
		m.bell = io.Discard
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	m.theme = opts.DefaultTheme
	if m.prefs != nil {
		if t := m.prefs.Get().Theme; t != "" {
			m.theme = t
		}
	}
	if m.theme != settings.ThemeLight {
		m.theme = settings.ThemeDark
	}
	st := newStyles(m.theme)
	m.styles = &st

	m.list = list.New(nil, featureDelegate{styles: m.styles}, m.width, m.height-chromeHeight)
	m.list.SetShowTitle(false)
	m.list.SetShowHelp(false)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(false)
	m.list.SetShowPagination(true)
	m.list.KeyMap.Quit.SetEnabled(false)
	m.list.Styles.PaginationStyle = m.styles.help

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.Placeholder = "Describe the feature you'd like to see..."
	m.input.CharLimit = 200

	return m
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("FeatureVotes")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.state = featuresync.State(msg)
		m.syncList()
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, max(msg.Height-chromeHeight, 3))
		m.input.Width = max(msg.Width-10, 10)
		return m, nil
	case tea.FocusMsg:
		return m, m.trigger(featuresync.TriggerFocus)
	case tea.ResumeMsg:
		return m, m.trigger(featuresync.TriggerVisible)
	case createResultMsg:
		return m.createDone(msg)
	}

	switch m.screen {
	case screenNew:
		return m.updateNew(msg)
	case screenSettings:
		return m.updateSettings(msg)
	default:
		return m.updateHome(msg)
	}
}

func (m Model) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, quitKey):
			return m, tea.Quit
		case key.Matches(k, suspendKey):
			return m, tea.Suspend
		case key.Matches(k, upvoteKey):
			return m, m.upvoteSelected()
		case key.Matches(k, sortKey):
			return m, m.async(m.ctrl.ToggleSort)
		case key.Matches(k, refreshKey):
			return m, m.trigger(featuresync.TriggerManual)
		case key.Matches(k, dismissKey):
			return m, m.async(m.ctrl.DismissError)
		case key.Matches(k, newKey):
			m.screen = screenNew
			m.formErr = ""
			m.input.SetValue("")
			return m, m.input.Focus()
		case key.Matches(k, settingsKey):
			m.screen = screenSettings
			m.settingsErr = ""
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateNew(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case k.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case key.Matches(k, backKey):
			if m.submitting {
				return m, nil
			}
			m.screen = screenHome
			m.formErr = ""
			m.input.Blur()
			return m, nil
		case key.Matches(k, submitKey):
			title := strings.TrimSpace(m.input.Value())
			if title == "" || m.submitting {
				return m, nil
			}
			m.submitting = true
			m.formErr = ""
			return m, m.create(title)
		}
	}

	if m.submitting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case k.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(k, backKey), key.Matches(k, settingsKey):
		m.screen = screenHome
		return m, nil
	case key.Matches(k, upKey):
		m.settingsCursor = (m.settingsCursor + settingCount - 1) % settingCount
	case key.Matches(k, downKey):
		m.settingsCursor = (m.settingsCursor + 1) % settingCount
	case key.Matches(k, toggleKey):
		m.toggleSetting()
	}
	return m, nil
}

func (m *Model) toggleSetting() {
	if m.prefs == nil {
		return
	}
	m.settingsErr = ""

	switch m.settingsCursor {
	case settingTheme:
		next := settings.ThemeDark
		if m.theme == settings.ThemeDark {
			next = settings.ThemeLight
		}
		if err := m.prefs.SetTheme(next); err != nil {
			m.logger.Error("failed to save settings", "error", err)
			m.settingsErr = "Failed to save settings"
			return
		}
		m.theme = next
		*m.styles = newStyles(next)
		m.list.Styles.PaginationStyle = m.styles.help
	case settingHaptics:
		on := !m.prefs.Get().ReduceHaptics
		if err := m.prefs.SetReduceHaptics(on); err != nil {
			m.logger.Error("failed to save settings", "error", err)
			m.settingsErr = "Failed to save settings"
		}
	}
}

func (m Model) upvoteSelected() tea.Cmd {
	it, ok := m.list.SelectedItem().(featureItem)
	if !ok || it.inFlight {
		return nil
	}
	id := it.feature.ID
	cmds := []tea.Cmd{m.async(func() { m.ctrl.Upvote(id) })}
	if m.prefs == nil || !m.prefs.Get().ReduceHaptics {
		bell := m.bell
		cmds = append(cmds, func() tea.Msg {
			io.WriteString(bell, "\a")
			return nil
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) create(title string) tea.Cmd {
	creator := m.creator
	return func() tea.Msg {
		f, err := creator.CreateFeature(context.Background(), title)
		return createResultMsg{feature: f, err: err}
	}
}

func (m Model) createDone(msg createResultMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.formErr = msg.err.Error()
		return m, nil
	}

	m.logger.Info("feature created", "feature_id", msg.feature.ID)
	m.formErr = ""
	m.input.SetValue("")
	m.input.Blur()
	m.screen = screenHome

	sig := m.created
	if sig == nil {
		return m, nil
	}
	return m, func() tea.Msg {
		sig.Notify()
		return nil
	}
}

// trigger and async run controller calls off the update loop so a busy
// controller can never stall rendering.
func (m Model) trigger(t featuresync.Trigger) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Trigger(t)
		return nil
	}
}

func (m Model) async(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

// syncList rebuilds the list rows and keeps the cursor on the same feature.
func (m *Model) syncList() {
	var selectedID int64 = -1
	if it, ok := m.list.SelectedItem().(featureItem); ok {
		selectedID = it.feature.ID
	}

	now := m.now()
	sorted := m.state.Sorted()
	items := make([]list.Item, len(sorted))
	selected := -1
	for i, f := range sorted {
		items[i] = featureItem{
			feature:  f,
			inFlight: m.state.IsInFlight(f.ID),
			age:      humanize.RelTime(f.CreatedAt, now, "ago", "from now"),
		}
		if f.ID == selectedID {
			selected = i
		}
	}
	m.list.SetItems(items)
	if selected >= 0 {
		m.list.Select(selected)
	}
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenNew:
		body = m.viewNew()
	case screenSettings:
		body = m.viewSettings()
	default:
		body = m.viewHome()
	}
	return m.styles.panel.Render(body)
}

func (m Model) viewHome() string {
	s := m.styles
	var b strings.Builder

	header := s.title.Render("FeatureVotes")
	sortLabel := s.muted.Render("sort: ") + s.accent.Render(m.state.SortMode)
	b.WriteString(header + "   " + sortLabel + "\n\n")

	if m.state.LastError != "" {
		b.WriteString(s.errorBox.Render(m.state.LastError+"  "+s.muted.Render("x dismiss")) + "\n")
	}

	switch {
	case m.state.Loading:
		b.WriteString(s.muted.Render("Loading features...") + "\n")
	case len(m.state.Features) == 0:
		b.WriteString(s.title.Render("No features yet") + "\n")
		b.WriteString(s.muted.Render("Be the first to suggest one.") + "  " + s.accent.Render("n add feature") + "\n")
	default:
		b.WriteString(m.list.View() + "\n")
	}

	footer := helpLine(s, upvoteKey, sortKey, refreshKey, newKey, settingsKey, quitKey)
	if !m.state.LastSynced.IsZero() {
		footer += "\n" + s.help.Render("synced "+humanize.RelTime(m.state.LastSynced, m.now(), "ago", "from now"))
	}
	b.WriteString("\n" + footer)
	return b.String()
}

func (m Model) viewNew() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render("New Feature") + "\n\n")
	if m.formErr != "" {
		b.WriteString(s.errorBox.Render(m.formErr) + "\n")
	}
	b.WriteString(s.muted.Render("Feature Title") + "\n")
	b.WriteString(m.input.View() + "\n\n")

	switch {
	case m.submitting:
		b.WriteString(s.muted.Render("Creating..."))
	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(s.disabled.Render("enter create") + s.help.Render(" • esc cancel"))
	default:
		b.WriteString(helpLine(s, submitKey, backKey))
	}
	return b.String()
}

func (m Model) viewSettings() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render("Settings") + "\n\n")
	if m.settingsErr != "" {
		b.WriteString(s.errorBox.Render(m.settingsErr) + "\n")
	}

	var reduce bool
	if m.prefs != nil {
		reduce = m.prefs.Get().ReduceHaptics
	}
	rows := []struct{ name, desc, value string }{
		{"Theme", "Switch between light and dark mode", m.theme},
		{"Reduce Haptics", "Silence the bell on upvote", onOff(reduce)},
	}
	for i, r := range rows {
		prefix := "  "
		name := r.name
		if i == m.settingsCursor {
			prefix = s.selected.Render("> ")
			name = s.selected.Render(name)
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, name, s.accent.Render("["+r.value+"]"))
		b.WriteString("    " + s.muted.Render(r.desc) + "\n")
	}

	b.WriteString("\n" + s.muted.Render("FeatureVotes "+m.version) + "\n\n")
	b.WriteString(helpLine(s, toggleKey, backKey))
	return b.String()
}

func helpLine(s *styles, bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return s.help.Render(strings.Join(parts, " • "))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

var _ tea.Model = Model{}
