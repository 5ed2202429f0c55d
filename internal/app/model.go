package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/nguyentantai21042004/call-companion/internal/capture"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/internal/panel"
	"github.com/nguyentantai21042004/call-companion/internal/room"
	"github.com/nguyentantai21042004/call-companion/internal/session"
	"github.com/nguyentantai21042004/call-companion/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Tab selects the insight view.
type Tab int

const (
	TabSummary Tab = iota
	TabActions
	TabTalk
)

var tabTitles = []string{"Summary", "Actions", "Talk"}

// Deps are the components the model drives.
type Deps struct {
	Session  session.Bootstrapper
	Panel    panel.Panel
	Room     room.Opener
	AutoOpen bool
	// Speaker labels the live utterance.
	Speaker string
	Logger  logger.Logger
}

// Model is the root bubbletea model for the companion panel.
type Model struct {
	deps Deps

	session session.State
	snap    panel.Snapshot

	tab        Tab
	spinner    spinner.Model
	roomOpened bool
	status     string

	width  int
	height int
}

// New creates a Model in the Loading state.
func New(deps Deps) Model {
	if deps.Speaker == "" {
		deps.Speaker = "Me"
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.SpinnerStyle

	return Model{
		deps:    deps,
		session: session.State{Status: session.Loading},
		snap:    deps.Panel.Snapshot(),
		spinner: sp,
	}
}

// Init starts the session bootstrap and subscribes to panel changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		bootstrapCmd(m.deps.Session),
		waitForChangeCmd(m.deps.Panel),
		m.spinner.Tick,
	)
}

func bootstrapCmd(b session.Bootstrapper) tea.Cmd {
	return func() tea.Msg {
		return SessionResolvedMsg{State: b.Run(context.Background())}
	}
}

// waitForChangeCmd blocks until the panel signals a change.
func waitForChangeCmd(p panel.Panel) tea.Cmd {
	return func() tea.Msg {
		<-p.Changes()
		return PanelChangedMsg{Snapshot: p.Snapshot()}
	}
}

func toggleCmd(p panel.Panel) tea.Cmd {
	return func() tea.Msg {
		return ToggleResultMsg{Err: p.Toggle(context.Background())}
	}
}

func refreshCmd(p panel.Panel) tea.Cmd {
	return func() tea.Msg {
		p.Refresh(context.Background())
		return RefreshDoneMsg{}
	}
}

func openRoomCmd(o room.Opener, roomURL string) tea.Cmd {
	return func() tea.Msg {
		return RoomOpenedMsg{Err: o.Open(context.Background(), roomURL)}
	}
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionResolvedMsg:
		m.session = msg.State
		if msg.State.Status == session.Ready && m.deps.AutoOpen && m.deps.Room != nil {
			return m, openRoomCmd(m.deps.Room, msg.State.RoomURL)
		}
		return m, nil

	case PanelChangedMsg:
		m.snap = msg.Snapshot
		return m, waitForChangeCmd(m.deps.Panel)

	case ToggleResultMsg:
		m.snap = m.deps.Panel.Snapshot()
		if msg.Err != nil && !errors.Is(msg.Err, capture.ErrUnsupported) {
			m.deps.Logger.Warn(context.Background(), "Toggle listening failed: %v", msg.Err)
		}
		return m, nil

	case RoomOpenedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("Could not open the video room: %v", msg.Err)
			return m, nil
		}
		m.roomOpened = true
		m.status = ""
		return m, nil

	case RefreshDoneMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == KeyQuit || key == KeyCtrlC {
		return m, tea.Quit
	}
	if m.session.Status != session.Ready {
		return m, nil
	}

	switch key {
	case KeySpace, "space":
		if !m.snap.Supported {
			return m, nil
		}
		return m, toggleCmd(m.deps.Panel)
	case KeyTab:
		m.tab = (m.tab + 1) % Tab(len(tabTitles))
	case KeyShiftTab:
		m.tab = (m.tab + Tab(len(tabTitles)) - 1) % Tab(len(tabTitles))
	case KeySummary:
		m.tab = TabSummary
	case KeyActions:
		m.tab = TabActions
	case KeyTalk:
		m.tab = TabTalk
	case KeyRefresh:
		if len(m.snap.Transcript) > 0 {
			return m, refreshCmd(m.deps.Panel)
		}
	case KeyOpenRoom:
		if m.deps.Room != nil {
			return m, openRoomCmd(m.deps.Room, m.session.RoomURL)
		}
	}
	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	switch m.session.Status {
	case session.Loading:
		return "\n  " + m.spinner.View() + " Connecting to video session...\n"
	case session.Failed:
		return m.errorView()
	}

	var b strings.Builder
	b.WriteString(m.roomView())
	b.WriteString("\n")
	b.WriteString(m.boxed(m.insightsView()))
	b.WriteString("\n")
	b.WriteString(m.boxed(m.transcriptView()))
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) errorView() string {
	msg := m.session.Message
	if msg == "" {
		msg = "The video room URL could not be loaded."
	}
	return "\n  " + ui.ErrorTitleStyle.Render("Connection Error") + "\n\n  " + ui.ErrorTextStyle.Render(msg) + "\n\n  " +
		ui.FooterKeyStyle.Render("q") + " " + ui.FooterDescStyle.Render("quit") + "\n"
}

func (m Model) roomView() string {
	line := ui.TitleStyle.Render("Video room") + " " + ui.DimStyle.Render(m.session.RoomURL)
	switch {
	case m.status != "":
		line += "\n" + ui.ErrorTextStyle.Render(m.status)
	case m.roomOpened:
		line += " " + ui.DimStyle.Render("(opened in browser)")
	}
	return line
}

func (m Model) boxed(content string) string {
	style := ui.PanelStyle
	if m.width > 4 {
		style = style.Width(m.width - 2)
	}
	return style.Render(content)
}

func (m Model) insightsView() string {
	ins := m.snap.Insights
	if m.snap.Generating && ins == nil {
		return m.spinner.View() + " Generating initial insights..."
	}
	if ins == nil {
		return ui.DimStyle.Render("No insights available. Start listening to the conversation.")
	}

	header := ui.TitleStyle.Render("AI Assistant")
	if m.snap.Generating {
		header += " " + m.spinner.View()
	}
	tabs := make([]string, 0, len(tabTitles))
	for i, title := range tabTitles {
		if Tab(i) == m.tab {
			tabs = append(tabs, ui.ActiveTabStyle.Render(title))
		} else {
			tabs = append(tabs, ui.TabStyle.Render(title))
		}
	}
	header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", strings.Join(tabs, " "))

	var body string
	switch m.tab {
	case TabActions:
		body = ui.TitleStyle.Render("Action Items") + "\n" + bullets(ins.ActionItems)
	case TabTalk:
		body = ui.TitleStyle.Render("Talking Points") + "\n" + bullets(ins.TalkingPoints)
	default:
		body = ui.TitleStyle.Render("Summary") + "\n" + ins.Summary
	}
	return header + "\n\n" + body
}

func bullets(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "  • "+item)
	}
	return strings.Join(lines, "\n")
}

func (m Model) transcriptView() string {
	header := ui.TitleStyle.Render("Live Transcript") + "  " + m.toggleView()
	if m.snap.LastError != nil {
		header += "\n" + ui.ErrorTextStyle.Render(m.snap.LastError.Error())
	}

	if len(m.snap.Transcript) == 0 && m.snap.Utterance == "" {
		hint := "Press Space to start listening."
		if !m.snap.Supported {
			hint = m.snap.UnsupportedReason
		}
		return header + "\n\n" + ui.DimStyle.Render(hint)
	}

	var lines []string
	for _, e := range m.snap.Transcript {
		lines = append(lines, ui.SpeakerStyle.Render(e.Speaker)+" "+ui.TimestampStyle.Render(e.Timestamp))
		lines = append(lines, e.Text)
	}
	if m.snap.Utterance != "" {
		lines = append(lines, ui.SpeakerStyle.Render(m.deps.Speaker)+" "+ui.TimestampStyle.Render("now"))
		lines = append(lines, ui.UtteranceStyle.Render(m.snap.Utterance))
	}

	// keep the newest lines in view
	if limit := m.transcriptLines(); limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return header + "\n\n" + strings.Join(lines, "\n")
}

func (m Model) transcriptLines() int {
	if m.height == 0 {
		return 0
	}
	n := m.height/2 - 4
	if n < 4 {
		n = 4
	}
	return n
}

func (m Model) toggleView() string {
	switch {
	case !m.snap.Supported:
		return ui.UnsupportedBadgeStyle.Render("Speech recognition not supported")
	case m.snap.Capture == capture.Listening:
		return ui.ListeningStyle.Render("● Listening...")
	default:
		return ui.IdleStyle.Render("Start Listening")
	}
}

func (m Model) footerView() string {
	keys := []struct{ key, desc string }{
		{"space", "listen"},
		{"tab", "switch tab"},
		{"r", "refresh"},
		{"o", "open room"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, ui.FooterKeyStyle.Render(k.key)+" "+ui.FooterDescStyle.Render(k.desc))
	}
	return strings.Join(parts, "  ")
}
