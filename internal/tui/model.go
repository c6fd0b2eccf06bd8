package tui

import (
	"context"
	"fmt"
	"strings"

	"matchsync-server/internal/backend"
	"matchsync-server/internal/domain"
	"matchsync-server/internal/resolver"
	"matchsync-server/internal/store"
	"matchsync-server/internal/suggest"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode is which input surface currently owns the keyboard.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSuggest
	ModeSearch
)

// SolutionCommittedMsg arrives when the solution window commits a new group;
// it triggers the suggestion flow.
type SolutionCommittedMsg struct {
	GroupID    string
	Name       string
	DocumentID string
	PageIndex  int
}

// SyncStatusMsg carries the resolver's latest observation into the view.
type SyncStatusMsg domain.SyncStatus

type linkResultMsg struct {
	err error
}

// Model is the keyboard-driven matching loop: browse the unlinked problems,
// act on suggestions, or search manually. It only reads store selectors and
// issues store commands; remote propagation runs as background commands.
type Model struct {
	width  int
	height int

	store    *store.Store
	engine   *suggest.Engine
	resolver *resolver.Resolver
	client   *backend.Client

	sessionID  string
	mode       Mode
	suggestion *domain.MatchSuggestion

	searchInput textinput.Model
	filtered    []*domain.GroupRef
	highlighted int

	syncStatus domain.SyncStatus
	lastErr    string

	styles Styles
}

func NewModel(s *store.Store, eng *suggest.Engine, res *resolver.Resolver, client *backend.Client, sessionID string) Model {
	si := textinput.New()
	si.Placeholder = "Filter by number or name..."
	si.CharLimit = 60
	si.Width = 40

	return Model{
		store:       s,
		engine:      eng,
		resolver:    res,
		client:      client,
		sessionID:   sessionID,
		mode:        ModeBrowse,
		searchInput: si,
		syncStatus:  domain.SyncUnknown,
		styles:      DefaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.FocusMsg:
		if m.resolver != nil {
			m.resolver.OnFocus()
		}
		return m, nil

	case SolutionCommittedMsg:
		sug, ok := m.engine.Suggest(msg.GroupID, msg.Name, msg.DocumentID, msg.PageIndex)
		if !ok {
			// Nothing to match; stay where we are.
			return m, nil
		}
		m.suggestion = sug
		m.mode = ModeSuggest
		return m, nil

	case SyncStatusMsg:
		m.syncStatus = domain.SyncStatus(msg)
		return m, nil

	case linkResultMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		} else {
			m.lastErr = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeSuggest:
		return m.handleSuggestKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		m.store.SelectPrevUnlinked()
	case "down":
		m.store.SelectNextUnlinked()
	case "u", "U":
		if id := m.store.SelectedID(); id != "" && m.store.IsLinked(id) {
			m.store.RemoveLink(id)
			return m, m.pushUnlink(id)
		}
	}
	return m, nil
}

func (m Model) handleSuggestKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		sug := m.suggestion
		m.engine.Accept(sug)
		m.suggestion = nil
		m.mode = ModeBrowse
		return m, m.pushLink(sug.SuggestedProblem.ID, sug)
	case "m", "M":
		m.openSearch()
		return m, nil
	case "esc":
		m.engine.Dismiss(m.suggestion)
		m.suggestion = nil
		m.mode = ModeBrowse
		return m, nil
	case "up":
		m.store.SelectPrevUnlinked()
	case "down":
		m.store.SelectNextUnlinked()
	}
	return m, nil
}

// handleSearchKey owns the keyboard while the text input has focus; only the
// navigation keys are intercepted, everything else is typing.
func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeSearch()
		return m, nil
	case "enter":
		if len(m.filtered) == 0 {
			return m, nil
		}
		picked := m.filtered[m.highlighted]
		sug := m.suggestion
		m.engine.AcceptManual(sug, picked.ID)
		m.suggestion = nil
		m.searchInput.Blur()
		m.mode = ModeBrowse
		return m, m.pushLink(picked.ID, sug)
	case "up":
		if n := len(m.filtered); n > 0 {
			m.highlighted = (m.highlighted - 1 + n) % n
		}
		return m, nil
	case "down":
		if n := len(m.filtered); n > 0 {
			m.highlighted = (m.highlighted + 1) % n
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) openSearch() {
	m.mode = ModeSearch
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.applyFilter()

	// Pre-seed the highlight on the suggested problem.
	if m.suggestion != nil && m.suggestion.SuggestedProblem != nil {
		for i, g := range m.filtered {
			if g.ID == m.suggestion.SuggestedProblem.ID {
				m.highlighted = i
				break
			}
		}
	}
}

func (m *Model) closeSearch() {
	m.searchInput.Blur()
	if m.suggestion != nil {
		m.mode = ModeSuggest
	} else {
		m.mode = ModeBrowse
	}
}

// applyFilter narrows the unlinked problems by problem-number substring or
// case-insensitive display-name substring.
func (m *Model) applyFilter() {
	query := m.searchInput.Value()
	lower := strings.ToLower(query)

	unlinked := m.store.UnlinkedProblems()
	m.filtered = m.filtered[:0]
	for _, g := range unlinked {
		if query == "" ||
			strings.Contains(g.ProblemNumber, query) ||
			strings.Contains(strings.ToLower(g.DisplayName), lower) {
			m.filtered = append(m.filtered, g)
		}
	}

	if m.highlighted >= len(m.filtered) {
		m.highlighted = 0
	}
}

// pushLink propagates a locally committed link to the server in the
// background; the store already holds the optimistic state.
func (m Model) pushLink(problemGroupID string, sug *domain.MatchSuggestion) tea.Cmd {
	if m.client == nil || sug == nil {
		return nil
	}
	client, sessionID := m.client, m.sessionID
	req := &domain.CreateLinkRequest{
		ProblemGroupID:     problemGroupID,
		SolutionGroupID:    sug.SolutionGroupID,
		SolutionDocumentID: sug.SolutionDocumentID,
		SolutionPageIndex:  sug.SolutionPageIndex,
	}
	return func() tea.Msg {
		_, err := client.CreateLink(context.Background(), sessionID, req)
		return linkResultMsg{err: err}
	}
}

func (m Model) pushUnlink(problemGroupID string) tea.Cmd {
	if m.client == nil {
		return nil
	}
	client, sessionID := m.client, m.sessionID
	return func() tea.Msg {
		return linkResultMsg{err: client.RemoveLink(context.Background(), sessionID, problemGroupID)}
	}
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render(" Problem Matching "))
	sb.WriteString("  ")
	sb.WriteString(m.renderStatusLine())
	sb.WriteString("\n\n")

	selected := m.store.SelectedID()
	for _, g := range m.store.Problems() {
		line := g.DisplayName
		switch {
		case g.ID == selected:
			line = m.styles.Selected.Render("> " + line)
		case m.store.IsLinked(g.ID):
			line = m.styles.Linked.Render("  " + line + " ✓")
		default:
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	switch m.mode {
	case ModeSuggest:
		sb.WriteString("\n")
		sb.WriteString(m.renderSuggestion())
	case ModeSearch:
		sb.WriteString("\n")
		sb.WriteString(m.renderSearch())
	}

	if m.lastErr != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.ErrorLine.Render("sync failed: " + m.lastErr))
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderHints())

	return sb.String()
}

func (m Model) renderStatusLine() string {
	progress := m.store.GetProgress()
	status := string(m.syncStatus)
	style, ok := m.styles.Status[status]
	if !ok {
		style = m.styles.Muted
	}
	return fmt.Sprintf("%s  %s",
		m.styles.Muted.Render(fmt.Sprintf("%d/%d linked (%d%%)", progress.Linked, progress.Total, progress.Percent)),
		style.Render(status),
	)
}

func (m Model) renderSuggestion() string {
	if m.suggestion == nil || m.suggestion.SuggestedProblem == nil {
		return ""
	}
	body := fmt.Sprintf("Link %s → %s ?", m.suggestion.SolutionName, m.suggestion.SuggestedProblem.DisplayName)
	return m.styles.Suggest.Render(body)
}

func (m Model) renderSearch() string {
	var sb strings.Builder
	sb.WriteString(m.searchInput.View())
	sb.WriteString("\n")
	for i, g := range m.filtered {
		if i == m.highlighted {
			sb.WriteString(m.styles.Selected.Render("> " + g.DisplayName))
		} else {
			sb.WriteString("  " + g.DisplayName)
		}
		sb.WriteString("\n")
	}
	if len(m.filtered) == 0 {
		sb.WriteString(m.styles.Muted.Render("  no unlinked problems match"))
	}
	return sb.String()
}

func (m Model) renderHints() string {
	switch m.mode {
	case ModeSuggest:
		return m.styles.Muted.Render("[Enter] Accept  [M] Manual  [Esc] Dismiss")
	case ModeSearch:
		return m.styles.Muted.Render("[↑/↓] Move  [Enter] Link  [Esc] Close")
	default:
		return m.styles.Muted.Render("[↑/↓] Navigate  [U] Unlink")
	}
}

// Suggestion exposes the pending suggestion for the program driver.
func (m Model) Suggestion() *domain.MatchSuggestion {
	return m.suggestion
}

func (m Model) CurrentMode() Mode {
	return m.mode
}
