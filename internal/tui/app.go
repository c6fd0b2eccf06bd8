package tui

import tea "github.com/charmbracelet/bubbletea"

// App adapts Model to the tea.Model interface and owns program-level keys
// (quit) so the matching model never has to.
type App struct {
	model Model
}

func NewApp(m Model) App {
	return App{model: m}
}

func (a App) Init() tea.Cmd {
	return a.model.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			// Quit only when no text input owns the keyboard.
			if a.model.CurrentMode() != ModeSearch {
				return a, tea.Quit
			}
		}
	}

	m, cmd := a.model.Update(msg)
	a.model = m
	return a, cmd
}

func (a App) View() string {
	return a.model.View()
}
