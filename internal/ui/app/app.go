// internal/ui/app/app.go
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/hyperbet/internal/ui"
	"github.com/rovshanmuradov/hyperbet/internal/ui/router"
)

// AppModel represents the main TUI application model
type AppModel struct {
	router *router.Router
	sender *ui.UpdateSender
	width  int
	height int
}

// NewAppModel creates the application model. sender may be nil when nothing
// outside the program pushes updates.
func NewAppModel(r *router.Router, sender *ui.UpdateSender) *AppModel {
	return &AppModel{router: r, sender: sender}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Init(), m.listen())
}

func (m *AppModel) listen() tea.Cmd {
	if m.sender == nil {
		return nil
	}
	return m.sender.Listen()
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.BusMsg:
		// сообщение из фоновых горутин: передаём экранам и слушаем дальше
		var cmd tea.Cmd
		m.router, cmd = m.router.Update(msg.Msg)
		return m, tea.Batch(cmd, m.listen())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.router, cmd = m.router.Update(msg)
	return m, cmd
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return m.router.View()
}
