package router

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/hyperbet/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Factory builds a screen for a route.
type Factory func() Screen

// Router manages navigation between screens using a stack-based approach.
// Input goes to the top screen only; every other message reaches the whole
// stack so that screens underneath still see snapshots and tx results.
type Router struct {
	stack   []Screen
	screens map[ui.Route]Factory
	width   int
	height  int
}

// New creates a new router with the initial screen
func New(initialScreen Screen, screens map[ui.Route]Factory) *Router {
	return &Router{
		stack:   []Screen{initialScreen},
		screens: screens,
	}
}

// Init initializes the router
func (r *Router) Init() tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].Init()
}

// Update processes messages and updates the current screen
func (r *Router) Update(msg tea.Msg) (*Router, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.RouterMsg:
		return r, r.Open(msg.To)

	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && r.CanGoBack() {
			r.Pop()
			return r, nil
		}
		return r, r.updateTop(msg)

	case tea.MouseMsg:
		return r, r.updateTop(msg)
	}

	cmds := make([]tea.Cmd, 0, len(r.stack))
	for i, screen := range r.stack {
		updated, cmd := screen.Update(msg)
		r.stack[i] = updated
		cmds = append(cmds, cmd)
	}
	return r, tea.Batch(cmds...)
}

func (r *Router) updateTop(msg tea.Msg) tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	top := len(r.stack) - 1
	updated, cmd := r.stack[top].Update(msg)
	r.stack[top] = updated
	return cmd
}

// View renders the current screen
func (r *Router) View() string {
	if len(r.stack) == 0 {
		return "No screen available"
	}
	return r.stack[len(r.stack)-1].View()
}

// SetSize sets the size for every screen on the stack
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height

	for _, screen := range r.stack {
		screen.SetSize(width, height)
	}
}

// Open pushes the screen registered for route. Unknown routes are ignored.
func (r *Router) Open(route ui.Route) tea.Cmd {
	factory, ok := r.screens[route]
	if !ok {
		return nil
	}
	return r.Push(factory())
}

// Push adds a new screen to the navigation stack
func (r *Router) Push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// Pop removes the current screen from the stack. The screen underneath keeps
// its state and running ticks, so it is not re-initialized.
func (r *Router) Pop() {
	if !r.CanGoBack() {
		return
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Current returns the current screen
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}

// CanGoBack returns true if there are screens to go back to
func (r *Router) CanGoBack() bool {
	return len(r.stack) > 1
}
