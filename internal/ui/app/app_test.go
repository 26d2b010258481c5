package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/ui"
	"github.com/rovshanmuradov/hyperbet/internal/ui/router"
)

type snapshotMsg struct{ n int }

type fakeScreen struct {
	name      string
	snapshots []int
	width     int
}

func (f *fakeScreen) Init() tea.Cmd { return nil }

func (f *fakeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if m, ok := msg.(snapshotMsg); ok {
		f.snapshots = append(f.snapshots, m.n)
	}
	return f, nil
}

func (f *fakeScreen) View() string              { return f.name }
func (f *fakeScreen) SetSize(width, height int) { f.width = width }

func TestAppModelForwardsBusMessages(t *testing.T) {
	root := &fakeScreen{name: "bet"}
	sender := ui.NewUpdateSender(4, zap.NewNop())
	defer sender.Close()

	m := NewAppModel(router.New(root, nil), sender)
	require.NotNil(t, m.Init())

	sender.SendUpdate(snapshotMsg{n: 1})
	msg := sender.Listen()()
	bus, ok := msg.(ui.BusMsg)
	require.True(t, ok)

	_, cmd := m.Update(bus)
	assert.Equal(t, []int{1}, root.snapshots)
	assert.NotNil(t, cmd, "listen is re-armed")
}

func TestAppModelWindowSize(t *testing.T) {
	root := &fakeScreen{name: "bet"}
	m := NewAppModel(router.New(root, nil), nil)
	assert.Equal(t, "Initializing...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, root.width)
	assert.Equal(t, "bet", m.View())
}

func TestAppModelCtrlC(t *testing.T) {
	m := NewAppModel(router.New(&fakeScreen{}, nil), nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppModelNavigation(t *testing.T) {
	root := &fakeScreen{name: "bet"}
	logs := &fakeScreen{name: "logs"}
	m := NewAppModel(router.New(root, map[ui.Route]router.Factory{
		ui.RouteLogs: func() router.Screen { return logs },
	}), nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m.Update(ui.RouterMsg{To: ui.RouteLogs})
	assert.Equal(t, "logs", m.View())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "bet", m.View())
}
