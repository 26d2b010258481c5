package screen

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/hyperbet/internal/logger"
)

type fakeLogSource struct {
	entries []logger.LogEntry
}

func (f *fakeLogSource) GetRecentLogs(limit int) []logger.LogEntry {
	if limit > 0 && limit < len(f.entries) {
		return f.entries[len(f.entries)-limit:]
	}
	return f.entries
}

func (f *fakeLogSource) GetStats() (uint64, uint64) { return uint64(len(f.entries)), 0 }

func TestLogsScreenFilter(t *testing.T) {
	at := time.Date(2023, 3, 20, 10, 0, 0, 0, time.UTC)
	src := &fakeLogSource{entries: []logger.LogEntry{
		{Timestamp: at, Level: "debug", Message: "Refreshed"},
		{Timestamp: at, Level: "info", Logger: "tracker", Message: "Transaction sent", Fields: map[string]interface{}{"method": "approve"}},
		{Timestamp: at, Level: "error", Message: "Transaction not confirmed"},
	}}
	s := NewLogsScreen(src, 0)
	s.SetSize(120, 30)

	view := s.View()
	assert.Contains(t, view, "Refreshed")
	assert.Contains(t, view, "[tracker] Transaction sent")
	assert.Contains(t, view, "method=approve")
	assert.Contains(t, view, "3 entries")

	// debug -> info
	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	require.Len(t, s.visible(), 2)
	assert.NotContains(t, s.View(), "Refreshed")

	// warn, error
	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	require.Len(t, s.visible(), 1)

	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	assert.Len(t, s.visible(), 3)
}

func TestLogsScreenReloadsOnTick(t *testing.T) {
	src := &fakeLogSource{}
	s := NewLogsScreen(src, 10)
	s.SetSize(80, 20)
	assert.Contains(t, s.View(), "No log entries yet")

	src.entries = append(src.entries, logger.LogEntry{Level: "warn", Message: "RPC node deactivated"})
	_, cmd := s.Update(logsTickMsg{seq: s.seq, at: time.Now()})
	assert.NotNil(t, cmd)
	assert.Contains(t, s.View(), "RPC node deactivated")
}

func TestLogsScreenIgnoresOtherScreensTicks(t *testing.T) {
	src := &fakeLogSource{}
	closed := NewLogsScreen(src, 10)
	s := NewLogsScreen(src, 10)
	s.SetSize(80, 20)
	require.NotEqual(t, closed.seq, s.seq)

	src.entries = append(src.entries, logger.LogEntry{Level: "info", Message: "Snapshot refreshed"})

	// a tick armed by a screen that was popped must not start a second loop
	_, cmd := s.Update(logsTickMsg{seq: closed.seq, at: time.Now()})
	assert.Nil(t, cmd)
	assert.NotContains(t, s.View(), "Snapshot refreshed")

	_, cmd = s.Update(logsTickMsg{seq: s.seq, at: time.Now()})
	assert.NotNil(t, cmd)
	assert.Contains(t, s.View(), "Snapshot refreshed")
}

func TestLogsScreenQuit(t *testing.T) {
	s := NewLogsScreen(nil, 10)
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
