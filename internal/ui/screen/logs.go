package screen

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/hyperbet/internal/logger"
	"github.com/rovshanmuradov/hyperbet/internal/ui"
	"github.com/rovshanmuradov/hyperbet/internal/ui/component"
	"github.com/rovshanmuradov/hyperbet/internal/ui/router"
	"github.com/rovshanmuradov/hyperbet/internal/ui/style"
)

const logsRefreshInterval = time.Second

// levelFilters cycles with the filter key; "" shows everything.
var levelFilters = []string{"", "debug", "info", "warn", "error"}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3, "dpanic": 4, "panic": 4, "fatal": 4}

// LogSource is the part of logger.LogBuffer the screen reads.
type LogSource interface {
	GetRecentLogs(limit int) []logger.LogEntry
	GetStats() (total, spilled uint64)
}

// logsTickMsg is tagged with the screen that armed it. The router broadcasts
// ticks to the whole stack, so a reopened screen must not re-arm the loop of a
// closed one.
type logsTickMsg struct {
	seq uint64
	at  time.Time
}

var logsScreenSeq atomic.Uint64

// LogsScreen shows the newest entries from the TUI log buffer.
type LogsScreen struct {
	width  int
	height int
	keyMap ui.KeyMap

	seq      uint64
	source   LogSource
	maxLines int
	viewport viewport.Model
	helpBar  *component.HelpBar

	filter   int
	tailMode bool
	entries  []logger.LogEntry
}

// NewLogsScreen creates a logs screen over source.
func NewLogsScreen(source LogSource, maxLines int) *LogsScreen {
	if maxLines <= 0 {
		maxLines = 500
	}
	keyMap := ui.DefaultKeyMap()
	s := &LogsScreen{
		keyMap:   keyMap,
		seq:      logsScreenSeq.Add(1),
		source:   source,
		maxLines: maxLines,
		viewport: viewport.New(80, 20),
		helpBar:  component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteLogs)),
		tailMode: true,
	}
	s.reload()
	return s
}

// Init starts the refresh loop.
func (s *LogsScreen) Init() tea.Cmd {
	return logsTick(s.seq)
}

func logsTick(seq uint64) tea.Cmd {
	return tea.Tick(logsRefreshInterval, func(t time.Time) tea.Msg { return logsTickMsg{seq: seq, at: t} })
}

// SetSize sets the screen dimensions
func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	s.viewport.Width = max(width-2, 20)
	s.viewport.Height = max(height-6, 5)
	s.render()
}

// Update handles key presses and periodic reloads.
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case logsTickMsg:
		if msg.seq != s.seq {
			return s, nil
		}
		s.reload()
		return s, logsTick(s.seq)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.FilterLevel):
			s.filter = (s.filter + 1) % len(levelFilters)
			s.render()
			return s, nil
		case key.Matches(msg, s.keyMap.Tail):
			s.tailMode = true
			s.viewport.GotoBottom()
			return s, nil
		}

		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		s.tailMode = s.viewport.AtBottom()
		return s, cmd
	}
	return s, nil
}

func (s *LogsScreen) reload() {
	if s.source == nil {
		return
	}
	s.entries = s.source.GetRecentLogs(s.maxLines)
	s.render()
}

// visible returns entries at or above the selected level.
func (s *LogsScreen) visible() []logger.LogEntry {
	floor := levelFilters[s.filter]
	if floor == "" {
		return s.entries
	}
	out := make([]logger.LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if levelRank[e.Level] >= levelRank[floor] {
			out = append(out, e)
		}
	}
	return out
}

func (s *LogsScreen) render() {
	lines := make([]string, 0, len(s.entries))
	for _, e := range s.visible() {
		lines = append(lines, formatEntry(e))
	}
	if len(lines) == 0 {
		lines = append(lines, style.MutedStyle.Render("No log entries yet"))
	}
	s.viewport.SetContent(strings.Join(lines, "\n"))
	if s.tailMode {
		s.viewport.GotoBottom()
	}
}

func formatEntry(e logger.LogEntry) string {
	level := fmt.Sprintf("%-5s", strings.ToUpper(e.Level))
	var b strings.Builder
	b.WriteString(style.MutedStyle.Render(e.Timestamp.Format("15:04:05")))
	b.WriteString(" ")
	b.WriteString(style.LevelStyle(e.Level).Render(level))
	b.WriteString(" ")
	if e.Logger != "" {
		b.WriteString(style.LabelStyle.Render("[" + e.Logger + "] "))
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(style.MutedStyle.Render(fmt.Sprintf(" %s=%v", k, e.Fields[k])))
	}
	return b.String()
}

// View renders the logs screen
func (s *LogsScreen) View() string {
	filter := levelFilters[s.filter]
	if filter == "" {
		filter = "all"
	}
	var total, spilled uint64
	if s.source != nil {
		total, spilled = s.source.GetStats()
	}
	status := fmt.Sprintf("Logs · level ≥ %s · %d entries (%d spilled to file)", filter, total, spilled)
	if !s.tailMode {
		status += " · paused"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		style.LabelStyle.Render(status),
		s.viewport.View(),
		s.helpBar.View(),
	)
}
