package screen

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/export"
	"github.com/rovshanmuradov/hyperbet/internal/storage"
	"github.com/rovshanmuradov/hyperbet/internal/storage/models"
	"github.com/rovshanmuradov/hyperbet/internal/ui"
	"github.com/rovshanmuradov/hyperbet/internal/ui/component"
	"github.com/rovshanmuradov/hyperbet/internal/ui/router"
	"github.com/rovshanmuradov/hyperbet/internal/ui/style"
)

const historyLimit = 200

// HistoryDeps wires the history screen to the transaction journal.
type HistoryDeps struct {
	Ctx       context.Context
	Storage   storage.Storage
	Exporter  *export.HistoryExporter
	Wallet    string
	ExportDir string
	// Decimals returns token decimals seen so far; amounts fall back to base units.
	Decimals func() map[string]uint8
	Logger   *zap.Logger
}

type historyLoadedMsg struct {
	txs []*models.Transaction
	err error
}

type historyExportedMsg struct {
	path string
	err  error
}

// HistoryScreen lists approve/deposit transactions sent from this wallet.
type HistoryScreen struct {
	deps   HistoryDeps
	width  int
	height int
	keyMap ui.KeyMap

	table   table.Model
	helpBar *component.HelpBar

	txs     []*models.Transaction
	loading bool
	status  string
}

// NewHistoryScreen creates the history screen
func NewHistoryScreen(deps HistoryDeps) *HistoryScreen {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Exporter == nil {
		deps.Exporter = export.NewHistoryExporter(deps.Logger)
	}
	if deps.ExportDir == "" {
		deps.ExportDir = "exports"
	}

	keyMap := ui.DefaultKeyMap()
	t := table.New(
		table.WithColumns(historyColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	palette := style.DefaultPalette()
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(palette.Primary)
	styles.Selected = styles.Selected.Foreground(palette.Background).Background(palette.Primary)
	t.SetStyles(styles)

	return &HistoryScreen{
		deps:    deps,
		keyMap:  keyMap,
		table:   t,
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteHistory)),
	}
}

func historyColumns(width int) []table.Column {
	fixed := 19 + 8 + 5 + 10 + 20
	amount := max(width-fixed-12, 12)
	return []table.Column{
		{Title: "Time", Width: 19},
		{Title: "Kind", Width: 8},
		{Title: "Side", Width: 5},
		{Title: "Amount", Width: amount},
		{Title: "Status", Width: 10},
		{Title: "Tx", Width: 20},
	}
}

// Init loads the journal.
func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

// SetSize sets the screen dimensions
func (s *HistoryScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
	s.table.SetColumns(historyColumns(width))
	s.table.SetWidth(width)
	s.table.SetHeight(max(height-6, 5))
}

func (s *HistoryScreen) load() tea.Cmd {
	if s.deps.Storage == nil {
		return nil
	}
	s.loading = true
	ctx, store, wallet := s.deps.Ctx, s.deps.Storage, s.deps.Wallet
	return func() tea.Msg {
		txs, err := store.ListTransactions(ctx, wallet, historyLimit, 0)
		return historyLoadedMsg{txs: txs, err: err}
	}
}

func (s *HistoryScreen) exportCSV() tea.Cmd {
	txs := s.txs
	opts := export.Options{
		Format:    export.FormatCSV,
		OutputDir: s.deps.ExportDir,
		Decimals:  s.decimals(),
	}
	exporter := s.deps.Exporter
	return func() tea.Msg {
		path, err := exporter.Export(txs, opts)
		return historyExportedMsg{path: path, err: err}
	}
}

func (s *HistoryScreen) decimals() map[string]uint8 {
	if s.deps.Decimals == nil {
		return nil
	}
	return s.deps.Decimals()
}

// Update handles journal loads, exports and navigation.
func (s *HistoryScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.deps.Logger.Error("Failed to load history", zap.Error(msg.err))
			s.status = "Failed to load history: " + msg.err.Error()
			return s, nil
		}
		s.txs = msg.txs
		s.table.SetRows(s.rows())
		s.status = fmt.Sprintf("%d transactions", len(s.txs))
		return s, nil

	case historyExportedMsg:
		if msg.err != nil {
			s.status = "Export failed: " + msg.err.Error()
		} else {
			s.status = "Exported to " + msg.path
		}
		return s, nil

	case ui.TxResultMsg:
		// новая запись в журнале
		return s, s.load()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.Refresh):
			return s, s.load()
		case key.Matches(msg, s.keyMap.Export):
			if len(s.txs) == 0 {
				s.status = "Nothing to export"
				return s, nil
			}
			s.status = "Exporting…"
			return s, s.exportCSV()
		}
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return s, cmd
	}
	return s, nil
}

// rows renders records newest first.
func (s *HistoryScreen) rows() []table.Row {
	records := s.deps.Exporter.Records(s.txs, export.Options{Decimals: s.decimals()})
	rows := make([]table.Row, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		amount := r.Amount
		if r.Token != "" {
			amount += " " + r.Token
		}
		rows = append(rows, table.Row{
			r.Time.Local().Format("2006-01-02 15:04:05"),
			r.Kind,
			r.Side,
			amount,
			r.Status,
			shortHash(r.Hash),
		})
	}
	return rows
}

func shortHash(hash string) string {
	if len(hash) <= 18 {
		return hash
	}
	return hash[:10] + "…" + hash[len(hash)-6:]
}

// View renders the history screen
func (s *HistoryScreen) View() string {
	title := "Transaction history"
	if s.deps.Wallet != "" {
		title += " · " + s.deps.Wallet
	}

	var body string
	switch {
	case s.deps.Storage == nil:
		body = style.MutedStyle.Render("Transaction journal is not configured")
	case s.loading && len(s.txs) == 0:
		body = style.MutedStyle.Render("Loading…")
	case len(s.txs) == 0:
		body = style.MutedStyle.Render("No transactions yet")
	default:
		body = s.table.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		style.LabelStyle.Render(title),
		body,
		style.MutedStyle.Render(s.status),
		s.helpBar.View(),
	)
}
