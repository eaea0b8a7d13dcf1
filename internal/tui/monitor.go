// Package tui renders the live scale monitor in the terminal: the current
// weight, the raw indicator feed and the pending vehicle queue.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/service"
)

// pollInterval is how often the screen refreshes from the reader and ledger.
const pollInterval = 500 * time.Millisecond

type tickMsg time.Time

type pendingLoadedMsg struct {
	txs []model.Transaction
	err error
}

// Config wires the monitor to the running terminal services.
type Config struct {
	Reader    service.WeightSource
	Ledger    *ledger.Ledger
	Direction model.Direction
	Theme     Theme
}

// Monitor is the bubbletea model for the live scale screen.
type Monitor struct {
	reader    service.WeightSource
	ledger    *ledger.Ledger
	lastError error
	theme     Theme
	direction model.Direction
	queue     table.Model
	width     int
	height    int
	quitting  bool
}

// NewMonitor creates the monitor model.
func NewMonitor(cfg Config) Monitor {
	if !cfg.Direction.Valid() {
		cfg.Direction = model.DirectionOutbound
	}

	queue := table.New(
		table.WithColumns([]table.Column{
			{Title: "TIKET", Width: 12},
			{Title: "PLAT", Width: 12},
			{Title: "SOPIR", Width: 16},
			{Title: "BERAT 1", Width: 10},
			{Title: "JAM", Width: 8},
		}),
		table.WithHeight(8),
	)

	return Monitor{
		reader:    cfg.Reader,
		ledger:    cfg.Ledger,
		theme:     cfg.Theme,
		direction: cfg.Direction,
		queue:     queue,
	}
}

// Init starts the poll loop.
func (m Monitor) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.loadPending(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Monitor) loadPending() tea.Cmd {
	ledger := m.ledger
	direction := m.direction
	return func() tea.Msg {
		if ledger == nil {
			return pendingLoadedMsg{}
		}
		txs, err := ledger.ListPending(context.Background(), direction)
		return pendingLoadedMsg{txs: txs, err: err}
	}
}

// Update handles key presses and refresh ticks.
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab", "d":
			if m.direction == model.DirectionOutbound {
				m.direction = model.DirectionInbound
			} else {
				m.direction = model.DirectionOutbound
			}
			return m, m.loadPending()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadPending(), tick())

	case pendingLoadedMsg:
		m.lastError = msg.err
		if msg.err == nil {
			m.queue.SetRows(pendingRows(msg.txs))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.queue, cmd = m.queue.Update(msg)
	return m, cmd
}

func pendingRows(txs []model.Transaction) []table.Row {
	rows := make([]table.Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, table.Row{
			tx.TicketNumber,
			tx.PlateNumber,
			tx.DriverName,
			fmt.Sprintf("%d KG", tx.FirstWeight),
			tx.FirstTimestamp.Format("15:04"),
		})
	}
	return rows
}

// View renders the monitor screen.
func (m Monitor) View() string {
	if m.quitting {
		return ""
	}

	connected := m.reader != nil && m.reader.Connected()

	status := m.theme.StatusOffline.Render("OFFLINE")
	weightStyle := m.theme.WeightStale
	if connected {
		status = m.theme.StatusOnline.Render("ONLINE")
		weightStyle = m.theme.Weight
	}

	var weight int64
	var rawLines []string
	if m.reader != nil {
		weight = m.reader.CurrentWeight()
		rawLines = m.reader.RawLog()
	}

	out := m.theme.Title.Render("MONITOR TIMBANGAN") + "\n"
	out += m.theme.Subtitle.Render(fmt.Sprintf("Arah: %s    Indikator: ", m.direction)) + status + "\n\n"
	out += m.theme.BorderedBox.Render(weightStyle.Render(fmt.Sprintf("%8d KG", weight))) + "\n\n"

	out += m.theme.Subtitle.Render("Antrian pending") + "\n"
	out += m.queue.View() + "\n\n"

	out += m.theme.Subtitle.Render("Data mentah indikator") + "\n"
	if len(rawLines) == 0 {
		out += m.theme.RawLine.Render("(belum ada data)") + "\n"
	}
	for i, line := range rawLines {
		if i >= 5 {
			break
		}
		out += m.theme.RawLine.Render(line) + "\n"
	}

	if m.lastError != nil {
		out += m.theme.StatusOffline.Render("error: "+m.lastError.Error()) + "\n"
	}

	out += m.theme.Help.Render("tab: ganti arah • q: keluar")
	return out
}

// Run starts the monitor program and blocks until the operator quits.
func Run(cfg Config) error {
	p := tea.NewProgram(NewMonitor(cfg))
	_, err := p.Run()
	return err
}
