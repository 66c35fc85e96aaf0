// Package tui renders the dashboard in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gofinances/internal/dashboard"
)

// Dashboard is the part of the controller the model drives.
type Dashboard interface {
	View() dashboard.View
	Greeting() dashboard.Greeting
	Trigger(ctx context.Context)
}

type Model struct {
	ctx      context.Context
	dash     Dashboard
	views    <-chan dashboard.View
	greeting dashboard.Greeting
	view     dashboard.View

	keys     KeyMap
	styles   Styles
	spinner  spinner.Model
	list     viewport.Model
	help     help.Model
	width    int
	height   int
	quitting bool
}

// New builds a model fed by views, normally a subscription on dash.
func New(ctx context.Context, dash Dashboard, views <-chan dashboard.View) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorSecondary)

	return Model{
		ctx:      ctx,
		dash:     dash,
		views:    views,
		greeting: dash.Greeting(),
		view:     dash.View(),
		keys:     DefaultKeyMap(),
		styles:   DefaultStyles(),
		spinner:  sp,
		list:     viewport.New(80, 10),
		help:     help.New(),
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForView(), m.refresh())
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		m.dash.Trigger(m.ctx)
		return nil
	}
}

func (m Model) waitForView() tea.Cmd {
	return func() tea.Msg {
		v, ok := <-m.views
		if !ok {
			return subscriptionClosedMsg{}
		}
		return viewMsg{view: v}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case tea.FocusMsg:
		return m, m.refresh()

	case viewMsg:
		m.view = msg.view
		m.list.SetContent(m.renderTransactions())
		return m, m.waitForView()

	case subscriptionClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.Width = msg.Width
		m.list.Height = max(msg.Height-lipgloss.Height(m.headerView())-lipgloss.Height(m.cardsView())-4, 3)
		m.list.SetContent(m.renderTransactions())
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	sections := []string{m.headerView()}
	if m.view.State == dashboard.StateFailed {
		sections = append(sections, m.styles.Error.Render(dashboard.ErrorMessage(m.view.Err)))
	}
	switch {
	case m.view.Loading():
		sections = append(sections, fmt.Sprintf("\n %s Carregando...", m.spinner.View()))
	case m.view.Snapshot != nil:
		sections = append(sections,
			m.cardsView(),
			m.styles.Section.Render("Listagem"),
			m.list.View(),
		)
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	text := m.greeting.Salutation + " " + m.styles.UserName.Render(m.greeting.UserName)
	return m.styles.Header.Render(strings.TrimSpace(text))
}

func (m Model) cardsView() string {
	if m.view.Snapshot == nil {
		return ""
	}
	h := m.view.Snapshot.Highlights
	total := m.styles.CardTotal
	if m.view.Snapshot.Totals.Total < 0 {
		total = total.BorderForeground(colorAttention)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.card(m.styles.Card, "Entradas", h.Entries),
		m.card(m.styles.Card, "Saídas", h.Expensive),
		m.card(total, "Total", h.Total),
	)
}

func (m Model) card(style lipgloss.Style, title string, h dashboard.Highlight) string {
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.CardTitle.Render(title),
		m.styles.Amount.Render(h.Amount),
		m.styles.Muted.Render(h.LastTransaction),
	))
}

func (m Model) renderTransactions() string {
	if m.view.Snapshot == nil {
		return ""
	}
	txs := m.view.Snapshot.Transactions
	if len(txs) == 0 {
		return m.styles.Muted.Render("Nenhuma transação cadastrada.")
	}
	var b strings.Builder
	for i, tx := range txs {
		if i > 0 {
			b.WriteByte('\n')
		}
		amount := m.styles.Positive.Render(tx.Amount)
		if tx.Expense {
			amount = m.styles.Negative.Render("- " + tx.Amount)
		}
		fmt.Fprintf(&b, "%-24s %s  %s  %s",
			tx.Name, amount, m.styles.Muted.Render(tx.Category), m.styles.Muted.Render(tx.Date))
	}
	return b.String()
}
