package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/railorder/internal/cli/formatter"
	"github.com/alexanderramin/railorder/internal/domain"
)

// treeBrowserModel is the interactive version-tree browser: a cursor
// over the depth-first item list on the left, a scrollable detail pane
// for the selected item on the right.
type treeBrowserModel struct {
	ctx   context.Context
	app   *App
	order *domain.Order

	items  []*domain.OrderItem // depth-first, matches rendered lines
	lines  []formatter.TreeItem
	cursor int

	detail viewport.Model
	width  int
	height int
	ready  bool
}

func newTreeBrowserModel(ctx context.Context, app *App, order *domain.Order, items []*domain.OrderItem) treeBrowserModel {
	ordered := formatter.VersionOrder(items)
	lines := formatter.BuildVersionTree(items, func(item *domain.OrderItem) string {
		return ""
	})
	return treeBrowserModel{
		ctx:   ctx,
		app:   app,
		order: order,
		items: ordered,
		lines: lines,
	}
}

func (m treeBrowserModel) Init() tea.Cmd {
	return nil
}

func (m treeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		detailWidth := m.width/2 - 4
		if detailWidth < 20 {
			detailWidth = 20
		}
		if !m.ready {
			m.detail = viewport.New(detailWidth, m.height-4)
			m.ready = true
		} else {
			m.detail.Width = detailWidth
			m.detail.Height = m.height - 4
		}
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.refreshDetail()
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.refreshDetail()
			}
		case "g":
			m.cursor = 0
			m.refreshDetail()
		case "G":
			m.cursor = len(m.items) - 1
			m.refreshDetail()
		case "pgup":
			m.detail.HalfViewUp()
		case "pgdown":
			m.detail.HalfViewDown()
		}
	}
	return m, nil
}

func (m *treeBrowserModel) refreshDetail() {
	if !m.ready || len(m.items) == 0 {
		return
	}
	m.detail.SetContent(itemDetail(m.ctx, m.app, m.items[m.cursor]))
	m.detail.GotoTop()
}

func (m treeBrowserModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var left strings.Builder
	left.WriteString(formatter.Header(fmt.Sprintf("%s [%s]", m.order.Name, m.order.ShortID)) + "\n")
	for i, line := range m.lines {
		rendered := formatter.RenderTree([]formatter.TreeItem{line})
		rendered = strings.TrimRight(rendered, "\n")
		if i == m.cursor {
			left.WriteString(formatter.StyleHeader.Render("> ") + rendered + "\n")
		} else {
			left.WriteString("  " + rendered + "\n")
		}
	}

	leftPane := lipgloss.NewStyle().
		Width(m.width/2 - 2).
		MaxHeight(m.height - 2).
		Render(left.String())

	rightPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(formatter.ColorDim).
		Padding(0, 1).
		Render(m.detail.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	help := formatter.Dim("j/k move · pgup/pgdn scroll detail · q quit")
	return body + "\n" + help
}

func runTreeBrowser(ctx context.Context, app *App, order *domain.Order, items []*domain.OrderItem) error {
	model := newTreeBrowserModel(ctx, app, order, items)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
