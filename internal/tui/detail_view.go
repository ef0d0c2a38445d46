package tui

import (
	"fmt"

	"github.com/brizzai/backoffice/internal/tui/models"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// header and footer lines around the viewport
	detailChrome = 4
)

// DetailView shows one record as indented JSON in a scrollable viewport
type DetailView struct {
	item     models.RecordItem
	viewport viewport.Model
}

// NewDetailView creates a detail view sized to the terminal
func NewDetailView(item models.RecordItem, width, height int) DetailView {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	h, v := docStyle.GetFrameSize()

	vp := viewport.New(width-h, max(height-v-detailChrome, 1))
	vp.SetContent(item.JSON())
	return DetailView{item: item, viewport: vp}
}

// Update scrolls the viewport
func (m DetailView) Update(msg tea.Msg) (DetailView, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		h, v := docStyle.GetFrameSize()
		m.viewport.Width = msg.Width - h
		m.viewport.Height = max(msg.Height-v-detailChrome, 1)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the record
func (m DetailView) View() string {
	return docStyle.Render(fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		detailHeaderStyle.Render(m.item.Title()),
		m.viewport.View(),
		helpStyle.Render("(esc/enter) Back to list | ↑/↓ Scroll"),
	))
}
