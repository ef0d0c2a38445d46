package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

const (
	pageList   = "list"
	pageDetail = "detail"
	pageExport = "export"
)

// BrowseModel is the record browser. It switches between the list, the
// detail view of one record and the export prompt.
type BrowseModel struct {
	title      string
	listView   RecordListModel
	detail     DetailView
	exportView ExportView
	page       string
	width      int
	height     int
}

// NewBrowseModel creates a browser over records
func NewBrowseModel(title string, records []any) BrowseModel {
	return BrowseModel{
		title:    title,
		listView: NewRecordListModel(title, records),
		page:     pageList,
	}
}

// Init initializes the BrowseModel
func (m BrowseModel) Init() tea.Cmd {
	return m.listView.Init()
}

// Update handles app-level messages and delegates to the active page
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OpenDetailMsg:
		m.page = pageDetail
		m.detail = NewDetailView(msg.Item, m.width, m.height)
		return m, nil

	case DoneMsg:
		m.page = pageExport
		m.exportView = NewExportView(m.title, msg.Records)
		m.exportView, _ = m.exportView.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		return m, m.exportView.Init()

	case BackToListMsg:
		m.page = pageList
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.page == pageDetail && (msg.String() == "esc" || msg.String() == "enter") {
			m.page = pageList
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.listView, cmd = m.listView.Update(msg)
		cmds = append(cmds, cmd)
		m.detail, cmd = m.detail.Update(msg)
		cmds = append(cmds, cmd)
		m.exportView, cmd = m.exportView.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	switch m.page {
	case pageList:
		m.listView, cmd = m.listView.Update(msg)
	case pageDetail:
		m.detail, cmd = m.detail.Update(msg)
	case pageExport:
		m.exportView, cmd = m.exportView.Update(msg)
	}
	return m, cmd
}

// View renders the active page
func (m BrowseModel) View() string {
	switch m.page {
	case pageDetail:
		return m.detail.View()
	case pageExport:
		return m.exportView.View()
	default:
		return m.listView.View()
	}
}

// Page reports the active page: "list", "detail" or "export"
func (m BrowseModel) Page() string {
	return m.page
}

// Included returns the records the user has not excluded
func (m BrowseModel) Included() []any {
	return m.listView.Included()
}

// ExportedTo returns the file written by the export page, if any
func (m BrowseModel) ExportedTo() (string, bool) {
	return m.exportView.Path, m.exportView.Success
}
