package tui

import (
	"github.com/brizzai/backoffice/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"

	tea "github.com/charmbracelet/bubbletea"
)

// listKeyMap holds key bindings for the list actions.
type listKeyMap struct {
	open   key.Binding
	export key.Binding
	quit   key.Binding
}

// OpenDetailMsg is sent when the user opens a record
type OpenDetailMsg struct {
	Item models.RecordItem
}

// DoneMsg is sent when the user wants to export the records still included
type DoneMsg struct {
	Records []any
}

// newListKeyMap creates a new listKeyMap with default bindings.
func newListKeyMap() *listKeyMap {
	return &listKeyMap{
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Show record"),
		),
		export: key.NewBinding(
			key.WithKeys("E", "e"),
			key.WithHelp("E", "Export to Excel"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
	}
}

// RecordListModel is the filterable record list
type RecordListModel struct {
	list list.Model
	keys *listKeyMap
}

// NewRecordListModel creates the list page for records
func NewRecordListModel(title string, records []any) RecordListModel {
	listKeys := newListKeyMap()

	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = models.RecordItem{Value: rec}
	}
	delegate := newItemDelegate(newDelegateKeyMap())

	l := list.New(items, delegate, 0, 0)
	l.Title = titleStyle.Render(title)
	l.SetShowFilter(true)
	// esc belongs to page navigation
	l.KeyMap.Quit = key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	)

	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			listKeys.open,
			listKeys.export,
			listKeys.quit,
		}
	}
	return RecordListModel{list: l, keys: listKeys}
}

// Init returns the initial command for the list model.
func (m RecordListModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the list
func (m RecordListModel) Update(msg tea.Msg) (RecordListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.open):
			item, ok := m.list.SelectedItem().(models.RecordItem)
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return OpenDetailMsg{Item: item}
			}
		case key.Matches(msg, m.keys.export):
			records := m.Included()
			return m, func() tea.Msg {
				return DoneMsg{Records: records}
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list
func (m RecordListModel) View() string {
	return docStyle.Render(m.list.View())
}

// Included returns the records not excluded, in list order, ignoring any filter
func (m RecordListModel) Included() []any {
	items := m.list.Items()
	result := make([]any, 0, len(items))
	for _, item := range items {
		rec := item.(models.RecordItem)
		if !rec.Excluded {
			result = append(result, rec.Value)
		}
	}
	return result
}

// Visible returns the records matching the current filter
func (m RecordListModel) Visible() []any {
	visible := m.list.VisibleItems()
	result := make([]any, len(visible))
	for i, item := range visible {
		result[i] = item.(models.RecordItem).Value
	}
	return result
}
