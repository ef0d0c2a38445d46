package tui

import (
	"github.com/brizzai/backoffice/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// newItemDelegate returns a list.DefaultDelegate with custom update and help functions.
func newItemDelegate(keys *delegateKeyMap) list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.UpdateFunc = func(msg tea.Msg, m *list.Model) tea.Cmd {
		item, ok := m.SelectedItem().(models.RecordItem)
		if !ok {
			return nil
		}

		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch {
			case key.Matches(msg, keys.exclude):
				updatedItem := item.ToggleExcluded()
				m.SetItem(m.Index(), updatedItem)
				if updatedItem.Excluded {
					return m.NewStatusMessage(statusMessageStyle("Excluded " + item.Title() + " from the export"))
				}
				return m.NewStatusMessage(statusMessageStyle("Added " + item.Title() + " back to the export"))
			}
		}
		return nil
	}

	help := []key.Binding{keys.exclude}

	d.ShortHelpFunc = func() []key.Binding {
		return help
	}

	d.FullHelpFunc = func() [][]key.Binding {
		return [][]key.Binding{help}
	}

	return d
}

// delegateKeyMap holds key bindings for list item actions.
type delegateKeyMap struct {
	exclude key.Binding
}

// ShortHelp returns additional short help entries for the delegate.
func (d delegateKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		d.exclude,
	}
}

// FullHelp returns additional full help entries for the delegate.
func (d delegateKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			d.exclude,
		},
	}
}

// newDelegateKeyMap creates a new delegateKeyMap with default bindings.
func newDelegateKeyMap() *delegateKeyMap {
	return &delegateKeyMap{
		exclude: key.NewBinding(
			key.WithKeys("x", "backspace"),
			key.WithHelp("x", "Exclude from export"),
		),
	}
}
