package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []any {
	return []any{
		map[string]any{"id": 1, "name": "Ana", "role": "admin"},
		map[string]any{"id": 2, "name": "Bo", "role": "staff"},
		map[string]any{"id": 3, "email": "cy@agency.test"},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// update feeds msg to the model and returns the new model and command
func update(t *testing.T, m tea.Model, msg tea.Msg) (BrowseModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(BrowseModel)
	require.True(t, ok)
	return bm, cmd
}

func newSizedModel(t *testing.T) BrowseModel {
	m, _ := update(t, NewBrowseModel("employees", sampleRecords()), tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestBrowseModel_DetailToggle(t *testing.T) {
	m := newSizedModel(t)
	assert.Equal(t, pageList, m.Page())
	assert.Contains(t, m.View(), "Ana")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	open, ok := msg.(OpenDetailMsg)
	require.True(t, ok)
	assert.Equal(t, "Ana", open.Item.Title())

	m, _ = update(t, m, msg)
	assert.Equal(t, pageDetail, m.Page())
	assert.Contains(t, m.View(), `"role": "admin"`)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, pageList, m.Page())

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	assert.Equal(t, pageDetail, m.Page())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, pageList, m.Page())
}

func TestBrowseModel_Quit(t *testing.T) {
	for _, page := range []string{pageList, pageDetail} {
		t.Run(page, func(t *testing.T) {
			m := newSizedModel(t)
			if page == pageDetail {
				_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
				m, _ = update(t, m, cmd())
			}
			_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestBrowseModel_ExcludeAndExport(t *testing.T) {
	m := newSizedModel(t)

	m, _ = update(t, m, runes("x"))
	assert.Equal(t, sampleRecords()[1:], m.Included())

	m, cmd := update(t, m, runes("e"))
	require.NotNil(t, cmd)
	done, ok := cmd().(DoneMsg)
	require.True(t, ok)
	assert.Len(t, done.Records, 2)

	m, _ = update(t, m, done)
	assert.Equal(t, pageExport, m.Page())
	assert.Contains(t, m.View(), "Export Records")

	path := filepath.Join(t.TempDir(), "staff")
	m, _ = update(t, m, runes(path))
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)

	written, ok := m.ExportedTo()
	require.True(t, ok)
	assert.Equal(t, path+".xlsx", written)

	f, err := excelize.OpenFile(written)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("employees")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "email", "name", "role"}, {"2", "", "Bo", "staff"}, {"3", "cy@agency.test"}}, rows)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, pageList, m.Page())
}

func TestExportView_EmptyFilename(t *testing.T) {
	v := NewExportView("employees", sampleRecords())
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Success)
	assert.Contains(t, v.View(), "Please enter a filename")
}

func TestExportRecordsToExcelFile_BadPath(t *testing.T) {
	err := ExportRecordsToExcelFile("employees", sampleRecords(), filepath.Join(t.TempDir(), "missing", "out.xlsx"))
	assert.Error(t, err)
}
