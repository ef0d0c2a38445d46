package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brizzai/backoffice/internal/report"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ExportView prompts for a filename and writes the included records to it
type ExportView struct {
	records      []any
	sheet        string
	textInput    textinput.Model
	err          error
	width        int
	height       int
	exportStatus string
	Path         string
	Success      bool
}

// NewExportView creates a new export view
func NewExportView(sheet string, records []any) ExportView {
	ti := textinput.New()
	ti.Placeholder = "report.xlsx"
	ti.Focus()
	ti.Width = 40

	return ExportView{
		records:   records,
		sheet:     sheet,
		textInput: ti,
	}
}

// Init initializes the export view
func (m ExportView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the export view
func (m ExportView) Update(msg tea.Msg) (ExportView, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return BackToListMsg{} }
		case "enter":
			if m.textInput.Value() == "" {
				m.exportStatus = "Please enter a filename"
				return m, nil
			}

			filename := m.textInput.Value()
			if !strings.HasSuffix(filename, ".xlsx") {
				filename += ".xlsx"
			}

			if err := ExportRecordsToExcelFile(m.sheet, m.records, filename); err != nil {
				m.err = err
				m.exportStatus = fmt.Sprintf("Error exporting: %v", err)
				return m, nil
			}

			m.Path = filename
			m.Success = true
			m.exportStatus = completeMessageStyle(fmt.Sprintf("Exported %d records to %s", len(m.records), filename))
			// Wait for 1 second, then exit the application
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tea.Quit()
			})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the export view
func (m ExportView) View() string {
	var sb strings.Builder

	verticalPadding := (m.height - 6) / 2
	for i := 0; i < verticalPadding; i++ {
		sb.WriteString("\n")
	}

	title := titleStyle.Render("Export Records")
	sb.WriteString(centerText(title, m.width))
	sb.WriteString("\n\n")

	prompt := fmt.Sprintf("Enter filename to export %d records:", len(m.records))
	sb.WriteString(centerText(prompt, m.width))
	sb.WriteString("\n")

	input := m.textInput.View()
	sb.WriteString(centerText(input, m.width))
	sb.WriteString("\n\n")

	if m.exportStatus != "" {
		sb.WriteString(centerText(m.exportStatus, m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText("(esc) Back to list | (enter) Export", m.width))

	return sb.String()
}

// BackToListMsg signals to go back to the record list
type BackToListMsg struct{}

// ExportRecordsToExcelFile writes records to filename as an xlsx workbook
func ExportRecordsToExcelFile(sheet string, records []any, filename string) (err error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return report.WriteExcel(file, sheet, nil, records)
}

// Helper function to center text horizontally
func centerText(text string, width int) string {
	if width <= len(text) {
		return text
	}

	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
