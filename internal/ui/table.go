package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/ssmdeploy/internal/instance"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// maxTagsWidth caps the tags column so wide tag sets don't blow up the table.
const maxTagsWidth = 60

// NewTable creates a non-focused Bubbles table with the CLI's styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused, so the selected row must look like any other row.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a static table for CLI output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return NewTable(columns, tableRows).View()
}

// RenderInstanceTable renders instances as NAME / INSTANCE ID / STATE / TAGS,
// sizing each column to its widest value.
func RenderInstanceTable(instances []instance.Instance) string {
	columns := []TableColumn{
		{Title: "NAME"},
		{Title: "INSTANCE ID"},
		{Title: "STATE"},
		{Title: "TAGS"},
	}
	for i := range columns {
		columns[i].Width = lipgloss.Width(columns[i].Title)
	}

	rows := make([][]string, 0, len(instances))
	for _, inst := range instances {
		row := []string{inst.Name, inst.ID, inst.State, inst.TagString()}
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > columns[i].Width {
				columns[i].Width = w
			}
		}
		rows = append(rows, row)
	}
	if columns[3].Width > maxTagsWidth {
		columns[3].Width = maxTagsWidth
	}

	return RenderSimpleTable(columns, rows)
}
