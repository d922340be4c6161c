// Package term renders table and timeline views for a terminal
package term

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/secmon-lab/flexigantt/pkg/view/gantt"
	"github.com/secmon-lab/flexigantt/pkg/view/table"
)

const (
	maxColumnWidth = 32
	sidebarWidth   = 24
	barRune        = "█"
	emptyRune      = "·"
	weekendRune    = " "
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#64748b"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	untitledText = mutedStyle.Italic(true)
	todayStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
)

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// RenderTable renders view as aligned text columns. Select pills are drawn in
// their option color.
func RenderTable(view *table.View) string {
	if len(view.Columns) == 0 {
		return mutedStyle.Render("No fields")
	}

	widths := make([]int, len(view.Columns))
	for i, col := range view.Columns {
		widths[i] = len([]rune(col.Field.Name))
	}
	plain := make([][]string, len(view.Rows))
	for r, row := range view.Rows {
		plain[r] = make([]string, len(row.Cells))
		for c, cell := range row.Cells {
			plain[r][c] = truncate(cellText(cell), maxColumnWidth)
			widths[c] = max(widths[c], len([]rune(plain[r][c])))
		}
	}

	var lines []string
	header := make([]string, len(view.Columns))
	for i, col := range view.Columns {
		name := col.Field.Name
		if col.FilterActive {
			name += "*"
		}
		header[i] = headerStyle.Render(pad(truncate(name, maxColumnWidth), widths[i]))
	}
	lines = append(lines, strings.Join(header, "  "))

	for r, row := range view.Rows {
		cols := make([]string, len(row.Cells))
		for c, cell := range row.Cells {
			cols[c] = pad(styledCell(cell, plain[r][c]), widths[c])
		}
		lines = append(lines, strings.Join(cols, "  "))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func cellText(cell table.Cell) string {
	switch {
	case cell.Text != nil:
		return cell.Text.Value
	case cell.Date != nil:
		return cell.Date.Value
	case cell.Select != nil:
		labels := make([]string, len(cell.Select.Pills))
		for i, p := range cell.Select.Pills {
			labels[i] = p.Label
		}
		return strings.Join(labels, ", ")
	}
	return ""
}

func styledCell(cell table.Cell, text string) string {
	if cell.Select == nil || len(cell.Select.Pills) == 0 || text != cellText(cell) {
		return text
	}
	pills := make([]string, len(cell.Select.Pills))
	for i, p := range cell.Select.Pills {
		pills[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color.String())).Render(p.Label)
	}
	return strings.Join(pills, ", ")
}

// RenderGantt renders view with one character per day. Bars past the right
// edge of the window are cut at the edge.
func RenderGantt(view *gantt.View) string {
	if view.Empty {
		return lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(view.Message), mutedStyle.Render(view.Hint))
	}

	days := len(view.Days)
	var months, dates strings.Builder
	for i := 0; i < days; i++ {
		d := view.Days[i]
		if d.MonthLabel != "" {
			label := d.MonthLabel
			months.WriteString(label)
			i += len(label) - 1
			continue
		}
		months.WriteString(" ")
	}
	for _, d := range view.Days {
		ch := d.Weekday
		if d.Today {
			ch = todayStyle.Render("|")
		}
		dates.WriteString(ch)
	}

	lines := []string{
		strings.Repeat(" ", sidebarWidth) + headerStyle.Render(truncate(months.String(), days)),
		headerStyle.Render(pad(truncate(view.NameHeader, sidebarWidth-1), sidebarWidth)) + dates.String(),
	}

	for _, row := range view.Rows {
		name := pad(truncate(row.Name, sidebarWidth-1), sidebarWidth)
		if row.Untitled {
			name = untitledText.Render(name)
		}
		lines = append(lines, name+timeline(view, row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func timeline(view *gantt.View, row gantt.Row) string {
	var b strings.Builder
	from, to := -1, -1
	if row.Bar != nil {
		from = row.Bar.Left / gantt.DayWidth
		to = (row.Bar.Left + row.Bar.Width + gantt.DayWidth - 1) / gantt.DayWidth
	}
	var barStyle lipgloss.Style
	if row.Bar != nil {
		barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(row.Bar.Color.String()))
	}

	for i, d := range view.Days {
		switch {
		case i >= from && i < to:
			b.WriteString(barStyle.Render(barRune))
		case d.Weekend:
			b.WriteString(weekendRune)
		default:
			b.WriteString(mutedStyle.Render(emptyRune))
		}
	}
	return b.String()
}
