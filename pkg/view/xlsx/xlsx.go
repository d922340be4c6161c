// Package xlsx writes the table view of a project to an Excel workbook
package xlsx

import (
	"bytes"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/view/table"
	"github.com/xuri/excelize/v2"
)

const (
	headerFill  = "#E6E6FA"
	columnWidth = 20
	dateFormat  = "yyyy-mm-dd"
)

// SheetName returns a valid worksheet name for a project name
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "Tasks"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// Export writes the rows of view, one per task in view order, under a header of
// field names. Select cells hold their option labels joined by ", ".
func Export(sheet string, view *table.View) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet = SheetName(sheet)
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", sheet))
	}
	f.SetActiveSheet(index)
	if f.GetSheetName(0) != sheet {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, goerr.Wrap(err, "failed to delete default sheet")
		}
	}

	for i, col := range view.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid header cell", goerr.V("column", i+1))
		}
		if err := f.SetCellValue(sheet, cell, col.Field.Name); err != nil {
			return nil, goerr.Wrap(err, "failed to write header", goerr.V("cell", cell))
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create header style")
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return nil, goerr.Wrap(err, "failed to style header row")
	}

	dateFmt := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create date style")
	}

	for r, row := range view.Rows {
		for c, cell := range row.Cells {
			name, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid cell", goerr.V("row", r+2), goerr.V("column", c+1))
			}
			if err := writeCell(f, sheet, name, cell, dateStyle); err != nil {
				return nil, goerr.Wrap(err, "failed to write cell",
					goerr.V("cell", name),
					goerr.V("task_id", row.TaskID))
			}
		}
	}

	if len(view.Columns) > 0 {
		last, err := excelize.ColumnNumberToName(len(view.Columns))
		if err != nil {
			return nil, goerr.Wrap(err, "invalid column", goerr.V("column", len(view.Columns)))
		}
		if err := f.SetColWidth(sheet, "A", last, columnWidth); err != nil {
			return nil, goerr.Wrap(err, "failed to set column width")
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, goerr.Wrap(err, "failed to write workbook")
	}
	return &buf, nil
}

func writeCell(f *excelize.File, sheet, name string, cell table.Cell, dateStyle int) error {
	switch {
	case cell.Text != nil:
		return f.SetCellStr(sheet, name, cell.Text.Value)

	case cell.Date != nil:
		if cell.Date.Value == "" {
			return nil
		}
		d, err := types.ParseDate(cell.Date.Value)
		if err != nil {
			// Keep unparseable dates visible as entered
			return f.SetCellStr(sheet, name, cell.Date.Value)
		}
		if err := f.SetCellValue(sheet, name, d); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, name, name, dateStyle)

	case cell.Select != nil:
		labels := make([]string, len(cell.Select.Pills))
		for i, p := range cell.Select.Pills {
			labels[i] = p.Label
		}
		return f.SetCellStr(sheet, name, strings.Join(labels, ", "))
	}
	return nil
}
