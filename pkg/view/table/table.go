// Package table lays out the spreadsheet view of a project: one column per
// field in schema order and one row per task passing the filter.
package table

import (
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

const (
	SelectPlaceholder   = "Select"
	UnsupportedFilter   = "Text filtering coming soon."
	NoOptionsDefined    = "No options defined"
	filterPanelTitleFmt = "Filter by "
)

// View is a laid out table
type View struct {
	ProjectID types.ProjectID
	Columns   []Column
	Rows      []Row
	Chooser   *ChooserView
	// FilterCount is the number of selected filter values across all fields
	FilterCount int
}

// Column is the header of one field
type Column struct {
	Field        *model.FieldDefinition
	Filterable   bool
	FilterActive bool
	Editable     bool         // select fields can hand their definition to the options editor
	Panel        *FilterPanel // set while the header menu of this column is open
}

// FilterPanel lists the options of a select field bound to the filter state.
// Other field types get an Unsupported placeholder.
type FilterPanel struct {
	FieldID     types.FieldID
	Title       string
	Options     []FilterOption
	Unsupported bool
	Message     string
}

type FilterOption struct {
	Option  model.FieldOption
	Checked bool
}

// Row holds the cells of one task in column order
type Row struct {
	TaskID types.TaskID
	Cells  []Cell
}

// Cell is one of Text, Date or Select, depending on the field type
type Cell struct {
	FieldID types.FieldID
	Type    types.FieldType
	Text    *TextCell
	Date    *DateCell
	Select  *SelectCell
	// Invalid is set when the stored value disagrees with the field type; the cell renders empty
	Invalid bool
}

type TextCell struct {
	Value string
}

// DateCell holds an ISO date, or "" when unset
type DateCell struct {
	Value string
}

// SelectCell renders one pill per selected option. Unknown option IDs are omitted.
type SelectCell struct {
	Pills       []Pill
	Multi       bool
	Placeholder string // shown when no pill is rendered
}

type Pill struct {
	OptionID types.OptionID
	Label    string
	Color    types.Color
}

// Build lays out project filtered by filter. session carries the open header
// menu and option chooser and may be nil.
func Build(project *model.Project, filter model.Filter, session *Session) *View {
	view := &View{
		ProjectID:   project.ID,
		FilterCount: filter.Count(),
	}

	for _, f := range project.Fields {
		col := Column{
			Field:        f,
			Filterable:   model.FilterSupport(f) == nil,
			FilterActive: filter.IsActive(f.ID),
			Editable:     f.Type == types.FieldTypeSelect,
		}
		if session != nil && session.MenuField() == f.ID {
			col.Panel = NewFilterPanel(f, filter)
		}
		view.Columns = append(view.Columns, col)
	}

	for _, task := range filter.Apply(project.Tasks) {
		row := Row{TaskID: task.ID}
		for _, f := range project.Fields {
			row.Cells = append(row.Cells, cellOf(task, f))
		}
		view.Rows = append(view.Rows, row)
	}

	if session != nil {
		view.Chooser = session.chooserView(project)
	}
	return view
}

// NewFilterPanel builds the filter menu of a column
func NewFilterPanel(field *model.FieldDefinition, filter model.Filter) *FilterPanel {
	panel := &FilterPanel{
		FieldID: field.ID,
		Title:   filterPanelTitleFmt + field.Name,
	}
	if err := model.FilterSupport(field); err != nil {
		panel.Unsupported = true
		panel.Message = UnsupportedFilter
		return panel
	}
	for _, opt := range field.Options {
		panel.Options = append(panel.Options, FilterOption{
			Option:  opt,
			Checked: filter.Allows(field.ID, opt.ID),
		})
	}
	return panel
}

func cellOf(task *model.Task, field *model.FieldDefinition) Cell {
	cell := Cell{FieldID: field.ID, Type: field.Type}

	switch field.Type {
	case types.FieldTypeText:
		text, err := task.Text(field)
		cell.Text = &TextCell{Value: text}
		cell.Invalid = err != nil

	case types.FieldTypeDate:
		date, err := task.Date(field)
		cell.Date = &DateCell{Value: string(date)}
		cell.Invalid = err != nil

	case types.FieldTypeSelect:
		ids, err := task.Selection(field)
		sel := &SelectCell{Multi: field.IsMulti}
		for _, id := range ids {
			if opt := field.Option(id); opt != nil {
				sel.Pills = append(sel.Pills, Pill{OptionID: opt.ID, Label: opt.Label, Color: opt.Color})
			}
		}
		if len(sel.Pills) == 0 {
			sel.Placeholder = SelectPlaceholder
		}
		cell.Select = sel
		cell.Invalid = err != nil
	}
	return cell
}
