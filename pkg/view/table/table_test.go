package table_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/view/gantt"
	"github.com/secmon-lab/flexigantt/pkg/view/table"
)

var seedTime = time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)

func seed() *model.Project {
	return model.SeedProjects(seedTime)[0]
}

func TestBuild(t *testing.T) {
	project := seed()
	view := table.Build(project, nil, nil)

	gt.Array(t, view.Columns).Length(5).Required()
	gt.Array(t, view.Rows).Length(5).Required()
	gt.Value(t, view.Columns[0].Field.ID).Equal(types.NameFieldID)
	gt.Bool(t, view.Columns[0].Filterable).False()
	gt.Bool(t, view.Columns[0].Editable).False()
	gt.Bool(t, view.Columns[2].Filterable).True()
	gt.Bool(t, view.Columns[2].Editable).True()

	t.Run("cells follow field types", func(t *testing.T) {
		row := view.Rows[3]
		gt.Value(t, row.TaskID).Equal(types.TaskID("t4"))
		gt.Value(t, row.Cells[0].Text.Value).Equal("Frontend Integration")
		gt.Value(t, row.Cells[3].Date.Value).Equal("2023-10-12")

		owners := row.Cells[1].Select
		gt.Value(t, owners).NotNil().Required()
		gt.Array(t, owners.Pills).Length(2).Required()
		gt.Value(t, owners.Pills[0].Label).Equal("Alice Chen")
		gt.Value(t, owners.Pills[1].Color).Equal(types.Color("#eab308"))
		gt.Value(t, owners.Placeholder).Equal("")
	})

	t.Run("unknown options render nothing", func(t *testing.T) {
		project := seed()
		project.Tasks[0].Values[types.StatusFieldID] = model.Single("opt_removed")
		view := table.Build(project, nil, nil)
		sel := view.Rows[0].Cells[2].Select
		gt.Array(t, sel.Pills).Length(0)
		gt.Value(t, sel.Placeholder).Equal(table.SelectPlaceholder)
		gt.Bool(t, view.Rows[0].Cells[2].Invalid).False()
	})

	t.Run("stale keys are ignored", func(t *testing.T) {
		project := seed()
		project.Tasks[0].Values["f_removed"] = model.RawValue(`"x"`)
		view := table.Build(project, nil, nil)
		gt.Array(t, view.Rows[0].Cells).Length(5)
	})

	t.Run("mismatched value renders empty", func(t *testing.T) {
		project := seed()
		project.Tasks[0].Values[types.StartFieldID] = model.Multi("u1")
		view := table.Build(project, nil, nil)
		cell := view.Rows[0].Cells[3]
		gt.Bool(t, cell.Invalid).True()
		gt.Value(t, cell.Date.Value).Equal("")
	})
}

func TestBuild_Filter(t *testing.T) {
	filter := model.Filter{}.
		Toggle(types.OwnerFieldID, "u1").
		Toggle(types.StatusFieldID, "opt_todo")

	view := table.Build(seed(), filter, nil)
	gt.Array(t, view.Rows).Length(1).Required()
	gt.Value(t, view.Rows[0].TaskID).Equal(types.TaskID("t4"))
	gt.Number(t, view.FilterCount).Equal(2)
	gt.Bool(t, view.Columns[1].FilterActive).True()
	gt.Bool(t, view.Columns[0].FilterActive).False()
}

func TestFilterPanel(t *testing.T) {
	fields := model.DefaultFields()
	filter := model.Filter{types.StatusFieldID: {"opt_done"}}

	panel := table.NewFilterPanel(fields.Field(types.StatusFieldID), filter)
	gt.Bool(t, panel.Unsupported).False()
	gt.Value(t, panel.Title).Equal("Filter by Status")
	gt.Array(t, panel.Options).Length(3).Required()
	gt.Bool(t, panel.Options[0].Checked).False()
	gt.Bool(t, panel.Options[2].Checked).True()

	text := table.NewFilterPanel(fields.Field(types.NameFieldID), filter)
	gt.Bool(t, text.Unsupported).True()
	gt.Value(t, text.Message).Equal(table.UnsupportedFilter)
	gt.Array(t, text.Options).Length(0)

	t.Run("panel is attached to the open menu column", func(t *testing.T) {
		session := table.NewSession()
		session.ToggleMenu(types.OwnerFieldID)
		view := table.Build(seed(), nil, session)
		gt.Value(t, view.Columns[1].Panel).NotNil()
		gt.Value(t, view.Columns[2].Panel).Nil()

		session.ToggleMenu(types.OwnerFieldID)
		gt.Value(t, session.MenuField()).Equal(types.FieldID(""))
	})
}

func TestSession_Choose(t *testing.T) {
	anchor := table.Rect{Top: 100, Left: 40, Width: 160, Height: 44}

	t.Run("single select replaces and closes", func(t *testing.T) {
		session := table.NewSession()
		session.OpenChooser("t2", types.StatusFieldID, anchor)

		value, closed, err := session.Choose(seed(), "opt_done")
		gt.NoError(t, err).Required()
		gt.Value(t, value).Equal(model.Value(model.Single("opt_done")))
		gt.Bool(t, closed).True()
		gt.Value(t, session.Chooser()).Nil()
	})

	t.Run("single select clears the selected option", func(t *testing.T) {
		session := table.NewSession()
		session.OpenChooser("t2", types.StatusFieldID, anchor)

		value, closed, err := session.Choose(seed(), "opt_progress")
		gt.NoError(t, err).Required()
		gt.Bool(t, value.IsEmpty()).True()
		gt.Bool(t, closed).True()
	})

	t.Run("multi select toggles and stays open", func(t *testing.T) {
		project := seed()
		session := table.NewSession()
		session.OpenChooser("t4", types.OwnerFieldID, anchor)

		value, closed, err := session.Choose(project, "u2")
		gt.NoError(t, err).Required()
		gt.Bool(t, closed).False()
		gt.Value(t, value).Equal(model.Value(model.Multi("u1", "u4", "u2")))
		gt.Value(t, session.Chooser()).NotNil()

		gt.NoError(t, project.Task("t4").Set(project.Field(types.OwnerFieldID), value)).Required()
		value, _, err = session.Choose(project, "u1")
		gt.NoError(t, err).Required()
		gt.Value(t, value).Equal(model.Value(model.Multi("u4", "u2")))
	})

	t.Run("without an open chooser", func(t *testing.T) {
		_, _, err := table.NewSession().Choose(seed(), "opt_done")
		gt.Error(t, err).Is(table.ErrNoChooser)
	})

	t.Run("on a non-select field", func(t *testing.T) {
		session := table.NewSession()
		session.OpenChooser("t1", types.NameFieldID, anchor)
		_, _, err := session.Choose(seed(), "opt_done")
		gt.Error(t, err).Is(table.ErrNotChoosable)
	})
}

func TestSession_ChooserPlacement(t *testing.T) {
	session := table.NewSession()
	_, ok := session.ChooserPlacement()
	gt.Bool(t, ok).False()

	session.OpenChooser("t1", types.StatusFieldID, table.Rect{Top: 100, Left: 40, Width: 160, Height: 44})
	p, ok := session.ChooserPlacement()
	gt.Bool(t, ok).True()
	gt.Value(t, p).Equal(table.Placement{Top: 148, Left: 40, MinWidth: 220})

	session.OpenChooser("t1", types.StatusFieldID, table.Rect{Top: 0, Left: 0, Width: 300, Height: 20})
	p, _ = session.ChooserPlacement()
	gt.Value(t, p.MinWidth).Equal(float64(300))

	view := table.Build(seed(), nil, session)
	gt.Value(t, view.Chooser).NotNil().Required()
	gt.Array(t, view.Chooser.Options).Length(3).Required()
	gt.Bool(t, view.Chooser.Options[2].Selected).True()

	for _, reason := range []table.DismissReason{table.DismissScroll, table.DismissClickAway} {
		session.OpenChooser("t1", types.StatusFieldID, table.Rect{})
		session.Dismiss(reason)
		gt.Value(t, session.Chooser()).Nil()
	}
}

func TestParity_TableAndGantt(t *testing.T) {
	project := seed()
	project.Tasks = append(project.Tasks, &model.Task{ID: "t6", Values: map[types.FieldID]model.Value{
		types.NameFieldID:  model.TextValue("No dates"),
		types.OwnerFieldID: model.Multi("u3"),
	}})
	window := gantt.WindowAround(time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC))

	filters := []model.Filter{
		nil,
		{types.OwnerFieldID: {"u1"}},
		{types.OwnerFieldID: {"u2", "u3"}},
		{types.StatusFieldID: {"opt_todo"}, types.OwnerFieldID: {"u2"}},
		{types.StatusFieldID: {}},
		{types.StatusFieldID: {"missing"}},
	}

	for _, filter := range filters {
		tableView := table.Build(project, filter, nil)
		ganttView := gantt.Build(project, filter, window, window.Start)

		gt.Array(t, ganttView.Rows).Length(len(tableView.Rows)).Required()
		for i := range tableView.Rows {
			gt.Value(t, ganttView.Rows[i].TaskID).Equal(tableView.Rows[i].TaskID)
		}
	}
}
