package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/utils/errutil"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
	"github.com/secmon-lab/flexigantt/pkg/view/gantt"
	"github.com/secmon-lab/flexigantt/pkg/view/table"
)

// Session is the state of one open project: the last fetched snapshot, the
// active filter and the view mode. Every write goes through the gateway and
// is followed by a full re-fetch, so the snapshot is never edited in place.
//
// A Session is not safe for concurrent use.
type Session struct {
	ws      *Workspace
	id      types.ProjectID
	project *model.Project
	filter  model.Filter
	mode    types.ViewMode
	table   *table.Session
	gantt   *gantt.Session
}

func newSession(ws *Workspace, project *model.Project) *Session {
	return &Session{
		ws:      ws,
		id:      project.ID,
		project: project,
		filter:  model.Filter{},
		mode:    types.ViewModeTable,
		table:   table.NewSession(),
	}
}

// Project returns the current snapshot, or nil once the project has been deleted
func (s *Session) Project() *model.Project {
	return s.project
}

func (s *Session) ProjectID() types.ProjectID {
	return s.id
}

// Refresh replaces the snapshot with a fresh read. A failed read keeps the
// current snapshot.
func (s *Session) Refresh(ctx context.Context) {
	project, err := s.ws.gw.GetProject(ctx, s.id)
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to refresh project", goerr.V(model.ProjectIDKey, s.id)), "failed to refresh project")
		return
	}
	if project == nil {
		logging.From(ctx).Warn("project disappeared", "project_id", s.id)
	}
	s.project = project
}

func (s *Session) ViewMode() types.ViewMode {
	return s.mode
}

// SetViewMode switches between table and timeline. Entering the timeline
// fixes its date window around today.
func (s *Session) SetViewMode(mode types.ViewMode) error {
	if !mode.IsValid() {
		return goerr.New("invalid view mode", goerr.V("mode", mode))
	}
	if mode == types.ViewModeGantt && (s.mode != mode || s.gantt == nil) {
		s.gantt = gantt.NewSession(s.ws.now)
	}
	s.mode = mode
	return nil
}

// Filter returns a copy of the active filter
func (s *Session) Filter() model.Filter {
	return s.filter.Clone()
}

// SetFilter replaces the allowed options of one field. An empty list removes the constraint.
func (s *Session) SetFilter(fieldID types.FieldID, allowed []types.OptionID) error {
	if err := s.filterable(fieldID); err != nil {
		return err
	}
	s.filter = s.filter.With(fieldID, allowed)
	return nil
}

// ToggleFilter adds or removes one option from the filter of a field
func (s *Session) ToggleFilter(fieldID types.FieldID, optionID types.OptionID) error {
	if err := s.filterable(fieldID); err != nil {
		return err
	}
	s.filter = s.filter.Toggle(fieldID, optionID)
	return nil
}

// ClearFilters removes every constraint
func (s *Session) ClearFilters() {
	s.filter = s.filter.Clear()
}

func (s *Session) filterable(fieldID types.FieldID) error {
	if s.project == nil {
		return goerr.Wrap(ErrProjectClosed, "cannot filter", goerr.V(model.ProjectIDKey, s.id))
	}
	field := s.project.Field(fieldID)
	if field == nil {
		return goerr.Wrap(ErrFieldNotFound, "cannot filter", goerr.V(model.FieldIDKey, fieldID))
	}
	return model.FilterSupport(field)
}

// TableSession holds the open header menu and option chooser
func (s *Session) TableSession() *table.Session {
	return s.table
}

// TableView renders the snapshot as a table. Nil once the project is gone.
func (s *Session) TableView() *table.View {
	if s.project == nil {
		return nil
	}
	return table.Build(s.project, s.filter, s.table)
}

// GanttView renders the snapshot as a timeline in the window fixed when the
// timeline was entered. Nil once the project is gone.
func (s *Session) GanttView() *gantt.View {
	if s.project == nil {
		return nil
	}
	if s.gantt == nil {
		s.gantt = gantt.NewSession(s.ws.now)
	}
	return s.gantt.Build(s.project, s.filter)
}

// AddTask appends a blank task with a fresh ID
func (s *Session) AddTask(ctx context.Context) (types.TaskID, error) {
	task := model.NewTask()
	err := s.ws.gw.AddTask(ctx, s.id, task)
	s.afterWrite(ctx, err, "failed to add task", goerr.V(model.TaskIDKey, task.ID))
	if err != nil {
		return "", err
	}
	return task.ID, nil
}

// UpdateCell parses raw input for a cell and stores it. Text is taken as is,
// dates must be YYYY-MM-DD (blank clears), select input is a comma separated
// list of option IDs.
func (s *Session) UpdateCell(ctx context.Context, taskID types.TaskID, fieldID types.FieldID, raw string) error {
	if s.project == nil {
		return goerr.Wrap(ErrProjectClosed, "cannot update cell", goerr.V(model.ProjectIDKey, s.id))
	}
	field := s.project.Field(fieldID)
	if field == nil {
		return goerr.Wrap(ErrFieldNotFound, "cannot update cell", goerr.V(model.FieldIDKey, fieldID))
	}
	v, err := ParseCell(field, raw)
	if err != nil {
		return err
	}
	return s.SetValue(ctx, taskID, fieldID, v)
}

// SetValue stores a typed value in a cell. A nil value clears it.
func (s *Session) SetValue(ctx context.Context, taskID types.TaskID, fieldID types.FieldID, v model.Value) error {
	if s.project == nil {
		return goerr.Wrap(ErrProjectClosed, "cannot update cell", goerr.V(model.ProjectIDKey, s.id))
	}
	field := s.project.Field(fieldID)
	if field == nil {
		return goerr.Wrap(ErrFieldNotFound, "cannot update cell", goerr.V(model.FieldIDKey, fieldID))
	}
	if s.project.Task(taskID) == nil {
		return goerr.Wrap(ErrTaskNotFound, "cannot update cell", goerr.V(model.TaskIDKey, taskID))
	}

	if v != nil {
		bound, err := model.Conform(field, v)
		if err != nil {
			return goerr.Wrap(err, "cannot update cell", goerr.V(model.TaskIDKey, taskID))
		}
		v = bound
	}

	err := s.ws.gw.UpdateTask(ctx, s.id, taskID, model.TaskPatch{fieldID: v})
	s.afterWrite(ctx, err, "failed to update task",
		goerr.V(model.TaskIDKey, taskID),
		goerr.V(model.FieldIDKey, fieldID))
	return err
}

// Choose applies a click in the open option chooser and stores the result
func (s *Session) Choose(ctx context.Context, optionID types.OptionID) error {
	if s.project == nil {
		return goerr.Wrap(ErrProjectClosed, "cannot choose option", goerr.V(model.ProjectIDKey, s.id))
	}
	chooser := s.table.Chooser()
	v, _, err := s.table.Choose(s.project, optionID)
	if err != nil {
		return err
	}
	return s.SetValue(ctx, chooser.TaskID, chooser.FieldID, v)
}

// DeleteTask removes a task. Deleting an absent task succeeds.
func (s *Session) DeleteTask(ctx context.Context, taskID types.TaskID) error {
	err := s.ws.gw.DeleteTask(ctx, s.id, taskID)
	s.afterWrite(ctx, err, "failed to delete task", goerr.V(model.TaskIDKey, taskID))
	return err
}

// OpenFieldEditor starts editing the options of a select field
func (s *Session) OpenFieldEditor(fieldID types.FieldID) (*FieldEditor, error) {
	if s.project == nil {
		return nil, goerr.Wrap(ErrProjectClosed, "cannot edit field", goerr.V(model.ProjectIDKey, s.id))
	}
	field := s.project.Field(fieldID)
	if field == nil {
		return nil, goerr.Wrap(ErrFieldNotFound, "cannot edit field", goerr.V(model.FieldIDKey, fieldID))
	}
	if field.Type != types.FieldTypeSelect {
		return nil, goerr.Wrap(ErrNotSelectField, "cannot edit field",
			goerr.V(model.FieldIDKey, fieldID),
			goerr.V(model.ActualTypeKey, field.Type))
	}
	return newFieldEditor(s, field), nil
}

// afterWrite logs a failed write and re-fetches the project either way, so
// the snapshot reflects what the store actually holds.
func (s *Session) afterWrite(ctx context.Context, err error, msg string, values ...goerr.Option) {
	if err != nil {
		values = append(values, goerr.V(model.ProjectIDKey, s.id))
		_ = errutil.Handle(ctx, goerr.Wrap(err, msg, values...), msg)
	}
	s.Refresh(ctx)
}

// ParseCell converts form input into a value of the field's type
func ParseCell(field *model.FieldDefinition, raw string) (model.Value, error) {
	switch field.Type {
	case types.FieldTypeText:
		return model.TextValue(raw), nil

	case types.FieldTypeDate:
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		t, err := types.ParseDate(raw)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidDate, "cannot parse date",
				goerr.V(model.FieldIDKey, field.ID),
				goerr.V("input", raw))
		}
		return model.DateValue(types.FormatDate(t)), nil

	case types.FieldTypeSelect:
		var ids []types.OptionID
		for part := range strings.SplitSeq(raw, ",") {
			if id := strings.TrimSpace(part); id != "" {
				ids = append(ids, types.OptionID(id))
			}
		}
		if field.IsMulti {
			return model.Multi(ids...), nil
		}
		switch len(ids) {
		case 0:
			return model.Single(""), nil
		case 1:
			return model.Single(ids[0]), nil
		default:
			return nil, goerr.Wrap(model.ErrValueTypeMismatch, "single select holds at most one option",
				goerr.V(model.FieldIDKey, field.ID))
		}
	}

	return nil, goerr.Wrap(model.ErrFieldTypeMismatch, "unknown field type",
		goerr.V(model.FieldIDKey, field.ID),
		goerr.V(model.ActualTypeKey, field.Type))
}
