package table

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

var (
	ErrNoChooser     = goerr.New("no option chooser is open")
	ErrNotChoosable  = goerr.New("cell is not a select field")
	ErrUnknownTarget = goerr.New("chooser target no longer exists")
)

// Rect is the on-screen rectangle of a cell, in pixels
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Placement positions the floating chooser
type Placement struct {
	Top      float64
	Left     float64
	MinWidth float64
}

const (
	chooserGap      = 4
	chooserMinWidth = 220
)

// Chooser is the select cell whose option chooser is open
type Chooser struct {
	TaskID  types.TaskID
	FieldID types.FieldID
	Anchor  Rect
}

// ChooserView lists the options of the open chooser
type ChooserView struct {
	TaskID    types.TaskID
	FieldID   types.FieldID
	Placement Placement
	Options   []ChooserOption
	Message   string // set when the field has no option
}

type ChooserOption struct {
	Option   model.FieldOption
	Selected bool
}

// DismissReason tells why the chooser is closed
type DismissReason string

const (
	DismissScroll    DismissReason = "scroll"
	DismissClickAway DismissReason = "click_away"
	DismissChoice    DismissReason = "choice"
)

// Session is the transient state of one table view: the open header menu and
// the open option chooser. It is never persisted.
type Session struct {
	menu    types.FieldID
	chooser *Chooser
}

func NewSession() *Session {
	return &Session{}
}

// MenuField returns the field whose header menu is open, or ""
func (s *Session) MenuField() types.FieldID {
	return s.menu
}

// ToggleMenu opens the header menu of fieldID, or closes it when already open
func (s *Session) ToggleMenu(fieldID types.FieldID) {
	if s.menu == fieldID {
		s.menu = ""
		return
	}
	s.menu = fieldID
}

func (s *Session) CloseMenu() {
	s.menu = ""
}

// OpenChooser opens the option chooser of a select cell anchored at its rectangle
func (s *Session) OpenChooser(taskID types.TaskID, fieldID types.FieldID, anchor Rect) {
	s.chooser = &Chooser{TaskID: taskID, FieldID: fieldID, Anchor: anchor}
}

// Chooser returns the open chooser, or nil
func (s *Session) Chooser() *Chooser {
	if s.chooser == nil {
		return nil
	}
	c := *s.chooser
	return &c
}

// Dismiss closes the chooser
func (s *Session) Dismiss(reason DismissReason) {
	s.chooser = nil
}

// ChooserPlacement places the chooser 4px below its anchor, left-aligned, at
// least as wide as the anchor and never narrower than 220px.
func (s *Session) ChooserPlacement() (Placement, bool) {
	if s.chooser == nil {
		return Placement{}, false
	}
	a := s.chooser.Anchor
	return Placement{
		Top:      a.Bottom() + chooserGap,
		Left:     a.Left,
		MinWidth: max(a.Width, chooserMinWidth),
	}, true
}

// Choose applies a click on optionID in the open chooser and returns the new
// value of the cell.
//   - single select: the clicked option replaces the selection, clicking the
//     selected option clears it; the chooser closes either way
//   - multi select: the clicked option is toggled and the chooser stays open
func (s *Session) Choose(project *model.Project, optionID types.OptionID) (model.Value, bool, error) {
	if s.chooser == nil {
		return nil, false, goerr.Wrap(ErrNoChooser, "cannot choose option", goerr.V(model.OptionIDKey, optionID))
	}

	field := project.Field(s.chooser.FieldID)
	task := project.Task(s.chooser.TaskID)
	if field == nil || task == nil {
		s.Dismiss(DismissChoice)
		return nil, true, goerr.Wrap(ErrUnknownTarget, "cannot choose option",
			goerr.V(model.FieldIDKey, s.chooser.FieldID),
			goerr.V(model.TaskIDKey, s.chooser.TaskID))
	}
	if field.Type != types.FieldTypeSelect {
		return nil, false, goerr.Wrap(ErrNotChoosable, "cannot choose option", goerr.V(model.FieldIDKey, field.ID))
	}

	// A stored value of the wrong shape is replaced
	current, _ := task.Selection(field)
	selected := slices.Contains(current, optionID)

	if field.IsMulti {
		next := make([]types.OptionID, 0, len(current)+1)
		for _, id := range current {
			if id != optionID {
				next = append(next, id)
			}
		}
		if !selected {
			next = append(next, optionID)
		}
		return model.Multi(next...), false, nil
	}

	s.Dismiss(DismissChoice)
	if selected {
		return model.Single(""), true, nil
	}
	return model.Single(optionID), true, nil
}

func (s *Session) chooserView(project *model.Project) *ChooserView {
	if s.chooser == nil {
		return nil
	}
	field := project.Field(s.chooser.FieldID)
	task := project.Task(s.chooser.TaskID)
	if field == nil || task == nil || field.Type != types.FieldTypeSelect {
		return nil
	}

	placement, _ := s.ChooserPlacement()
	view := &ChooserView{
		TaskID:    task.ID,
		FieldID:   field.ID,
		Placement: placement,
	}
	current, _ := task.Selection(field)
	for _, opt := range field.Options {
		view.Options = append(view.Options, ChooserOption{
			Option:   opt,
			Selected: slices.Contains(current, opt.ID),
		})
	}
	if len(field.Options) == 0 {
		view.Message = NoOptionsDefined
	}
	return view
}
