package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// FieldEditor edits a working copy of a select field's options. Nothing is
// stored until Save.
type FieldEditor struct {
	session *Session
	field   *model.FieldDefinition
	options []model.FieldOption
}

func newFieldEditor(s *Session, field *model.FieldDefinition) *FieldEditor {
	options := make([]model.FieldOption, len(field.Options))
	copy(options, field.Options)
	return &FieldEditor{
		session: s,
		field:   field.Clone(),
		options: options,
	}
}

// Field returns the field as it was when the editor was opened
func (e *FieldEditor) Field() *model.FieldDefinition {
	return e.field
}

// Options returns the working copy
func (e *FieldEditor) Options() []model.FieldOption {
	out := make([]model.FieldOption, len(e.options))
	copy(out, e.options)
	return out
}

// AddOption appends an option with a random palette color
func (e *FieldEditor) AddOption(label string) (model.FieldOption, error) {
	if strings.TrimSpace(label) == "" {
		return model.FieldOption{}, goerr.Wrap(ErrOptionLabelRequired, "cannot add option", goerr.V(model.FieldIDKey, e.field.ID))
	}
	opt := model.NewOption(label, e.session.ws.palette, -1)
	e.options = append(e.options, opt)
	return opt, nil
}

// RemoveOption drops an option from the working copy. Tasks still holding it
// keep the ID and simply stop showing it.
func (e *FieldEditor) RemoveOption(id types.OptionID) {
	kept := e.options[:0]
	for _, opt := range e.options {
		if opt.ID != id {
			kept = append(kept, opt)
		}
	}
	e.options = kept
}

// Save replaces the field's options with the working copy and refreshes the session
func (e *FieldEditor) Save(ctx context.Context) error {
	err := e.session.ws.gw.UpdateField(ctx, e.session.id, e.field.ID, model.OptionsPatch(e.options))
	e.session.afterWrite(ctx, err, "failed to update field", goerr.V(model.FieldIDKey, e.field.ID))
	return err
}
