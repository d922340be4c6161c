package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// FieldOption is one selectable, colored value of a select field
type FieldOption struct {
	ID    types.OptionID `json:"id"`
	Label string         `json:"label"`
	Color types.Color    `json:"color"`
}

// FieldDefinition is a named, typed column of a project schema
type FieldDefinition struct {
	ID       types.FieldID   `json:"id"`
	Name     string          `json:"name"`
	Type     types.FieldType `json:"type"`
	Options  []FieldOption   `json:"options,omitempty"` // Only for select
	IsMulti  bool            `json:"isMulti,omitempty"`
	IsSystem bool            `json:"isSystem,omitempty"` // Cannot be removed from the schema
}

// Option looks up an option by ID. Returns nil when the ID is unknown.
func (f *FieldDefinition) Option(id types.OptionID) *FieldOption {
	for i := range f.Options {
		if f.Options[i].ID == id {
			return &f.Options[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the field definition
func (f *FieldDefinition) Clone() *FieldDefinition {
	if f == nil {
		return nil
	}
	cloned := *f
	if f.Options != nil {
		cloned.Options = make([]FieldOption, len(f.Options))
		copy(cloned.Options, f.Options)
	}
	return &cloned
}

// Validate checks the definition is internally consistent
func (f *FieldDefinition) Validate() error {
	if f.ID == "" {
		return goerr.Wrap(ErrInvalidField, "field ID is required")
	}
	if f.Name == "" {
		return goerr.Wrap(ErrInvalidField, "field name is required", goerr.V(FieldIDKey, f.ID))
	}
	if !f.Type.IsValid() {
		return goerr.Wrap(ErrInvalidField, "unknown field type",
			goerr.V(FieldIDKey, f.ID),
			goerr.V(ActualTypeKey, f.Type))
	}
	if f.Type != types.FieldTypeSelect {
		if len(f.Options) > 0 {
			return goerr.Wrap(ErrInvalidField, "options are only allowed for select fields", goerr.V(FieldIDKey, f.ID))
		}
		return nil
	}

	seen := make(map[types.OptionID]bool, len(f.Options))
	for _, opt := range f.Options {
		if opt.ID == "" {
			return goerr.Wrap(ErrInvalidField, "option ID is required", goerr.V(FieldIDKey, f.ID))
		}
		if seen[opt.ID] {
			return goerr.Wrap(ErrInvalidField, "duplicate option ID",
				goerr.V(FieldIDKey, f.ID),
				goerr.V(OptionIDKey, opt.ID))
		}
		seen[opt.ID] = true
		if err := opt.Color.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidField, "invalid option color",
				goerr.V(FieldIDKey, f.ID),
				goerr.V(OptionIDKey, opt.ID))
		}
	}
	return nil
}

// NewOption creates an option colored from the palette: round robin by index,
// or a random hue when index is negative.
func NewOption(label string, palette types.Palette, index int) FieldOption {
	color := palette.Random()
	if index >= 0 {
		color = palette.Next(index)
	}
	return FieldOption{
		ID:    types.NewOptionID(),
		Label: label,
		Color: color,
	}
}

// FieldPatch is a partial update of a field definition. Options are replaced wholesale.
type FieldPatch struct {
	Name    *string        `json:"name,omitempty"`
	Options *[]FieldOption `json:"options,omitempty"`
	IsMulti *bool          `json:"isMulti,omitempty"`
}

// Apply merges the patch into f
func (p FieldPatch) Apply(f *FieldDefinition) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Options != nil {
		f.Options = make([]FieldOption, len(*p.Options))
		copy(f.Options, *p.Options)
	}
	if p.IsMulti != nil {
		f.IsMulti = *p.IsMulti
	}
}

// OptionsPatch builds a patch replacing the option list
func OptionsPatch(options []FieldOption) FieldPatch {
	copied := make([]FieldOption, len(options))
	copy(copied, options)
	return FieldPatch{Options: &copied}
}
