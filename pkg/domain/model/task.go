package model

import (
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// Task is a row of a project, holding one value per field ID.
type Task struct {
	ID     types.TaskID
	Values map[types.FieldID]Value
}

// NewTask creates an empty task with a fresh ID
func NewTask() *Task {
	return &Task{
		ID:     types.NewTaskID(),
		Values: make(map[types.FieldID]Value),
	}
}

// Get returns the value stored for fieldID, or nil when absent
func (t *Task) Get(fieldID types.FieldID) Value {
	if t.Values == nil {
		return nil
	}
	return t.Values[fieldID]
}

// Text returns the text stored for a text field.
func (t *Task) Text(field *FieldDefinition) (string, error) {
	v, err := t.lookup(field, types.FieldTypeText)
	if err != nil || v == nil {
		return "", err
	}
	text, ok := v.(TextValue)
	if !ok {
		return "", mismatch(t, field, v)
	}
	return string(text), nil
}

// Date returns the date stored for a date field. An absent date is "".
func (t *Task) Date(field *FieldDefinition) (DateValue, error) {
	v, err := t.lookup(field, types.FieldTypeDate)
	if err != nil || v == nil {
		return "", err
	}
	date, ok := v.(DateValue)
	if !ok {
		return "", mismatch(t, field, v)
	}
	return date, nil
}

// Selection returns the option IDs selected for a select field, in stored order.
func (t *Task) Selection(field *FieldDefinition) ([]types.OptionID, error) {
	v, err := t.lookup(field, types.FieldTypeSelect)
	if err != nil || v == nil {
		return nil, err
	}
	sel, ok := v.(SelectValue)
	if !ok {
		return nil, mismatch(t, field, v)
	}
	return sel.clone().IDs, nil
}

func (t *Task) lookup(field *FieldDefinition, expected types.FieldType) (Value, error) {
	if field.Type != expected {
		return nil, goerr.Wrap(ErrFieldTypeMismatch, "wrong accessor for field",
			goerr.V(FieldIDKey, field.ID),
			goerr.V(ExpectedTypeKey, expected),
			goerr.V(ActualTypeKey, field.Type))
	}
	return t.Get(field.ID), nil
}

func mismatch(t *Task, field *FieldDefinition, v Value) error {
	return goerr.Wrap(ErrValueTypeMismatch, "stored value disagrees with field type",
		goerr.V(TaskIDKey, t.ID),
		goerr.V(FieldIDKey, field.ID),
		goerr.V(ExpectedTypeKey, field.Type),
		goerr.V(ActualTypeKey, fmt.Sprintf("%T", v)))
}

// Set stores v for field after checking it agrees with the field type. A nil value clears the field.
func (t *Task) Set(field *FieldDefinition, v Value) error {
	if t.Values == nil {
		t.Values = make(map[types.FieldID]Value)
	}
	if v == nil {
		delete(t.Values, field.ID)
		return nil
	}
	bound, err := Conform(field, v)
	if err != nil {
		return goerr.Wrap(err, "cannot set value", goerr.V(TaskIDKey, t.ID))
	}
	t.Values[field.ID] = bound
	return nil
}

// Conform binds v to field and validates it. Select values adopt the field's multi mode.
func Conform(field *FieldDefinition, v Value) (Value, error) {
	bound := Bind(field, v)
	if bound.Type() != field.Type {
		return nil, goerr.Wrap(ErrValueTypeMismatch, "value does not fit field",
			goerr.V(FieldIDKey, field.ID),
			goerr.V(ExpectedTypeKey, field.Type),
			goerr.V(ActualTypeKey, fmt.Sprintf("%T", bound)))
	}
	if sel, ok := bound.(SelectValue); ok {
		if !field.IsMulti && len(sel.IDs) > 1 {
			return nil, goerr.Wrap(ErrValueTypeMismatch, "single select holds at most one option",
				goerr.V(FieldIDKey, field.ID))
		}
		sel = sel.clone()
		sel.Multi = field.IsMulti
		bound = sel
	}
	return bound, nil
}

// Clone returns a deep copy of the task
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cloned := &Task{
		ID:     t.ID,
		Values: make(map[types.FieldID]Value, len(t.Values)),
	}
	for k, v := range t.Values {
		cloned.Values[k] = cloneValue(v)
	}
	return cloned
}

// Merge applies a shallow merge: keys of the patch replace keys of the task and a
// nil value removes the key. Other keys are untouched.
func (t *Task) Merge(patch TaskPatch) {
	if t.Values == nil {
		t.Values = make(map[types.FieldID]Value)
	}
	for k, v := range patch {
		if v == nil {
			delete(t.Values, k)
			continue
		}
		t.Values[k] = cloneValue(v)
	}
}

// MarshalJSON encodes the task as a flat object: {"id": ..., "<fieldID>": value}
func (t Task) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(t.Values)+1)
	for k, v := range t.Values {
		if v == nil || k == "id" {
			continue
		}
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode task value",
				goerr.V(TaskIDKey, t.ID),
				goerr.V(FieldIDKey, k))
		}
		obj[string(k)] = raw
	}
	id, err := json.Marshal(t.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode task id")
	}
	obj["id"] = id
	return json.Marshal(obj)
}

// UnmarshalJSON decodes the flat object form. Values stay unbound (RawValue)
// until the owning project binds them to its schema.
func (t *Task) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return goerr.Wrap(err, "failed to decode task")
	}

	rawID, ok := obj["id"]
	if !ok {
		return goerr.Wrap(ErrInvalidTask, "task id is missing")
	}
	var id string
	if err := json.Unmarshal(rawID, &id); err != nil {
		return goerr.Wrap(ErrInvalidTask, "task id must be a string")
	}

	t.ID = types.TaskID(id)
	t.Values = make(map[types.FieldID]Value, len(obj)-1)
	for k, raw := range obj {
		if k == "id" || isNullJSON(raw) {
			continue
		}
		t.Values[types.FieldID(k)] = RawValue(raw)
	}
	return nil
}

// TaskPatch is a partial task update keyed by field ID. A nil value clears the field.
type TaskPatch map[types.FieldID]Value

// UnmarshalJSON decodes a partial update. The "id" key is ignored and null clears a field.
func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return goerr.Wrap(err, "failed to decode task patch")
	}
	patch := make(TaskPatch, len(obj))
	for k, raw := range obj {
		if k == "id" {
			continue
		}
		if isNullJSON(raw) {
			patch[types.FieldID(k)] = nil
			continue
		}
		patch[types.FieldID(k)] = RawValue(raw)
	}
	*p = patch
	return nil
}

// MarshalJSON encodes the patch; cleared fields are encoded as null.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(p))
	for k, v := range p {
		if v == nil {
			obj[string(k)] = json.RawMessage("null")
			continue
		}
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode task patch", goerr.V(FieldIDKey, k))
		}
		obj[string(k)] = raw
	}
	return json.Marshal(obj)
}
