package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// Value is a task cell value. It is a closed union of TextValue, DateValue,
// SelectValue and RawValue; RawValue keeps JSON that could not be bound to a
// field of the schema (stale keys, or a shape that disagrees with the field type).
type Value interface {
	json.Marshaler

	// Type returns the field type the value belongs to, or "" for RawValue.
	Type() types.FieldType
	// IsEmpty reports whether the value carries nothing (empty string or no option).
	IsEmpty() bool

	// members returns the scalar or sequence shape used by the filter engine.
	members() (values []string, sequence bool)
}

// TextValue is the value of a text field
type TextValue string

func (v TextValue) Type() types.FieldType { return types.FieldTypeText }
func (v TextValue) IsEmpty() bool         { return v == "" }
func (v TextValue) members() ([]string, bool) {
	return []string{string(v)}, false
}
func (v TextValue) MarshalJSON() ([]byte, error) { return json.Marshal(string(v)) }

// DateValue is the value of a date field, an ISO-8601 calendar date string
type DateValue string

func (v DateValue) Type() types.FieldType { return types.FieldTypeDate }
func (v DateValue) IsEmpty() bool         { return v == "" }
func (v DateValue) members() ([]string, bool) {
	return []string{string(v)}, false
}
func (v DateValue) MarshalJSON() ([]byte, error) { return json.Marshal(string(v)) }

// Time parses the date. ok is false when the value is empty or unparseable.
func (v DateValue) Time() (t time.Time, ok bool) {
	if v == "" {
		return time.Time{}, false
	}
	parsed, err := types.ParseDate(string(v))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// SelectValue is the value of a select field. Single selects hold at most one ID
// and are stored as a string; multi selects are stored as an array.
type SelectValue struct {
	IDs   []types.OptionID
	Multi bool
}

// Single creates a single select value; an empty ID means no selection.
func Single(id types.OptionID) SelectValue {
	if id == "" {
		return SelectValue{}
	}
	return SelectValue{IDs: []types.OptionID{id}}
}

// Multi creates a multi select value
func Multi(ids ...types.OptionID) SelectValue {
	copied := make([]types.OptionID, len(ids))
	copy(copied, ids)
	return SelectValue{IDs: copied, Multi: true}
}

func (v SelectValue) Type() types.FieldType { return types.FieldTypeSelect }
func (v SelectValue) IsEmpty() bool         { return len(v.IDs) == 0 }
func (v SelectValue) members() ([]string, bool) {
	out := make([]string, len(v.IDs))
	for i, id := range v.IDs {
		out[i] = string(id)
	}
	if !v.Multi {
		if len(out) == 0 {
			return []string{""}, false
		}
		return out[:1], false
	}
	return out, true
}

func (v SelectValue) MarshalJSON() ([]byte, error) {
	if v.Multi {
		ids := v.IDs
		if ids == nil {
			ids = []types.OptionID{}
		}
		return json.Marshal(ids)
	}
	if len(v.IDs) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(v.IDs[0])
}

// Has reports whether id is selected
func (v SelectValue) Has(id types.OptionID) bool {
	for _, x := range v.IDs {
		if x == id {
			return true
		}
	}
	return false
}

func (v SelectValue) clone() SelectValue {
	if v.IDs == nil {
		return v
	}
	ids := make([]types.OptionID, len(v.IDs))
	copy(ids, v.IDs)
	return SelectValue{IDs: ids, Multi: v.Multi}
}

// RawValue is JSON that has not been bound to a schema field
type RawValue json.RawMessage

func (v RawValue) Type() types.FieldType { return "" }

func (v RawValue) IsEmpty() bool {
	trimmed := bytes.TrimSpace(v)
	switch string(trimmed) {
	case "", "null", `""`, "[]":
		return true
	}
	return false
}

func (v RawValue) members() ([]string, bool) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return []string{s}, false
	}
	var arr []string
	if err := json.Unmarshal(v, &arr); err == nil {
		return arr, true
	}
	return nil, false
}

func (v RawValue) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(v)) == 0 {
		return []byte("null"), nil
	}
	return []byte(v), nil
}

// Bind converts a value to the typed representation of field. Values whose shape
// does not fit the field type are returned unchanged as RawValue.
func Bind(field *FieldDefinition, v Value) Value {
	raw, ok := v.(RawValue)
	if !ok || field == nil {
		return v
	}

	var s string
	isString := json.Unmarshal(raw, &s) == nil

	switch field.Type {
	case types.FieldTypeText:
		if isString {
			return TextValue(s)
		}
	case types.FieldTypeDate:
		if isString {
			return DateValue(s)
		}
	case types.FieldTypeSelect:
		if isString {
			return Single(types.OptionID(s))
		}
		var arr []types.OptionID
		if err := json.Unmarshal(raw, &arr); err == nil {
			return Multi(arr...)
		}
	}
	return raw
}

func cloneValue(v Value) Value {
	switch x := v.(type) {
	case SelectValue:
		return x.clone()
	case RawValue:
		copied := make(RawValue, len(x))
		copy(copied, x)
		return copied
	default:
		return v
	}
}

func isNullJSON(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
