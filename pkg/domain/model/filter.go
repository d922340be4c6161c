package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// Filter maps a field ID to the option IDs allowed for it. An entry with an empty
// list imposes no constraint. Filters are transient view-session state.
type Filter map[types.FieldID][]types.OptionID

// Matches reports whether task satisfies every active entry of f: OR within one
// field's allowed list, AND across fields. A sequence value matches when it shares
// at least one element with the allowed list, a scalar when it is a member of it.
// An absent or empty value fails any active entry.
func Matches(task *Task, f Filter) bool {
	for fieldID, allowed := range f {
		if len(allowed) == 0 {
			continue
		}
		v := task.Get(fieldID)
		if v == nil || v.IsEmpty() {
			return false
		}
		values, _ := v.members()
		if !anyAllowed(values, allowed) {
			return false
		}
	}
	return true
}

func anyAllowed(values []string, allowed []types.OptionID) bool {
	for _, v := range values {
		for _, a := range allowed {
			if v == string(a) {
				return true
			}
		}
	}
	return false
}

// Matches reports whether task satisfies the filter
func (f Filter) Matches(task *Task) bool {
	return Matches(task, f)
}

// Apply returns the tasks matching f, preserving order
func (f Filter) Apply(tasks []*Task) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// Allows reports whether optionID is in the allowed list of fieldID
func (f Filter) Allows(fieldID types.FieldID, optionID types.OptionID) bool {
	return slices.Contains(f[fieldID], optionID)
}

// IsActive reports whether fieldID has a non-empty allowed list
func (f Filter) IsActive(fieldID types.FieldID) bool {
	return len(f[fieldID]) > 0
}

// Active reports whether any entry constrains the result
func (f Filter) Active() bool {
	for _, allowed := range f {
		if len(allowed) > 0 {
			return true
		}
	}
	return false
}

// Count returns the total number of allowed values across all entries
func (f Filter) Count() int {
	n := 0
	for _, allowed := range f {
		n += len(allowed)
	}
	return n
}

// Clone returns a deep copy of f
func (f Filter) Clone() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		out[k] = slices.Clone(v)
	}
	return out
}

// With returns a copy of f with the allowed list of fieldID replaced
func (f Filter) With(fieldID types.FieldID, allowed []types.OptionID) Filter {
	out := f.Clone()
	out[fieldID] = slices.Clone(allowed)
	return out
}

// Toggle returns a copy of f with optionID added to or removed from fieldID's list
func (f Filter) Toggle(fieldID types.FieldID, optionID types.OptionID) Filter {
	current := f[fieldID]
	if slices.Contains(current, optionID) {
		next := make([]types.OptionID, 0, len(current))
		for _, id := range current {
			if id != optionID {
				next = append(next, id)
			}
		}
		return f.With(fieldID, next)
	}
	return f.With(fieldID, append(slices.Clone(current), optionID))
}

// Clear returns an empty filter
func (f Filter) Clear() Filter {
	return Filter{}
}

// FilterSupport reports ErrFilterNotSupported for fields that cannot be filtered yet.
// Only select fields are filterable.
func FilterSupport(field *FieldDefinition) error {
	if field.Type != types.FieldTypeSelect {
		return goerr.Wrap(ErrFilterNotSupported, "field is not filterable",
			goerr.V(FieldIDKey, field.ID),
			goerr.V(ActualTypeKey, field.Type))
	}
	return nil
}
