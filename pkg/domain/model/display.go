package model

import (
	"strings"

	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// Labels resolves the selected options of a select value in selection order.
// Unknown option IDs are skipped.
func Labels(field *FieldDefinition, v Value) []FieldOption {
	if field == nil || v == nil || v.IsEmpty() {
		return nil
	}
	ids, _ := v.members()
	var out []FieldOption
	for _, id := range ids {
		if opt := field.Option(types.OptionID(id)); opt != nil {
			out = append(out, *opt)
		}
	}
	return out
}

// Display returns a plain text form of v: text and dates as stored, select
// values as their option labels joined by ", ".
func Display(field *FieldDefinition, v Value) string {
	if v == nil || v.IsEmpty() {
		return ""
	}
	if field != nil && field.Type == types.FieldTypeSelect {
		opts := Labels(field, v)
		labels := make([]string, len(opts))
		for i, o := range opts {
			labels[i] = o.Label
		}
		return strings.Join(labels, ", ")
	}
	values, _ := v.members()
	return strings.Join(values, ", ")
}
