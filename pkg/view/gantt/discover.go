// Package gantt lays out the timeline view of a project: which fields drive the
// bars, the visible window, and per-task bar geometry.
package gantt

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

var ErrMissingDateFields = goerr.New("timeline requires a start and an end date field")

// Fields are the schema fields the timeline is drawn from
type Fields struct {
	Start *model.FieldDefinition
	End   *model.FieldDefinition
	Name  *model.FieldDefinition
	Color *model.FieldDefinition // nil when the schema has no candidate
}

// Discover picks the timeline fields from the schema:
//   - start: first date field whose name contains "start" (case-insensitive), else the first date field
//   - end: first date field whose name contains "end", else the second date field by position
//   - name: the system field, else the first field
//   - color: the status field, else the first select field
//
// ErrMissingDateFields is returned when start or end cannot be found.
func Discover(schema model.Schema) (*Fields, error) {
	var dates []*model.FieldDefinition
	for _, f := range schema {
		if f.Type == types.FieldTypeDate {
			dates = append(dates, f)
		}
	}

	fields := &Fields{
		Start: findDate(dates, "start"),
		End:   findDate(dates, "end"),
	}
	if fields.Start == nil && len(dates) > 0 {
		fields.Start = dates[0]
	}
	if fields.End == nil && len(dates) > 1 {
		fields.End = dates[1]
	}
	if fields.Start == nil || fields.End == nil {
		return nil, goerr.Wrap(ErrMissingDateFields, "cannot lay out timeline", goerr.V("date_fields", len(dates)))
	}

	for _, f := range schema {
		if f.IsSystem {
			fields.Name = f
			break
		}
	}
	if fields.Name == nil && len(schema) > 0 {
		fields.Name = schema[0]
	}

	fields.Color = schema.Field(types.StatusFieldID)
	if fields.Color == nil {
		for _, f := range schema {
			if f.Type == types.FieldTypeSelect {
				fields.Color = f
				break
			}
		}
	}

	return fields, nil
}

func findDate(dates []*model.FieldDefinition, keyword string) *model.FieldDefinition {
	for _, f := range dates {
		if strings.Contains(strings.ToLower(f.Name), keyword) {
			return f
		}
	}
	return nil
}
