package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// IssueKind classifies a stored value that no longer matches its project schema
type IssueKind string

const (
	IssueInvalidSchema IssueKind = "invalid_schema"
	IssueStaleField    IssueKind = "stale_field"
	IssueTypeMismatch  IssueKind = "type_mismatch"
	IssueUnknownOption IssueKind = "unknown_option"
)

// Issue is one inconsistency found in the store. The renderers tolerate all of
// them; they are reported for cleanup only.
type Issue struct {
	Kind      IssueKind
	ProjectID types.ProjectID
	TaskID    types.TaskID
	FieldID   types.FieldID
	OptionID  types.OptionID
	Message   string
}

// CheckConsistency scans every stored project for values that reference deleted
// fields or options, or that do not fit the field type.
func (ws *Workspace) CheckConsistency(ctx context.Context) ([]Issue, error) {
	projects, err := ws.gw.ListProjects(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects")
	}

	var issues []Issue
	for _, p := range projects {
		issues = append(issues, checkProject(p)...)
	}
	return issues, nil
}

func checkProject(p *model.Project) []Issue {
	var issues []Issue
	if err := p.Fields.Validate(); err != nil {
		issues = append(issues, Issue{
			Kind:      IssueInvalidSchema,
			ProjectID: p.ID,
			Message:   err.Error(),
		})
	}

	for _, t := range p.Tasks {
		for fieldID, v := range t.Values {
			if v == nil || v.IsEmpty() {
				continue
			}
			field := p.Field(fieldID)
			if field == nil {
				issues = append(issues, Issue{
					Kind:      IssueStaleField,
					ProjectID: p.ID,
					TaskID:    t.ID,
					FieldID:   fieldID,
					Message:   "value for a field that no longer exists",
				})
				continue
			}
			if v.Type() != field.Type {
				issues = append(issues, Issue{
					Kind:      IssueTypeMismatch,
					ProjectID: p.ID,
					TaskID:    t.ID,
					FieldID:   fieldID,
					Message:   "value does not fit field type " + field.Type.String(),
				})
				continue
			}
			sel, ok := v.(model.SelectValue)
			if !ok {
				continue
			}
			for _, id := range sel.IDs {
				if field.Option(id) == nil {
					issues = append(issues, Issue{
						Kind:      IssueUnknownOption,
						ProjectID: p.ID,
						TaskID:    t.ID,
						FieldID:   fieldID,
						OptionID:  id,
						Message:   "selected option no longer exists",
					})
				}
			}
		}
	}
	return issues
}
