package model

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// DefaultTeam is used for projects created without a team
const DefaultTeam = "General"

// Project owns a field schema and the tasks recorded against it
type Project struct {
	ID          types.ProjectID    `json:"id"`
	Name        string             `json:"name"`
	Team        string             `json:"team"`
	Description string             `json:"description,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	Fields      Schema             `json:"fields"`
	Tasks       []*Task            `json:"tasks"`
}

// Schema is the ordered field list of a project; order is display order.
type Schema []*FieldDefinition

// Field looks up a field by ID. Returns nil when the ID is unknown.
func (s Schema) Field(id types.FieldID) *FieldDefinition {
	for _, f := range s {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Clone returns a deep copy of the schema
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	cloned := make(Schema, len(s))
	for i, f := range s {
		cloned[i] = f.Clone()
	}
	return cloned
}

// Validate checks every field and rejects duplicate field IDs
func (s Schema) Validate() error {
	seen := make(map[types.FieldID]bool, len(s))
	for _, f := range s {
		if err := f.Validate(); err != nil {
			return err
		}
		if seen[f.ID] {
			return goerr.Wrap(ErrInvalidField, "duplicate field ID", goerr.V(FieldIDKey, f.ID))
		}
		seen[f.ID] = true
	}
	return nil
}

// Field looks up a field of the schema. Returns nil when the ID is unknown.
func (p *Project) Field(id types.FieldID) *FieldDefinition {
	return p.Fields.Field(id)
}

// Task looks up a task. Returns nil when the ID is unknown.
func (p *Project) Task(id types.TaskID) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TaskIndex returns the position of the task, or -1
func (p *Project) TaskIndex(id types.TaskID) int {
	for i, t := range p.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy; edits to the copy never reach the original.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cloned := *p
	cloned.Fields = p.Fields.Clone()
	cloned.Tasks = make([]*Task, len(p.Tasks))
	for i, t := range p.Tasks {
		cloned.Tasks[i] = t.Clone()
	}
	return &cloned
}

// Bind converts the raw values of every task into typed values according to the
// schema. Keys that name no field are kept verbatim and ignored by the renderers.
func (p *Project) Bind() {
	for _, t := range p.Tasks {
		for k, v := range t.Values {
			if field := p.Field(k); field != nil {
				t.Values[k] = Bind(field, v)
			}
		}
	}
}

// BindPatch converts raw patch values against the schema
func (p *Project) BindPatch(patch TaskPatch) TaskPatch {
	bound := make(TaskPatch, len(patch))
	for k, v := range patch {
		if v == nil {
			bound[k] = nil
			continue
		}
		bound[k] = Bind(p.Field(k), v)
	}
	return bound
}

// UnmarshalJSON decodes a project and binds its tasks to the decoded schema
func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return goerr.Wrap(err, "failed to decode project")
	}
	*p = Project(decoded)
	if p.Fields == nil {
		p.Fields = Schema{}
	}
	if p.Tasks == nil {
		p.Tasks = []*Task{}
	}
	p.Bind()
	return nil
}

// NewProject creates a project with a deep copy of the default schema and no tasks.
// A blank team becomes DefaultTeam.
func NewProject(name, team, description string, fields Schema, now time.Time) *Project {
	if team == "" {
		team = DefaultTeam
	}
	if fields == nil {
		fields = DefaultFields()
	}
	return &Project{
		ID:          types.NewProjectID(),
		Name:        name,
		Team:        team,
		Description: description,
		CreatedAt:   now.UTC(),
		Fields:      fields.Clone(),
		Tasks:       []*Task{},
	}
}
