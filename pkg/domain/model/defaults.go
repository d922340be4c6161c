package model

import (
	"time"

	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// DefaultFields returns a fresh copy of the schema every new project starts with
func DefaultFields() Schema {
	return Schema{
		{ID: types.NameFieldID, Name: "Task Name", Type: types.FieldTypeText, IsSystem: true},
		{
			ID:      types.OwnerFieldID,
			Name:    "Owner",
			Type:    types.FieldTypeSelect,
			IsMulti: true,
			Options: []FieldOption{
				{ID: "u1", Label: "Alice Chen", Color: "#3b82f6"},
				{ID: "u2", Label: "Bob Smith", Color: "#ef4444"},
				{ID: "u3", Label: "Charlie Kim", Color: "#22c55e"},
				{ID: "u4", Label: "Diana Prince", Color: "#eab308"},
			},
		},
		{
			ID:   types.StatusFieldID,
			Name: "Status",
			Type: types.FieldTypeSelect,
			Options: []FieldOption{
				{ID: "opt_todo", Label: "To Do", Color: "#94a3b8"},
				{ID: "opt_progress", Label: "In Progress", Color: "#3b82f6"},
				{ID: "opt_done", Label: "Done", Color: "#22c55e"},
			},
		},
		{ID: types.StartFieldID, Name: "Start Date", Type: types.FieldTypeDate},
		{ID: types.EndFieldID, Name: "End Date", Type: types.FieldTypeDate},
	}
}

// SeedProjects returns the demo project written to an empty local store
func SeedProjects(now time.Time) []*Project {
	task := func(id, name string, owners []types.OptionID, status types.OptionID, start, end string) *Task {
		return &Task{
			ID: types.TaskID(id),
			Values: map[types.FieldID]Value{
				types.NameFieldID:   TextValue(name),
				types.OwnerFieldID:  Multi(owners...),
				types.StatusFieldID: Single(status),
				types.StartFieldID:  DateValue(start),
				types.EndFieldID:    DateValue(end),
			},
		}
	}

	return []*Project{
		{
			ID:          "proj_alpha",
			Name:        "Website Redesign",
			Team:        "Product Team",
			Description: "Q4 Overhaul of the marketing site",
			CreatedAt:   now.UTC(),
			Fields:      DefaultFields(),
			Tasks: []*Task{
				task("t1", "Kickoff Meeting", []types.OptionID{"u1"}, "opt_done", "2023-10-01", "2023-10-01"),
				task("t2", "Design Mockups", []types.OptionID{"u2"}, "opt_progress", "2023-10-02", "2023-10-10"),
				task("t3", "Backend API", []types.OptionID{"u3"}, "opt_todo", "2023-10-05", "2023-10-15"),
				task("t4", "Frontend Integration", []types.OptionID{"u1", "u4"}, "opt_todo", "2023-10-12", "2023-10-25"),
				task("t5", "QA Testing", []types.OptionID{"u2"}, "opt_todo", "2023-10-26", "2023-10-30"),
			},
		},
	}
}
