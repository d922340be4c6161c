package interfaces

import (
	"context"

	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// Gateway is the persistence contract for projects, their tasks and their
// schemas. Every implementation returns copies: mutating a returned project
// never changes stored state. Mutations are durable when the call returns.
type Gateway interface {
	// ListProjects returns all projects in creation order
	ListProjects(ctx context.Context) ([]*model.Project, error)

	// GetProject retrieves a project by ID.
	// Returns nil, nil if no project is found with the given ID.
	GetProject(ctx context.Context, id types.ProjectID) (*model.Project, error)

	// CreateProject creates a project with a fresh ID, a deep copy of the default
	// schema and no tasks. A blank team becomes model.DefaultTeam.
	CreateProject(ctx context.Context, name, team, description string) (*model.Project, error)

	// DeleteProject removes a project with all its tasks and fields. Deleting an
	// absent project is a no-op.
	DeleteProject(ctx context.Context, id types.ProjectID) error

	// AddTask appends a task. The task must carry a unique ID; adding to an
	// absent project is a no-op.
	AddTask(ctx context.Context, projectID types.ProjectID, task *model.Task) error

	// UpdateTask shallow-merges patch into the task. No-op when the project or
	// the task is absent.
	UpdateTask(ctx context.Context, projectID types.ProjectID, taskID types.TaskID, patch model.TaskPatch) error

	// DeleteTask removes a task. Deleting an absent task is a no-op.
	DeleteTask(ctx context.Context, projectID types.ProjectID, taskID types.TaskID) error

	// UpdateField merges patch into a field definition. No-op when the project
	// or the field is absent.
	UpdateField(ctx context.Context, projectID types.ProjectID, fieldID types.FieldID, patch model.FieldPatch) error

	// Close releases the underlying resources
	Close() error
}
