package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// PersistFunc receives the complete project list after every mutation. When it
// fails the mutation is discarded and the error is returned to the caller.
type PersistFunc func(ctx context.Context, projects []*model.Project) error

// Gateway keeps projects in memory. Stored projects are never mutated in place:
// every mutation works on a copy that replaces the stored one once persisted.
type Gateway struct {
	mu       sync.RWMutex
	projects []*model.Project
	schema   model.Schema
	now      func() time.Time
	persist  PersistFunc
}

var _ interfaces.Gateway = &Gateway{}

type Option func(*Gateway)

// WithSchema sets the field set new projects start with
func WithSchema(schema model.Schema) Option {
	return func(g *Gateway) {
		g.schema = schema.Clone()
	}
}

// WithClock replaces the clock used for creation timestamps
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// WithProjects sets the initial projects
func WithProjects(projects []*model.Project) Option {
	return func(g *Gateway) {
		g.projects = make([]*model.Project, len(projects))
		for i, p := range projects {
			g.projects[i] = p.Clone()
		}
	}
}

// WithPersist registers a write-through hook called with the new state after
// every mutation
func WithPersist(fn PersistFunc) Option {
	return func(g *Gateway) {
		g.persist = fn
	}
}

func New(opts ...Option) *Gateway {
	g := &Gateway{
		projects: []*model.Project{},
		schema:   model.DefaultFields(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// mutate applies fn to a shallow copy of the project list. fn must replace a
// project with a clone before changing it and reports whether anything changed.
func (g *Gateway) mutate(ctx context.Context, fn func(projects []*model.Project) ([]*model.Project, bool, error)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := make([]*model.Project, len(g.projects))
	copy(next, g.projects)

	next, changed, err := fn(next)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if g.persist != nil {
		if err := g.persist(ctx, next); err != nil {
			return goerr.Wrap(err, "failed to persist projects")
		}
	}
	g.projects = next
	return nil
}

// editProject replaces the project with a clone and passes the clone to fn
func (g *Gateway) editProject(ctx context.Context, id types.ProjectID, fn func(p *model.Project) (bool, error)) error {
	return g.mutate(ctx, func(projects []*model.Project) ([]*model.Project, bool, error) {
		for i, p := range projects {
			if p.ID != id {
				continue
			}
			edited := p.Clone()
			changed, err := fn(edited)
			if err != nil || !changed {
				return projects, false, err
			}
			projects[i] = edited
			return projects, true, nil
		}
		return projects, false, nil
	})
}

func (g *Gateway) ListProjects(ctx context.Context) ([]*model.Project, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*model.Project, len(g.projects))
	for i, p := range g.projects {
		result[i] = p.Clone()
	}
	return result, nil
}

func (g *Gateway) GetProject(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, p := range g.projects {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return nil, nil
}

func (g *Gateway) CreateProject(ctx context.Context, name, team, description string) (*model.Project, error) {
	project := model.NewProject(name, team, description, g.schema, g.now())

	err := g.mutate(ctx, func(projects []*model.Project) ([]*model.Project, bool, error) {
		return append(projects, project), true, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create project", goerr.V(model.ProjectIDKey, project.ID))
	}
	return project.Clone(), nil
}

func (g *Gateway) DeleteProject(ctx context.Context, id types.ProjectID) error {
	return g.mutate(ctx, func(projects []*model.Project) ([]*model.Project, bool, error) {
		for i, p := range projects {
			if p.ID == id {
				return append(projects[:i:i], projects[i+1:]...), true, nil
			}
		}
		return projects, false, nil
	})
}

func (g *Gateway) AddTask(ctx context.Context, projectID types.ProjectID, task *model.Task) error {
	if task == nil || task.ID == "" {
		return goerr.Wrap(interfaces.ErrTaskIDRequired, "cannot add task", goerr.V(model.ProjectIDKey, projectID))
	}

	return g.editProject(ctx, projectID, func(p *model.Project) (bool, error) {
		if p.Task(task.ID) != nil {
			return false, goerr.Wrap(interfaces.ErrDuplicateTask, "cannot add task",
				goerr.V(model.ProjectIDKey, projectID),
				goerr.V(model.TaskIDKey, task.ID))
		}
		added := task.Clone()
		added.Merge(p.BindPatch(model.TaskPatch(added.Values)))
		p.Tasks = append(p.Tasks, added)
		return true, nil
	})
}

func (g *Gateway) UpdateTask(ctx context.Context, projectID types.ProjectID, taskID types.TaskID, patch model.TaskPatch) error {
	return g.editProject(ctx, projectID, func(p *model.Project) (bool, error) {
		task := p.Task(taskID)
		if task == nil {
			return false, nil
		}
		task.Merge(p.BindPatch(patch))
		return true, nil
	})
}

func (g *Gateway) DeleteTask(ctx context.Context, projectID types.ProjectID, taskID types.TaskID) error {
	return g.editProject(ctx, projectID, func(p *model.Project) (bool, error) {
		idx := p.TaskIndex(taskID)
		if idx < 0 {
			return false, nil
		}
		p.Tasks = append(p.Tasks[:idx], p.Tasks[idx+1:]...)
		return true, nil
	})
}

func (g *Gateway) UpdateField(ctx context.Context, projectID types.ProjectID, fieldID types.FieldID, patch model.FieldPatch) error {
	return g.editProject(ctx, projectID, func(p *model.Project) (bool, error) {
		field := p.Field(fieldID)
		if field == nil {
			return false, nil
		}
		patch.Apply(field)
		return true, nil
	})
}

func (g *Gateway) Close() error {
	return nil
}
