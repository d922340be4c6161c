package usecase

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/utils/errutil"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
)

// DefaultDescription is given to projects created without a description
const DefaultDescription = "New project space"

// Workspace is the dashboard of all projects and the entry point to a project session
type Workspace struct {
	gw      interfaces.Gateway
	now     func() time.Time
	palette types.Palette
}

type Option func(*Workspace)

// WithClock replaces time.Now. It fixes "today" of timeline sessions.
func WithClock(now func() time.Time) Option {
	return func(ws *Workspace) {
		ws.now = now
	}
}

// WithPalette sets the colors given to new options
func WithPalette(palette types.Palette) Option {
	return func(ws *Workspace) {
		ws.palette = palette
	}
}

func New(gw interfaces.Gateway, opts ...Option) *Workspace {
	ws := &Workspace{
		gw:      gw,
		now:     time.Now,
		palette: types.DefaultPalette,
	}

	for _, opt := range opts {
		opt(ws)
	}

	return ws
}

// TeamGroup is one team section of the dashboard
type TeamGroup struct {
	Team     string
	Projects []*model.Project
}

// Projects lists all projects in creation order. A failed read is logged and yields no projects.
func (ws *Workspace) Projects(ctx context.Context) []*model.Project {
	projects, err := ws.gw.ListProjects(ctx)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to list projects")
		return []*model.Project{}
	}
	return projects
}

// ProjectsByTeam groups projects by team, teams in alphabetical order. Projects
// without a team belong to the default team.
func (ws *Workspace) ProjectsByTeam(ctx context.Context) []TeamGroup {
	index := make(map[string]int)
	var groups []TeamGroup

	for _, p := range ws.Projects(ctx) {
		team := p.Team
		if team == "" {
			team = model.DefaultTeam
		}
		i, ok := index[team]
		if !ok {
			i = len(groups)
			index[team] = i
			groups = append(groups, TeamGroup{Team: team})
		}
		groups[i].Projects = append(groups[i].Projects, p)
	}

	slices.SortStableFunc(groups, func(a, b TeamGroup) int {
		return cmp.Compare(a.Team, b.Team)
	})
	return groups
}

// CreateProject creates a project with the default schema. The name is
// required; a blank team falls back to the default team.
func (ws *Workspace) CreateProject(ctx context.Context, name, team, description string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, goerr.Wrap(ErrProjectNameRequired, "cannot create project")
	}
	team = strings.TrimSpace(team)
	if team == "" {
		team = model.DefaultTeam
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultDescription
	}

	project, err := ws.gw.CreateProject(ctx, name, team, description)
	if err != nil {
		return nil, errutil.Handle(ctx, goerr.Wrap(err, "failed to create project"), "failed to create project")
	}

	logging.From(ctx).Info("project created", "project_id", project.ID, "team", project.Team)
	return project, nil
}

// DeleteProject removes a project. Deleting an absent project succeeds.
func (ws *Workspace) DeleteProject(ctx context.Context, id types.ProjectID) error {
	if err := ws.gw.DeleteProject(ctx, id); err != nil {
		return errutil.Handle(ctx, goerr.Wrap(err, "failed to delete project", goerr.V(model.ProjectIDKey, id)), "failed to delete project")
	}
	logging.From(ctx).Info("project deleted", "project_id", id)
	return nil
}

// Open starts a session on a project in table view with no filter
func (ws *Workspace) Open(ctx context.Context, id types.ProjectID) (*Session, error) {
	project, err := ws.gw.GetProject(ctx, id)
	if err != nil {
		return nil, errutil.Handle(ctx, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id)), "failed to open project")
	}
	if project == nil {
		return nil, goerr.Wrap(ErrProjectNotFound, "cannot open project", goerr.V(model.ProjectIDKey, id))
	}
	return newSession(ws, project), nil
}
