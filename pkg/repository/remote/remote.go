// Package remote implements the gateway as a client of the REST API served by
// the serve command.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/utils/safe"
)

var (
	ErrUnexpectedStatus = goerr.New("unexpected response status")
)

// Gateway talks to a remote FlexiGantt API. The base URL includes the API
// mount point, e.g. http://localhost:8080/api
type Gateway struct {
	baseURL string
	client  *http.Client
	token   string
}

var _ interfaces.Gateway = &Gateway{}

type Option func(*Gateway)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// WithToken sends token as a bearer token
func WithToken(token string) Option {
	return func(g *Gateway) {
		g.token = token
	}
}

func New(baseURL string, opts ...Option) (*Gateway, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, goerr.Wrap(err, "invalid remote base URL", goerr.V("url", baseURL))
	}

	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// do sends a request and decodes a JSON response into out when out is not nil.
// It returns the response status; 404 is not an error.
func (g *Gateway) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create request", goerr.V("method", method), goerr.V("path", path))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to send request", goerr.V("method", method), goerr.V("path", path))
	}
	defer safe.DrainClose(ctx, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, nil
	case resp.StatusCode == http.StatusConflict:
		return resp.StatusCode, goerr.Wrap(interfaces.ErrDuplicateTask, "remote rejected request", goerr.V("path", path))
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode, goerr.Wrap(ErrUnexpectedStatus, "remote request failed",
			goerr.V("method", method),
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(msg)))
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
		}
	}
	return resp.StatusCode, nil
}

func projectPath(id types.ProjectID) string {
	return "/projects/" + url.PathEscape(id.String())
}

func taskPath(projectID types.ProjectID, taskID types.TaskID) string {
	return projectPath(projectID) + "/tasks/" + url.PathEscape(taskID.String())
}

func (g *Gateway) ListProjects(ctx context.Context) ([]*model.Project, error) {
	var projects []*model.Project
	if _, err := g.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, goerr.Wrap(err, "failed to list projects")
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	return projects, nil
}

func (g *Gateway) GetProject(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	var project model.Project
	code, err := g.do(ctx, http.MethodGet, projectPath(id), nil, &project)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id))
	}
	if code == http.StatusNotFound {
		return nil, nil
	}
	return &project, nil
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Team        string `json:"team"`
	Description string `json:"description"`
}

func (g *Gateway) CreateProject(ctx context.Context, name, team, description string) (*model.Project, error) {
	req := &createProjectRequest{Name: name, Team: team, Description: description}

	var project model.Project
	if _, err := g.do(ctx, http.MethodPost, "/projects", req, &project); err != nil {
		return nil, goerr.Wrap(err, "failed to create project", goerr.V("name", name))
	}
	return &project, nil
}

func (g *Gateway) DeleteProject(ctx context.Context, id types.ProjectID) error {
	if _, err := g.do(ctx, http.MethodDelete, projectPath(id), nil, nil); err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V(model.ProjectIDKey, id))
	}
	return nil
}

func (g *Gateway) AddTask(ctx context.Context, projectID types.ProjectID, task *model.Task) error {
	if task == nil || task.ID == "" {
		return goerr.Wrap(interfaces.ErrTaskIDRequired, "cannot add task", goerr.V(model.ProjectIDKey, projectID))
	}
	if _, err := g.do(ctx, http.MethodPost, projectPath(projectID)+"/tasks", task, nil); err != nil {
		return goerr.Wrap(err, "failed to add task",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.TaskIDKey, task.ID))
	}
	return nil
}

func (g *Gateway) UpdateTask(ctx context.Context, projectID types.ProjectID, taskID types.TaskID, patch model.TaskPatch) error {
	if _, err := g.do(ctx, http.MethodPatch, taskPath(projectID, taskID), patch, nil); err != nil {
		return goerr.Wrap(err, "failed to update task",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.TaskIDKey, taskID))
	}
	return nil
}

func (g *Gateway) DeleteTask(ctx context.Context, projectID types.ProjectID, taskID types.TaskID) error {
	if _, err := g.do(ctx, http.MethodDelete, taskPath(projectID, taskID), nil, nil); err != nil {
		return goerr.Wrap(err, "failed to delete task",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.TaskIDKey, taskID))
	}
	return nil
}

func (g *Gateway) UpdateField(ctx context.Context, projectID types.ProjectID, fieldID types.FieldID, patch model.FieldPatch) error {
	path := projectPath(projectID) + "/fields/" + url.PathEscape(fieldID.String())
	if _, err := g.do(ctx, http.MethodPatch, path, patch, nil); err != nil {
		return goerr.Wrap(err, "failed to update field",
			goerr.V(model.ProjectIDKey, projectID),
			goerr.V(model.FieldIDKey, fieldID))
	}
	return nil
}

func (g *Gateway) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
