package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/utils/errutil"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
	"github.com/secmon-lab/flexigantt/pkg/utils/safe"
)

const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Team        string `json:"team" validate:"max=100"`
	Description string `json:"description" validate:"max=2000"`
}

type optionRequest struct {
	ID    string `validate:"required"`
	Label string `validate:"required"`
	Color string `validate:"required,hexcolor"`
}

func (s *Server) mountAPI(r chi.Router) {
	r.Get("/projects", s.listProjects)
	r.Post("/projects", s.createProject)
	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Get("/", s.getProject)
		r.Delete("/", s.deleteProject)
		r.Post("/tasks", s.addTask)
		r.Patch("/tasks/{taskID}", s.updateTask)
		r.Delete("/tasks/{taskID}", s.deleteTask)
		r.Patch("/fields/{fieldID}", s.updateField)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// clientError answers a rejected request without reporting it
func clientError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logging.From(r.Context()).Warn("request rejected", "status", status, "error", err.Error())
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return goerr.Wrap(err, "failed to read request body")
	}
	defer safe.Close(r.Context(), r.Body)
	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(err, "invalid JSON body")
	}
	return nil
}

func projectIDParam(r *http.Request) types.ProjectID {
	return types.ProjectID(chi.URLParam(r, "projectID"))
}

// projectExists answers 404 itself when the project is absent
func (s *Server) projectExists(w http.ResponseWriter, r *http.Request, id types.ProjectID) bool {
	project, err := s.gw.GetProject(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id)), http.StatusInternalServerError)
		return false
	}
	if project == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "project not found"})
		return false
	}
	return true
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.gw.ListProjects(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to list projects"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id := projectIDParam(r)
	project, err := s.gw.GetProject(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to get project", goerr.V(model.ProjectIDKey, id)), http.StatusInternalServerError)
		return
	}
	if project == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "project not found"})
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeBody(r, &req); err != nil {
		clientError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		clientError(w, r, http.StatusBadRequest, goerr.Wrap(err, "invalid project"))
		return
	}

	project, err := s.gw.CreateProject(r.Context(), req.Name, req.Team, req.Description)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to create project"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := projectIDParam(r)
	if err := s.gw.DeleteProject(r.Context(), id); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to delete project", goerr.V(model.ProjectIDKey, id)), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	id := projectIDParam(r)

	var task model.Task
	if err := decodeBody(r, &task); err != nil {
		clientError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.validate.Var(task.ID.String(), "required"); err != nil {
		clientError(w, r, http.StatusBadRequest, goerr.Wrap(interfaces.ErrTaskIDRequired, "invalid task"))
		return
	}
	if !s.projectExists(w, r, id) {
		return
	}

	err := s.gw.AddTask(r.Context(), id, &task)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, &task)
	case errors.Is(err, interfaces.ErrDuplicateTask):
		clientError(w, r, http.StatusConflict, err)
	case errors.Is(err, interfaces.ErrTaskIDRequired):
		clientError(w, r, http.StatusBadRequest, err)
	default:
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to add task", goerr.V(model.ProjectIDKey, id)), http.StatusInternalServerError)
	}
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := projectIDParam(r)
	taskID := types.TaskID(chi.URLParam(r, "taskID"))

	var patch model.TaskPatch
	if err := decodeBody(r, &patch); err != nil {
		clientError(w, r, http.StatusBadRequest, err)
		return
	}
	if !s.projectExists(w, r, id) {
		return
	}

	if err := s.gw.UpdateTask(r.Context(), id, taskID, patch); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to update task",
			goerr.V(model.ProjectIDKey, id),
			goerr.V(model.TaskIDKey, taskID)), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := projectIDParam(r)
	taskID := types.TaskID(chi.URLParam(r, "taskID"))

	if err := s.gw.DeleteTask(r.Context(), id, taskID); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to delete task",
			goerr.V(model.ProjectIDKey, id),
			goerr.V(model.TaskIDKey, taskID)), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateField(w http.ResponseWriter, r *http.Request) {
	id := projectIDParam(r)
	fieldID := types.FieldID(chi.URLParam(r, "fieldID"))

	var patch model.FieldPatch
	if err := decodeBody(r, &patch); err != nil {
		clientError(w, r, http.StatusBadRequest, err)
		return
	}
	if patch.Name != nil {
		if err := s.validate.Var(*patch.Name, "required"); err != nil {
			clientError(w, r, http.StatusBadRequest, goerr.Wrap(err, "invalid field name"))
			return
		}
	}
	if patch.Options != nil {
		for _, opt := range *patch.Options {
			req := optionRequest{ID: opt.ID.String(), Label: opt.Label, Color: opt.Color.String()}
			if err := s.validate.Struct(req); err != nil {
				clientError(w, r, http.StatusBadRequest, goerr.Wrap(err, "invalid option", goerr.V(model.OptionIDKey, opt.ID)))
				return
			}
		}
	}
	if !s.projectExists(w, r, id) {
		return
	}

	if err := s.gw.UpdateField(r.Context(), id, fieldID, patch); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to update field",
			goerr.V(model.ProjectIDKey, id),
			goerr.V(model.FieldIDKey, fieldID)), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
