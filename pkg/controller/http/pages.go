package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/usecase"
	"github.com/secmon-lab/flexigantt/pkg/utils/errutil"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
	"github.com/secmon-lab/flexigantt/pkg/utils/safe"
	"github.com/secmon-lab/flexigantt/pkg/view/gantt"
	"github.com/secmon-lab/flexigantt/pkg/view/table"
	"github.com/secmon-lab/flexigantt/pkg/view/xlsx"
)

//go:embed templates/*.html
var templateFS embed.FS

func parsePages() (*template.Template, error) {
	funcs := template.FuncMap{
		"date": types.FormatDate,
		"add":  func(a, b int) int { return a + b },
	}
	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

type dashboardPage struct {
	Groups []usecase.TeamGroup
	Error  string
}

type projectPage struct {
	Project *model.Project
	State   pageState
	Table   *table.View
	Gantt   *gantt.View
	Menu    *menuView
}

// menuView is the open header menu: the filter panel and, for select fields, the option editor
type menuView struct {
	Field   *model.FieldDefinition
	Panel   *table.FilterPanel
	Options []model.FieldOption
}

func (s *Server) mountPages(r chi.Router) {
	r.Get("/", s.dashboard)
	r.Post("/projects", s.createProjectForm)
	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Get("/", s.projectPage)
		r.Get("/export.xlsx", s.exportProject)
		r.Post("/delete", s.deleteProjectForm)
		r.Post("/tasks", s.addTaskForm)
		r.Post("/tasks/{taskID}", s.updateCellForm)
		r.Post("/tasks/{taskID}/delete", s.deleteTaskForm)
		r.Post("/choose", s.chooseForm)
		r.Post("/fields/{fieldID}/options", s.editOptionsForm)
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to render page", goerr.V("template", name)), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	safe.Write(r.Context(), w, buf.Bytes())
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "dashboard.html", dashboardPage{
		Groups: s.ws.ProjectsByTeam(r.Context()),
		Error:  r.URL.Query().Get("error"),
	})
}

func (s *Server) createProjectForm(w http.ResponseWriter, r *http.Request) {
	project, err := s.ws.CreateProject(r.Context(), r.FormValue("name"), r.FormValue("team"), r.FormValue("description"))
	if err != nil {
		msg := "Failed to create project."
		if errors.Is(err, usecase.ErrProjectNameRequired) {
			msg = "Project name is required."
		}
		http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, pageState{ProjectID: project.ID, View: types.ViewModeTable}.URL(), http.StatusSeeOther)
}

func (s *Server) deleteProjectForm(w http.ResponseWriter, r *http.Request) {
	_ = s.ws.DeleteProject(r.Context(), projectIDParam(r))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// openSession opens the project and replays the page state onto the session.
// It redirects to the dashboard when the project cannot be opened.
func (s *Server) openSession(w http.ResponseWriter, r *http.Request, st pageState) *usecase.Session {
	ctx := r.Context()
	session, err := s.ws.Open(ctx, st.ProjectID)
	if err != nil {
		logging.From(ctx).Warn("cannot open project", "project_id", st.ProjectID, "error", err.Error())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}

	if err := session.SetViewMode(st.View); err != nil {
		logging.From(ctx).Warn("ignoring view mode", "error", err.Error())
	}
	for fid, ids := range st.Filter {
		if err := session.SetFilter(fid, ids); err != nil {
			logging.From(ctx).Warn("ignoring filter", "field_id", fid, "error", err.Error())
		}
	}
	if st.Menu != "" {
		session.TableSession().ToggleMenu(st.Menu)
	}
	if st.Chooser != nil {
		session.TableSession().OpenChooser(st.Chooser.TaskID, st.Chooser.FieldID, table.Rect{})
	}
	return session
}

func (s *Server) projectPage(w http.ResponseWriter, r *http.Request) {
	st := parsePageState(projectIDParam(r), r.URL.Query())
	session := s.openSession(w, r, st)
	if session == nil {
		return
	}

	page := projectPage{
		Project: session.Project(),
		State:   st,
	}
	// The filter that was actually applied, without unknown fields
	page.State.Filter = session.Filter()

	switch session.ViewMode() {
	case types.ViewModeGantt:
		page.Gantt = session.GanttView()
	default:
		page.Table = session.TableView()
		if field := page.Project.Field(st.Menu); field != nil {
			page.Menu = &menuView{
				Field:   field,
				Panel:   table.NewFilterPanel(field, page.State.Filter),
				Options: field.Options,
			}
		}
	}

	s.render(w, r, "project.html", page)
}

// back redirects to the page state posted by the form
func back(w http.ResponseWriter, r *http.Request, st pageState) {
	http.Redirect(w, r, st.URL(), http.StatusSeeOther)
}

func (s *Server) addTaskForm(w http.ResponseWriter, r *http.Request) {
	st := restoreState(projectIDParam(r), r.FormValue("state"))
	session := s.openSession(w, r, st)
	if session == nil {
		return
	}
	_, _ = session.AddTask(r.Context())
	back(w, r, st)
}

func (s *Server) updateCellForm(w http.ResponseWriter, r *http.Request) {
	st := restoreState(projectIDParam(r), r.FormValue("state"))
	session := s.openSession(w, r, st)
	if session == nil {
		return
	}

	taskID := types.TaskID(chi.URLParam(r, "taskID"))
	fieldID := types.FieldID(r.FormValue("field"))
	if err := session.UpdateCell(r.Context(), taskID, fieldID, r.FormValue("value")); err != nil {
		logging.From(r.Context()).Warn("cell not updated",
			"task_id", taskID,
			"field_id", fieldID,
			"error", err.Error())
	}
	back(w, r, st)
}

func (s *Server) deleteTaskForm(w http.ResponseWriter, r *http.Request) {
	st := restoreState(projectIDParam(r), r.FormValue("state"))
	session := s.openSession(w, r, st)
	if session == nil {
		return
	}
	_ = session.DeleteTask(r.Context(), types.TaskID(chi.URLParam(r, "taskID")))
	back(w, r, st.CloseOverlays())
}

func (s *Server) chooseForm(w http.ResponseWriter, r *http.Request) {
	st := restoreState(projectIDParam(r), r.FormValue("state"))
	session := s.openSession(w, r, st)
	if session == nil {
		return
	}

	if err := session.Choose(r.Context(), types.OptionID(r.FormValue("option"))); err != nil {
		logging.From(r.Context()).Warn("option not chosen", "error", err.Error())
	}
	if session.TableSession().Chooser() == nil {
		st.Chooser = nil
	}
	back(w, r, st)
}

func (s *Server) editOptionsForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := restoreState(projectIDParam(r), r.FormValue("state"))
	session := s.openSession(w, r, st)
	if session == nil {
		return
	}

	editor, err := session.OpenFieldEditor(types.FieldID(chi.URLParam(r, "fieldID")))
	if err != nil {
		logging.From(ctx).Warn("cannot edit options", "error", err.Error())
		back(w, r, st)
		return
	}

	switch r.FormValue("op") {
	case "add":
		if _, err := editor.AddOption(r.FormValue("label")); err != nil {
			back(w, r, st)
			return
		}
	case "remove":
		editor.RemoveOption(types.OptionID(r.FormValue("option")))
	default:
		back(w, r, st)
		return
	}

	_ = editor.Save(ctx)
	back(w, r, st)
}

func (s *Server) exportProject(w http.ResponseWriter, r *http.Request) {
	st := parsePageState(projectIDParam(r), r.URL.Query())
	session := s.openSession(w, r, st.CloseOverlays())
	if session == nil {
		return
	}

	project := session.Project()
	buf, err := xlsx.Export(xlsx.SheetName(project.Name), session.TableView())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to export project", goerr.V(model.ProjectIDKey, project.ID)), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+project.ID.String()+`.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	safe.Copy(r.Context(), w, buf)
}
