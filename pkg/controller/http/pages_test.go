package http_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/flexigantt/pkg/controller/http"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/repository/memory"
	"github.com/secmon-lab/flexigantt/pkg/usecase"
	"github.com/xuri/excelize/v2"
)

var fixedNow = time.Date(2023, 10, 15, 9, 0, 0, 0, time.UTC)

func newPageServer(t *testing.T) (http.Handler, *memory.Gateway) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	gw := memory.New(memory.WithClock(clock), memory.WithProjects(model.SeedProjects(fixedNow)))
	ws := usecase.New(gw, usecase.WithClock(clock))
	srv, err := httpctrl.New(httpctrl.WithWorkspace(ws))
	gt.NoError(t, err).Required()
	return srv, gw
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPages_Dashboard(t *testing.T) {
	h, gw := newPageServer(t)

	rec := get(h, "/")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains("Product Team")
	gt.String(t, rec.Body.String()).Contains("Website Redesign")

	rec = postForm(h, "/projects", url.Values{"name": {"Launch"}, "team": {""}})
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
	gt.String(t, rec.Header().Get("Location")).Contains("/projects/")

	rec = postForm(h, "/projects", url.Values{"name": {" "}})
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
	gt.String(t, rec.Header().Get("Location")).Contains("error=")

	projects, err := gw.ListProjects(t.Context())
	gt.NoError(t, err).Required()
	gt.Array(t, projects).Length(2)

	rec = get(h, "/")
	gt.String(t, rec.Body.String()).Contains(model.DefaultTeam)

	rec = postForm(h, "/projects/proj_alpha/delete", nil)
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
	projects, err = gw.ListProjects(t.Context())
	gt.NoError(t, err).Required()
	gt.Array(t, projects).Length(1)
}

func TestPages_ProjectTable(t *testing.T) {
	h, _ := newPageServer(t)

	rec := get(h, "/projects/proj_alpha")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	body := rec.Body.String()
	gt.String(t, body).Contains("Kickoff Meeting")
	gt.String(t, body).Contains("QA Testing")

	rec = get(h, "/projects/proj_alpha?filter=f_owner:u1&menu=f_owner")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	body = rec.Body.String()
	gt.String(t, body).Contains("Filter by Owner")
	gt.String(t, body).Contains("Frontend Integration")
	gt.Bool(t, strings.Contains(body, "QA Testing")).False()

	rec = get(h, "/projects/proj_alpha?menu=f_name")
	gt.String(t, rec.Body.String()).Contains("Text filtering coming soon.")

	rec = get(h, "/projects/missing")
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
}

func TestPages_ProjectGantt(t *testing.T) {
	h, _ := newPageServer(t)

	rec := get(h, "/projects/proj_alpha?view=gantt")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains("Oct 2023")
	gt.String(t, rec.Body.String()).Contains("Backend API")

	t.Run("a single date field shows the empty state", func(t *testing.T) {
		var schema model.Schema
		for _, f := range model.DefaultFields() {
			if f.ID != types.EndFieldID {
				schema = append(schema, f)
			}
		}
		gw := memory.New(memory.WithSchema(schema))
		created, err := gw.CreateProject(t.Context(), "Dateless", "", "")
		gt.NoError(t, err).Required()

		srv, err := httpctrl.New(httpctrl.WithWorkspace(usecase.New(gw)))
		gt.NoError(t, err).Required()

		rec := get(srv, "/projects/"+created.ID.String()+"?view=gantt")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains("Gantt view requires at least two Date fields")
	})
}

func TestPages_Edits(t *testing.T) {
	h, gw := newPageServer(t)
	project := func() *model.Project {
		p, err := gw.GetProject(t.Context(), "proj_alpha")
		gt.NoError(t, err).Required()
		return p
	}

	rec := postForm(h, "/projects/proj_alpha/tasks", url.Values{"state": {"view=table"}})
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
	gt.Array(t, project().Tasks).Length(6)

	rec = postForm(h, "/projects/proj_alpha/tasks/t1", url.Values{"field": {"f_name"}, "value": {"Kickoff v2"}})
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
	gt.Value(t, project().Task("t1").Get(types.NameFieldID)).Equal(model.Value(model.TextValue("Kickoff v2")))

	// Multi select toggles and keeps the chooser open
	rec = postForm(h, "/projects/proj_alpha/choose", url.Values{"state": {"chooser=t1:f_owner"}, "option": {"u3"}})
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
	gt.String(t, rec.Header().Get("Location")).Contains("chooser=")
	gt.Value(t, project().Task("t1").Get(types.OwnerFieldID)).Equal(model.Value(model.Multi("u1", "u3")))

	// Single select closes the chooser
	rec = postForm(h, "/projects/proj_alpha/choose", url.Values{"state": {"chooser=t2:f_status"}, "option": {"opt_done"}})
	gt.Bool(t, strings.Contains(rec.Header().Get("Location"), "chooser=")).False()
	gt.Value(t, project().Task("t2").Get(types.StatusFieldID)).Equal(model.Value(model.Single("opt_done")))

	rec = postForm(h, "/projects/proj_alpha/fields/f_status/options", url.Values{"op": {"add"}, "label": {"Blocked"}})
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
	gt.Array(t, project().Field(types.StatusFieldID).Options).Length(4)

	rec = postForm(h, "/projects/proj_alpha/fields/f_status/options", url.Values{"op": {"remove"}, "option": {"opt_todo"}})
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
	gt.Array(t, project().Field(types.StatusFieldID).Options).Length(3)

	rec = postForm(h, "/projects/proj_alpha/tasks/t1/delete", nil)
	gt.Value(t, rec.Code).Equal(http.StatusSeeOther)
	gt.Value(t, project().Task("t1")).Nil()
}

func TestPages_Export(t *testing.T) {
	h, _ := newPageServer(t)

	rec := get(h, "/projects/proj_alpha/export.xlsx?filter=f_status:opt_todo")
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	f, err := excelize.OpenReader(rec.Body)
	gt.NoError(t, err).Required()
	rows, err := f.GetRows("Website Redesign")
	gt.NoError(t, err).Required()
	gt.Array(t, rows).Length(4).Required()
	gt.Value(t, rows[0][0]).Equal("Task Name")
	gt.Value(t, rows[1][0]).Equal("Backend API")
}
