package http

import (
	"net/url"
	"slices"
	"strings"

	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// pageState is the view state of a project page, carried in the query string:
//
//	view=table|gantt  filter=<field>:<option> (repeated)  menu=<field>  chooser=<task>:<field>
type pageState struct {
	ProjectID types.ProjectID
	View      types.ViewMode
	Filter    model.Filter
	Menu      types.FieldID
	Chooser   *chooserRef
}

type chooserRef struct {
	TaskID  types.TaskID
	FieldID types.FieldID
}

func parsePageState(id types.ProjectID, q url.Values) pageState {
	st := pageState{ProjectID: id, Filter: model.Filter{}}

	st.View, _ = types.ParseViewMode(q.Get("view"))
	if st.View == "" {
		st.View = types.ViewModeTable
	}

	allowed := make(map[types.FieldID][]types.OptionID)
	for _, f := range q["filter"] {
		field, option, ok := strings.Cut(f, ":")
		if !ok || field == "" || option == "" {
			continue
		}
		fid, oid := types.FieldID(field), types.OptionID(option)
		if !slices.Contains(allowed[fid], oid) {
			allowed[fid] = append(allowed[fid], oid)
		}
	}
	for fid, ids := range allowed {
		st.Filter = st.Filter.With(fid, ids)
	}

	st.Menu = types.FieldID(q.Get("menu"))

	if task, field, ok := strings.Cut(q.Get("chooser"), ":"); ok && task != "" && field != "" {
		st.Chooser = &chooserRef{TaskID: types.TaskID(task), FieldID: types.FieldID(field)}
	}
	return st
}

func (st pageState) query() url.Values {
	q := url.Values{}
	if st.View != types.ViewModeTable {
		q.Set("view", st.View.String())
	}

	fields := make([]types.FieldID, 0, len(st.Filter))
	for fid := range st.Filter {
		fields = append(fields, fid)
	}
	slices.Sort(fields)
	for _, fid := range fields {
		for _, opt := range st.Filter[fid] {
			q.Add("filter", fid.String()+":"+opt.String())
		}
	}

	if st.Menu != "" {
		q.Set("menu", st.Menu.String())
	}
	if st.Chooser != nil {
		q.Set("chooser", st.Chooser.TaskID.String()+":"+st.Chooser.FieldID.String())
	}
	return q
}

// URL is the project page showing this state
func (st pageState) URL() string {
	u := "/projects/" + url.PathEscape(st.ProjectID.String())
	if q := st.query().Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// Query is the encoded state, posted back by forms so that the page is restored after the write
func (st pageState) Query() string {
	return st.query().Encode()
}

func (st pageState) WithView(mode types.ViewMode) pageState {
	st.View = mode
	st.Menu = ""
	st.Chooser = nil
	return st
}

func (st pageState) ToggleFilter(fieldID types.FieldID, optionID types.OptionID) pageState {
	st.Filter = st.Filter.Toggle(fieldID, optionID)
	return st
}

func (st pageState) ClearFilters() pageState {
	st.Filter = st.Filter.Clear()
	st.Menu = ""
	return st
}

// ToggleMenu opens the header menu of fieldID or closes it when it is the open one
func (st pageState) ToggleMenu(fieldID types.FieldID) pageState {
	if st.Menu == fieldID {
		st.Menu = ""
	} else {
		st.Menu = fieldID
	}
	st.Chooser = nil
	return st
}

func (st pageState) OpenChooser(taskID types.TaskID, fieldID types.FieldID) pageState {
	st.Chooser = &chooserRef{TaskID: taskID, FieldID: fieldID}
	st.Menu = ""
	return st
}

func (st pageState) CloseOverlays() pageState {
	st.Chooser = nil
	st.Menu = ""
	return st
}

// restore reads the state posted back by a form
func restoreState(id types.ProjectID, encoded string) pageState {
	q, err := url.ParseQuery(encoded)
	if err != nil {
		q = url.Values{}
	}
	return parsePageState(id, q)
}
