package gantt

import (
	"errors"
	"time"

	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// Messages of the empty state shown when the schema has no usable date pair
const (
	EmptyMessage = "Gantt view requires at least two Date fields (Start & End)."
	EmptyHint    = "Please add them in Table view."
)

// View is a laid out timeline. When Empty is set only Message and Hint are meaningful.
type View struct {
	Empty   bool
	Message string
	Hint    string

	Window     Window
	Width      int
	NameHeader string
	Fields     *Fields
	Days       []Day
	Rows       []Row
	Today      *Marker
}

// Day is one header column
type Day struct {
	Date       time.Time
	Left       int
	MonthLabel string // "Oct 2023" on the first day of a month and on column 0
	Day        int
	Weekday    string // initial: M, T, W, ...
	Weekend    bool
	Today      bool
}

// Row is one task of the sidebar and the chart body. Bar is nil when the task
// has no bar inside the window; the row is kept so that rows stay aligned.
type Row struct {
	TaskID   types.TaskID
	Name     string
	Untitled bool
	Top      int
	Bar      *Bar
}

// Bar is the geometry of a task bar in pixels from the window start
type Bar struct {
	Left    int
	Width   int
	Color   types.Color
	Label   string
	Start   time.Time
	End     time.Time
	Clamped bool // start precedes the window and the bar begins at its left edge
}

// Marker is the vertical line highlighting today
type Marker struct {
	Left int
}

func emptyView() *View {
	return &View{Empty: true, Message: EmptyMessage, Hint: EmptyHint}
}

// Build lays out the tasks of project matching filter inside window. A schema
// without a usable date pair yields the empty state, never an error.
func Build(project *model.Project, filter model.Filter, window Window, today time.Time) *View {
	fields, err := Discover(project.Fields)
	if errors.Is(err, ErrMissingDateFields) || fields == nil {
		return emptyView()
	}

	view := &View{
		Window: window,
		Width:  window.Width(),
		Fields: fields,
		Days:   header(window, today),
	}
	if fields.Name != nil {
		view.NameHeader = fields.Name.Name
	}

	for i, task := range filter.Apply(project.Tasks) {
		name := model.Display(fields.Name, task.Get(nameID(fields)))
		row := Row{
			TaskID:   task.ID,
			Name:     name,
			Untitled: name == "",
			Top:      i * RowHeight,
			Bar:      barOf(task, fields, window),
		}
		if row.Untitled {
			row.Name = "Untitled"
		}
		if row.Bar != nil {
			row.Bar.Label = name
		}
		view.Rows = append(view.Rows, row)
	}

	if window.Contains(today) {
		view.Today = &Marker{Left: window.DayIndex(today)*DayWidth + DayWidth/2}
	}
	return view
}

func nameID(fields *Fields) types.FieldID {
	if fields.Name == nil {
		return ""
	}
	return fields.Name.ID
}

func header(window Window, today time.Time) []Day {
	todayDate := types.DateOf(today)
	days := make([]Day, window.Days())
	for i := range days {
		d := window.Date(i)
		days[i] = Day{
			Date:    d,
			Left:    i * DayWidth,
			Day:     d.Day(),
			Weekday: d.Weekday().String()[:1],
			Weekend: d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
			Today:   d.Equal(todayDate),
		}
		if d.Day() == 1 || i == 0 {
			days[i].MonthLabel = d.Format("Jan 2006")
		}
	}
	return days
}

// barOf computes the bar of task. The start is clamped to the window start but
// the end is not clamped, so a bar may extend past the right edge.
func barOf(task *model.Task, fields *Fields, window Window) *Bar {
	start, ok := dateOf(task, fields.Start)
	if !ok {
		return nil
	}
	end, ok := dateOf(task, fields.End)
	if !ok {
		return nil
	}

	if end.Before(window.Start) || start.After(window.End) {
		return nil
	}

	bar := &Bar{Start: start, End: end, Color: colorOf(task, fields.Color)}
	effective := start
	if start.Before(window.Start) {
		effective = window.Start
		bar.Clamped = true
	}

	bar.Left = types.DaysBetween(window.Start, effective) * DayWidth
	bar.Width = max((types.DaysBetween(effective, end)+1)*DayWidth, MinBarWidth)
	return bar
}

// dateOf reads a date value. Values that are not dates, or do not parse, count as absent.
func dateOf(task *model.Task, field *model.FieldDefinition) (time.Time, bool) {
	v, err := task.Date(field)
	if err != nil {
		return time.Time{}, false
	}
	return v.Time()
}

// colorOf returns the color of the first selected option of the color field.
// An unknown first option falls back to the default color.
func colorOf(task *model.Task, field *model.FieldDefinition) types.Color {
	if field == nil || field.Type != types.FieldTypeSelect {
		return DefaultBarColor
	}
	ids, err := task.Selection(field)
	if err != nil || len(ids) == 0 {
		return DefaultBarColor
	}
	if opt := field.Option(ids[0]); opt != nil {
		return opt.Color
	}
	return DefaultBarColor
}

// Session fixes the window when a timeline is first shown so that filtering
// and editing do not move it.
type Session struct {
	window Window
	now    func() time.Time
}

// NewSession starts a timeline session with the window around now()
func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{window: WindowAround(now()), now: now}
}

// Window returns the fixed window of the session
func (s *Session) Window() Window {
	return s.window
}

// Build lays out project in the session window
func (s *Session) Build(project *model.Project, filter model.Filter) *View {
	return Build(project, filter, s.window, s.now())
}
