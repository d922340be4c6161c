package gantt

import (
	"time"

	"github.com/secmon-lab/flexigantt/pkg/domain/types"
)

// Layout constants shared by the header and the body grid
const (
	DayWidth    = 48 // px per day column
	RowHeight   = 48 // px per task row
	MinBarWidth = 24 // px, keeps zero and negative durations visible

	DefaultBarColor types.Color = "#3b82f6"
)

// Window is the inclusive range of calendar days rendered by the timeline
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow creates a window from start to end, both truncated to calendar days
func NewWindow(start, end time.Time) Window {
	return Window{Start: types.DateOf(start), End: types.DateOf(end)}
}

// WindowAround returns the window shown for today: from 7 days before the
// start of its month to 60 days after the end of its month.
func WindowAround(today time.Time) Window {
	day := types.DateOf(today)
	firstOfMonth := day.AddDate(0, 0, 1-day.Day())
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
	return Window{
		Start: firstOfMonth.AddDate(0, 0, -7),
		End:   lastOfMonth.AddDate(0, 0, 60),
	}
}

// Days returns the number of day columns
func (w Window) Days() int {
	return types.DaysBetween(w.Start, w.End) + 1
}

// DayIndex returns the column of the calendar day of t; it may fall outside [0, Days()).
func (w Window) DayIndex(t time.Time) int {
	return types.DaysBetween(w.Start, types.DateOf(t))
}

// Contains reports whether the calendar day of t is a column of the window
func (w Window) Contains(t time.Time) bool {
	idx := w.DayIndex(t)
	return idx >= 0 && idx < w.Days()
}

// Width returns the pixel width of the whole window
func (w Window) Width() int {
	return w.Days() * DayWidth
}

// Date returns the calendar day of column i
func (w Window) Date(i int) time.Time {
	return w.Start.AddDate(0, 0, i)
}
