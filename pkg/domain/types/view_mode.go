package types

import "github.com/m-mizutani/goerr/v2"

// ViewMode selects how a project is presented
type ViewMode string

const (
	ViewModeTable ViewMode = "table"
	ViewModeGantt ViewMode = "gantt"
)

// IsValid checks if the view mode is valid
func (m ViewMode) IsValid() bool {
	switch m {
	case ViewModeTable, ViewModeGantt:
		return true
	default:
		return false
	}
}

// String returns the string representation of the view mode
func (m ViewMode) String() string {
	return string(m)
}

// ParseViewMode parses a string into a ViewMode. Empty input means table.
func ParseViewMode(s string) (ViewMode, error) {
	if s == "" {
		return ViewModeTable, nil
	}
	mode := ViewMode(s)
	if !mode.IsValid() {
		return "", goerr.New("invalid view mode", goerr.V("mode", s))
	}
	return mode, nil
}
