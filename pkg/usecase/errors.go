package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrProjectNotFound = goerr.New("project not found")
	ErrTaskNotFound    = goerr.New("task not found")
	ErrFieldNotFound   = goerr.New("field not found")

	// Input errors
	ErrProjectNameRequired = goerr.New("project name is required")
	ErrOptionLabelRequired = goerr.New("option label is required")
	ErrInvalidDate         = goerr.New("invalid date")
	ErrNotSelectField      = goerr.New("field has no options")
	ErrProjectClosed       = goerr.New("project is no longer available")
)
