package model

import "github.com/m-mizutani/goerr/v2"

// Schema and value errors
var (
	ErrFieldTypeMismatch  = goerr.New("accessor does not match the field type")
	ErrValueTypeMismatch  = goerr.New("stored value does not match the field type")
	ErrFilterNotSupported = goerr.New("filtering is not supported for this field type yet")
	ErrInvalidField       = goerr.New("invalid field definition")
	ErrInvalidTask        = goerr.New("invalid task")
)

// Context keys for error values
const (
	FieldIDKey      = "field_id"
	TaskIDKey       = "task_id"
	ProjectIDKey    = "project_id"
	OptionIDKey     = "option_id"
	ExpectedTypeKey = "expected_type"
	ActualTypeKey   = "actual_type"
)
