package types

import (
	"github.com/google/uuid"
)

// ProjectID identifies a project
type ProjectID string

// TaskID identifies a task record within a project
type TaskID string

// FieldID identifies a field within a project schema
type FieldID string

// OptionID identifies an option of a select field
type OptionID string

// Conventional field IDs of the default schema
const (
	NameFieldID   FieldID = "f_name"
	OwnerFieldID  FieldID = "f_owner"
	StatusFieldID FieldID = "f_status"
	StartFieldID  FieldID = "f_start"
	EndFieldID    FieldID = "f_end"
)

func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

func NewOptionID() OptionID {
	return OptionID(uuid.New().String())
}

func (x ProjectID) String() string { return string(x) }
func (x TaskID) String() string    { return string(x) }
func (x FieldID) String() string   { return string(x) }
func (x OptionID) String() string  { return string(x) }
