package interfaces

import "github.com/m-mizutani/goerr/v2"

// Gateway errors
var (
	ErrTaskIDRequired = goerr.New("task ID is required")
	ErrDuplicateTask  = goerr.New("task ID already exists in the project")
)
