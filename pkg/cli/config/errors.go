package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound    = goerr.New("configuration file not found")
	ErrInvalidConfig     = goerr.New("invalid configuration")
	ErrDuplicateFieldID  = goerr.New("duplicate field ID")
	ErrDuplicateOptionID = goerr.New("duplicate option ID")
	ErrInvalidFieldID    = goerr.New("invalid field ID format")
	ErrInvalidFieldType  = goerr.New("invalid field type")
	ErrInvalidColor      = goerr.New("invalid color")
	ErrMissingName       = goerr.New("name is required")
	ErrInvalidBackend    = goerr.New("invalid repository backend")
	ErrMissingFlag       = goerr.New("required flag is missing")
)

// Context keys for error values
const (
	ConfigPathKey  = "config_path"
	FieldIDKey     = "field_id"
	FieldTypeKey   = "field_type"
	OptionIDKey    = "option_id"
	FieldIndexKey  = "field_index"
	OptionIndexKey = "option_index"
	BackendKey     = "backend"
	FlagKey        = "flag"
)
