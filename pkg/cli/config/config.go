package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// SchemaFile is the TOML file describing the fields new projects start with
//
//	palette = ["#ef4444", "#3b82f6"]
//
//	[[field]]
//	id = "f_status"
//	name = "Status"
//	type = "select"
//
//	  [[field.option]]
//	  id = "opt_todo"
//	  label = "To Do"
//	  color = "#94a3b8"
type SchemaFile struct {
	Palette []string      `toml:"palette"`
	Fields  []FieldConfig `toml:"field"`
}

// FieldConfig is one field of the schema file
type FieldConfig struct {
	ID      string         `toml:"id"`
	Name    string         `toml:"name"`
	Type    string         `toml:"type"`
	Multi   bool           `toml:"multi"`
	System  bool           `toml:"system"`
	Options []OptionConfig `toml:"option"`
}

// OptionConfig is one option of a select field. A blank color is taken from the palette.
type OptionConfig struct {
	ID    string `toml:"id"`
	Label string `toml:"label"`
	Color string `toml:"color"`
}

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Validate checks if the option is valid
func (o *OptionConfig) Validate() error {
	if !identPattern.MatchString(o.ID) {
		return goerr.Wrap(ErrInvalidFieldID, "invalid option ID", goerr.V(OptionIDKey, o.ID))
	}
	if o.Label == "" {
		return goerr.Wrap(ErrMissingName, "option label is required", goerr.V(OptionIDKey, o.ID))
	}
	if o.Color != "" {
		if err := types.Color(o.Color).Validate(); err != nil {
			return goerr.Wrap(ErrInvalidColor, "invalid option color", goerr.V(OptionIDKey, o.ID), goerr.V("color", o.Color))
		}
	}
	return nil
}

// Validate checks if the field is valid
func (f *FieldConfig) Validate() error {
	if !identPattern.MatchString(f.ID) {
		return goerr.Wrap(ErrInvalidFieldID, "invalid field ID", goerr.V(FieldIDKey, f.ID))
	}
	if f.Name == "" {
		return goerr.Wrap(ErrMissingName, "field name is required", goerr.V(FieldIDKey, f.ID))
	}
	if !types.FieldType(f.Type).IsValid() {
		return goerr.Wrap(ErrInvalidFieldType, "unknown field type", goerr.V(FieldIDKey, f.ID), goerr.V(FieldTypeKey, f.Type))
	}
	if types.FieldType(f.Type) != types.FieldTypeSelect && (len(f.Options) > 0 || f.Multi) {
		return goerr.Wrap(ErrInvalidConfig, "only select fields take options", goerr.V(FieldIDKey, f.ID), goerr.V(FieldTypeKey, f.Type))
	}

	optionIDs := make(map[string]bool)
	for i, opt := range f.Options {
		if err := opt.Validate(); err != nil {
			return goerr.Wrap(err, "invalid option", goerr.V(FieldIDKey, f.ID), goerr.V(OptionIndexKey, i))
		}
		if optionIDs[opt.ID] {
			return goerr.Wrap(ErrDuplicateOptionID, "duplicate option ID", goerr.V(FieldIDKey, f.ID), goerr.V(OptionIDKey, opt.ID))
		}
		optionIDs[opt.ID] = true
	}
	return nil
}

// Validate checks if the schema file is valid
func (s *SchemaFile) Validate() error {
	palette := s.palette()
	if err := palette.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidColor, "invalid palette", goerr.V("error", err.Error()))
	}

	fieldIDs := make(map[string]bool)
	for i, f := range s.Fields {
		if err := f.Validate(); err != nil {
			return goerr.Wrap(err, "invalid field", goerr.V(FieldIndexKey, i))
		}
		if fieldIDs[f.ID] {
			return goerr.Wrap(ErrDuplicateFieldID, "duplicate field ID", goerr.V(FieldIDKey, f.ID))
		}
		fieldIDs[f.ID] = true
	}
	return nil
}

func (s *SchemaFile) palette() types.Palette {
	if len(s.Palette) == 0 {
		return types.DefaultPalette
	}
	palette := make(types.Palette, len(s.Palette))
	for i, c := range s.Palette {
		palette[i] = types.Color(c)
	}
	return palette
}

// Schema converts the file into field definitions. It returns nil when the
// file declares no field so that the default field set applies.
func (s *SchemaFile) Schema() model.Schema {
	if len(s.Fields) == 0 {
		return nil
	}
	palette := s.palette()

	schema := make(model.Schema, 0, len(s.Fields))
	for _, f := range s.Fields {
		def := &model.FieldDefinition{
			ID:       types.FieldID(f.ID),
			Name:     f.Name,
			Type:     types.FieldType(f.Type),
			IsMulti:  f.Multi,
			IsSystem: f.System,
		}
		for i, opt := range f.Options {
			color := types.Color(opt.Color)
			if color == "" {
				color = palette.Next(i)
			}
			def.Options = append(def.Options, model.FieldOption{
				ID:    types.OptionID(opt.ID),
				Label: opt.Label,
				Color: color,
			})
		}
		schema = append(schema, def)
	}
	return schema
}

// LoadSchema loads and validates a schema file
func LoadSchema(path string) (*SchemaFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "schema file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read schema file", goerr.V(ConfigPathKey, path))
	}

	var file SchemaFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML schema",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()))
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "schema validation failed", goerr.V(ConfigPathKey, path))
	}

	return &file, nil
}

// Schema holds CLI flags for the field set of new projects
type Schema struct {
	path string
}

// Flags returns CLI flags for schema configuration
func (s *Schema) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "schema",
			Usage:       "TOML file with the fields and palette for new projects",
			Category:    "Schema",
			Sources:     cli.EnvVars("FLEXIGANTT_SCHEMA"),
			Destination: &s.path,
		},
	}
}

// Configure loads the schema file. Without a file it returns a nil schema
// (the default fields) and the default palette.
func (s *Schema) Configure() (model.Schema, types.Palette, error) {
	if s.path == "" {
		return nil, types.DefaultPalette, nil
	}
	file, err := LoadSchema(s.path)
	if err != nil {
		return nil, nil, err
	}
	return file.Schema(), file.palette(), nil
}
