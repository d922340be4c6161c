package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/flexigantt/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		sentinelError error
		wantMatch     bool
	}{
		{
			name:          "ErrConfigNotFound can be identified",
			err:           goerr.Wrap(config.ErrConfigNotFound, "failed to load config"),
			sentinelError: config.ErrConfigNotFound,
			wantMatch:     true,
		},
		{
			name:          "ErrInvalidBackend can be identified",
			err:           goerr.Wrap(config.ErrInvalidBackend, "unknown backend"),
			sentinelError: config.ErrInvalidBackend,
			wantMatch:     true,
		},
		{
			name:          "Different sentinel errors do not match",
			err:           goerr.Wrap(config.ErrConfigNotFound, "failed to load config"),
			sentinelError: config.ErrInvalidConfig,
			wantMatch:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := errors.Is(tt.err, tt.sentinelError)
			gt.Value(t, matched).Equal(tt.wantMatch)
		})
	}
}

func TestConfigErrors_ContextValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	content := `
[[field]]
id = "f_status"
name = "Status"
type = "select"

  [[field.option]]
  id = "opt_todo"
  label = "To Do"

  [[field.option]]
  id = "opt_todo"
  label = "Again"
`
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

	_, err := config.LoadSchema(path)
	gt.Error(t, err).Is(config.ErrDuplicateOptionID)

	var ge *goerr.Error
	if !errors.As(err, &ge) {
		t.Fatal("expected goerr.Error")
	}
	values := ge.Values()
	gt.Value(t, values[config.ConfigPathKey]).Equal(any(path))
	gt.Value(t, values[config.FieldIDKey]).Equal(any("f_status"))
	gt.Value(t, values[config.OptionIDKey]).Equal(any("opt_todo"))
}
