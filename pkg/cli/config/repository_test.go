package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/flexigantt/pkg/cli/config"
)

func TestRepository_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		gw, err := config.NewRepositoryForTest(config.BackendMemory, "", false).Configure(ctx, nil)
		gt.NoError(t, err).Required()
		defer func() { _ = gw.Close() }()

		projects, err := gw.ListProjects(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, projects).Length(0)
	})

	t.Run("sqlite seeds the demo project", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flexigantt.db")
		gw, err := config.NewRepositoryForTest(config.BackendSQLite, path, true).Configure(ctx, nil)
		gt.NoError(t, err).Required()
		defer func() { _ = gw.Close() }()

		projects, err := gw.ListProjects(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, projects).Length(1).Required()
		gt.Value(t, projects[0].Name).Equal("Website Redesign")
	})

	t.Run("missing flag", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendGCS, "", false).Configure(ctx, nil)
		gt.Error(t, err).Is(config.ErrMissingFlag)

		_, err = config.NewRepositoryForTest(config.BackendRemote, "", false).Configure(ctx, nil)
		gt.Error(t, err).Is(config.ErrMissingFlag)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("postgres", "", false).Configure(ctx, nil)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}
