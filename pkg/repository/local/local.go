// Package local implements the gateway on top of a blob store holding the whole
// project list as one JSON document.
package local

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/repository/memory"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
)

// BlobKey is the fixed namespace the project list is stored under
const BlobKey = "flexigantt_projects_v2"

// Gateway loads the project list once, serves it from memory and writes the
// full list back to the blob store on every mutation.
type Gateway struct {
	*memory.Gateway
	store interfaces.BlobStore
}

var _ interfaces.Gateway = &Gateway{}

type config struct {
	seed   bool
	schema model.Schema
	now    func() time.Time
}

type Option func(*config)

// WithSeed writes the demo project when the store holds no project list yet
func WithSeed() Option {
	return func(c *config) {
		c.seed = true
	}
}

// WithSchema sets the field set new projects start with
func WithSchema(schema model.Schema) Option {
	return func(c *config) {
		c.schema = schema
	}
}

// WithClock replaces the clock used for creation timestamps
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// New loads the project list from store. The gateway owns store and closes it on Close.
func New(ctx context.Context, store interfaces.BlobStore, opts ...Option) (*Gateway, error) {
	cfg := &config{
		schema: model.DefaultFields(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	projects, err := load(ctx, store)
	if err != nil {
		return nil, err
	}

	if projects == nil {
		projects = []*model.Project{}
		if cfg.seed {
			projects = model.SeedProjects(cfg.now())
			logging.From(ctx).Info("seeding local store", "projects", len(projects))
		}
		if err := save(ctx, store, projects); err != nil {
			return nil, err
		}
	}

	g := &Gateway{store: store}
	g.Gateway = memory.New(
		memory.WithProjects(projects),
		memory.WithSchema(cfg.schema),
		memory.WithClock(cfg.now),
		memory.WithPersist(func(ctx context.Context, projects []*model.Project) error {
			return save(ctx, store, projects)
		}),
	)
	return g, nil
}

// load returns nil when the store holds no project list
func load(ctx context.Context, store interfaces.BlobStore) ([]*model.Project, error) {
	data, err := store.Get(ctx, BlobKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read project list", goerr.V("key", BlobKey))
	}
	if data == nil {
		return nil, nil
	}

	var projects []*model.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, goerr.Wrap(err, "failed to decode project list", goerr.V("key", BlobKey))
	}
	if projects == nil {
		projects = []*model.Project{}
	}

	// Lists written before teams existed have no team
	for _, p := range projects {
		if p.Team == "" {
			p.Team = model.DefaultTeam
		}
	}
	return projects, nil
}

func save(ctx context.Context, store interfaces.BlobStore, projects []*model.Project) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return goerr.Wrap(err, "failed to encode project list")
	}
	if err := store.Put(ctx, BlobKey, data); err != nil {
		return goerr.Wrap(err, "failed to write project list", goerr.V("key", BlobKey))
	}
	return nil
}

func (g *Gateway) Close() error {
	return g.store.Close()
}
