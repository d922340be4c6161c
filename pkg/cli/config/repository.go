package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/interfaces"
	"github.com/secmon-lab/flexigantt/pkg/domain/model"
	"github.com/secmon-lab/flexigantt/pkg/repository/blobstore"
	"github.com/secmon-lab/flexigantt/pkg/repository/firestore"
	"github.com/secmon-lab/flexigantt/pkg/repository/local"
	"github.com/secmon-lab/flexigantt/pkg/repository/memory"
	"github.com/secmon-lab/flexigantt/pkg/repository/remote"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendGCS       = "gcs"
	BackendFirestore = "firestore"
	BackendRemote    = "remote"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	seed       bool
	sqlitePath string

	gcsBucket string
	gcsPrefix string

	projectID        string
	databaseID       string
	collectionPrefix string

	remoteURL   string
	remoteToken string `masq:"secret"`
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, sqlite, gcs, firestore or remote)",
			Category:    "Repository",
			Value:       BackendSQLite,
			Sources:     cli.EnvVars("FLEXIGANTT_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.BoolFlag{
			Name:        "seed",
			Usage:       "Write the demo project when a local store is empty",
			Category:    "Repository",
			Value:       true,
			Sources:     cli.EnvVars("FLEXIGANTT_SEED"),
			Destination: &r.seed,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file (sqlite backend)",
			Category:    "Repository",
			Value:       "flexigantt.db",
			Sources:     cli.EnvVars("FLEXIGANTT_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (gcs backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("FLEXIGANTT_GCS_BUCKET"),
			Destination: &r.gcsBucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix (gcs backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("FLEXIGANTT_GCS_PREFIX"),
			Destination: &r.gcsPrefix,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("FLEXIGANTT_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("FLEXIGANTT_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of Firestore collection names",
			Category:    "Repository",
			Sources:     cli.EnvVars("FLEXIGANTT_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "remote-url",
			Usage:       "Base URL of a FlexiGantt API, e.g. https://example.com/api (remote backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("FLEXIGANTT_REMOTE_URL"),
			Destination: &r.remoteURL,
		},
		&cli.StringFlag{
			Name:        "remote-token",
			Usage:       "Bearer token for the remote API",
			Category:    "Repository",
			Sources:     cli.EnvVars("FLEXIGANTT_REMOTE_TOKEN"),
			Destination: &r.remoteToken,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

func required(flag, value string) error {
	if value == "" {
		return goerr.Wrap(ErrMissingFlag, "flag is required for this backend", goerr.V(FlagKey, flag))
	}
	return nil
}

// Configure initializes and returns a gateway based on the configured backend.
// schema, when not nil, replaces the default fields of new projects.
// The caller is responsible for calling Close() on the returned gateway.
func (r *Repository) Configure(ctx context.Context, schema model.Schema) (interfaces.Gateway, error) {
	localOpts := []local.Option{local.WithSchema(schema)}
	if r.seed {
		localOpts = append(localOpts, local.WithSeed())
	}

	switch r.backend {
	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(memory.WithSchema(schema)), nil

	case BackendSQLite:
		if err := required("sqlite-path", r.sqlitePath); err != nil {
			return nil, err
		}
		store, err := blobstore.NewSQLite(ctx, r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open sqlite store")
		}
		gw, err := local.New(ctx, store, localOpts...)
		if err != nil {
			_ = store.Close()
			return nil, goerr.Wrap(err, "failed to initialize local repository")
		}
		logging.Default().Info("Using SQLite repository", "path", r.sqlitePath)
		return gw, nil

	case BackendGCS:
		if err := required("gcs-bucket", r.gcsBucket); err != nil {
			return nil, err
		}
		store, err := blobstore.NewGCS(ctx, r.gcsBucket, blobstore.WithObjectPrefix(r.gcsPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open gcs store")
		}
		gw, err := local.New(ctx, store, localOpts...)
		if err != nil {
			_ = store.Close()
			return nil, goerr.Wrap(err, "failed to initialize gcs repository")
		}
		logging.Default().Info("Using Cloud Storage repository", "bucket", r.gcsBucket, "prefix", r.gcsPrefix)
		return gw, nil

	case BackendFirestore:
		if err := required("firestore-project-id", r.projectID); err != nil {
			return nil, err
		}
		gw, err := firestore.New(ctx, r.projectID,
			firestore.WithDatabaseID(r.databaseID),
			firestore.WithCollectionPrefix(r.collectionPrefix),
			firestore.WithSchema(schema),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return gw, nil

	case BackendRemote:
		if err := required("remote-url", r.remoteURL); err != nil {
			return nil, err
		}
		gw, err := remote.New(r.remoteURL, remote.WithToken(r.remoteToken))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize remote repository")
		}
		logging.Default().Info("Using remote repository", "repository", r)
		return gw, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unknown backend", goerr.V(BackendKey, r.backend))
	}
}
