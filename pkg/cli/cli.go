package cli

import (
	"context"

	"github.com/secmon-lab/flexigantt/pkg/cli/config"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	flags := loggerCfg.Flags()
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "flexigantt",
		Usage:   "Flexible project tables and Gantt timelines",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Debug("Starting flexigantt", "logger", loggerCfg, "sentry", sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdProject(),
			cmdShow(),
			cmdExport(),
			cmdValidate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

// storeFlags are the flags of every command that opens the project store
type storeFlags struct {
	repo   config.Repository
	schema config.Schema
}

func (x *storeFlags) Flags() []cli.Flag {
	flags := x.repo.Flags()
	return append(flags, x.schema.Flags()...)
}

// open builds the gateway and the workspace options from the flags.
// The caller closes the gateway.
func (x *storeFlags) open(ctx context.Context) (*store, error) {
	schema, palette, err := x.schema.Configure()
	if err != nil {
		return nil, err
	}
	gw, err := x.repo.Configure(ctx, schema)
	if err != nil {
		return nil, err
	}
	return &store{gw: gw, palette: palette}, nil
}
