package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var storeCfg storeFlags
	var checkStore bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "check-store",
			Usage:       "Also scan stored projects for values that reference deleted fields or options",
			Destination: &checkStore,
		},
	}
	flags = append(flags, storeCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the schema file and optionally check store consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			schema, palette, err := storeCfg.schema.Configure()
			if err != nil {
				return goerr.Wrap(err, "schema validation failed")
			}
			if schema == nil {
				logger.Info("No schema file specified, new projects use the default fields")
			} else {
				logger.Info("Schema validation passed",
					"field_count", len(schema),
					"palette_size", len(palette),
				)
			}

			if !checkStore {
				return nil
			}

			st, err := storeCfg.open(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer st.close(ctx)

			issues, err := st.workspace().CheckConsistency(ctx)
			if err != nil {
				return goerr.Wrap(err, "store consistency check failed")
			}
			if len(issues) > 0 {
				for _, issue := range issues {
					logger.Warn("Store consistency issue found",
						"kind", issue.Kind,
						"project_id", issue.ProjectID,
						"task_id", issue.TaskID,
						"field_id", issue.FieldID,
						"option_id", issue.OptionID,
						"message", issue.Message,
					)
				}
				return fmt.Errorf("store consistency check found %d issue(s)", len(issues))
			}

			logger.Info("Store consistency check passed")
			return nil
		},
	}
}
