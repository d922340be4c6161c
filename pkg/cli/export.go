package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
	"github.com/secmon-lab/flexigantt/pkg/utils/safe"
	"github.com/secmon-lab/flexigantt/pkg/view/xlsx"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var storeCfg storeFlags
	var output string
	var filters []string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path of the .xlsx file to write",
			Required:    true,
			Destination: &output,
		},
		&cli.StringSliceFlag{
			Name:        "filter",
			Usage:       "Export only tasks with the option selected, as <field>:<option>. Repeatable.",
			Destination: &filters,
		},
	}
	flags = append(flags, storeCfg.Flags()...)

	return &cli.Command{
		Name:      "export",
		Usage:     "Write the table view of a project to an Excel workbook",
		ArgsUsage: "<project-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			projectID, err := projectArg(c)
			if err != nil {
				return err
			}

			st, err := storeCfg.open(ctx)
			if err != nil {
				return err
			}
			defer st.close(ctx)

			session, err := st.workspace().Open(ctx, projectID)
			if err != nil {
				return err
			}
			if err := applyFilters(session, filters); err != nil {
				return err
			}

			view := session.TableView()
			buf, err := xlsx.Export(session.Project().Name, view)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
			}
			defer safe.Close(ctx, f)

			if _, err := buf.WriteTo(f); err != nil {
				return goerr.Wrap(err, "failed to write workbook", goerr.V("path", output))
			}

			logging.From(ctx).Info("project exported",
				"project_id", projectID,
				"rows", len(view.Rows),
				"path", output,
			)
			return nil
		},
	}
}
