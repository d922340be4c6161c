package cli

import (
	"context"
	"fmt"

	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/view/term"
	"github.com/urfave/cli/v3"
)

func cmdShow() *cli.Command {
	var storeCfg storeFlags
	var view string
	var filters []string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "view",
			Usage:       "View mode (table or gantt)",
			Value:       types.ViewModeTable.String(),
			Destination: &view,
		},
		&cli.StringSliceFlag{
			Name:        "filter",
			Usage:       "Show only tasks with the option selected, as <field>:<option>. Repeatable.",
			Destination: &filters,
		},
	}
	flags = append(flags, storeCfg.Flags()...)

	return &cli.Command{
		Name:      "show",
		Usage:     "Render a project to the terminal",
		ArgsUsage: "<project-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			projectID, err := projectArg(c)
			if err != nil {
				return err
			}
			mode, err := types.ParseViewMode(view)
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
			if err := session.SetViewMode(mode); err != nil {
				return err
			}

			var out string
			switch mode {
			case types.ViewModeGantt:
				out = term.RenderGantt(session.GanttView())
			default:
				out = term.RenderTable(session.TableView())
			}
			_, _ = fmt.Fprintln(c.Root().Writer, out)
			return nil
		},
	}
}
