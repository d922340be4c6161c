package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/flexigantt/pkg/domain/types"
	"github.com/secmon-lab/flexigantt/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdProject() *cli.Command {
	var storeCfg storeFlags

	return &cli.Command{
		Name:    "project",
		Aliases: []string{"p"},
		Usage:   "Manage projects",
		Flags:   storeCfg.Flags(),
		Commands: []*cli.Command{
			cmdProjectList(&storeCfg),
			cmdProjectCreate(&storeCfg),
			cmdProjectDelete(&storeCfg),
		},
	}
}

func cmdProjectList(storeCfg *storeFlags) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List projects grouped by team",
		Action: func(ctx context.Context, c *cli.Command) error {
			st, err := storeCfg.open(ctx)
			if err != nil {
				return err
			}
			defer st.close(ctx)

			w := c.Root().Writer
			team := color.New(color.FgCyan, color.Bold)
			id := color.New(color.Faint)

			groups := st.workspace().ProjectsByTeam(ctx)
			if len(groups) == 0 {
				_, _ = fmt.Fprintln(w, "No projects")
				return nil
			}
			for _, g := range groups {
				_, _ = team.Fprintf(w, "%s (%d)\n", g.Team, len(g.Projects))
				for _, p := range g.Projects {
					_, _ = fmt.Fprintf(w, "  %s  %s  %d tasks  %s\n",
						id.Sprint(p.ID), p.Name, len(p.Tasks), types.FormatDate(p.CreatedAt))
				}
			}
			return nil
		},
	}
}

func cmdProjectCreate(storeCfg *storeFlags) *cli.Command {
	var name, team, description string

	return &cli.Command{
		Name:  "create",
		Usage: "Create a project with the configured schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Project name",
				Required:    true,
				Destination: &name,
			},
			&cli.StringFlag{
				Name:        "team",
				Usage:       "Team the project belongs to",
				Destination: &team,
			},
			&cli.StringFlag{
				Name:        "description",
				Usage:       "Project description",
				Destination: &description,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			st, err := storeCfg.open(ctx)
			if err != nil {
				return err
			}
			defer st.close(ctx)

			p, err := st.workspace().CreateProject(ctx, name, team, description)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.Root().Writer, p.ID)
			return nil
		},
	}
}

func cmdProjectDelete(storeCfg *storeFlags) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a project with all its tasks",
		ArgsUsage: "<project-id>",
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

			p, err := st.gw.GetProject(ctx, projectID)
			if err != nil {
				return goerr.Wrap(err, "failed to get project")
			}
			if p == nil {
				return goerr.Wrap(usecase.ErrProjectNotFound, "cannot delete project", goerr.V("project_id", projectID))
			}
			return st.workspace().DeleteProject(ctx, projectID)
		},
	}
}

func projectArg(c *cli.Command) (types.ProjectID, error) {
	if c.Args().Len() != 1 {
		return "", goerr.New("exactly one project ID is required", goerr.V("args", c.Args().Slice()))
	}
	return types.ProjectID(c.Args().First()), nil
}
