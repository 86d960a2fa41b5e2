package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/library"
)

func (a *app) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List, create and delete projects",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			projects := library.NewProjects(b, a.reconcileOptions()...)
			if err := projects.Load(ctx); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTAG\tDESCRIPTION")
			for _, it := range projects.Items() {
				p := it.Value
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Tag, p.Description)
			}
			return tw.Flush()
		},
	})

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			title, _ := cmd.Flags().GetString("title")
			desc, _ := cmd.Flags().GetString("description")
			tag, _ := cmd.Flags().GetString("tag")

			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			projects := library.NewProjects(b, a.reconcileOptions()...)
			p, err := projects.Create(ctx, domain.Project{Title: title, Description: desc, Tag: tag})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created project %s (%s)\n", p.Title, p.ID)
			return nil
		},
	}
	create.Flags().String("title", "", "project title")
	create.Flags().String("description", "", "project description")
	create.Flags().String("tag", "", "project tag")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete projects and their cards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			projects := library.NewProjects(b, a.reconcileOptions()...)
			if err := projects.Load(ctx); err != nil {
				return err
			}
			res := projects.DeleteMany(ctx, args)
			fmt.Fprintln(a.out, res.Summary())
			return res.Err()
		},
	})
	return cmd
}
