package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/library"
)

func (a *app) cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage the cards of a project",
	}
	cmd.PersistentFlags().StringP("project", "p", "", "project id")
	cmd.MarkPersistentFlagRequired("project")

	// withCards opens the backend and loads the project's cards for fn.
	withCards := func(cmd *cobra.Command, fn func(cards *library.Cards) error) error {
		ctx := cmd.Context()
		projectID, _ := cmd.Flags().GetString("project")
		b, err := a.openBackend(ctx)
		if err != nil {
			return err
		}
		defer b.Close()

		cards := library.NewCards(projectID, b, a.reconcileOptions()...)
		if _, err := cards.Load(ctx); err != nil {
			return err
		}
		return fn(cards)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCards(cmd, func(cards *library.Cards) error {
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEASE\tNEXT REVIEW\tFRONT")
				for _, it := range cards.Items() {
					c := it.Value
					next := "new"
					if c.NextReview != nil {
						next = c.NextReview.Format("2006-01-02")
					}
					fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\n", c.ID, c.EaseFactor, next, c.Front)
				}
				return tw.Flush()
			})
		},
	})

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a card",
		RunE: func(cmd *cobra.Command, args []string) error {
			front, _ := cmd.Flags().GetString("front")
			back, _ := cmd.Flags().GetString("back")
			return withCards(cmd, func(cards *library.Cards) error {
				c, err := cards.Create(cmd.Context(), domain.NewFlashcard(cards.ProjectID(), front, back))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Created card %s\n", c.ID)
				return nil
			})
		},
	}
	add.Flags().String("front", "", "question side")
	add.Flags().String("back", "", "answer side")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete cards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCards(cmd, func(cards *library.Cards) error {
				res := cards.DeleteMany(cmd.Context(), args)
				fmt.Fprintln(a.out, res.Summary())
				return res.Err()
			})
		},
	})

	move := &cobra.Command{
		Use:   "move [id...]",
		Short: "Move cards to another project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("to")
			return withCards(cmd, func(cards *library.Cards) error {
				res := cards.MoveMany(cmd.Context(), args, target)
				fmt.Fprintln(a.out, res.Summary())
				return res.Err()
			})
		},
	}
	move.Flags().String("to", "", "target project id")
	move.MarkFlagRequired("to")
	cmd.AddCommand(move)
	return cmd
}
