package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/review"
	"github.com/conorfennell/studydeck/internal/srs"
	"github.com/conorfennell/studydeck/internal/study"
)

func (a *app) studyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Review a project's due cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, _ := cmd.Flags().GetString("project")
			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			params := srs.DefaultParams()
			params.ScaleByEase = a.cfg.Scheduler.ScaleByEase
			view := study.NewView(projectID, b, review.NewProgressCache(),
				study.WithParams(params),
				study.WithLogger(a.logger),
				study.WithReconcileOptions(a.reconcileOptions()...),
			)
			return runStudy(ctx, view, a.in, a.out)
		},
	}
	cmd.Flags().StringP("project", "p", "", "project id")
	cmd.MarkFlagRequired("project")
	return cmd
}

// runStudy drives a study view from line-based input until the queue is
// exhausted, the user quits or input ends.
func runStudy(ctx context.Context, view *study.View, in io.Reader, out io.Writer) error {
	total, err := view.Start(ctx)
	if errors.Is(err, review.ErrEmptyQueue) {
		fmt.Fprintln(out, "No cards to review.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d cards to review.\n", total)

	scanner := bufio.NewScanner(in)
	read := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

loop:
	for !view.Done() {
		card, ok := view.Current()
		if !ok {
			break
		}
		done, n := view.Progress()
		fmt.Fprintf(out, "\n[%d/%d] Q: %s\n(Enter to reveal, q to quit) ", done+1, n, card.Front)
		line, ok := read()
		if !ok || line == "q" {
			break
		}
		fmt.Fprintf(out, "A: %s\n", card.Back)

		var d domain.Difficulty
		for {
			fmt.Fprint(out, "Rate [e]asy [g]ood [h]ard (q to quit): ")
			line, ok := read()
			if !ok || line == "q" {
				break loop
			}
			if d, err = domain.ParseDifficulty(line); err == nil {
				break
			}
			fmt.Fprintln(out, err)
		}

		rev, err := view.Judge(ctx, d)
		if err != nil {
			fmt.Fprintf(out, "Could not save review: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Next review in %d days (ease %.2f).\n", rev.IntervalDays, rev.EaseFactor)
	}

	reviewed := view.Session().Reviewed()
	if err := view.End(ctx); err != nil && !errors.Is(err, review.ErrSessionNotActive) {
		return err
	}
	fmt.Fprintf(out, "\nSession complete: %d cards reviewed.\n", reviewed)
	return nil
}
