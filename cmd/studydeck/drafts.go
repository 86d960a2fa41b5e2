package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/drafts"
	"github.com/conorfennell/studydeck/internal/generate"
	"github.com/conorfennell/studydeck/internal/importer"
	"github.com/conorfennell/studydeck/internal/library"
)

func (a *app) draftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Generate or import draft cards, review them and commit the keepers",
		Long: `Collect drafts from a source, curate them, then save them to a project.

Sources:
  --from notes.md | ./notes/ | deck.xlsx | https://github.com/me/notes.git
  --generate lecture.txt   (uses the configured generator)

Examples:
  studydeck drafts -p <project> --from ./notes
  studydeck drafts -p <project> --generate chapter1.txt --count 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, _ := cmd.Flags().GetString("project")
			from, _ := cmd.Flags().GetString("from")
			textPath, _ := cmd.Flags().GetString("generate")
			count, _ := cmd.Flags().GetInt("count")
			yes, _ := cmd.Flags().GetBool("yes")
			if (from == "") == (textPath == "") {
				return fmt.Errorf("specify exactly one of --from or --generate")
			}

			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			var found []domain.Draft
			if from != "" {
				report, err := importer.Load(ctx, from, importer.Options{Progress: io.Discard})
				if err != nil {
					return err
				}
				for _, e := range report.Errors {
					fmt.Fprintf(a.out, "warning: %v\n", e)
				}
				found = report.Drafts
			} else {
				found, err = a.generateDrafts(ctx, b, textPath, count)
				if err != nil {
					return err
				}
			}
			if len(found) == 0 {
				fmt.Fprintln(a.out, "No drafts found.")
				return nil
			}

			ws := drafts.New(drafts.WithLogger(a.logger))
			ws.Add(found...)
			cards := library.NewCards(projectID, b, a.reconcileOptions()...)
			if _, err := cards.Load(ctx); err != nil {
				return err
			}
			if yes {
				res, err := ws.CommitAll(ctx, projectID, cards)
				fmt.Fprintln(a.out, res.Summary())
				return err
			}
			return runDrafts(ctx, ws, projectID, cards, a.in, a.out)
		},
	}
	cmd.Flags().StringP("project", "p", "", "project id to commit into")
	cmd.Flags().String("from", "", "markdown file, directory, git URL or xlsx file")
	cmd.Flags().String("generate", "", "text file to generate drafts from (- for stdin)")
	cmd.Flags().IntP("count", "n", 10, "number of drafts to generate")
	cmd.Flags().BoolP("yes", "y", false, "commit every draft without reviewing")
	cmd.MarkFlagRequired("project")
	return cmd
}

func (a *app) generateDrafts(ctx context.Context, b backend, path string, count int) ([]domain.Draft, error) {
	var text []byte
	var err error
	if path == "-" {
		text, err = io.ReadAll(a.in)
	} else {
		text, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read source text: %w", err)
	}

	var gen generate.Generator
	if rb, ok := b.(remoteBackend); ok {
		gen = rb.Client
	} else {
		gen, err = generate.New(generate.Config{
			Kind:   a.cfg.Generator.Kind,
			APIKey: a.cfg.Generator.APIKey,
			APIURL: a.cfg.Generator.APIURL,
			Model:  a.cfg.Generator.Model,
		})
		if err != nil {
			return nil, err
		}
	}
	found, err := gen.Generate(ctx, string(text), count)
	if err != nil {
		return nil, err
	}
	return generate.Finalize(found, count), nil
}

const draftsHelp = `Commands:
  l            list drafts
  f N text     set the front of draft N
  b N text     set the back of draft N
  d N          delete draft N
  + N / - N    mark draft N as good / bad (again to clear)
  c            commit all drafts
  x            discard all drafts and quit
  q            quit`

// runDrafts is the line-based curation loop over a workspace.
func runDrafts(ctx context.Context, ws *drafts.Workspace, projectID string, creator drafts.Creator, in io.Reader, out io.Writer) error {
	list := func() {
		for i, d := range ws.Drafts() {
			mark := " "
			switch d.Feedback {
			case domain.FeedbackUp:
				mark = "+"
			case domain.FeedbackDown:
				mark = "-"
			}
			fmt.Fprintf(out, "%s %2d. Q: %s\n      A: %s\n", mark, i+1, d.Front, d.Back)
		}
	}
	list()
	fmt.Fprintln(out, draftsHelp)

	scanner := bufio.NewScanner(in)
	for ws.Len() > 0 {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return nil
		}
		cmd, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")

		switch cmd {
		case "":
		case "l":
			list()
		case "c":
			res, err := ws.CommitAll(ctx, projectID, creator)
			if err != nil && res.Total == 0 {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintln(out, res.Summary())
			if res.Done() {
				return nil
			}
			for id, ferr := range res.Failed {
				fmt.Fprintf(out, "  %s: %v\n", id, ferr)
			}
		case "x":
			ws.DiscardAll()
			fmt.Fprintln(out, "Drafts discarded.")
			return nil
		case "q":
			return nil
		case "f", "b", "d", "+", "-":
			id, text, err := pick(ws, rest)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			switch cmd {
			case "f":
				err = ws.Update(id, domain.DraftUpdate{Front: &text})
			case "b":
				err = ws.Update(id, domain.DraftUpdate{Back: &text})
			case "d":
				err = ws.Delete(id)
			case "+":
				err = ws.SetFeedback(id, domain.FeedbackUp)
			case "-":
				err = ws.SetFeedback(id, domain.FeedbackDown)
			}
			if err != nil {
				fmt.Fprintln(out, err)
			}
		default:
			fmt.Fprintln(out, draftsHelp)
		}
	}
	fmt.Fprintln(out, "No drafts left.")
	return nil
}

// pick resolves "N rest..." to the id of the Nth draft.
func pick(ws *drafts.Workspace, args string) (id, rest string, err error) {
	num, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	n, err := strconv.Atoi(num)
	current := ws.Drafts()
	if err != nil || n < 1 || n > len(current) {
		return "", "", fmt.Errorf("no draft %q", num)
	}
	return current[n-1].ID, strings.TrimSpace(rest), nil
}
