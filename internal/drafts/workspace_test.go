package drafts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/library"
	"github.com/conorfennell/studydeck/internal/reconcile"
	"github.com/conorfennell/studydeck/internal/testutil"
)

func newWorkspace(pairs ...string) *Workspace {
	n := 0
	w := New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithIDs(func() string { n++; return fmt.Sprintf("d%d", n) }),
	)
	for i := 0; i+1 < len(pairs); i += 2 {
		w.Add(domain.Draft{Front: pairs[i], Back: pairs[i+1]})
	}
	return w
}

func newCards(store *testutil.Store) *library.Cards {
	return library.NewCards("p1", store, reconcile.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestUpdateTouchesOnlyTarget(t *testing.T) {
	w := newWorkspace("q1", "a1", "q2", "a2")
	front := "edited"
	if err := w.Update("d2", domain.DraftUpdate{Front: &front}); err != nil {
		t.Fatal(err)
	}
	got := w.Drafts()
	if got[0].Front != "q1" || got[1].Front != "edited" || got[1].Back != "a2" {
		t.Errorf("Unexpected drafts after update: %+v", got)
	}
	if err := w.Update("missing", domain.DraftUpdate{Front: &front}); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	w := newWorkspace("q1", "a1", "q2", "a2", "q3", "a3")
	if err := w.Delete("d2"); err != nil {
		t.Fatal(err)
	}
	got := w.Drafts()
	if len(got) != 2 || got[0].ID != "d1" || got[1].ID != "d3" {
		t.Errorf("Unexpected drafts after delete: %+v", got)
	}
}

func TestSetFeedbackToggles(t *testing.T) {
	w := newWorkspace("q", "a")
	steps := []struct {
		set  domain.Feedback
		want domain.Feedback
	}{
		{domain.FeedbackUp, domain.FeedbackUp},
		{domain.FeedbackUp, domain.FeedbackNone},
		{domain.FeedbackDown, domain.FeedbackDown},
		{domain.FeedbackUp, domain.FeedbackUp},
	}
	for i, step := range steps {
		if err := w.SetFeedback("d1", step.set); err != nil {
			t.Fatal(err)
		}
		if got := w.Drafts()[0].Feedback; got != step.want {
			t.Errorf("Step %d: expected %q, got %q", i, step.want, got)
		}
	}
	if err := w.SetFeedback("d1", "sideways"); !domain.IsKind(err, domain.KindValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestCommitAllValidationGate(t *testing.T) {
	testCases := []struct {
		name  string
		front string
		back  string
	}{
		{"empty front", "", "a"},
		{"front too long", strings.Repeat("f", 201), "a"},
		{"empty back", "q", ""},
		{"back too long", "q", strings.Repeat("b", 501)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := testutil.NewStore()
			w := newWorkspace("good", "good", tc.front, tc.back)

			_, err := w.CommitAll(context.Background(), "p1", newCards(store))
			if !domain.IsKind(err, domain.KindValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if store.TotalCalls() != 0 {
				t.Errorf("Expected zero network calls, got %d", store.TotalCalls())
			}
			if w.Len() != 2 {
				t.Errorf("Expected workspace untouched, got %d drafts", w.Len())
			}
		})
	}
}

func TestCommitAllPartialFailure(t *testing.T) {
	store := testutil.NewStore()
	store.FailCreateCard = func(c domain.Flashcard) error {
		if c.Front == "q2" {
			return domain.Errorf(domain.KindTransient, "dropped")
		}
		return nil
	}
	w := newWorkspace("q1", "a1", "q2", "a2", "q3", "a3")
	cards := newCards(store)

	res, err := w.CommitAll(context.Background(), "p1", cards)
	if err == nil {
		t.Fatal("Expected partial failure error")
	}
	if res.Summary() != "2 of 3 saved" || res.Done() {
		t.Errorf("Unexpected result %s", res.Summary())
	}
	left := w.Drafts()
	if len(left) != 1 || left[0].ID != "d2" {
		t.Errorf("Expected only the failed draft to remain, got %+v", left)
	}
	if _, ok := res.Failed["d2"]; !ok {
		t.Errorf("Expected d2 reported failed, got %v", res.Failed)
	}
	if len(cards.Items()) != 2 {
		t.Errorf("Expected 2 saved cards in the collection, got %d", len(cards.Items()))
	}
}

func TestCommitAllSuccessClearsWorkspace(t *testing.T) {
	store := testutil.NewStore()
	w := newWorkspace("q1", "a1", "q2", "a2")

	res, err := w.CommitAll(context.Background(), "p1", newCards(store))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done() || len(res.Saved) != 2 {
		t.Errorf("Expected 2 saved, got %s", res.Summary())
	}
	if w.Len() != 0 {
		t.Errorf("Expected empty workspace, got %d", w.Len())
	}
	if store.Calls("CreateCard") != 2 {
		t.Errorf("Expected 2 create calls, got %d", store.Calls("CreateCard"))
	}
	for _, c := range res.Saved {
		if c.ProjectID != "p1" || c.EaseFactor != domain.DefaultEaseFactor {
			t.Errorf("Unexpected saved card %+v", c)
		}
	}
}

func TestDiscardAll(t *testing.T) {
	w := newWorkspace("q1", "a1", "q2", "a2")
	w.DiscardAll()
	if w.Len() != 0 {
		t.Errorf("Expected empty workspace, got %d", w.Len())
	}
}
