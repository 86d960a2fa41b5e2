package library

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/reconcile"
	"github.com/conorfennell/studydeck/internal/testutil"
)

func quiet() reconcile.Option {
	return reconcile.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProjectsCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed project replaces the provisional one", func(t *testing.T) {
		store := testutil.NewStore()
		projects := NewProjects(store, quiet())

		p, err := projects.Create(ctx, domain.Project{Title: "Spanish"})
		if err != nil {
			t.Fatalf("Create() returned an unexpected error: %v", err)
		}
		items := projects.Items()
		if len(items) != 1 || items[0].Value.ID != p.ID || items[0].Provisional() {
			t.Errorf("Expected settled confirmed project, got %+v", items)
		}
		if reconcile.IsTempID(p.ID) {
			t.Errorf("Expected store id, got %q", p.ID)
		}
	})

	t.Run("failed create returns to the prior count", func(t *testing.T) {
		store := testutil.NewStore()
		store.SeedProject(domain.Project{Title: "French"})
		store.FailCreateProject = func(domain.Project) error {
			return domain.Errorf(domain.KindTransient, "connection reset")
		}
		projects := NewProjects(store, quiet())
		if err := projects.Load(ctx); err != nil {
			t.Fatal(err)
		}
		before := len(projects.Items())

		_, err := projects.Create(ctx, domain.Project{Title: "German"})
		if !domain.IsKind(err, domain.KindTransient) {
			t.Fatalf("Expected transient error, got %v", err)
		}
		if got := len(projects.Items()); got != before {
			t.Errorf("Expected %d projects after rollback, got %d", before, got)
		}
	})

	t.Run("invalid project never reaches the store", func(t *testing.T) {
		store := testutil.NewStore()
		projects := NewProjects(store, quiet())

		_, err := projects.Create(ctx, domain.Project{Title: strings.Repeat("t", 101)})
		if !domain.IsKind(err, domain.KindValidation) {
			t.Fatalf("Expected validation error, got %v", err)
		}
		if store.Calls("CreateProject") != 0 {
			t.Error("Expected no create call for invalid project")
		}
		if len(projects.Items()) != 0 {
			t.Error("Expected no provisional project for invalid input")
		}
	})
}

func TestProjectsUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	p := store.SeedProject(domain.Project{Title: "Old"})
	projects := NewProjects(store, quiet())
	if err := projects.Load(ctx); err != nil {
		t.Fatal(err)
	}

	title := "New"
	if _, err := projects.Update(ctx, p.ID, domain.ProjectUpdate{Title: &title}); err != nil {
		t.Fatal(err)
	}
	if it, _ := projects.Get(p.ID); it.Value.Title != "New" {
		t.Errorf("Expected title New, got %q", it.Value.Title)
	}

	store.FailDeleteProject = func(string) error { return errors.New("boom") }
	if err := projects.Delete(ctx, p.ID); err == nil {
		t.Fatal("Expected delete error")
	}
	if it, ok := projects.Get(p.ID); !ok || it.Provisional() {
		t.Errorf("Expected project visible and untagged after failed delete, got %+v", it)
	}

	store.FailDeleteProject = nil
	if err := projects.Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := projects.Get(p.ID); ok {
		t.Error("Expected project removed")
	}
}

func TestCardsBatchDelete(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, store.SeedCard(domain.NewFlashcard("p1", "front", "back")).ID)
	}
	failing := ids[2]
	store.FailDeleteCard = func(id string) error {
		if id == failing {
			return domain.Errorf(domain.KindTransient, "dropped")
		}
		return nil
	}

	cards := NewCards("p1", store, quiet())
	if _, err := cards.Load(ctx); err != nil {
		t.Fatal(err)
	}
	res := cards.DeleteMany(ctx, ids)

	if res.Summary() != "4 of 5 deleted" {
		t.Errorf("Expected %q, got %q", "4 of 5 deleted", res.Summary())
	}
	items := cards.Items()
	if len(items) != 1 || items[0].Value.ID != failing || items[0].Provisional() {
		t.Errorf("Expected only %s left untagged, got %+v", failing, items)
	}
}

func TestCardsMoveMany(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	a := store.SeedCard(domain.NewFlashcard("p1", "a", "a"))
	b := store.SeedCard(domain.NewFlashcard("p1", "b", "b"))

	cards := NewCards("p1", store, quiet())
	if _, err := cards.Load(ctx); err != nil {
		t.Fatal(err)
	}
	res := cards.MoveMany(ctx, []string{a.ID}, "p2")
	if !res.OK() || res.Summary() != "1 of 1 moved" {
		t.Fatalf("Unexpected move result %s (%v)", res.Summary(), res.Failed)
	}
	items := cards.Items()
	if len(items) != 1 || items[0].Value.ID != b.ID {
		t.Errorf("Expected only %s to remain, got %+v", b.ID, items)
	}
	moved, _ := store.FetchCards(ctx, "p2")
	if len(moved) != 1 || moved[0].ID != a.ID {
		t.Errorf("Expected %s in p2, got %+v", a.ID, moved)
	}
}

func TestCardsCreateDefaults(t *testing.T) {
	store := testutil.NewStore()
	cards := NewCards("p1", store, quiet())
	c, err := cards.Create(context.Background(), domain.Flashcard{Front: "Q", Back: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ProjectID != "p1" || c.EaseFactor != domain.DefaultEaseFactor {
		t.Errorf("Expected defaults applied, got %+v", c)
	}
}
