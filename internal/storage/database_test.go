package storage

import (
	"context"
	"testing"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	db.SetClock(func() time.Time { return t0 })
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Fatal("Expected an error for an unsupported driver")
	}
}

func TestProjects(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	created, err := db.CreateProject(ctx, domain.Project{Title: "Go", Tag: "lang"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if created.ID == "" || !created.CreatedAt.Equal(t0) {
		t.Errorf("Unexpected project: %+v", created)
	}
	if _, err := db.CreateProject(ctx, domain.Project{Title: "Rust"}); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	projects, err := db.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(projects))
	}

	title := "Golang"
	updated, err := db.UpdateProject(ctx, created.ID, domain.ProjectUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}
	if updated.Title != "Golang" || updated.Tag != "lang" {
		t.Errorf("Unexpected project after update: %+v", updated)
	}

	if _, err := db.UpdateProject(ctx, "missing", domain.ProjectUpdate{Title: &title}); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}

	if err := db.DeleteProject(ctx, created.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if err := db.DeleteProject(ctx, created.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
}

func TestCards(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p, _ := db.CreateProject(ctx, domain.Project{Title: "Go"})
	other, _ := db.CreateProject(ctx, domain.Project{Title: "Other"})

	t.Run("create requires project", func(t *testing.T) {
		_, err := db.CreateCard(ctx, domain.NewFlashcard("missing", "q", "a"))
		if !domain.IsKind(err, domain.KindNotFound) {
			t.Errorf("Expected not found, got %v", err)
		}
	})

	card, err := db.CreateCard(ctx, domain.Flashcard{ProjectID: p.ID, Front: "What is a slice?", Back: "A view over an array."})
	if err != nil {
		t.Fatalf("CreateCard() error = %v", err)
	}
	if card.EaseFactor != domain.DefaultEaseFactor {
		t.Errorf("Expected default ease, got %v", card.EaseFactor)
	}

	t.Run("judgment round-trips", func(t *testing.T) {
		ease := 2.65
		next := t0.AddDate(0, 0, 4)
		fb := domain.Easy
		got, err := db.UpdateCard(ctx, card.ID, domain.CardUpdate{EaseFactor: &ease, NextReview: &next, Feedback: &fb, FeedbackAt: &t0})
		if err != nil {
			t.Fatalf("UpdateCard() error = %v", err)
		}
		if got.EaseFactor != 2.65 {
			t.Errorf("Expected ease 2.65, got %v", got.EaseFactor)
		}
		if got.NextReview == nil || !got.NextReview.Equal(next) {
			t.Errorf("Expected next review %v, got %v", next, got.NextReview)
		}
		if got.Feedback == nil || *got.Feedback != domain.Easy {
			t.Errorf("Expected easy feedback, got %v", got.Feedback)
		}
		if got.Front != card.Front {
			t.Errorf("Front changed: %q", got.Front)
		}
	})

	t.Run("move to missing project", func(t *testing.T) {
		target := "missing"
		if _, err := db.UpdateCard(ctx, card.ID, domain.CardUpdate{ProjectID: &target}); !domain.IsKind(err, domain.KindNotFound) {
			t.Errorf("Expected not found, got %v", err)
		}
	})

	t.Run("move", func(t *testing.T) {
		if _, err := db.UpdateCard(ctx, card.ID, domain.CardUpdate{ProjectID: &other.ID}); err != nil {
			t.Fatalf("UpdateCard() error = %v", err)
		}
		src, _ := db.FetchCards(ctx, p.ID)
		dst, _ := db.FetchCards(ctx, other.ID)
		if len(src) != 0 || len(dst) != 1 {
			t.Errorf("Expected card moved, got %d in source and %d in target", len(src), len(dst))
		}
	})

	t.Run("project delete cascades", func(t *testing.T) {
		if err := db.DeleteProject(ctx, other.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := db.GetCard(ctx, card.ID); !domain.IsKind(err, domain.KindNotFound) {
			t.Errorf("Expected card deleted with project, got %v", err)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		if err := db.DeleteCard(ctx, "missing"); !domain.IsKind(err, domain.KindNotFound) {
			t.Errorf("Expected not found, got %v", err)
		}
	})
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	p, _ := db.CreateProject(ctx, domain.Project{Title: "Go"})

	s, err := db.CreateSession(ctx, p.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if !s.Active() {
		t.Error("Expected a new session to be active")
	}

	ended, err := db.EndSession(ctx, s.ID, 7)
	if err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	if ended.Active() || ended.CardsReviewed != 7 {
		t.Errorf("Unexpected ended session: %+v", ended)
	}

	if _, err := db.EndSession(ctx, "missing", 1); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := db.CreateSession(ctx, "missing"); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}
