package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

type fakeSessionStore struct {
	CreateFunc func(ctx context.Context, projectID string) (domain.StudySession, error)
	EndFunc    func(ctx context.Context, sessionID string, cardsReviewed int) (domain.StudySession, error)

	created int
	ended   []int
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, projectID string) (domain.StudySession, error) {
	f.created++
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, projectID)
	}
	return domain.StudySession{ID: "s1", ProjectID: projectID, StartedAt: t0}, nil
}

func (f *fakeSessionStore) EndSession(ctx context.Context, sessionID string, cardsReviewed int) (domain.StudySession, error) {
	f.ended = append(f.ended, cardsReviewed)
	if f.EndFunc != nil {
		return f.EndFunc(ctx, sessionID, cardsReviewed)
	}
	end := t0
	return domain.StudySession{ID: sessionID, EndedAt: &end, CardsReviewed: cardsReviewed}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(store SessionStore, cache *ProgressCache) *Session {
	return NewSession("p1", store, cache, WithLogger(quietLogger()), WithClock(func() time.Time { return t0 }))
}

func threeCards() []domain.Flashcard {
	return []domain.Flashcard{card("a", nil), card("b", nil), card("c", nil)}
}

func TestSessionLifecycle(t *testing.T) {
	store := &fakeSessionStore{}
	cache := NewProgressCache()
	s := newTestSession(store, cache)

	if s.State() != Uninitialized {
		t.Fatalf("Expected new session to be uninitialized, got %v", s.State())
	}
	if err := s.Start(context.Background(), threeCards()); err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}
	if s.State() != Active || s.ID() != "s1" || !s.StartedAt().Equal(t0) {
		t.Fatalf("Unexpected session after start: state=%v id=%q", s.State(), s.ID())
	}
	if p, ok := cache.Get("p1"); !ok || p.SessionID != "s1" {
		t.Errorf("Expected progress cache entry for s1, got %+v %v", p, ok)
	}

	for i, want := range []string{"a", "b", "c"} {
		c, ok := s.Current()
		if !ok || c.ID != want {
			t.Fatalf("Step %d: expected current %q, got %q (ok=%v)", i, want, c.ID, ok)
		}
		s.Advance()
	}

	if _, ok := s.Current(); ok {
		t.Error("Expected no current card after exhausting the queue")
	}
	if !s.Done() || s.State() != Active {
		t.Error("Exhausting the queue must not end the session")
	}
	s.Advance()
	if s.Position() != 3 {
		t.Errorf("Expected position to stay at 3, got %d", s.Position())
	}

	if err := s.End(context.Background()); err != nil {
		t.Fatalf("End() returned an unexpected error: %v", err)
	}
	if s.State() != Ended {
		t.Errorf("Expected ended state, got %v", s.State())
	}
	if len(store.ended) != 1 || store.ended[0] != 3 {
		t.Errorf("Expected end reported with 3 reviewed, got %v", store.ended)
	}
	if _, ok := cache.Get("p1"); ok {
		t.Error("Expected progress cache entry to be cleared on end")
	}
}

func TestSessionTransitionsOnlyMoveForward(t *testing.T) {
	s := newTestSession(&fakeSessionStore{}, nil)

	if err := s.End(context.Background()); !errors.Is(err, ErrSessionNotActive) {
		t.Errorf("Expected ErrSessionNotActive ending an uninitialized session, got %v", err)
	}
	if err := s.Start(context.Background(), nil); !errors.Is(err, ErrEmptyQueue) {
		t.Errorf("Expected ErrEmptyQueue, got %v", err)
	}
	if s.State() != Uninitialized {
		t.Errorf("Empty queue must not start the session, state %v", s.State())
	}
	if err := s.Start(context.Background(), threeCards()); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background(), threeCards()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}
	if err := s.End(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.End(context.Background()); !errors.Is(err, ErrSessionNotActive) {
		t.Errorf("Expected ErrSessionNotActive ending twice, got %v", err)
	}
	if err := s.Start(context.Background(), threeCards()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Expected an ended session to refuse restart, got %v", err)
	}
}

func TestSessionBookkeepingFailuresAreNonFatal(t *testing.T) {
	store := &fakeSessionStore{
		CreateFunc: func(context.Context, string) (domain.StudySession, error) {
			return domain.StudySession{}, errors.New("network down")
		},
	}
	s := newTestSession(store, NewProgressCache())

	if err := s.Start(context.Background(), threeCards()); err != nil {
		t.Fatalf("Expected create failure to be swallowed, got %v", err)
	}
	if s.State() != Active {
		t.Fatalf("Expected session to be active, got %v", s.State())
	}
	s.Advance()
	if c, _ := s.Current(); c.ID != "b" {
		t.Errorf("Expected review to continue to b, got %q", c.ID)
	}
	if err := s.End(context.Background()); err != nil {
		t.Errorf("Expected end without a store id to succeed, got %v", err)
	}
	if len(store.ended) != 0 {
		t.Error("Expected no end request without a session id")
	}

	failingEnd := &fakeSessionStore{
		EndFunc: func(context.Context, string, int) (domain.StudySession, error) {
			return domain.StudySession{}, errors.New("timeout")
		},
	}
	s2 := newTestSession(failingEnd, nil)
	if err := s2.Start(context.Background(), threeCards()); err != nil {
		t.Fatal(err)
	}
	if err := s2.End(context.Background()); err != nil {
		t.Errorf("Expected end failure to be swallowed, got %v", err)
	}
	if s2.State() != Ended {
		t.Errorf("Expected ended state after failed end request, got %v", s2.State())
	}
}

func TestSessionResumesFromProgressCache(t *testing.T) {
	store := &fakeSessionStore{}
	cache := NewProgressCache()
	cache.Put("p1", Progress{SessionID: "existing", Position: 2})

	s := newTestSession(store, cache)
	if err := s.Start(context.Background(), threeCards()); err != nil {
		t.Fatal(err)
	}
	if store.created != 0 {
		t.Errorf("Expected resume to skip session creation, got %d creates", store.created)
	}
	if s.ID() != "existing" {
		t.Errorf("Expected resumed session id, got %q", s.ID())
	}
	s.Advance()
	if p, _ := cache.Get("p1"); p.Position != 3 {
		t.Errorf("Expected cached position 3, got %d", p.Position)
	}
	if err := s.End(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.ended) != 1 || store.ended[0] != 3 {
		t.Errorf("Expected 3 reviewed including resumed cards, got %v", store.ended)
	}
}

func TestSessionReplace(t *testing.T) {
	s := newTestSession(&fakeSessionStore{}, nil)
	if err := s.Start(context.Background(), threeCards()); err != nil {
		t.Fatal(err)
	}
	updated := card("a", at(24*time.Hour))
	updated.EaseFactor = 2.65
	s.Replace(updated)
	if c, _ := s.Current(); c.EaseFactor != 2.65 {
		t.Errorf("Expected replaced card in queue, got ease %.2f", c.EaseFactor)
	}
}
