// Package testutil provides an in-memory data store for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

// Store is an in-memory implementation of the data store collaborator.
// The Fail* hooks inject failures; a nil hook never fails.
type Store struct {
	mu       sync.Mutex
	seq      int
	projects []domain.Project
	cards    []domain.Flashcard
	sessions map[string]domain.StudySession
	calls    map[string]int

	Now func() time.Time

	FailCreateProject func(p domain.Project) error
	FailDeleteProject func(id string) error
	FailCreateCard    func(c domain.Flashcard) error
	FailUpdateCard    func(id string, u domain.CardUpdate) error
	FailDeleteCard    func(id string) error
	FailCreateSession func(projectID string) error
	FailEndSession    func(sessionID string) error
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]domain.StudySession),
		calls:    make(map[string]int),
		Now:      func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) },
	}
}

// Calls returns how often the named method was invoked.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (s *Store) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// Session returns a recorded session.
func (s *Store) Session(id string) (domain.StudySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// SeedProject stores p without counting a call and returns it with an id.
func (s *Store) SeedProject(p domain.Project) domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.nextID("p")
	}
	s.projects = append(s.projects, p)
	return p
}

// SeedCard stores c without counting a call and returns it with an id.
func (s *Store) SeedCard(c domain.Flashcard) domain.Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.nextID("c")
	}
	s.cards = append(s.cards, c)
	return c
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *Store) record(method string) {
	s.calls[method]++
}

func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ListProjects")
	out := make([]domain.Project, len(s.projects))
	copy(out, s.projects)
	return out, nil
}

func (s *Store) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("CreateProject")
	if s.FailCreateProject != nil {
		if err := s.FailCreateProject(p); err != nil {
			return domain.Project{}, err
		}
	}
	p.ID = s.nextID("p")
	p.CreatedAt = s.Now()
	p.UpdatedAt = p.CreatedAt
	s.projects = append(s.projects, p)
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, u domain.ProjectUpdate) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UpdateProject")
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i] = u.Apply(s.projects[i])
			s.projects[i].UpdatedAt = s.Now()
			return s.projects[i], nil
		}
	}
	return domain.Project{}, domain.NotFound("project", id)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DeleteProject")
	if s.FailDeleteProject != nil {
		if err := s.FailDeleteProject(id); err != nil {
			return err
		}
	}
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			kept := s.cards[:0]
			for _, c := range s.cards {
				if c.ProjectID != id {
					kept = append(kept, c)
				}
			}
			s.cards = kept
			return nil
		}
	}
	return domain.NotFound("project", id)
}

func (s *Store) FetchCards(ctx context.Context, projectID string) ([]domain.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("FetchCards")
	var out []domain.Flashcard
	for _, c := range s.cards {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateCard(ctx context.Context, c domain.Flashcard) (domain.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("CreateCard")
	if s.FailCreateCard != nil {
		if err := s.FailCreateCard(c); err != nil {
			return domain.Flashcard{}, err
		}
	}
	c.ID = s.nextID("c")
	c.CreatedAt = s.Now()
	c.UpdatedAt = c.CreatedAt
	s.cards = append(s.cards, c)
	return c, nil
}

func (s *Store) UpdateCard(ctx context.Context, id string, u domain.CardUpdate) (domain.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UpdateCard")
	if s.FailUpdateCard != nil {
		if err := s.FailUpdateCard(id, u); err != nil {
			return domain.Flashcard{}, err
		}
	}
	for i := range s.cards {
		if s.cards[i].ID == id {
			s.cards[i] = u.Apply(s.cards[i])
			s.cards[i].UpdatedAt = s.Now()
			return s.cards[i], nil
		}
	}
	return domain.Flashcard{}, domain.NotFound("flashcard", id)
}

func (s *Store) DeleteCard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DeleteCard")
	if s.FailDeleteCard != nil {
		if err := s.FailDeleteCard(id); err != nil {
			return err
		}
	}
	for i := range s.cards {
		if s.cards[i].ID == id {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("flashcard", id)
}

func (s *Store) CreateSession(ctx context.Context, projectID string) (domain.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("CreateSession")
	if s.FailCreateSession != nil {
		if err := s.FailCreateSession(projectID); err != nil {
			return domain.StudySession{}, err
		}
	}
	sess := domain.StudySession{ID: s.nextID("s"), ProjectID: projectID, StartedAt: s.Now()}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) EndSession(ctx context.Context, sessionID string, cardsReviewed int) (domain.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("EndSession")
	if s.FailEndSession != nil {
		if err := s.FailEndSession(sessionID); err != nil {
			return domain.StudySession{}, err
		}
	}
	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.StudySession{}, domain.NotFound("session", sessionID)
	}
	end := s.Now()
	sess.EndedAt = &end
	sess.CardsReviewed = cardsReviewed
	s.sessions[sessionID] = sess
	return sess, nil
}
