package review

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

var (
	ErrEmptyQueue       = errors.New("review: queue is empty")
	ErrAlreadyStarted   = errors.New("review: session already started")
	ErrSessionNotActive = errors.New("review: session is not active")
)

// State is the lifecycle stage of a Session.
type State int

const (
	Uninitialized State = iota
	Active
	Ended
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// SessionStore records study sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, projectID string) (domain.StudySession, error)
	EndSession(ctx context.Context, sessionID string, cardsReviewed int) (domain.StudySession, error)
}

// Session walks a review queue. Transitions only move forward:
// Uninitialized -> Active -> Ended.
//
// Session bookkeeping in the store is best effort. Failures are logged and
// never stop the review itself. A Session is not safe for concurrent use.
type Session struct {
	projectID string
	store     SessionStore
	progress  *ProgressCache
	logger    *slog.Logger
	now       func() time.Time

	state     State
	sessionID string
	queue     []domain.Flashcard
	pos       int
	resumed   int // cards reviewed before a resume
	startedAt time.Time
	endedAt   time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger for bookkeeping failures.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession returns an Uninitialized session for a project. progress may
// be nil, in which case sessions cannot be resumed.
func NewSession(projectID string, store SessionStore, progress *ProgressCache, opts ...SessionOption) *Session {
	s := &Session{
		projectID: projectID,
		store:     store,
		progress:  progress,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start activates the session over queue. If the progress cache holds an
// active session for the project its id is reused; otherwise a session is
// created in the store. A failed create leaves the session Active without a
// store id.
func (s *Session) Start(ctx context.Context, queue []domain.Flashcard) error {
	if s.state != Uninitialized {
		return ErrAlreadyStarted
	}
	if len(queue) == 0 {
		return ErrEmptyQueue
	}

	s.queue = queue
	s.pos = 0
	s.startedAt = s.now()
	s.state = Active

	if s.progress != nil {
		if p, ok := s.progress.Get(s.projectID); ok && p.SessionID != "" {
			s.sessionID = p.SessionID
			s.resumed = p.Position
			s.logger.Info("Resuming study session", "project_id", s.projectID, "session_id", s.sessionID, "reviewed", s.resumed)
			return nil
		}
	}

	created, err := s.store.CreateSession(ctx, s.projectID)
	if err != nil {
		s.logger.Warn("Failed to create study session", "project_id", s.projectID, "error", err)
		return nil
	}
	s.sessionID = created.ID
	s.remember()
	s.logger.Info("Study session started", "project_id", s.projectID, "session_id", s.sessionID, "queue", len(queue))
	return nil
}

// Current returns the card under review. ok is false when the queue is
// exhausted or the session is not active.
func (s *Session) Current() (card domain.Flashcard, ok bool) {
	if s.state != Active || s.pos >= len(s.queue) {
		return domain.Flashcard{}, false
	}
	return s.queue[s.pos], true
}

// Advance moves past the current card. Reaching the end of the queue does
// not end the session.
func (s *Session) Advance() {
	if s.state != Active || s.pos >= len(s.queue) {
		return
	}
	s.pos++
	s.remember()
}

// Replace swaps the queued copy of a card, e.g. after the store confirmed a
// judgment. Cards not in the queue are ignored.
func (s *Session) Replace(card domain.Flashcard) {
	for i := range s.queue {
		if s.queue[i].ID == card.ID {
			s.queue[i] = card
			return
		}
	}
}

// End closes the session, reporting the reviewed count to the store and
// clearing the progress cache entry.
func (s *Session) End(ctx context.Context) error {
	if s.state != Active {
		return ErrSessionNotActive
	}
	s.state = Ended
	s.endedAt = s.now()
	if s.progress != nil {
		s.progress.Clear(s.projectID)
	}
	if s.sessionID == "" {
		return nil
	}
	if _, err := s.store.EndSession(ctx, s.sessionID, s.Reviewed()); err != nil {
		s.logger.Warn("Failed to end study session", "session_id", s.sessionID, "error", err)
		return nil
	}
	s.logger.Info("Study session ended", "session_id", s.sessionID, "reviewed", s.Reviewed())
	return nil
}

func (s *Session) remember() {
	if s.progress == nil || s.sessionID == "" {
		return
	}
	s.progress.Put(s.projectID, Progress{SessionID: s.sessionID, Position: s.Reviewed()})
}

func (s *Session) State() State         { return s.state }
func (s *Session) ID() string           { return s.sessionID }
func (s *Session) ProjectID() string    { return s.projectID }
func (s *Session) Position() int        { return s.pos }
func (s *Session) Len() int             { return len(s.queue) }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) EndedAt() time.Time   { return s.endedAt }

// Reviewed is the number of cards judged in this session, including those
// judged before a resume.
func (s *Session) Reviewed() int { return s.resumed + s.pos }

// Done reports whether every queued card has been judged.
func (s *Session) Done() bool { return s.state == Active && s.pos >= len(s.queue) }
