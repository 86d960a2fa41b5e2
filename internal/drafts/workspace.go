// Package drafts holds generated candidate cards while the user curates
// them, then commits the survivors as flashcards.
package drafts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/validation"
)

// Creator persists one flashcard. *library.Cards implements it, so every
// committed draft goes through the optimistic create.
type Creator interface {
	Create(ctx context.Context, card domain.Flashcard) (domain.Flashcard, error)
}

// CommitResult reports a CommitAll.
type CommitResult struct {
	Total  int
	Saved  []domain.Flashcard
	Failed map[string]error // by draft id
}

// Done reports whether every draft was saved; the caller should leave the
// workspace.
func (r CommitResult) Done() bool { return len(r.Failed) == 0 }

// Summary renders "N of M saved".
func (r CommitResult) Summary() string {
	return fmt.Sprintf("%d of %d saved", len(r.Saved), r.Total)
}

// Workspace is the in-memory list of drafts. Edits never touch the network.
type Workspace struct {
	mu     sync.Mutex
	drafts []domain.Draft
	newID  func() string
	logger *slog.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) { w.logger = l }
}

func WithIDs(gen func() string) Option {
	return func(w *Workspace) { w.newID = gen }
}

func New(opts ...Option) *Workspace {
	w := &Workspace{
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Add appends generated drafts, assigning each a client-side id.
func (w *Workspace) Add(drafts ...domain.Draft) []domain.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	added := make([]domain.Draft, 0, len(drafts))
	for _, d := range drafts {
		d.ID = w.newID()
		w.drafts = append(w.drafts, d)
		added = append(added, d)
	}
	return added
}

// Drafts returns a copy of the current drafts in order.
func (w *Workspace) Drafts() []domain.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Draft, len(w.drafts))
	copy(out, w.drafts)
	return out
}

func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.drafts)
}

// Update replaces the given fields of one draft.
func (w *Workspace) Update(id string, u domain.DraftUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.index(id)
	if i < 0 {
		return domain.NotFound("draft", id)
	}
	if u.Front != nil {
		w.drafts[i].Front = *u.Front
	}
	if u.Back != nil {
		w.drafts[i].Back = *u.Back
	}
	return nil
}

// Delete drops one draft.
func (w *Workspace) Delete(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.index(id)
	if i < 0 {
		return domain.NotFound("draft", id)
	}
	w.drafts = append(w.drafts[:i], w.drafts[i+1:]...)
	return nil
}

// SetFeedback toggles a draft's marker: setting the current value clears
// it, setting the other value replaces it.
func (w *Workspace) SetFeedback(id string, f domain.Feedback) error {
	if f != domain.FeedbackUp && f != domain.FeedbackDown {
		return domain.ValidationError(map[string][]string{"feedback": {"must be one of: up down"}})
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.index(id)
	if i < 0 {
		return domain.NotFound("draft", id)
	}
	if w.drafts[i].Feedback == f {
		w.drafts[i].Feedback = domain.FeedbackNone
	} else {
		w.drafts[i].Feedback = f
	}
	return nil
}

// Validate checks every draft and reports all failing fields, keyed
// "drafts[i].front" / "drafts[i].back".
func (w *Workspace) Validate() error {
	return validateAll(w.Drafts())
}

// CommitAll saves every draft as a card of projectID. Nothing is sent
// unless all drafts are valid. Drafts are created concurrently; saved ones
// leave the workspace and failed ones stay for a retry.
func (w *Workspace) CommitAll(ctx context.Context, projectID string, creator Creator) (CommitResult, error) {
	pending := w.Drafts()
	if err := validateAll(pending); err != nil {
		return CommitResult{}, err
	}

	saved := make([]*domain.Flashcard, len(pending))
	errs := make([]error, len(pending))
	var wg sync.WaitGroup
	for i, d := range pending {
		wg.Add(1)
		go func(i int, d domain.Draft) {
			defer wg.Done()
			card, err := creator.Create(ctx, domain.NewFlashcard(projectID, d.Front, d.Back))
			if err != nil {
				errs[i] = err
				return
			}
			saved[i] = &card
		}(i, d)
	}
	wg.Wait()

	res := CommitResult{Total: len(pending), Failed: make(map[string]error)}
	done := make(map[string]struct{}, len(pending))
	var firstErr error
	for i, d := range pending {
		if errs[i] != nil {
			res.Failed[d.ID] = errs[i]
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		res.Saved = append(res.Saved, *saved[i])
		done[d.ID] = struct{}{}
	}

	w.mu.Lock()
	kept := w.drafts[:0]
	for _, d := range w.drafts {
		if _, ok := done[d.ID]; !ok {
			kept = append(kept, d)
		}
	}
	w.drafts = kept
	w.mu.Unlock()

	if !res.Done() {
		w.logger.Warn("Draft commit partially failed", "project_id", projectID, "summary", res.Summary())
		return res, &domain.Error{Kind: domain.KindOf(firstErr), Message: "partially failed: " + res.Summary(), Err: firstErr}
	}
	w.logger.Info("Drafts committed", "project_id", projectID, "saved", len(res.Saved))
	return res, nil
}

// DiscardAll empties the workspace.
func (w *Workspace) DiscardAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drafts = nil
}

func (w *Workspace) index(id string) int {
	for i, d := range w.drafts {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func validateAll(drafts []domain.Draft) error {
	errs := make([]error, 0, len(drafts))
	for i, d := range drafts {
		errs = append(errs, validation.CheckPrefixed(fmt.Sprintf("drafts[%d].", i), d))
	}
	return validation.Merge(errs...)
}
