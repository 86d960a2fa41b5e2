// Package study runs a review over one project: it builds the queue, tracks
// the session and pushes every judgment through the reconciler.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/library"
	"github.com/conorfennell/studydeck/internal/reconcile"
	"github.com/conorfennell/studydeck/internal/review"
	"github.com/conorfennell/studydeck/internal/srs"
)

// ErrNothingToReview is returned by Judge once the queue is exhausted.
var ErrNothingToReview = errors.New("study: no card to review")

// Store is the data store surface the view needs.
type Store interface {
	library.CardStore
	review.SessionStore
}

// View is a study screen for one project. It is not safe for concurrent use.
type View struct {
	cards   *library.Cards
	session *review.Session
	params  *srs.Params
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a View.
type Option func(*viewConfig)

type viewConfig struct {
	params    *srs.Params
	now       func() time.Time
	logger    *slog.Logger
	reconcile []reconcile.Option
}

func WithParams(p *srs.Params) Option {
	return func(c *viewConfig) { c.params = p }
}

func WithClock(now func() time.Time) Option {
	return func(c *viewConfig) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *viewConfig) { c.logger = l }
}

// WithReconcileOptions passes options to the card collection.
func WithReconcileOptions(opts ...reconcile.Option) Option {
	return func(c *viewConfig) { c.reconcile = append(c.reconcile, opts...) }
}

// NewView prepares a study view. progress may be shared between views to
// resume sessions.
func NewView(projectID string, store Store, progress *review.ProgressCache, opts ...Option) *View {
	cfg := viewConfig{
		params: srs.DefaultParams(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	rcOpts := append([]reconcile.Option{reconcile.WithLogger(cfg.logger)}, cfg.reconcile...)
	return &View{
		cards: library.NewCards(projectID, store, rcOpts...),
		session: review.NewSession(projectID, store, progress,
			review.WithLogger(cfg.logger), review.WithClock(cfg.now)),
		params: cfg.params,
		now:    cfg.now,
		logger: cfg.logger,
	}
}

// Start fetches the project's cards, builds the review queue and starts the
// session. It returns the queue length; an empty project returns
// review.ErrEmptyQueue and starts nothing.
func (v *View) Start(ctx context.Context) (int, error) {
	cards, err := v.cards.Load(ctx)
	if err != nil {
		return 0, err
	}
	queue := review.BuildQueue(cards, v.now())
	if err := v.session.Start(ctx, queue); err != nil {
		return 0, err
	}
	v.logger.Debug("Review queue built", "project_id", v.cards.ProjectID(),
		"cards", len(cards), "due", review.DueCount(cards, v.now()), "queue", len(queue))
	return len(queue), nil
}

// Current returns the card to show, if any.
func (v *View) Current() (domain.Flashcard, bool) {
	return v.session.Current()
}

// Judge records a judgment for the current card and moves on. The schedule
// update is applied optimistically; if the store rejects it the card is
// rolled back and the error returned, but the review still advances.
func (v *View) Judge(ctx context.Context, d domain.Difficulty) (srs.Review, error) {
	card, ok := v.session.Current()
	if !ok {
		return srs.Review{}, ErrNothingToReview
	}
	if !d.IsValid() {
		return srs.Review{}, domain.ValidationError(map[string][]string{
			"difficulty": {"must be one of: easy good hard"},
		})
	}

	now := v.now()
	next := v.params.Next(card.EaseFactor, d, now)
	updated, err := v.cards.Update(ctx, card.ID, v.params.Apply(card, d, now))
	v.session.Advance()
	if err != nil {
		return next, fmt.Errorf("failed to save review of card %s: %w", card.ID, err)
	}
	v.session.Replace(updated)
	return next, nil
}

// End closes the session and stops reconciling into this view.
func (v *View) End(ctx context.Context) error {
	defer v.cards.Detach()
	return v.session.End(ctx)
}

// Progress returns the number of judged cards and the queue length.
func (v *View) Progress() (done, total int) {
	return v.session.Position(), v.session.Len()
}

// Done reports whether the queue is exhausted.
func (v *View) Done() bool { return v.session.Done() }

// Session exposes the underlying session state.
func (v *View) Session() *review.Session { return v.session }

// Cards exposes the project's card list.
func (v *View) Cards() *library.Cards { return v.cards }
