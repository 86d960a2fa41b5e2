// Package digest periodically summarises how many cards are due in each
// project.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/review"
)

// Source is the read side of the data store.
type Source interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	FetchCards(ctx context.Context, projectID string) ([]domain.Flashcard, error)
}

// Entry is one project's line in a digest.
type Entry struct {
	ProjectID string
	Title     string
	Due       int
	Total     int
}

// Summary is a digest at a point in time.
type Summary struct {
	At      time.Time
	Entries []Entry
}

// Due returns the total number of due cards.
func (s Summary) Due() int {
	n := 0
	for _, e := range s.Entries {
		n += e.Due
	}
	return n
}

// Notifier receives each digest.
type Notifier interface {
	Notify(ctx context.Context, s Summary) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, s Summary) error

func (f NotifierFunc) Notify(ctx context.Context, s Summary) error { return f(ctx, s) }

// LogNotifier writes digests to a logger.
type LogNotifier struct{ Logger *slog.Logger }

func (n LogNotifier) Notify(ctx context.Context, s Summary) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, e := range s.Entries {
		logger.Info("Cards due", "project", e.Title, "project_id", e.ProjectID, "due", e.Due, "total", e.Total)
	}
	logger.Info("Digest complete", "projects", len(s.Entries), "due", s.Due())
	return nil
}

// Collect builds a digest from the store. Projects whose cards cannot be
// fetched are skipped and logged.
func Collect(ctx context.Context, src Source, now time.Time) (Summary, error) {
	projects, err := src.ListProjects(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list projects: %w", err)
	}
	s := Summary{At: now}
	for _, p := range projects {
		cards, err := src.FetchCards(ctx, p.ID)
		if err != nil {
			slog.Warn("Failed to fetch cards for digest", "project_id", p.ID, "error", err)
			continue
		}
		s.Entries = append(s.Entries, Entry{
			ProjectID: p.ID,
			Title:     p.Title,
			Due:       review.DueCount(cards, now),
			Total:     len(cards),
		})
	}
	return s, nil
}

// Digest runs Collect on a schedule.
type Digest struct {
	scheduler *gocron.Scheduler
	src       Source
	notifier  Notifier
	interval  time.Duration
	now       func() time.Time
	timeout   time.Duration
}

// Option configures a Digest.
type Option func(*Digest)

// WithNotifier replaces the default log notifier.
func WithNotifier(n Notifier) Option {
	return func(d *Digest) { d.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Digest) { d.now = now }
}

// New creates a digest job that runs every interval once started.
func New(src Source, interval time.Duration, opts ...Option) *Digest {
	d := &Digest{
		scheduler: gocron.NewScheduler(time.UTC),
		src:       src,
		notifier:  LogNotifier{},
		interval:  interval,
		now:       time.Now,
		timeout:   time.Minute,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start schedules the job and runs the first digest immediately.
func (d *Digest) Start() error {
	if d.interval <= 0 {
		return fmt.Errorf("digest interval must be positive, got %s", d.interval)
	}
	if _, err := d.scheduler.Every(d.interval).Do(d.Run); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}
	d.scheduler.StartAsync()
	return nil
}

// Stop terminates the schedule.
func (d *Digest) Stop() {
	d.scheduler.Stop()
}

// Run collects and delivers one digest.
func (d *Digest) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	s, err := Collect(ctx, d.src, d.now())
	if err != nil {
		slog.Error("Digest failed", "error", err)
		return
	}
	if err := d.notifier.Notify(ctx, s); err != nil {
		slog.Warn("Failed to deliver digest", "error", err)
	}
}
