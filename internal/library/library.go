// Package library binds project and flashcard collections to the data store
// through the optimistic reconciler.
package library

import (
	"context"
	"fmt"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/reconcile"
	"github.com/conorfennell/studydeck/internal/validation"
)

// ProjectStore is the data store surface for projects.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	UpdateProject(ctx context.Context, id string, u domain.ProjectUpdate) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// CardStore is the data store surface for flashcards.
type CardStore interface {
	FetchCards(ctx context.Context, projectID string) ([]domain.Flashcard, error)
	CreateCard(ctx context.Context, c domain.Flashcard) (domain.Flashcard, error)
	UpdateCard(ctx context.Context, id string, u domain.CardUpdate) (domain.Flashcard, error)
	DeleteCard(ctx context.Context, id string) error
}

// Projects is the local list of the user's projects.
type Projects struct {
	store ProjectStore
	coll  *reconcile.Collection[domain.Project]
}

func NewProjects(store ProjectStore, opts ...reconcile.Option) *Projects {
	return &Projects{
		store: store,
		coll:  reconcile.New[domain.Project](nil, opts...),
	}
}

// Load replaces the local list with the store's.
func (p *Projects) Load(ctx context.Context) error {
	projects, err := p.store.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}
	p.coll.Reset(projects)
	return nil
}

func (p *Projects) Items() []reconcile.Item[domain.Project] { return p.coll.Items() }

func (p *Projects) Get(id string) (reconcile.Item[domain.Project], bool) { return p.coll.Get(id) }

// Detach stops reconciling into this list.
func (p *Projects) Detach() { p.coll.Detach() }

// Create validates project locally and creates it optimistically.
func (p *Projects) Create(ctx context.Context, project domain.Project) (domain.Project, error) {
	if err := validation.Check(project); err != nil {
		return domain.Project{}, err
	}
	return p.coll.Create(ctx, project, p.store.CreateProject)
}

// Update validates u locally and applies it optimistically.
func (p *Projects) Update(ctx context.Context, id string, u domain.ProjectUpdate) (domain.Project, error) {
	if err := validation.Check(u); err != nil {
		return domain.Project{}, err
	}
	return p.coll.Update(ctx, id, u.Apply, func(ctx context.Context, _ domain.Project) (domain.Project, error) {
		return p.store.UpdateProject(ctx, id, u)
	})
}

// Delete removes a project and, in the store, its cards.
func (p *Projects) Delete(ctx context.Context, id string) error {
	return p.coll.Delete(ctx, id, p.store.DeleteProject)
}

// DeleteMany deletes projects concurrently and reports the aggregate.
func (p *Projects) DeleteMany(ctx context.Context, ids []string) reconcile.BatchResult {
	return p.coll.DeleteMany(ctx, ids, p.store.DeleteProject)
}

// Cards is the local list of one project's flashcards.
type Cards struct {
	projectID string
	store     CardStore
	coll      *reconcile.Collection[domain.Flashcard]
}

func NewCards(projectID string, store CardStore, opts ...reconcile.Option) *Cards {
	coll := reconcile.New[domain.Flashcard](nil, opts...).Keep(func(c domain.Flashcard) bool {
		return c.ProjectID == projectID
	})
	return &Cards{projectID: projectID, store: store, coll: coll}
}

func (c *Cards) ProjectID() string { return c.projectID }

// Load fetches the project's cards and returns them in store order.
func (c *Cards) Load(ctx context.Context) ([]domain.Flashcard, error) {
	cards, err := c.store.FetchCards(ctx, c.projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for project %s: %w", c.projectID, err)
	}
	c.coll.Reset(cards)
	return cards, nil
}

func (c *Cards) Items() []reconcile.Item[domain.Flashcard] { return c.coll.Items() }

func (c *Cards) Get(id string) (reconcile.Item[domain.Flashcard], bool) { return c.coll.Get(id) }

func (c *Cards) Detach() { c.coll.Detach() }

// Create adds a card to the project optimistically. The card's project and
// ease factor default to this project and domain.DefaultEaseFactor.
func (c *Cards) Create(ctx context.Context, card domain.Flashcard) (domain.Flashcard, error) {
	card.ProjectID = c.projectID
	if card.EaseFactor == 0 {
		card.EaseFactor = domain.DefaultEaseFactor
	}
	if err := validation.Check(card); err != nil {
		return domain.Flashcard{}, err
	}
	return c.coll.Create(ctx, card, c.store.CreateCard)
}

// Update applies u optimistically.
func (c *Cards) Update(ctx context.Context, id string, u domain.CardUpdate) (domain.Flashcard, error) {
	if err := validation.Check(u); err != nil {
		return domain.Flashcard{}, err
	}
	return c.coll.Update(ctx, id, u.Apply, func(ctx context.Context, _ domain.Flashcard) (domain.Flashcard, error) {
		return c.store.UpdateCard(ctx, id, u)
	})
}

func (c *Cards) Delete(ctx context.Context, id string) error {
	return c.coll.Delete(ctx, id, c.store.DeleteCard)
}

func (c *Cards) DeleteMany(ctx context.Context, ids []string) reconcile.BatchResult {
	return c.coll.DeleteMany(ctx, ids, c.store.DeleteCard)
}

// MoveMany moves cards to another project. Moved cards leave this list once
// the store confirms the move.
func (c *Cards) MoveMany(ctx context.Context, ids []string, targetProjectID string) reconcile.BatchResult {
	u := domain.CardUpdate{ProjectID: &targetProjectID}
	return c.coll.UpdateMany(ctx, "moved", ids, u.Apply, func(ctx context.Context, card domain.Flashcard) (domain.Flashcard, error) {
		return c.store.UpdateCard(ctx, card.ID, u)
	})
}
