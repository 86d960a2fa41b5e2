package storage

import (
	"context"
	"fmt"

	"github.com/conorfennell/studydeck/internal/domain"
)

const cardColumns = `id, project_id, front, back, ease_factor, next_review, feedback, feedback_at, created_at, updated_at`

// FetchCards returns the cards of a project in creation order.
func (db *DB) FetchCards(ctx context.Context, projectID string) ([]domain.Flashcard, error) {
	cards := []domain.Flashcard{}
	err := db.conn.SelectContext(ctx, &cards, db.conn.Rebind(
		`SELECT `+cardColumns+` FROM cards WHERE project_id = ? ORDER BY created_at, id`), projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for project %s: %w", projectID, err)
	}
	return cards, nil
}

// GetCard retrieves a card by id.
func (db *DB) GetCard(ctx context.Context, id string) (domain.Flashcard, error) {
	var c domain.Flashcard
	if err := db.get(ctx, &c, "flashcard", id,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id); err != nil {
		return domain.Flashcard{}, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return c, nil
}

// CreateCard inserts c under a new id. The owning project must exist.
func (db *DB) CreateCard(ctx context.Context, c domain.Flashcard) (domain.Flashcard, error) {
	if _, err := db.GetProject(ctx, c.ProjectID); err != nil {
		return domain.Flashcard{}, err
	}
	c.ID = newID()
	if c.EaseFactor == 0 {
		c.EaseFactor = domain.DefaultEaseFactor
	}
	c.CreatedAt = db.now()
	c.UpdatedAt = c.CreatedAt
	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (:id, :project_id, :front, :back, :ease_factor, :next_review, :feedback, :feedback_at, :created_at, :updated_at)
	`, c)
	if err != nil {
		return domain.Flashcard{}, fmt.Errorf("failed to insert card for project %s: %w", c.ProjectID, err)
	}
	return c, nil
}

// UpdateCard applies the non-nil fields of u. Moving a card requires the
// target project to exist.
func (db *DB) UpdateCard(ctx context.Context, id string, u domain.CardUpdate) (domain.Flashcard, error) {
	var set updateSet
	if u.ProjectID != nil {
		if _, err := db.GetProject(ctx, *u.ProjectID); err != nil {
			return domain.Flashcard{}, err
		}
		set.add("project_id", *u.ProjectID)
	}
	if u.Front != nil {
		set.add("front", *u.Front)
	}
	if u.Back != nil {
		set.add("back", *u.Back)
	}
	if u.EaseFactor != nil {
		set.add("ease_factor", *u.EaseFactor)
	}
	if u.NextReview != nil {
		set.add("next_review", u.NextReview.UTC())
	}
	if u.Feedback != nil {
		set.add("feedback", string(*u.Feedback))
	}
	if u.FeedbackAt != nil {
		set.add("feedback_at", u.FeedbackAt.UTC())
	}
	set.add("updated_at", db.now())

	q, args := set.query("cards", id)
	if err := db.exec(ctx, "flashcard", id, q, args...); err != nil {
		return domain.Flashcard{}, fmt.Errorf("failed to update card %s: %w", id, err)
	}
	return db.GetCard(ctx, id)
}

// DeleteCard removes a card.
func (db *DB) DeleteCard(ctx context.Context, id string) error {
	if err := db.exec(ctx, "flashcard", id, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return nil
}
