package storage

import (
	"context"
	"fmt"

	"github.com/conorfennell/studydeck/internal/domain"
)

// CreateSession opens a study session for a project.
func (db *DB) CreateSession(ctx context.Context, projectID string) (domain.StudySession, error) {
	if _, err := db.GetProject(ctx, projectID); err != nil {
		return domain.StudySession{}, err
	}
	s := domain.StudySession{ID: newID(), ProjectID: projectID, StartedAt: db.now()}
	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO sessions (id, project_id, started_at, cards_reviewed)
		VALUES (:id, :project_id, :started_at, :cards_reviewed)
	`, s)
	if err != nil {
		return domain.StudySession{}, fmt.Errorf("failed to insert session for project %s: %w", projectID, err)
	}
	return s, nil
}

// GetSession retrieves a session by id.
func (db *DB) GetSession(ctx context.Context, id string) (domain.StudySession, error) {
	var s domain.StudySession
	if err := db.get(ctx, &s, "session", id,
		`SELECT id, project_id, started_at, ended_at, cards_reviewed FROM sessions WHERE id = ?`, id); err != nil {
		return domain.StudySession{}, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return s, nil
}

// EndSession stamps the end time and the number of cards reviewed.
func (db *DB) EndSession(ctx context.Context, sessionID string, cardsReviewed int) (domain.StudySession, error) {
	err := db.exec(ctx, "session", sessionID,
		`UPDATE sessions SET ended_at = ?, cards_reviewed = ? WHERE id = ?`,
		db.now(), cardsReviewed, sessionID)
	if err != nil {
		return domain.StudySession{}, fmt.Errorf("failed to end session %s: %w", sessionID, err)
	}
	return db.GetSession(ctx, sessionID)
}
