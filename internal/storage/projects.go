package storage

import (
	"context"
	"fmt"

	"github.com/conorfennell/studydeck/internal/domain"
)

const projectColumns = `id, title, description, tag, created_at, updated_at`

// ListProjects returns all projects, oldest first.
func (db *DB) ListProjects(ctx context.Context) ([]domain.Project, error) {
	projects := []domain.Project{}
	if err := db.conn.SelectContext(ctx, &projects,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject retrieves a project by id.
func (db *DB) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	if err := db.get(ctx, &p, "project", id,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id); err != nil {
		return domain.Project{}, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	return p, nil
}

// CreateProject inserts p under a new id and returns the stored row.
func (db *DB) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	p.ID = newID()
	p.CreatedAt = db.now()
	p.UpdatedAt = p.CreatedAt
	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (:id, :title, :description, :tag, :created_at, :updated_at)
	`, p)
	if err != nil {
		return domain.Project{}, fmt.Errorf("failed to insert project %q: %w", p.Title, err)
	}
	return p, nil
}

// UpdateProject applies the non-nil fields of u.
func (db *DB) UpdateProject(ctx context.Context, id string, u domain.ProjectUpdate) (domain.Project, error) {
	var set updateSet
	if u.Title != nil {
		set.add("title", *u.Title)
	}
	if u.Description != nil {
		set.add("description", *u.Description)
	}
	if u.Tag != nil {
		set.add("tag", *u.Tag)
	}
	set.add("updated_at", db.now())

	q, args := set.query("projects", id)
	if err := db.exec(ctx, "project", id, q, args...); err != nil {
		return domain.Project{}, fmt.Errorf("failed to update project %s: %w", id, err)
	}
	return db.GetProject(ctx, id)
}

// DeleteProject removes a project together with its cards and sessions.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	if err := db.exec(ctx, "project", id, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return nil
}
