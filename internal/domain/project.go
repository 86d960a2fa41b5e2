package domain

import "time"

// Project groups flashcards. Deleting a project deletes its cards.
type Project struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title" validate:"required,max=100"`
	Description string    `json:"description,omitempty" db:"description" validate:"max=500"`
	Tag         string    `json:"tag,omitempty" db:"tag" validate:"max=50"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (p Project) EntityID() string { return p.ID }

func (p Project) WithEntityID(id string) Project {
	p.ID = id
	return p
}

// ProjectUpdate is a partial change to a project. Nil fields are left alone.
type ProjectUpdate struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=500"`
	Tag         *string `json:"tag,omitempty" validate:"omitnil,max=50"`
}

// Apply returns a copy of p with the non-nil fields of u applied.
func (u ProjectUpdate) Apply(p Project) Project {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Tag != nil {
		p.Tag = *u.Tag
	}
	return p
}
