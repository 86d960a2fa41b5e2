package domain

import (
	"fmt"
	"time"
)

// Field length limits shared by forms, drafts and the API.
const (
	MaxFrontLen = 200
	MaxBackLen  = 500
)

// DefaultEaseFactor is assigned to cards that have never been judged.
const DefaultEaseFactor = 2.5

// Difficulty is the user's recall judgment for a card.
type Difficulty string

const (
	Easy Difficulty = "easy"
	Good Difficulty = "good"
	Hard Difficulty = "hard"
)

// IsValid reports whether d is one of Easy, Good or Hard.
func (d Difficulty) IsValid() bool {
	switch d {
	case Easy, Good, Hard:
		return true
	}
	return false
}

// ParseDifficulty accepts the full names and the single-letter shortcuts e/g/h.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "easy", "e":
		return Easy, nil
	case "good", "g":
		return Good, nil
	case "hard", "h":
		return Hard, nil
	}
	return "", fmt.Errorf("invalid difficulty %q", s)
}

// Flashcard is a persisted question/answer card owned by one project.
type Flashcard struct {
	ID         string      `json:"id" db:"id"`
	ProjectID  string      `json:"project_id" db:"project_id"`
	Front      string      `json:"front" db:"front" validate:"required,max=200"`
	Back       string      `json:"back" db:"back" validate:"required,max=500"`
	EaseFactor float64     `json:"ease_factor" db:"ease_factor"`
	NextReview *time.Time  `json:"next_review,omitempty" db:"next_review"` // nil until first judged.
	Feedback   *Difficulty `json:"feedback,omitempty" db:"feedback"`
	FeedbackAt *time.Time  `json:"feedback_at,omitempty" db:"feedback_at"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// NewFlashcard returns an unsaved card with the default ease factor.
func NewFlashcard(projectID, front, back string) Flashcard {
	return Flashcard{
		ProjectID:  projectID,
		Front:      front,
		Back:       back,
		EaseFactor: DefaultEaseFactor,
	}
}

func (c Flashcard) EntityID() string { return c.ID }

func (c Flashcard) WithEntityID(id string) Flashcard {
	c.ID = id
	return c
}

// IsDue reports whether the card should be reviewed at now.
func (c Flashcard) IsDue(now time.Time) bool {
	return c.NextReview == nil || !c.NextReview.After(now)
}

// CardUpdate is a partial change to a card. Nil fields are left alone.
type CardUpdate struct {
	ProjectID  *string     `json:"project_id,omitempty"`
	Front      *string     `json:"front,omitempty" validate:"omitnil,min=1,max=200"`
	Back       *string     `json:"back,omitempty" validate:"omitnil,min=1,max=500"`
	EaseFactor *float64    `json:"ease_factor,omitempty" validate:"omitnil,gte=1.3,lte=3"`
	NextReview *time.Time  `json:"next_review,omitempty"`
	Feedback   *Difficulty `json:"feedback,omitempty" validate:"omitnil,oneof=easy good hard"`
	FeedbackAt *time.Time  `json:"feedback_at,omitempty"`
}

// Apply returns a copy of c with the non-nil fields of u applied.
func (u CardUpdate) Apply(c Flashcard) Flashcard {
	if u.ProjectID != nil {
		c.ProjectID = *u.ProjectID
	}
	if u.Front != nil {
		c.Front = *u.Front
	}
	if u.Back != nil {
		c.Back = *u.Back
	}
	if u.EaseFactor != nil {
		c.EaseFactor = *u.EaseFactor
	}
	if u.NextReview != nil {
		v := *u.NextReview
		c.NextReview = &v
	}
	if u.Feedback != nil {
		v := *u.Feedback
		c.Feedback = &v
	}
	if u.FeedbackAt != nil {
		v := *u.FeedbackAt
		c.FeedbackAt = &v
	}
	return c
}

// StudySession records one pass through a project's review queue.
type StudySession struct {
	ID            string     `json:"id" db:"id"`
	ProjectID     string     `json:"project_id" db:"project_id"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	CardsReviewed int        `json:"cards_reviewed" db:"cards_reviewed"`
}

// Active reports whether the session has not been ended.
func (s StudySession) Active() bool { return s.EndedAt == nil }
