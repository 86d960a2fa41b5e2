package domain

// Feedback is the thumbs up/down marker a user can put on a draft.
type Feedback string

const (
	FeedbackNone Feedback = ""
	FeedbackUp   Feedback = "up"
	FeedbackDown Feedback = "down"
)

// Draft is an unsaved candidate card. ID is assigned client-side and is
// never sent to the data store.
type Draft struct {
	ID       string   `json:"id,omitempty"`
	Front    string   `json:"front" validate:"required,max=200"`
	Back     string   `json:"back" validate:"required,max=500"`
	Feedback Feedback `json:"feedback,omitempty"`
}

// DraftUpdate replaces the non-nil fields of a draft.
type DraftUpdate struct {
	Front *string
	Back  *string
}
