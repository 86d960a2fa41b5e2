package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/conorfennell/studydeck/internal/domain"
)

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.Error{Kind: domain.KindTransient, Message: "server unreachable", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeFailure(resp)
	}
	return nil
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return call[[]domain.Project](ctx, c, http.MethodGet, "/api/projects", nil).Get()
}

func (c *Client) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	body := map[string]string{"title": p.Title, "description": p.Description, "tag": p.Tag}
	return call[domain.Project](ctx, c, http.MethodPost, "/api/projects", body).Get()
}

func (c *Client) UpdateProject(ctx context.Context, id string, u domain.ProjectUpdate) (domain.Project, error) {
	return call[domain.Project](ctx, c, http.MethodPatch, "/api/projects/"+url.PathEscape(id), u).Get()
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil).Get()
	return err
}

func (c *Client) FetchCards(ctx context.Context, projectID string) ([]domain.Flashcard, error) {
	return call[[]domain.Flashcard](ctx, c, http.MethodGet, "/api/projects/"+url.PathEscape(projectID)+"/cards", nil).Get()
}

func (c *Client) CreateCard(ctx context.Context, card domain.Flashcard) (domain.Flashcard, error) {
	body := map[string]string{"front": card.Front, "back": card.Back}
	return call[domain.Flashcard](ctx, c, http.MethodPost, "/api/projects/"+url.PathEscape(card.ProjectID)+"/cards", body).Get()
}

func (c *Client) UpdateCard(ctx context.Context, id string, u domain.CardUpdate) (domain.Flashcard, error) {
	return call[domain.Flashcard](ctx, c, http.MethodPatch, "/api/cards/"+url.PathEscape(id), u).Get()
}

func (c *Client) DeleteCard(ctx context.Context, id string) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, "/api/cards/"+url.PathEscape(id), nil).Get()
	return err
}

func (c *Client) CreateSession(ctx context.Context, projectID string) (domain.StudySession, error) {
	return call[domain.StudySession](ctx, c, http.MethodPost, "/api/projects/"+url.PathEscape(projectID)+"/sessions", nil).Get()
}

func (c *Client) EndSession(ctx context.Context, sessionID string, cardsReviewed int) (domain.StudySession, error) {
	body := map[string]int{"cards_reviewed": cardsReviewed}
	return call[domain.StudySession](ctx, c, http.MethodPost, "/api/sessions/"+url.PathEscape(sessionID)+"/end", body).Get()
}

// Generate asks the server to turn text into drafts.
func (c *Client) Generate(ctx context.Context, sourceText string, count int) ([]domain.Draft, error) {
	body := map[string]any{"text": sourceText, "count": count}
	return call[[]domain.Draft](ctx, c, http.MethodPost, "/api/generate", body).Get()
}
