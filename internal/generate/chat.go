package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/parser"
)

const defaultChatURL = "https://api.openai.com/v1/chat/completions"

// Chat asks an OpenAI-compatible chat completion endpoint for cards.
type Chat struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewChat creates a chat generator. apiURL and model may be empty.
func NewChat(apiKey, apiURL, model string) (*Chat, error) {
	if apiKey == "" {
		return nil, errors.New("generator api key is not set")
	}
	if apiURL == "" {
		apiURL = defaultChatURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Chat{
		apiKey:      apiKey,
		apiURL:      apiURL,
		model:       model,
		maxTokens:   2000,
		temperature: 0.4,
		client:      &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = "You write study flashcards. Reply with a JSON array of objects with string fields " +
	`"front" (a question, at most 200 characters) and "back" (the answer, at most 500 characters). No other text.`

func (c *Chat) Generate(ctx context.Context, sourceText string, count int) ([]domain.Draft, error) {
	if count <= 0 || count > MaxCount {
		count = MaxCount
	}
	request := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Write %d flashcards from this text:\n\n%s", count, sourceText)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindOf(err), Message: "failed to reach generator", Err: err}
	}
	defer resp.Body.Close()

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return nil, domain.Errorf(kindForStatus(resp.StatusCode), "generator error: %s", response.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return nil, domain.Errorf(kindForStatus(resp.StatusCode), "generator returned %s", resp.Status)
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("generator returned no choices")
	}

	drafts, err := decodeDrafts(response.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return Finalize(drafts, count), nil
}

// decodeDrafts reads the model's reply as a JSON array, tolerating a code
// fence around it, and falls back to Q:/A: blocks.
func decodeDrafts(content string) ([]domain.Draft, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var drafts []domain.Draft
	if err := json.Unmarshal([]byte(content), &drafts); err == nil {
		return drafts, nil
	}
	drafts, err := parser.ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read generated cards: %w", err)
	}
	if len(drafts) == 0 {
		return nil, errors.New("generator reply contained no cards")
	}
	return drafts, nil
}

func kindForStatus(status int) domain.ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.KindForbidden
	case status == http.StatusTooManyRequests || status >= 500:
		return domain.KindTransient
	case status >= 400:
		return domain.KindValidation
	}
	return domain.KindInternal
}
