// Package generate turns source text into draft cards.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/fingerprint"
	"github.com/conorfennell/studydeck/internal/parser"
)

// MaxCount bounds the number of drafts requested at once.
const MaxCount = 50

// Generator produces up to count front/back pairs from sourceText. The
// drafts carry no ids.
type Generator interface {
	Generate(ctx context.Context, sourceText string, count int) ([]domain.Draft, error)
}

// Markdown extracts Q:/A: blocks already present in the text.
type Markdown struct{}

func (Markdown) Generate(ctx context.Context, sourceText string, count int) ([]domain.Draft, error) {
	drafts, err := parser.ParseString(sourceText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source text: %w", err)
	}
	return Finalize(drafts, count), nil
}

// Finalize drops empty and duplicate drafts and keeps at most count of
// them. A count of zero or less keeps up to MaxCount.
func Finalize(drafts []domain.Draft, count int) []domain.Draft {
	if count <= 0 || count > MaxCount {
		count = MaxCount
	}
	clean := make([]domain.Draft, 0, len(drafts))
	for _, d := range drafts {
		d.ID = ""
		d.Feedback = domain.FeedbackNone
		d.Front = strings.TrimSpace(d.Front)
		d.Back = strings.TrimSpace(d.Back)
		if d.Front == "" || d.Back == "" {
			continue
		}
		clean = append(clean, d)
	}
	clean = fingerprint.Dedupe(clean)
	if len(clean) > count {
		clean = clean[:count]
	}
	return clean
}

// Config selects and configures a generator.
type Config struct {
	Kind   string // "markdown" or "openai"
	APIKey string
	APIURL string
	Model  string
}

// New returns the generator named by cfg.Kind.
func New(cfg Config) (Generator, error) {
	switch cfg.Kind {
	case "", "markdown":
		return Markdown{}, nil
	case "openai":
		return NewChat(cfg.APIKey, cfg.APIURL, cfg.Model)
	}
	return nil, fmt.Errorf("unknown generator %q", cfg.Kind)
}
