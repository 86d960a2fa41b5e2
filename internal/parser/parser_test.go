package parser

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedDrafts int
		expectedFront  string
		expectedBack   string
	}{
		{
			name:           "Simple Q&A",
			input:          "Q: What is the capital of France?\nA: Paris",
			expectedDrafts: 1,
			expectedFront:  "What is the capital of France?",
			expectedBack:   "Paris",
		},
		{
			name:           "Context is appended to the back",
			input:          "Q: What is 1+1?\nA: 2\nC: Basic arithmetic",
			expectedDrafts: 1,
			expectedFront:  "What is 1+1?",
			expectedBack:   "2\n\nBasic arithmetic",
		},
		{
			name: "Multiline Answer",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			expectedDrafts: 1,
			expectedFront:  "What are the primary colors?",
			expectedBack:   "Red\nBlue\nYellow",
		},
		{
			name: "Two Cards",
			input: `
Q: First question
A: First answer

Q: Second question
A: Second answer
`,
			expectedDrafts: 2,
		},
		{
			name: "Separator ends a block",
			input: `
Q: One
A: Uno
---
Stray notes between cards.
Q: Two
A: Dos
`,
			expectedDrafts: 2,
		},
		{
			name:           "Question without answer is skipped",
			input:          "Q: Unanswered\n\nQ: Answered\nA: Yes",
			expectedDrafts: 1,
			expectedFront:  "Answered",
			expectedBack:   "Yes",
		},
		{
			name:           "No cards, just text",
			input:          "This is a file with no questions.",
			expectedDrafts: 0,
		},
		{
			name:           "Prefixes with no space",
			input:          "Q:Question\nA:Answer",
			expectedDrafts: 1,
			expectedFront:  "Question",
			expectedBack:   "Answer",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			drafts, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse() returned an unexpected error: %v", err)
			}

			if len(drafts) != tc.expectedDrafts {
				t.Fatalf("Expected %d drafts, but got %d", tc.expectedDrafts, len(drafts))
			}

			if tc.expectedDrafts == 1 {
				d := drafts[0]
				if d.Front != tc.expectedFront {
					t.Errorf("Expected Front to be '%s', but got '%s'", tc.expectedFront, d.Front)
				}
				if d.Back != tc.expectedBack {
					t.Errorf("Expected Back to be '%s', but got '%s'", tc.expectedBack, d.Back)
				}
				if d.ID != "" {
					t.Errorf("Expected parsed drafts to carry no id, got %q", d.ID)
				}
			}
		})
	}
}
