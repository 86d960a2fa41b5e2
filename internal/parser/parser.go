// Package parser extracts question/answer blocks from markdown notes.
//
// A block starts with a "Q:" line and continues through an "A:" line and an
// optional "C:" (context) line; any of them may run over several lines.
// A new "Q:" or a "---" line ends the block.
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/studydeck/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	contextPrefix  = "C:"
	separator      = "---"
)

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
	readingContext
)

// ParseFile reads a file from the given path and extracts all drafts.
func ParseFile(path string) ([]domain.Draft, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// ParseString is Parse over an in-memory string.
func ParseString(s string) ([]domain.Draft, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads from an io.Reader and extracts one draft per complete block.
// Blocks without an answer are skipped. Context, when present, is appended
// to the back after a blank line.
func Parse(r io.Reader) ([]domain.Draft, error) {
	scanner := bufio.NewScanner(r)
	var (
		drafts   []domain.Draft
		question string
		answer   string
		context  string
		block    []string
		current  = seeking
	)

	flush := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(block, "\n"))
		switch current {
		case readingQuestion:
			question = content
		case readingAnswer:
			answer = content
		case readingContext:
			context = content
		}
		block = nil
	}

	finish := func() {
		flush()
		if question != "" && answer != "" {
			back := answer
			if context != "" {
				back += "\n\n" + context
			}
			drafts = append(drafts, domain.Draft{Front: question, Back: back})
		}
		question, answer, context = "", "", ""
		current = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			finish()
			continue
		}

		next, content, ok := prefixed(line)
		if !ok {
			if current != seeking {
				block = append(block, line)
			}
			continue
		}

		if next == readingQuestion && current != seeking {
			finish()
		} else {
			flush()
		}
		current = next
		block = append(block, content)
	}
	finish()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return drafts, nil
}

// prefixed reports which block a line opens and its content after the
// prefix and one optional space.
func prefixed(line string) (state, string, bool) {
	for _, p := range []struct {
		prefix string
		state  state
	}{
		{questionPrefix, readingQuestion},
		{answerPrefix, readingAnswer},
		{contextPrefix, readingContext},
	} {
		if strings.HasPrefix(line, p.prefix) {
			return p.state, strings.TrimPrefix(line[len(p.prefix):], " "), true
		}
	}
	return seeking, "", false
}
