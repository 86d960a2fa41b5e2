// Package review builds review queues and tracks study sessions over them.
package review

import (
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

// BuildQueue returns the cards to review at now, in fetch order.
//
// Due cards are those never reviewed or whose next review is at or before
// now. When none are due the queue falls back to every card, so a non-empty
// project always has something to study. An empty project yields an empty
// queue.
func BuildQueue(cards []domain.Flashcard, now time.Time) []domain.Flashcard {
	if len(cards) == 0 {
		return nil
	}
	due := make([]domain.Flashcard, 0, len(cards))
	for _, c := range cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	if len(due) > 0 {
		return due
	}
	all := make([]domain.Flashcard, len(cards))
	copy(all, cards)
	return all
}

// DueCount returns how many of cards are due at now.
func DueCount(cards []domain.Flashcard, now time.Time) int {
	n := 0
	for _, c := range cards {
		if c.IsDue(now) {
			n++
		}
	}
	return n
}
