// Package srs computes a card's next review date and ease factor from a
// recall judgment.
package srs

import (
	"math"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

const day = 24 * time.Hour

// Params holds the scheduling policy.
type Params struct {
	MinEase  float64 // ease factor floor
	MaxEase  float64 // ease factor cap
	EaseStep float64 // added on Easy, subtracted on Hard

	// Base intervals in days per difficulty.
	EasyDays int
	GoodDays int
	HardDays int

	// ScaleByEase multiplies the base interval by the updated ease factor.
	// Off by default: the date depends only on the difficulty.
	ScaleByEase bool
}

// DefaultParams returns the fixed-interval policy.
func DefaultParams() *Params {
	return &Params{
		MinEase:  1.3,
		MaxEase:  3.0,
		EaseStep: 0.15,
		EasyDays: 4,
		GoodDays: 2,
		HardDays: 1,
	}
}

// Review is the scheduling outcome of one judgment.
type Review struct {
	EaseFactor     float64
	NextReviewDate time.Time
	IntervalDays   int
}

// ComputeNextReview applies the default policy.
func ComputeNextReview(easeFactor float64, difficulty domain.Difficulty, now time.Time) Review {
	return DefaultParams().Next(easeFactor, difficulty, now)
}

// Next returns the updated ease factor and the next review date for a card
// judged at now. difficulty must be valid; anything else is treated as Good.
func (p *Params) Next(easeFactor float64, difficulty domain.Difficulty, now time.Time) Review {
	ease := p.clamp(easeFactor)
	days := p.GoodDays

	switch difficulty {
	case domain.Easy:
		ease = p.clamp(ease + p.EaseStep)
		days = p.EasyDays
	case domain.Hard:
		ease = p.clamp(ease - p.EaseStep)
		days = p.HardDays
	}
	ease = round2(ease)

	if p.ScaleByEase {
		days = int(math.Round(float64(days) * ease))
	}

	return Review{
		EaseFactor:     ease,
		NextReviewDate: now.Add(time.Duration(days) * day),
		IntervalDays:   days,
	}
}

// Apply returns the card update for a judgment of card at now.
func (p *Params) Apply(card domain.Flashcard, difficulty domain.Difficulty, now time.Time) domain.CardUpdate {
	r := p.Next(card.EaseFactor, difficulty, now)
	next := r.NextReviewDate
	judged := now
	d := difficulty
	return domain.CardUpdate{
		EaseFactor: &r.EaseFactor,
		NextReview: &next,
		Feedback:   &d,
		FeedbackAt: &judged,
	}
}

func (p *Params) clamp(ease float64) float64 {
	if ease == 0 || math.IsNaN(ease) {
		return domain.DefaultEaseFactor
	}
	return math.Max(p.MinEase, math.Min(p.MaxEase, ease))
}

// round2 keeps ease factors at two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
