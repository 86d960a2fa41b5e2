package srs

import (
	"math/rand"
	"testing"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestComputeNextReview(t *testing.T) {
	testCases := []struct {
		name       string
		ease       float64
		difficulty domain.Difficulty
		wantEase   float64
		wantDays   int
	}{
		{"easy raises ease", 2.5, domain.Easy, 2.65, 4},
		{"good keeps ease", 2.5, domain.Good, 2.5, 2},
		{"hard lowers ease", 2.5, domain.Hard, 2.35, 1},
		{"hard floors at 1.3", 1.35, domain.Hard, 1.3, 1},
		{"easy caps at 3.0", 2.9, domain.Easy, 3.0, 4},
		{"easy at cap stays", 3.0, domain.Easy, 3.0, 4},
		{"hard at floor stays", 1.3, domain.Hard, 1.3, 1},
		{"unset ease uses default", 0, domain.Good, 2.5, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := ComputeNextReview(tc.ease, tc.difficulty, t0)
			if r.EaseFactor != tc.wantEase {
				t.Errorf("Expected ease factor %.2f, but got %.2f", tc.wantEase, r.EaseFactor)
			}
			want := t0.Add(time.Duration(tc.wantDays) * 24 * time.Hour)
			if !r.NextReviewDate.Equal(want) {
				t.Errorf("Expected next review %v, but got %v", want, r.NextReviewDate)
			}
			if r.IntervalDays != tc.wantDays {
				t.Errorf("Expected interval %d days, but got %d", tc.wantDays, r.IntervalDays)
			}
		})
	}
}

func TestComputeNextReviewIsDeterministic(t *testing.T) {
	for _, d := range []domain.Difficulty{domain.Easy, domain.Good, domain.Hard} {
		for ease := 1.3; ease <= 3.0; ease += 0.05 {
			a := ComputeNextReview(ease, d, t0)
			b := ComputeNextReview(ease, d, t0)
			if a != b {
				t.Fatalf("Expected identical results for ease %.2f %s, got %+v and %+v", ease, d, a, b)
			}
		}
	}
}

func TestEaseFactorStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	difficulties := []domain.Difficulty{domain.Easy, domain.Good, domain.Hard}
	p := DefaultParams()

	for run := 0; run < 200; run++ {
		ease := p.MinEase + rng.Float64()*(p.MaxEase-p.MinEase)
		for step := 0; step < 50; step++ {
			ease = p.Next(ease, difficulties[rng.Intn(len(difficulties))], t0).EaseFactor
			if ease < p.MinEase || ease > p.MaxEase {
				t.Fatalf("Ease factor %.4f left [%.1f, %.1f] on run %d step %d", ease, p.MinEase, p.MaxEase, run, step)
			}
		}
	}
}

func TestScaleByEase(t *testing.T) {
	p := DefaultParams()
	p.ScaleByEase = true

	r := p.Next(2.5, domain.Easy, t0)
	// round(4 * 2.65) = 11
	if r.IntervalDays != 11 {
		t.Errorf("Expected 11 day interval, but got %d", r.IntervalDays)
	}
	if !r.NextReviewDate.Equal(t0.Add(11 * 24 * time.Hour)) {
		t.Errorf("Unexpected next review date %v", r.NextReviewDate)
	}
}

func TestApply(t *testing.T) {
	card := domain.NewFlashcard("p1", "front", "back")
	u := DefaultParams().Apply(card, domain.Hard, t0)

	got := u.Apply(card)
	if got.EaseFactor != 2.35 {
		t.Errorf("Expected ease 2.35, got %.2f", got.EaseFactor)
	}
	if got.NextReview == nil || !got.NextReview.Equal(t0.Add(24*time.Hour)) {
		t.Errorf("Unexpected next review %v", got.NextReview)
	}
	if got.Feedback == nil || *got.Feedback != domain.Hard {
		t.Errorf("Expected hard feedback, got %v", got.Feedback)
	}
	if got.FeedbackAt == nil || !got.FeedbackAt.Equal(t0) {
		t.Errorf("Expected feedback time %v, got %v", t0, got.FeedbackAt)
	}
}
