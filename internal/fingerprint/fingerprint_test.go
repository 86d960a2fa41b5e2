package fingerprint

import (
	"testing"

	"github.com/conorfennell/studydeck/internal/domain"
)

func TestNormalize(t *testing.T) {
	expected := "what is htmx?\na library for ajax."
	normalized := Normalize("  What   is HTMX? \r\n", "A library for AJAX.")

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("hash is deterministic", func(t *testing.T) {
		if Hash("Test", "x") != Hash("Test", "x") {
			t.Error("Expected hashes for identical pairs to be the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		if Hash("  what is go? ", "A language.") != Hash("What Is Go?", "a  language.") {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("field boundary matters", func(t *testing.T) {
		if Hash("ab", "c") == Hash("a", "bc") {
			t.Error("Expected the front/back boundary to change the hash")
		}
	})

	t.Run("different pairs have different hashes", func(t *testing.T) {
		if Hash("Card 1", "x") == Hash("Card 2", "x") {
			t.Error("Expected hashes for different pairs to be different")
		}
	})
}

func TestDedupe(t *testing.T) {
	in := []domain.Draft{
		{Front: "Q1", Back: "A1"},
		{Front: "q1 ", Back: "a1"},
		{Front: "Q2", Back: "A2"},
		{Front: "Q1", Back: "A1"},
	}
	out := Dedupe(in)
	if len(out) != 2 || out[0].Front != "Q1" || out[1].Front != "Q2" {
		t.Errorf("Unexpected dedupe result %+v", out)
	}
}
