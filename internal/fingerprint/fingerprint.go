// Package fingerprint derives a stable content hash for a front/back pair so
// near-identical drafts can be recognised as duplicates.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/studydeck/internal/domain"
)

// Normalize joins front and back after lowercasing, trimming and collapsing
// internal whitespace in each.
func Normalize(front, back string) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return strings.Join(strings.Fields(p), " ")
	}
	// The newline keeps "ab"+"c" and "a"+"bc" apart.
	return normalizePart(front) + "\n" + normalizePart(back)
}

// Hash returns the SHA-256 of the normalized pair as a hex string.
func Hash(front, back string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(Normalize(front, back))))
}

// Draft hashes a draft's front and back.
func Draft(d domain.Draft) string {
	return Hash(d.Front, d.Back)
}

// Dedupe drops drafts whose fingerprint was already seen, keeping the first
// occurrence and the original order.
func Dedupe(drafts []domain.Draft) []domain.Draft {
	seen := make(map[string]struct{}, len(drafts))
	out := make([]domain.Draft, 0, len(drafts))
	for _, d := range drafts {
		h := Draft(d)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, d)
	}
	return out
}
