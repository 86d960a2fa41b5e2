package gitsource

import (
	"path/filepath"
	"testing"
)

func TestLocalPath(t *testing.T) {
	testCases := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://github.com/conorfennell/notes.git", filepath.Join("repos", "github.com", "conorfennell", "notes"), false},
		{"http://example.com/team/deck", filepath.Join("repos", "example.com", "team", "deck"), false},
		{"git@github.com:conorfennell/notes.git", filepath.Join("repos", "github.com", "conorfennell", "notes"), false},
		{"not a url", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			got, err := LocalPath("repos", tc.url)
			if (err != nil) != tc.wantErr {
				t.Fatalf("LocalPath() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestIsGitURL(t *testing.T) {
	for source, want := range map[string]bool{
		"https://github.com/a/b":   true,
		"git@github.com:a/b.git":   true,
		"./notes":                  false,
		"/home/me/notes/deck.md":   false,
		"/srv/mirrors/project.git": true,
	} {
		if got := IsGitURL(source); got != want {
			t.Errorf("IsGitURL(%q) = %v, want %v", source, got, want)
		}
	}
}
