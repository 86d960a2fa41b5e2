// Package importer turns external note sources into drafts for the review
// workspace: markdown files, directories of them, git repositories and
// spreadsheets.
package importer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/fingerprint"
	"github.com/conorfennell/studydeck/internal/gitsource"
	"github.com/conorfennell/studydeck/internal/parser"
)

// Kind identifies how a source is read.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindDir      Kind = "dir"
	KindGit      Kind = "git"
	KindXLSX     Kind = "xlsx"
)

// Options controls an import.
type Options struct {
	// ReposDir is where git sources are cloned. Defaults to "repos".
	ReposDir string
	// Sheet and StartRow apply to spreadsheets.
	Sheet    string
	StartRow int
	// Progress receives git clone/pull output when set.
	Progress io.Writer
}

// Report is the outcome of an import.
type Report struct {
	Source     string
	Kind       Kind
	Drafts     []domain.Draft
	Files      int
	Duplicates int
	Errors     []error
}

// Detect works out the kind of a source from its shape.
func Detect(source string) (Kind, error) {
	if gitsource.IsGitURL(source) {
		if info, err := os.Stat(source); err != nil || !info.IsDir() {
			return KindGit, nil
		}
	}
	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("importer: %w", err)
	}
	if info.IsDir() {
		return KindDir, nil
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".xlsx":
		return KindXLSX, nil
	case ".md", ".markdown", ".txt":
		return KindMarkdown, nil
	}
	return "", fmt.Errorf("importer: unsupported source %s", source)
}

// Load reads drafts from source, dropping duplicates.
func Load(ctx context.Context, source string, opts Options) (*Report, error) {
	kind, err := Detect(source)
	if err != nil {
		return nil, err
	}
	report := &Report{Source: source, Kind: kind}

	switch kind {
	case KindMarkdown:
		drafts, err := parser.ParseFile(source)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", source, err)
		}
		report.Files = 1
		report.Drafts = drafts
	case KindDir:
		if err := walkMarkdown(ctx, source, report); err != nil {
			return nil, err
		}
	case KindGit:
		reposDir := opts.ReposDir
		if reposDir == "" {
			reposDir = "repos"
		}
		if err := os.MkdirAll(reposDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create repos directory: %w", err)
		}
		localPath, err := gitsource.LocalPath(reposDir, source)
		if err != nil {
			return nil, err
		}
		if err := gitsource.Sync(ctx, source, localPath, opts.Progress); err != nil {
			return nil, err
		}
		if err := walkMarkdown(ctx, localPath, report); err != nil {
			return nil, err
		}
	case KindXLSX:
		drafts, err := ReadSpreadsheet(source, opts.Sheet, opts.StartRow)
		if err != nil {
			return nil, err
		}
		report.Files = 1
		report.Drafts = drafts
	}

	before := len(report.Drafts)
	report.Drafts = fingerprint.Dedupe(report.Drafts)
	report.Duplicates = before - len(report.Drafts)

	slog.Info("import complete",
		"source", source,
		"kind", kind,
		"files", report.Files,
		"drafts", len(report.Drafts),
		"duplicates", report.Duplicates,
		"errors", len(report.Errors),
	)
	return report, nil
}

func walkMarkdown(ctx context.Context, root string, report *Report) error {
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		report.Files++
		drafts, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			report.Errors = append(report.Errors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		report.Drafts = append(report.Drafts, drafts...)
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("error walking directory %s: %w", root, walkErr)
	}
	return nil
}
