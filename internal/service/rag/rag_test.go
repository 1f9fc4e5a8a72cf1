package rag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLore(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write lore file: %v", err)
	}
}

func TestDirectoryIndexMatchesKeywords(t *testing.T) {
	dir := t.TempDir()
	writeLore(t, dir, "duskhollow.md", "Duskhollow is a village built into a ravine.")
	writeLore(t, dir, "gorak.txt", "Gorak the smith forges blades for the garrison.")
	writeLore(t, dir, "ignored.pdf", "binary junk")

	idx := NewDirectoryIndex(dir)

	got := idx.ContextFor("tell me about Duskhollow")
	if !strings.Contains(got, "From duskhollow.md:") {
		t.Fatalf("expected a snippet from duskhollow.md, got %q", got)
	}
	if strings.Contains(got, "Gorak") {
		t.Fatalf("unrelated documents must not match, got %q", got)
	}
}

func TestDirectoryIndexIgnoresShortWords(t *testing.T) {
	dir := t.TempDir()
	writeLore(t, dir, "a.txt", "The inn has a red door.")

	idx := NewDirectoryIndex(dir)
	if got := idx.ContextFor("go to inn"); got != "" {
		t.Fatalf("queries of short words should match nothing, got %q", got)
	}
}

func TestDirectoryIndexTruncatesLongSnippets(t *testing.T) {
	dir := t.TempDir()
	writeLore(t, dir, "long.txt", "dragon "+strings.Repeat("x", 1000))

	idx := NewDirectoryIndex(dir)
	got := idx.ContextFor("where is the dragon")
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("long documents should be truncated, got %d bytes", len(got))
	}
}

func TestDirectoryIndexMissingDirectory(t *testing.T) {
	idx := NewDirectoryIndex(filepath.Join(t.TempDir(), "missing"))
	if got := idx.ContextFor("anything at all"); got != "" {
		t.Fatalf("missing lore directory should yield no context, got %q", got)
	}
}

func TestNoopProvider(t *testing.T) {
	if got := (Noop{}).ContextFor("query"); got != "" {
		t.Fatalf("noop provider must return nothing, got %q", got)
	}
}
