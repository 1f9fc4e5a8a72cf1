package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTranscriptAppendAccumulates(t *testing.T) {
	tr := NewTranscript(filepath.Join(t.TempDir(), TranscriptFilename))

	if err := tr.Append("2026-01-01T10:00:00Z", "look around", "You see a door."); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := tr.Append("2026-01-01T10:01:00Z", "open the door", "It creaks open."); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	turns := tr.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Player != "look around" || turns[0].AI != "You see a door." {
		t.Fatalf("first turn mangled: %+v", turns[0])
	}
	if turns[1].Timestamp != "2026-01-01T10:01:00Z" {
		t.Fatalf("timestamp lost: %+v", turns[1])
	}
}

func TestTranscriptRecoversFromCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), TranscriptFilename)
	if err := os.WriteFile(path, []byte("<<< this is not xml"), 0o644); err != nil {
		t.Fatalf("failed to plant corrupt transcript: %v", err)
	}

	tr := NewTranscript(path)
	if got := tr.Turns(); len(got) != 0 {
		t.Fatalf("corrupt transcript should read as empty, got %+v", got)
	}
	if err := tr.Append("t", "hello", "world"); err != nil {
		t.Fatalf("append over corruption failed: %v", err)
	}

	turns := tr.Turns()
	if len(turns) != 1 || turns[0].Player != "hello" {
		t.Fatalf("transcript should restart fresh after corruption, got %+v", turns)
	}
}

func TestTranscriptResetsOnWrongRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), TranscriptFilename)
	if err := os.WriteFile(path, []byte(`<?xml version="1.0"?><Session/>`), 0o644); err != nil {
		t.Fatalf("failed to plant foreign document: %v", err)
	}

	tr := NewTranscript(path)
	if err := tr.Append("t", "in", "out"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if turns := tr.Turns(); len(turns) != 1 {
		t.Fatalf("foreign document should be discarded, got %+v", turns)
	}
}

func TestTranscriptMissingFileReadsEmpty(t *testing.T) {
	tr := NewTranscript(filepath.Join(t.TempDir(), TranscriptFilename))
	if got := tr.Turns(); got != nil {
		t.Fatalf("missing transcript should yield no turns, got %+v", got)
	}
}
