package cli

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zhouzirui/storyforge/internal/model/state"
	"github.com/zhouzirui/storyforge/internal/store"
)

func TestSessionLinesLoadsFromStoreDirectory(t *testing.T) {
	// The save dir is deliberately not the working directory.
	st := store.New(filepath.Join(t.TempDir(), "saves"))
	rng := rand.New(rand.NewSource(1))
	sess := state.NewSession("SESS-001", state.CharacterSheet{Name: "Kara", Race: "Elf", Class: "Ranger"}, rng)
	if err := st.Save(sess, st.SessionPath(sess.ID())); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	lines := sessionLines(st)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %v", lines)
	}
	if strings.Contains(lines[0], "unreadable") {
		t.Fatalf("saved session should load through the listing, got %q", lines[0])
	}
	for _, want := range []string{"SESS-001", "Kara", "level 1", state.DefaultLocation} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("listing missing %q: %q", want, lines[0])
		}
	}
}

func TestSessionLinesMarksUnreadableSaves(t *testing.T) {
	st := store.New(t.TempDir())
	if err := os.WriteFile(filepath.Join(st.Dir(), "SESS-001.xml"), []byte("not xml <"), 0o644); err != nil {
		t.Fatalf("failed to plant corrupt save: %v", err)
	}

	lines := sessionLines(st)
	if len(lines) != 1 || !strings.Contains(lines[0], "unreadable") {
		t.Fatalf("corrupt save should be flagged, got %v", lines)
	}
}

func TestSessionLinesEmptyStore(t *testing.T) {
	if lines := sessionLines(store.New(t.TempDir())); len(lines) != 0 {
		t.Fatalf("empty store should list nothing, got %v", lines)
	}
}
