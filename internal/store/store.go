// Package store persists sessions, the shared transcript and the AI
// configuration document under a single save directory.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/zhouzirui/storyforge/internal/codec"
	"github.com/zhouzirui/storyforge/internal/model/state"
)

const (
	sessionPrefix = "SESS-"
	sessionExt    = ".xml"

	// SessionRootTag is the root element of every session document.
	SessionRootTag = "Session"

	// TranscriptFilename holds the cross-session transcript.
	TranscriptFilename = "full_transcript.xml"

	// AIConfigFilename holds the narrator configuration document.
	AIConfigFilename = "ai_config.xml"

	documentIndent = 4
)

var sessionFilePattern = regexp.MustCompile(`^SESS-(\d{3})\.xml$`)

// Store manages session documents inside one save directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created lazily on
// the first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the save directory.
func (s *Store) Dir() string { return s.dir }

// SessionPath maps a session id to its document path.
func (s *Store) SessionPath(id string) string {
	return filepath.Join(s.dir, id+sessionExt)
}

// SessionFiles lists session document names in ascending order.
func (s *Store) SessionFiles() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && sessionFilePattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// NextSessionID allocates the next free identifier (SESS-001 when the
// directory is empty). Identifiers are zero-padded to three digits so
// lexicographic order stays numeric. There is no locking: concurrent
// allocators can collide, which is acceptable for a single interactive
// user.
func (s *Store) NextSessionID() string {
	maxID := 0
	for _, name := range s.SessionFiles() {
		m := sessionFilePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("%s%03d", sessionPrefix, maxID+1)
}

// LatestSessionPath finds the most recent save, or reports none.
func (s *Store) LatestSessionPath() (string, bool) {
	names := s.SessionFiles()
	if len(names) == 0 {
		return "", false
	}
	return filepath.Join(s.dir, names[len(names)-1]), true
}

// Load reads and decodes a session document.
func (s *Store) Load(path string) (*state.Session, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to load session from %s: %w", path, err)
	}
	v, err := codec.Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session from %s: %w", path, err)
	}
	sess, err := state.FromValue(v)
	if err != nil {
		return nil, fmt.Errorf("malformed session document %s: %w", path, err)
	}
	return sess, nil
}

// Save serializes a session, creating parent directories as needed.
// The write overwrites unconditionally: last writer wins, no
// transaction.
func (s *Store) Save(sess *state.Session, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}
	doc := codec.Encode(sess.Root(), SessionRootTag)
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("failed to save session to %s: %w", path, err)
	}
	return nil
}

// Summarize extracts the minimal narration context from a session:
// campaign, location, recap and the last three log entries.
func Summarize(sess *state.Session) string {
	var recent []string
	for _, entry := range sess.RecentLogEntries(3) {
		if entry.Content != "" {
			recent = append(recent, strings.TrimSpace(entry.Content))
		}
	}
	return fmt.Sprintf("Campaign: %s\nLocation: %s\nRecap: %s\nRecent Events:\n%s",
		sess.CampaignName(), sess.CurrentLocation(), sess.LastRecap(),
		strings.Join(recent, "\n"))
}

// SummarizeAll aggregates the minimal context of every stored session
// for prompt composition. Unreadable saves contribute a note instead of
// failing the whole summary.
func (s *Store) SummarizeAll() string {
	names := s.SessionFiles()
	if len(names) == 0 {
		return "No previous sessions."
	}
	summaries := make([]string, 0, len(names))
	for _, name := range names {
		sess, err := s.Load(filepath.Join(s.dir, name))
		if err != nil {
			summaries = append(summaries, fmt.Sprintf("--- Session: %s ---\n(unreadable)", name))
			continue
		}
		summaries = append(summaries, fmt.Sprintf("--- Session: %s ---\n%s", name, Summarize(sess)))
	}
	return strings.Join(summaries, "\n\n")
}

// Wipe deletes every XML document in the save directory except the AI
// configuration. Callers are responsible for confirming with the user
// first.
func (s *Store) Wipe() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read save directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sessionExt) || name == AIConfigFilename {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", name, err)
		}
	}
	return nil
}
