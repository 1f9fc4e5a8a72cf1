package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

const transcriptRootTag = "Transcript"

// Turn is one recorded exchange in the shared transcript.
type Turn struct {
	Timestamp string
	Player    string
	AI        string
}

// Transcript is the append-only record of every turn ever played,
// shared across all sessions. A transcript that fails to parse is
// discarded and restarted empty: transcript loss is acceptable, session
// loss is not.
type Transcript struct {
	path string
}

// NewTranscript returns a transcript backed by the given file.
func NewTranscript(path string) *Transcript {
	return &Transcript{path: path}
}

// Path returns the backing file.
func (t *Transcript) Path() string { return t.path }

func (t *Transcript) openOrReset() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(t.path); err == nil {
		if root := doc.Root(); root != nil && root.Tag == transcriptRootTag {
			return doc, root
		}
	}
	doc = etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc, doc.CreateElement(transcriptRootTag)
}

// Append records one (player, narrator) exchange.
func (t *Transcript) Append(timestamp, playerInput, aiOutput string) error {
	doc, root := t.openOrReset()

	turn := root.CreateElement("Turn")
	turn.CreateAttr("timestamp", timestamp)
	turn.CreateElement("Player").SetText(playerInput)
	turn.CreateElement("AI").SetText(aiOutput)

	doc.Indent(documentIndent)
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}
	if err := doc.WriteToFile(t.path); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// Turns returns every recorded exchange in chronological order. A
// missing or corrupted transcript yields an empty slice.
func (t *Transcript) Turns() []Turn {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(t.path); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil || root.Tag != transcriptRootTag {
		return nil
	}
	var turns []Turn
	for _, elem := range root.SelectElements("Turn") {
		turns = append(turns, Turn{
			Timestamp: elem.SelectAttrValue("timestamp", ""),
			Player:    childTextOf(elem, "Player"),
			AI:        childTextOf(elem, "AI"),
		})
	}
	return turns
}

func childTextOf(elem *etree.Element, tag string) string {
	child := elem.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
