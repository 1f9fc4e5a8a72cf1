package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const aiConfigRootTag = "AIConfig"

// Hard-coded defaults written on first access.
const (
	defaultPromptInstructions = "You are the game master of a narrative role-playing campaign. " +
		"Be imaginative, surprising, and vivid in your storytelling. Always consider all facts, " +
		"logs, NPCs, items, and locations from all session documents before responding. Use " +
		"concise, engaging, and creative storytelling. Always follow the rules and style in this config."
	defaultMaxSentences      = "5"
	defaultAlwaysTagEntities = "true"
)

// AIConfigValues is a decoded snapshot of the configuration document.
// Extra is every directive-created key beyond the three well-known ones.
type AIConfigValues struct {
	PromptInstructions string
	MaxSentences       int
	AlwaysTagEntities  bool
	Extra              map[string]string
}

// DefaultAIConfigValues returns the hard-coded configuration applied
// when the document is missing or unreadable.
func DefaultAIConfigValues() AIConfigValues {
	return AIConfigValues{
		PromptInstructions: defaultPromptInstructions,
		MaxSentences:       5,
		AlwaysTagEntities:  true,
		Extra:              map[string]string{},
	}
}

// AIConfig manages the narrator configuration document. The file is
// created with defaults the first time anything touches it, and
// narrator-issued directives mutate it in place.
type AIConfig struct {
	path string
}

// NewAIConfig returns a config store backed by the given file.
func NewAIConfig(path string) *AIConfig {
	return &AIConfig{path: path}
}

// Path returns the backing file.
func (c *AIConfig) Path() string { return c.path }

func (c *AIConfig) load() (*etree.Document, error) {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		if err := c.writeDefaults(); err != nil {
			return nil, err
		}
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(c.path); err != nil {
		return nil, fmt.Errorf("failed to parse AI config %s: %w", c.path, err)
	}
	if doc.Root() == nil || doc.Root().Tag != aiConfigRootTag {
		return nil, fmt.Errorf("AI config %s: unexpected root element", c.path)
	}
	return doc, nil
}

func (c *AIConfig) writeDefaults() error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(aiConfigRootTag)
	root.CreateElement("PromptInstructions").SetText(defaultPromptInstructions)
	root.CreateElement("MaxSentences").SetText(defaultMaxSentences)
	root.CreateElement("AlwaysTagEntities").SetText(defaultAlwaysTagEntities)
	doc.Indent(documentIndent)

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := doc.WriteToFile(c.path); err != nil {
		return fmt.Errorf("failed to write default AI config: %w", err)
	}
	return nil
}

// Values loads and decodes the current configuration.
func (c *AIConfig) Values() (AIConfigValues, error) {
	doc, err := c.load()
	if err != nil {
		return AIConfigValues{}, err
	}
	values := DefaultAIConfigValues()
	for _, elem := range doc.Root().ChildElements() {
		text := strings.TrimSpace(elem.Text())
		switch elem.Tag {
		case "PromptInstructions":
			values.PromptInstructions = text
		case "MaxSentences":
			if n, err := strconv.Atoi(text); err == nil && n > 0 {
				values.MaxSentences = n
			}
		case "AlwaysTagEntities":
			values.AlwaysTagEntities = !strings.EqualFold(text, "false")
		default:
			values.Extra[elem.Tag] = text
		}
	}
	return values, nil
}

// Get returns the raw text of one config key, or fallback when absent.
func (c *AIConfig) Get(key, fallback string) string {
	doc, err := c.load()
	if err != nil {
		return fallback
	}
	elem := doc.Root().SelectElement(key)
	if elem == nil {
		return fallback
	}
	return strings.TrimSpace(elem.Text())
}

// Set creates or overwrites one config key. This is the application
// path for CONFIG directives embedded in narration.
func (c *AIConfig) Set(key, value string) error {
	doc, err := c.load()
	if err != nil {
		return err
	}
	elem := doc.Root().SelectElement(key)
	if elem == nil {
		elem = doc.Root().CreateElement(key)
	}
	elem.SetText(value)
	doc.Indent(documentIndent)
	if err := doc.WriteToFile(c.path); err != nil {
		return fmt.Errorf("failed to update AI config: %w", err)
	}
	return nil
}
