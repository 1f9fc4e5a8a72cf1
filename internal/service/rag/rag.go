// Package rag supplies retrieval context for narration prompts from
// lore files stored alongside the saves.
package rag

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Provider yields prompt context for a player query. An empty string
// means nothing relevant was found.
type Provider interface {
	ContextFor(query string) string
}

// Noop is the disabled provider.
type Noop struct{}

func (Noop) ContextFor(string) string { return "" }

const snippetLength = 300

// DirectoryIndex is a keyword index over .txt and .md lore files in a
// directory. It is intentionally naive: campaigns carry at most a
// handful of lore documents.
type DirectoryIndex struct {
	docs map[string]string
}

// NewDirectoryIndex reads every lore file under dir into memory.
func NewDirectoryIndex(dir string) *DirectoryIndex {
	idx := &DirectoryIndex{docs: make(map[string]string)}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return idx
	}
	for _, entry := range entries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if entry.IsDir() || (ext != ".txt" && ext != ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("[rag] skipping unreadable lore file %s: %v", name, err)
			continue
		}
		idx.docs[name] = string(data)
	}
	log.Printf("[rag] indexed %d lore document(s)", len(idx.docs))
	return idx
}

// ContextFor returns snippets from the documents that mention words of
// the query.
func (d *DirectoryIndex) ContextFor(query string) string {
	if len(d.docs) == 0 {
		return ""
	}
	words := keywords(query)
	if len(words) == 0 {
		return ""
	}

	var sections []string
	for name, content := range d.docs {
		lowered := strings.ToLower(content)
		matched := false
		for _, word := range words {
			if strings.Contains(lowered, word) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		snippet := content
		if len(snippet) > snippetLength {
			snippet = snippet[:snippetLength] + "..."
		}
		sections = append(sections, fmt.Sprintf("From %s:\n%s", name, snippet))
	}
	return strings.Join(sections, "\n\n")
}

// keywords keeps the query words long enough to be discriminating.
func keywords(query string) []string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,!?\"'")
		if len(word) >= 4 {
			words = append(words, word)
		}
	}
	return words
}
