// Package directive extracts machine-readable tags from narration text:
// bracketed entity markers, skill checks, damage amounts and
// configuration directives. Parsing is pure text analysis with no game
// state involved, so it can be tested in isolation from the narrator
// and the turn loop.
package directive

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Result holds everything a piece of narration asked the engine to do.
// Absent tags yield zero fields, never errors.
type Result struct {
	NPCs      []string
	Locations []string
	Items     []string

	// Skill is the first SKILL: token, "" when absent.
	Skill string

	// Damage is the first DAMAGE: amount, 0 when absent.
	Damage int

	// ConfigKey/ConfigValue carry the first CONFIG: Set directive.
	ConfigKey   string
	ConfigValue string
}

// HasConfig reports whether a configuration directive was present.
func (r Result) HasConfig() bool { return r.ConfigKey != "" }

var (
	npcPattern      = regexp.MustCompile(`(?i)([\w\s'-]+)\s*\[NPC\]`)
	locationPattern = regexp.MustCompile(`(?i)([\w\s'-]+)\s*\[LOCATION\]`)
	itemPattern     = regexp.MustCompile(`(?i)([\w\s'-]+)\s*\[ITEM\]`)
	merchantPattern = regexp.MustCompile(`(?i)([\w\s'-]+)\s*\[MERCHANT\]`)
	skillPattern    = regexp.MustCompile(`(?i)SKILL:\s*([A-Za-z ]+)`)
	damagePattern   = regexp.MustCompile(`(?i)DAMAGE:\s*(\d+)`)
	configPattern   = regexp.MustCompile(`(?i)CONFIG:\s*Set\s+(\w+)\s*=\s*([^\n\r]+)`)
)

// Parse analyzes narration text. A MERCHANT tag contributes its name to
// both the NPC and location sets, since merchants are addressed as
// people and visited as places.
func Parse(text string) Result {
	var r Result
	if strings.TrimSpace(text) == "" {
		return r
	}

	r.NPCs = collectNames(npcPattern, text)
	r.Locations = collectNames(locationPattern, text)
	r.Items = collectNames(itemPattern, text)
	for _, merchant := range collectNames(merchantPattern, text) {
		r.NPCs = append(r.NPCs, merchant)
		r.Locations = append(r.Locations, merchant)
	}

	if m := skillPattern.FindStringSubmatch(text); m != nil {
		skill := strings.TrimSpace(m[1])
		if !strings.EqualFold(skill, "none") {
			r.Skill = skill
		}
	}

	if m := damagePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			r.Damage = n
		}
	}

	if m := configPattern.FindStringSubmatch(text); m != nil {
		r.ConfigKey = m[1]
		r.ConfigValue = strings.TrimSpace(m[2])
	}

	return r
}

func collectNames(pattern *regexp.Regexp, text string) []string {
	var names []string
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		if name := trimToName(m[1]); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// trimToName cuts a raw capture down to the trailing run of capitalized
// words. The tag regex grabs the whole preceding run of letters and
// spaces, which usually drags prose along ("You meet Elder Mira"); the
// proper name is the capitalized tail.
func trimToName(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		r, _ := utf8.DecodeRuneInString(words[i])
		if !unicode.IsUpper(r) {
			break
		}
		start = i
	}
	if start == len(words) {
		return ""
	}
	return strings.Join(words[start:], " ")
}
