package narrator

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/storyforge/internal/model/state"
	"github.com/zhouzirui/storyforge/internal/store"
	"github.com/zhouzirui/storyforge/pkg/dice"
)

// PromptInput carries everything one turn's narration request needs.
type PromptInput struct {
	Session          *state.Session
	PlayerInput      string
	Roll             int
	RetrievedContext string
	SessionSummaries string
	Config           store.AIConfigValues
}

// BuildTurnPrompt composes the full narration prompt for one action.
func BuildTurnPrompt(in PromptInput) string {
	sess := in.Session
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", in.Config.PromptInstructions)
	fmt.Fprintf(&b, "== Retrieved Info ==\n%s\n\n", orNone(in.RetrievedContext))
	fmt.Fprintf(&b, "== Player Character ==\n%s\n\n", PlayerContext(sess))
	fmt.Fprintf(&b, "== Current Memory ==\n%s\n\n", MemorySummary(sess))
	fmt.Fprintf(&b, "== Current Situation ==\n%s\n\n", store.Summarize(sess))
	fmt.Fprintf(&b, "== Player's Action ==\n%s\n\n", in.PlayerInput)
	fmt.Fprintf(&b, "== Dice Roll Result ==\nThe player rolled a d20 and got: %d.\n%s\n\n", in.Roll, dice.Describe(in.Roll))
	fmt.Fprintf(&b, "== Important Game Elements ==\nNPCs: %s\nLocations: %s\nItems: %s\n\n",
		joinOrNone(sess.Entities(state.KeyNPCs)),
		joinOrNone(sess.Entities(state.KeyLocations)),
		joinOrNone(sess.Entities(state.KeyItems)))
	fmt.Fprintf(&b, "== Summary of All Previous Sessions ==\n%s\n\n", in.SessionSummaries)

	fmt.Fprintf(&b, "== Instructions ==\n")
	fmt.Fprintf(&b, "You MUST consider all provided information. Limit your response to %d sentences. ", in.Config.MaxSentences)
	b.WriteString("Always end with a numbered list of 2-3 choices for the player. ")
	if in.Config.AlwaysTagEntities {
		b.WriteString("Tag new entities with [NPC], [LOCATION], or [ITEM]. Tag merchants, shops, and markets with [MERCHANT]. ")
	}
	b.WriteString("If the player takes damage, state it as DAMAGE: <number>. If a skill is tested, state it as SKILL: <SkillName>.")

	return b.String()
}

// BuildEventPrompt composes the background world-event prompt. World
// events happen without player input and never ask for choices.
func BuildEventPrompt(sess *state.Session, retrieved, summaries string) string {
	var b strings.Builder
	b.WriteString("As the game master, generate a random, story-relevant world event. ")
	b.WriteString("It should fit the campaign context provided below. Describe the event in 3 sentences or less. ")
	b.WriteString("Do not ask for player input. This event happens in the background.\n\n")
	fmt.Fprintf(&b, "== Retrieved Info ==\n%s\n\n", orNone(retrieved))
	fmt.Fprintf(&b, "== Current Situation ==\n%s\n\n", store.Summarize(sess))
	fmt.Fprintf(&b, "== Summary of All Previous Sessions ==\n%s\n", summaries)
	return b.String()
}

// PlayerContext renders the character sheet summary used in prompts.
func PlayerContext(sess *state.Session) string {
	gender := strings.ToLower(sess.PlayerGender())
	pronoun := "they"
	switch gender {
	case "male":
		pronoun = "he"
	case "female":
		pronoun = "she"
	}

	stats := make([]string, 0, len(sess.Stats()))
	for _, name := range sess.Stats() {
		stats = append(stats, fmt.Sprintf("%s: %d", name, sess.Stat(name)))
	}

	return fmt.Sprintf("Name: %s\nGender: %s\nRace: %s\nClass: %s\nBackground: %s\nPronoun to use for player: %s\nStats: %s\nInventory: %s",
		sess.PlayerName(),
		capitalize(gender),
		sess.PlayerRace(),
		sess.PlayerClass(),
		sess.PlayerBackground(),
		pronoun,
		strings.Join(stats, ", "),
		joinOrNone(sess.Inventory()))
}

// MemorySummary renders the last three remembered turns.
func MemorySummary(sess *state.Session) string {
	facts := sess.RecentFacts(3)
	if len(facts) == 0 {
		return "None yet."
	}
	lines := make([]string, 0, len(facts))
	for _, fact := range facts {
		lines = append(lines, fmt.Sprintf("- Player: %s\n  AI: %s", fact.PlayerInput, firstLine(fact.AIResponse)))
	}
	return strings.Join(lines, "\n")
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func orNone(text string) string {
	if strings.TrimSpace(text) == "" {
		return "No specific context found."
	}
	return text
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
