// Package turn drives one game turn through its state machine: roll,
// narrate, apply directives, progress the character, persist.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/zhouzirui/storyforge/internal/analysis/directive"
	"github.com/zhouzirui/storyforge/internal/model/state"
	"github.com/zhouzirui/storyforge/internal/rules"
	"github.com/zhouzirui/storyforge/internal/service/narrator"
	"github.com/zhouzirui/storyforge/internal/service/rag"
	"github.com/zhouzirui/storyforge/internal/store"
	"github.com/zhouzirui/storyforge/pkg/dice"
)

// Narrator is the external narrative generator. Failures are never
// fatal to a turn.
type Narrator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// State names the phases of the turn state machine.
type State string

const (
	StateAwaitingInput      State = "AwaitingInput"
	StateRollGenerated      State = "RollGenerated"
	StateNarrationRequested State = "NarrationRequested"
	StateDirectivesApplied  State = "DirectivesApplied"
	StatePersisted          State = "Persisted"
	StateSessionEnded       State = "SessionEnded"
)

// FallbackNarration substitutes for a failed or absent narrator.
const FallbackNarration = "The storyteller stumbles, its words lost to the ether. The world waits for your next move."

// A background world event fires every worldEventInterval-th turn.
const worldEventInterval = 15

var ErrSessionEnded = errors.New("session has ended")

// Processor orchestrates turns against one active session. It is
// single-threaded by design: one interactive player, one session, one
// turn at a time.
type Processor struct {
	store      *store.Store
	transcript *store.Transcript
	aiConfig   *store.AIConfig
	narrator   Narrator
	retrieval  rag.Provider
	rng        *rand.Rand
	now        func() time.Time
	state      State
}

// NewProcessor wires a processor. narrator may be nil, in which case
// every turn uses the fallback narration.
func NewProcessor(st *store.Store, transcript *store.Transcript, aiConfig *store.AIConfig, n Narrator, retrieval rag.Provider, rng *rand.Rand) *Processor {
	if retrieval == nil {
		retrieval = rag.Noop{}
	}
	return &Processor{
		store:      st,
		transcript: transcript,
		aiConfig:   aiConfig,
		narrator:   n,
		retrieval:  retrieval,
		rng:        rng,
		now:        time.Now,
		state:      StateAwaitingInput,
	}
}

// State reports the current machine state.
func (p *Processor) State() State { return p.state }

// Result summarizes everything one turn did to the session.
type Result struct {
	Roll       int
	WorldEvent string
	Narration  string
	Discovered []string
	SkillCheck *rules.SkillCheck
	Damage     int
	Death      rules.DeathOutcome
	XPGained   int
	LevelUps   []rules.LevelUp
	Ended      bool
}

// PlayTurn advances the session by one player action. Meta-commands
// (save, inventory, ...) are the caller's business and must not reach
// this method: every call consumes a turn.
func (p *Processor) PlayTurn(ctx context.Context, sess *state.Session, input string) (*Result, error) {
	if p.state == StateSessionEnded {
		return nil, ErrSessionEnded
	}

	res := &Result{}
	sess.SetTurnCounter(sess.TurnCounter() + 1)

	res.Roll = dice.Roll(p.rng)
	p.state = StateRollGenerated

	retrieved := p.retrieval.ContextFor(input)
	summaries := p.store.SummarizeAll()
	cfg := p.configValues()

	// Background world event on every 15th turn. It does not consume
	// the roll, and a failed generation is silently skipped.
	if sess.TurnCounter()%worldEventInterval == 0 && p.narrator != nil {
		eventPrompt := narrator.BuildEventPrompt(sess, retrieved, summaries)
		if event, err := p.narrator.Generate(ctx, eventPrompt); err == nil && strings.TrimSpace(event) != "" {
			res.WorldEvent = event
			sess.AppendLogEntry(state.LogEntry{
				Timestamp: p.timestamp(),
				Type:      state.LogWorldEvent,
				Content:   event,
			})
		} else if err != nil {
			log.Printf("[turn] world event generation failed, skipping: %v", err)
		}
	}

	p.state = StateNarrationRequested
	text := p.narrate(ctx, narrator.PromptInput{
		Session:          sess,
		PlayerInput:      input,
		Roll:             res.Roll,
		RetrievedContext: retrieved,
		SessionSummaries: summaries,
		Config:           cfg,
	})

	parsed := directive.Parse(text)

	// Directive effects apply in a fixed order: entities, damage,
	// skill re-narration, configuration. Entities and damage come from
	// the first narration even when a skill check replaces its prose.
	for _, name := range parsed.NPCs {
		if sess.AddEntity(state.KeyNPCs, name) {
			res.Discovered = append(res.Discovered, name)
		}
	}
	for _, name := range parsed.Locations {
		if sess.AddEntity(state.KeyLocations, name) {
			res.Discovered = append(res.Discovered, name)
		}
	}
	for _, name := range parsed.Items {
		if sess.AddEntity(state.KeyItems, name) {
			res.Discovered = append(res.Discovered, name)
		}
	}

	if parsed.Damage > 0 {
		res.Damage = parsed.Damage
		if rules.ApplyDamage(sess, parsed.Damage) == 0 {
			res.Death = rules.ResolveDeath(sess)
		}
	}

	if parsed.Skill != "" && !res.Death.Died {
		check := rules.ResolveSkillCheck(sess, parsed.Skill, res.Roll)
		res.SkillCheck = &check
		// Fold the adjusted total back into a second narration request;
		// its prose replaces the first everywhere downstream.
		adjusted := p.narrate(ctx, narrator.PromptInput{
			Session:          sess,
			PlayerInput:      input,
			Roll:             check.Total,
			RetrievedContext: retrieved,
			SessionSummaries: summaries,
			Config:           cfg,
		})
		if adjusted != "" {
			text = adjusted
		}
	}

	if parsed.HasConfig() {
		if err := p.aiConfig.Set(parsed.ConfigKey, parsed.ConfigValue); err != nil {
			log.Printf("[turn] failed to apply config directive %s: %v", parsed.ConfigKey, err)
		} else {
			log.Printf("[turn] AI config updated: %s = %s", parsed.ConfigKey, parsed.ConfigValue)
		}
	}
	p.state = StateDirectivesApplied
	res.Narration = text

	ts := p.timestamp()
	sess.AppendFact(state.Fact{Timestamp: ts, PlayerInput: input, AIResponse: text})
	sess.AppendLogEntry(state.LogEntry{
		Timestamp: ts,
		Type:      state.LogTurn,
		Content:   fmt.Sprintf("Player: %s (Rolled %d)\nAI: %s", input, res.Roll, text),
	})
	if line := firstLine(text); line != "" {
		sess.SetLastRecap(line)
	}
	if err := p.transcript.Append(ts, input, text); err != nil {
		log.Printf("[turn] failed to append transcript: %v", err)
	}

	if res.Death.Died {
		// Final persist, then terminate. A failed write is logged but
		// does not keep the session alive.
		if err := p.persist(sess); err != nil {
			log.Printf("[turn] failed to persist after death: %v", err)
		}
		p.state = StateSessionEnded
		res.Ended = true
		return res, nil
	}

	res.XPGained = rules.TurnXP
	res.LevelUps = rules.GrantXP(sess, rules.TurnXP, p.rng)

	if err := p.persist(sess); err != nil {
		log.Printf("[turn] failed to persist session %s: %v", sess.ID(), err)
	}
	p.state = StateAwaitingInput
	return res, nil
}

// End marks an explicit quit.
func (p *Processor) End() { p.state = StateSessionEnded }

func (p *Processor) persist(sess *state.Session) error {
	if err := p.store.Save(sess, p.store.SessionPath(sess.ID())); err != nil {
		return err
	}
	p.state = StatePersisted
	return nil
}

func (p *Processor) narrate(ctx context.Context, in narrator.PromptInput) string {
	if p.narrator == nil {
		return FallbackNarration
	}
	text, err := p.narrator.Generate(ctx, narrator.BuildTurnPrompt(in))
	if err != nil {
		log.Printf("[turn] narration failed, using fallback: %v", err)
		return FallbackNarration
	}
	if strings.TrimSpace(text) == "" {
		return FallbackNarration
	}
	return text
}

func (p *Processor) configValues() store.AIConfigValues {
	values, err := p.aiConfig.Values()
	if err != nil {
		log.Printf("[turn] failed to load AI config, using defaults: %v", err)
		return store.DefaultAIConfigValues()
	}
	return values
}

func (p *Processor) timestamp() string {
	return p.now().Format(time.RFC3339)
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
