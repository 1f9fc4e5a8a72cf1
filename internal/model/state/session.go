package state

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// Root-level field names. Scalar fields are serialized as root attributes
// by the codec; the remaining keys become child structures.
const (
	FieldID              = "id"
	FieldDate            = "date"
	FieldGamemaster      = "gamemaster"
	FieldCampaignName    = "campaignName"
	FieldInGameDate      = "inGameDate"
	FieldCurrentLocation = "currentLocation"
	FieldLastRecap       = "lastRecap"
	FieldTurnCounter     = "turnCounter"

	FieldPlayerName       = "playerName"
	FieldPlayerRace       = "playerRace"
	FieldPlayerClass      = "playerClass"
	FieldPlayerGender     = "playerGender"
	FieldPlayerBackground = "playerBackground"
	FieldGold             = "playerGold"
	FieldXP               = "playerXP"
	FieldLevel            = "playerLevel"
	FieldHitPoints        = "playerHitPoints"
	FieldMaxHitPoints     = "playerMaxHitPoints"
	FieldArmorClass       = "playerArmorClass"

	KeyMemory    = "Memory"
	KeyFact      = "Fact"
	KeyLog       = "Log"
	KeyEntry     = "Entry"
	KeyNPCs      = "KeyNPCs"
	KeyLocations = "KeyLocations"
	KeyItems     = "KeyItems"
	KeyInventory = "playerInventory"
	KeyStats     = "playerStats"
	KeySkills    = "playerSkills"
)

// Log entry types.
const (
	LogTurn       = "Turn"
	LogWorldEvent = "WorldEvent"
)

// Defaults applied to blank character sheet fields, matching the
// long-standing new-game defaults.
const (
	DefaultCampaign   = "The Unwritten Tale"
	DefaultName       = "Adventurer"
	DefaultRace       = "Human"
	DefaultClass      = "Explorer"
	DefaultBackground = "Traveler from distant lands"
	DefaultGender     = "not specified"
	DefaultLocation   = "The Forgotten Inn"
)

// StatNames is the canonical ability ordering for a new character.
var StatNames = []string{"Strength", "Dexterity", "Constitution", "Intelligence", "Wisdom", "Charisma"}

var (
	ErrNotRecord = errors.New("session root must be a record")
	ErrIDSet     = errors.New("session id is immutable once assigned")
)

// Fact is one append-only memory entry: what the player said and how the
// narrator answered.
type Fact struct {
	Timestamp   string
	PlayerInput string
	AIResponse  string
}

// LogEntry is one append-only log line, either a played turn or a
// background world event.
type LogEntry struct {
	Timestamp string
	Type      string
	Content   string
}

// Session wraps the generic session record with typed, invariant-keeping
// accessors. All mutation goes through the wrapper so hit points stay
// clamped, the id stays immutable and the append-only lists stay ordered.
type Session struct {
	root *Value
}

// CharacterSheet carries the answers collected at new-game time. Blank
// fields fall back to the package defaults.
type CharacterSheet struct {
	Name       string
	Race       string
	Class      string
	Gender     string
	Background string
	Campaign   string
	Location   string
}

func (c CharacterSheet) withDefaults() CharacterSheet {
	def := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return CharacterSheet{
		Name:       def(c.Name, DefaultName),
		Race:       def(c.Race, DefaultRace),
		Class:      def(c.Class, DefaultClass),
		Gender:     def(c.Gender, DefaultGender),
		Background: def(c.Background, DefaultBackground),
		Campaign:   def(c.Campaign, DefaultCampaign),
		Location:   def(c.Location, DefaultLocation),
	}
}

// NewSession builds a fresh level-1 session for the supplied sheet. The
// in-game date is drawn from the campaign's canonical era.
func NewSession(id string, sheet CharacterSheet, rng *rand.Rand) *Session {
	sheet = sheet.withDefaults()
	inGameDate := fmt.Sprintf("%04d-%02d-%02d",
		1490+rng.Intn(6), 1+rng.Intn(12), 1+rng.Intn(28))

	s := &Session{root: NewRecord()}
	_ = s.SetID(id) // a fresh record has no id yet
	s.setString(FieldDate, time.Now().Format("2006-01-02"))
	s.setString(FieldGamemaster, "AI Storyteller")
	s.setString(FieldCampaignName, sheet.Campaign)
	s.setString(FieldInGameDate, inGameDate)
	s.SetCurrentLocation(sheet.Location)
	s.setString(FieldLastRecap, fmt.Sprintf("%s the %s %s arrives at %s.",
		sheet.Name, sheet.Race, sheet.Class, sheet.Location))
	s.setString(FieldPlayerName, sheet.Name)
	s.setString(FieldPlayerRace, sheet.Race)
	s.setString(FieldPlayerClass, sheet.Class)
	s.setString(FieldPlayerGender, sheet.Gender)
	s.setString(FieldPlayerBackground, sheet.Background)

	s.SetGold(10)
	s.setInt(FieldXP, 0)
	s.setInt(FieldLevel, 1)
	s.setInt(FieldHitPoints, 10)
	s.setInt(FieldMaxHitPoints, 10)
	s.setInt(FieldArmorClass, 10)
	s.setInt(FieldTurnCounter, 0)

	stats := NewRecord()
	for _, name := range StatNames {
		stats.Set(name, Scalar("10"))
	}
	s.root.Set(KeyStats, stats)
	s.root.Set(KeySkills, NewRecord())

	s.Normalize()
	s.AddEntity(KeyLocations, sheet.Location)
	return s
}

// FromValue wraps a decoded document root as a session and applies the
// always-list schema normalization.
func FromValue(root *Value) (*Session, error) {
	if root == nil || root.Kind() != KindRecord {
		return nil, ErrNotRecord
	}
	s := &Session{root: root}
	s.Normalize()
	return s, nil
}

// Root exposes the underlying record for serialization.
func (s *Session) Root() *Value { return s.root }

// alwaysList names the structures that are inherently lists even when the
// document carried zero or one element. The generic codec cannot tell a
// single occurrence from a one-item list, so the schema is applied here
// as a post-decode step instead of inside the codec.
var alwaysList = []struct {
	parent string // "" means root
	key    string
}{
	{KeyMemory, KeyFact},
	{KeyLog, KeyEntry},
	{"", KeyNPCs},
	{"", KeyLocations},
	{"", KeyItems},
	{"", KeyInventory},
}

// Normalize repairs the structural expectations a freshly decoded (or
// hand-built) session may be missing: always-list fields become lists,
// and the stat/skill records exist.
func (s *Session) Normalize() {
	for _, spec := range alwaysList {
		parent := s.root
		if spec.parent != "" {
			p, ok := s.root.Get(spec.parent)
			if !ok || p.Kind() != KindRecord {
				p = NewRecord()
				s.root.Set(spec.parent, p)
			}
			parent = p
		}
		v, ok := parent.Get(spec.key)
		switch {
		case !ok:
			parent.Set(spec.key, NewList())
		case v.Kind() != KindList:
			parent.Set(spec.key, NewList(v))
		}
	}
	for _, key := range []string{KeyStats, KeySkills} {
		if v, ok := s.root.Get(key); !ok || v.Kind() != KindRecord {
			s.root.Set(key, NewRecord())
		}
	}
}

func (s *Session) getString(key string) string {
	v, ok := s.root.Get(key)
	if !ok {
		return ""
	}
	return v.Text()
}

func (s *Session) setString(key, val string) {
	s.root.Set(key, Scalar(val))
}

func (s *Session) getInt(key string) int {
	n, err := strconv.Atoi(s.getString(key))
	if err != nil {
		return 0
	}
	return n
}

func (s *Session) setInt(key string, val int) {
	s.setString(key, strconv.Itoa(val))
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.getString(FieldID) }

// SetID assigns the identifier once; reassignment is an error.
func (s *Session) SetID(id string) error {
	if s.ID() != "" {
		return ErrIDSet
	}
	s.setString(FieldID, id)
	return nil
}

func (s *Session) CampaignName() string    { return s.getString(FieldCampaignName) }
func (s *Session) CurrentLocation() string { return s.getString(FieldCurrentLocation) }
func (s *Session) SetCurrentLocation(loc string) {
	s.setString(FieldCurrentLocation, loc)
}
func (s *Session) LastRecap() string          { return s.getString(FieldLastRecap) }
func (s *Session) SetLastRecap(recap string)  { s.setString(FieldLastRecap, recap) }
func (s *Session) PlayerName() string         { return s.getString(FieldPlayerName) }
func (s *Session) PlayerRace() string         { return s.getString(FieldPlayerRace) }
func (s *Session) PlayerClass() string        { return s.getString(FieldPlayerClass) }
func (s *Session) PlayerGender() string       { return s.getString(FieldPlayerGender) }
func (s *Session) PlayerBackground() string   { return s.getString(FieldPlayerBackground) }
func (s *Session) Gold() int                  { return s.getInt(FieldGold) }
func (s *Session) SetGold(gold int)           { s.setInt(FieldGold, max(0, gold)) }
func (s *Session) ArmorClass() int            { return s.getInt(FieldArmorClass) }
func (s *Session) TurnCounter() int           { return s.getInt(FieldTurnCounter) }
func (s *Session) SetTurnCounter(n int)       { s.setInt(FieldTurnCounter, n) }

// HitPoints is always within [0, MaxHitPoints].
func (s *Session) HitPoints() int { return s.getInt(FieldHitPoints) }

// SetHitPoints clamps into [0, MaxHitPoints].
func (s *Session) SetHitPoints(hp int) {
	if hp < 0 {
		hp = 0
	}
	if maxHP := s.MaxHitPoints(); hp > maxHP {
		hp = maxHP
	}
	s.setInt(FieldHitPoints, hp)
}

func (s *Session) MaxHitPoints() int { return s.getInt(FieldMaxHitPoints) }

func (s *Session) SetMaxHitPoints(hp int) {
	if hp < 1 {
		hp = 1
	}
	s.setInt(FieldMaxHitPoints, hp)
	if s.HitPoints() > hp {
		s.setInt(FieldHitPoints, hp)
	}
}

// Level is at least 1.
func (s *Session) Level() int { return max(1, s.getInt(FieldLevel)) }

func (s *Session) SetLevel(level int) { s.setInt(FieldLevel, max(1, level)) }

// XP is never negative.
func (s *Session) XP() int { return max(0, s.getInt(FieldXP)) }

func (s *Session) SetXP(xp int) { s.setInt(FieldXP, max(0, xp)) }

// Stat returns an ability score, defaulting to 10 when unset.
func (s *Session) Stat(name string) int {
	stats, ok := s.root.Get(KeyStats)
	if !ok {
		return 10
	}
	v, ok := stats.Get(name)
	if !ok {
		return 10
	}
	n, err := strconv.Atoi(v.Text())
	if err != nil {
		return 10
	}
	return n
}

func (s *Session) SetStat(name string, score int) {
	stats, ok := s.root.Get(KeyStats)
	if !ok || stats.Kind() != KindRecord {
		stats = NewRecord()
		s.root.Set(KeyStats, stats)
	}
	stats.Set(name, Scalar(strconv.Itoa(score)))
}

// Stats returns ability names in document order.
func (s *Session) Stats() []string {
	stats, ok := s.root.Get(KeyStats)
	if !ok {
		return nil
	}
	return stats.Keys()
}

// SkillModifier reports the stored modifier for a skill and whether the
// skill is known at all.
func (s *Session) SkillModifier(name string) (int, bool) {
	skills, ok := s.root.Get(KeySkills)
	if !ok {
		return 0, false
	}
	v, ok := skills.Get(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v.Text())
	if err != nil {
		return 0, true
	}
	return n, true
}

func (s *Session) SetSkill(name string, modifier int) {
	skills, ok := s.root.Get(KeySkills)
	if !ok || skills.Kind() != KindRecord {
		skills = NewRecord()
		s.root.Set(KeySkills, skills)
	}
	skills.Set(name, Scalar(strconv.Itoa(modifier)))
}

// Skills returns known skill names in document order.
func (s *Session) Skills() []string {
	skills, ok := s.root.Get(KeySkills)
	if !ok {
		return nil
	}
	return skills.Keys()
}

func (s *Session) stringList(key string) []string {
	v, ok := s.root.Get(key)
	if !ok || v.Kind() != KindList {
		return nil
	}
	out := make([]string, 0, v.Len())
	for _, item := range v.Items() {
		if item.Kind() == KindScalar {
			out = append(out, item.Text())
		}
	}
	return out
}

// Inventory lists carried item names in acquisition order.
func (s *Session) Inventory() []string { return s.stringList(KeyInventory) }

func (s *Session) AddItem(name string) {
	v, ok := s.root.Get(KeyInventory)
	if !ok || v.Kind() != KindList {
		v = NewList()
		s.root.Set(KeyInventory, v)
	}
	v.Append(Scalar(name))
}

// RemoveItem removes the first matching item, reporting whether one was
// found.
func (s *Session) RemoveItem(name string) bool {
	v, ok := s.root.Get(KeyInventory)
	if !ok || v.Kind() != KindList {
		return false
	}
	for i, item := range v.Items() {
		if item.Kind() == KindScalar && item.Text() == name {
			v.list = append(v.list[:i], v.list[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) HasItem(name string) bool {
	for _, item := range s.Inventory() {
		if item == name {
			return true
		}
	}
	return false
}

// Entities lists the names under one of the entity keys (KeyNPCs,
// KeyLocations, KeyItems) in first-seen order.
func (s *Session) Entities(key string) []string { return s.stringList(key) }

// AddEntity inserts a name if absent, keeping first-seen order. Reports
// whether the name was new.
func (s *Session) AddEntity(key, name string) bool {
	if name == "" {
		return false
	}
	v, ok := s.root.Get(key)
	if !ok || v.Kind() != KindList {
		v = NewList()
		s.root.Set(key, v)
	}
	for _, item := range v.Items() {
		if item.Kind() == KindScalar && item.Text() == name {
			return false
		}
	}
	v.Append(Scalar(name))
	return true
}

// AppendFact records one turn in the session memory. Facts are never
// mutated or removed.
func (s *Session) AppendFact(f Fact) {
	mem, ok := s.root.Get(KeyMemory)
	if !ok || mem.Kind() != KindRecord {
		mem = NewRecord()
		s.root.Set(KeyMemory, mem)
	}
	facts, ok := mem.Get(KeyFact)
	if !ok || facts.Kind() != KindList {
		facts = NewList()
		mem.Set(KeyFact, facts)
	}
	rec := NewRecord()
	rec.Set("timestamp", Scalar(f.Timestamp))
	rec.Set("player_input", Scalar(f.PlayerInput))
	rec.Set("ai_response", Scalar(f.AIResponse))
	facts.Append(rec)
}

// RecentFacts returns up to n of the latest memory facts, oldest first.
func (s *Session) RecentFacts(n int) []Fact {
	mem, ok := s.root.Get(KeyMemory)
	if !ok {
		return nil
	}
	facts, ok := mem.Get(KeyFact)
	if !ok || facts.Kind() != KindList {
		return nil
	}
	items := facts.Items()
	if len(items) > n {
		items = items[len(items)-n:]
	}
	out := make([]Fact, 0, len(items))
	for _, item := range items {
		out = append(out, Fact{
			Timestamp:   childText(item, "timestamp"),
			PlayerInput: childText(item, "player_input"),
			AIResponse:  childText(item, "ai_response"),
		})
	}
	return out
}

// AppendLogEntry records one chronological log line.
func (s *Session) AppendLogEntry(e LogEntry) {
	logRec, ok := s.root.Get(KeyLog)
	if !ok || logRec.Kind() != KindRecord {
		logRec = NewRecord()
		s.root.Set(KeyLog, logRec)
	}
	entries, ok := logRec.Get(KeyEntry)
	if !ok || entries.Kind() != KindList {
		entries = NewList()
		logRec.Set(KeyEntry, entries)
	}
	rec := NewRecord()
	rec.Set("timestamp", Scalar(e.Timestamp))
	rec.Set("type", Scalar(e.Type))
	rec.Set("Content", Scalar(e.Content))
	entries.Append(rec)
}

// RecentLogEntries returns up to n of the latest log entries, oldest
// first.
func (s *Session) RecentLogEntries(n int) []LogEntry {
	logRec, ok := s.root.Get(KeyLog)
	if !ok {
		return nil
	}
	entries, ok := logRec.Get(KeyEntry)
	if !ok || entries.Kind() != KindList {
		return nil
	}
	items := entries.Items()
	if len(items) > n {
		items = items[len(items)-n:]
	}
	out := make([]LogEntry, 0, len(items))
	for _, item := range items {
		out = append(out, LogEntry{
			Timestamp: childText(item, "timestamp"),
			Type:      childText(item, "type"),
			Content:   childText(item, "Content"),
		})
	}
	return out
}

func childText(v *Value, key string) string {
	if v == nil || v.Kind() != KindRecord {
		return ""
	}
	child, ok := v.Get(key)
	if !ok {
		return ""
	}
	return child.Text()
}
