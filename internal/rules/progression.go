// Package rules implements the mechanical progression of a session:
// skill checks, damage, death and revival, and the level-up loop.
package rules

import (
	"math/rand"

	"github.com/zhouzirui/storyforge/internal/model/state"
)

// abilityForSkill is the standard tabletop pairing of skills to ability
// scores. Skills outside the table check with no ability modifier.
var abilityForSkill = map[string]string{
	"Acrobatics":      "Dexterity",
	"Animal Handling": "Wisdom",
	"Arcana":          "Intelligence",
	"Athletics":       "Strength",
	"Deception":       "Charisma",
	"History":         "Intelligence",
	"Insight":         "Wisdom",
	"Intimidation":    "Charisma",
	"Investigation":   "Intelligence",
	"Medicine":        "Wisdom",
	"Nature":          "Intelligence",
	"Perception":      "Wisdom",
	"Performance":     "Charisma",
	"Persuasion":      "Charisma",
	"Religion":        "Intelligence",
	"Sleight of Hand": "Dexterity",
	"Stealth":         "Dexterity",
	"Survival":        "Wisdom",
}

// RevivalItems is the ordered list of consumables that cancel death.
// The first carried match is consumed.
var RevivalItems = []string{
	"Blessing of Resurrection",
	"Scroll of True Revival",
	"Phoenix Feather",
}

// XP granted for every completed turn.
const TurnXP = 20

// SkillCheck is the resolved outcome of a narrator-requested skill test.
type SkillCheck struct {
	Skill           string
	Roll            int
	SkillModifier   int
	Ability         string
	AbilityModifier int
	Total           int
	NewlyLearned    bool
}

// ResolveSkillCheck computes roll + skill modifier + ability modifier.
// An unseen skill is learned on the spot at modifier 0.
func ResolveSkillCheck(sess *state.Session, skill string, roll int) SkillCheck {
	mod, known := sess.SkillModifier(skill)
	if !known {
		sess.SetSkill(skill, 0)
		mod = 0
	}

	check := SkillCheck{
		Skill:         skill,
		Roll:          roll,
		SkillModifier: mod,
		NewlyLearned:  !known,
	}
	if ability, ok := abilityForSkill[skill]; ok {
		check.Ability = ability
		check.AbilityModifier = AbilityModifier(sess.Stat(ability))
	}
	check.Total = roll + check.SkillModifier + check.AbilityModifier
	return check
}

// AbilityModifier is floor((score - 10) / 2).
func AbilityModifier(score int) int {
	return floorDiv(score-10, 2)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ApplyDamage subtracts damage from hit points, clamped at zero, and
// returns the remaining total.
func ApplyDamage(sess *state.Session, damage int) int {
	if damage > 0 {
		sess.SetHitPoints(sess.HitPoints() - damage)
	}
	return sess.HitPoints()
}

// DeathOutcome reports how a zero-hit-point state resolved.
type DeathOutcome struct {
	Died        bool
	RevivalItem string
}

// ResolveDeath handles a character at zero hit points. The first
// revival item found in inventory is consumed and the character revives
// at half max hit points; with none, the death is final.
func ResolveDeath(sess *state.Session) DeathOutcome {
	if sess.HitPoints() > 0 {
		return DeathOutcome{}
	}
	for _, item := range RevivalItems {
		if sess.RemoveItem(item) {
			sess.SetHitPoints(sess.MaxHitPoints() / 2)
			return DeathOutcome{RevivalItem: item}
		}
	}
	return DeathOutcome{Died: true}
}

// LevelUp describes one gained level.
type LevelUp struct {
	Level        int
	Stat         string
	StatScore    int
	MaxHitPoints int
}

// GrantXP adds experience and runs the level-up loop: each time XP
// reaches 100 x current level the threshold is consumed, one
// engine-chosen stat grows by one, max hit points grow by five and the
// character heals fully. A single large grant can produce several
// levels.
func GrantXP(sess *state.Session, amount int, rng *rand.Rand) []LevelUp {
	sess.SetXP(sess.XP() + amount)

	var ups []LevelUp
	for sess.XP() >= 100*sess.Level() {
		level := sess.Level() + 1
		sess.SetLevel(level)
		sess.SetXP(sess.XP() - 100*(level-1))

		up := LevelUp{Level: level}
		if stats := sess.Stats(); len(stats) > 0 {
			up.Stat = stats[rng.Intn(len(stats))]
			sess.SetStat(up.Stat, sess.Stat(up.Stat)+1)
			up.StatScore = sess.Stat(up.Stat)
		}
		sess.SetMaxHitPoints(sess.MaxHitPoints() + 5)
		sess.SetHitPoints(sess.MaxHitPoints())
		up.MaxHitPoints = sess.MaxHitPoints()
		ups = append(ups, up)
	}
	return ups
}
