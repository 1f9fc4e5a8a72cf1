// Package dice provides the d20 roll and its advisory outcome bands.
package dice

import "math/rand"

// Sides of the action die.
const Sides = 20

// Roll draws uniformly from 1..20.
func Roll(rng *rand.Rand) int {
	return 1 + rng.Intn(Sides)
}

// Describe maps a roll to its advisory band text. The band sets the
// tone for the narrator; it does not mechanically enforce success or
// failure.
func Describe(roll int) string {
	switch {
	case roll <= 1:
		return "This is a CRITICAL FAILURE. The action should fail spectacularly, with negative consequences."
	case roll <= 5:
		return "This is a significant failure. The action fails, and there may be a minor complication."
	case roll <= 10:
		return "This is a failure. The action does not succeed, but doesn't necessarily make things worse."
	case roll <= 15:
		return "This is a modest success. The action succeeds, but not perfectly or completely."
	case roll < 20:
		return "This is a clear success. The action works as intended."
	default:
		return "This is a CRITICAL SUCCESS. The action succeeds spectacularly, with an added bonus or benefit."
	}
}
