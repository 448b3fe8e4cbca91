package pet

import "time"

// Stat bounds
const (
	MaxStat = 100
	MinStat = 0
)

// ActionKind identifies one of the timed care actions.
type ActionKind string

const (
	ActionFeed  ActionKind = "feed"
	ActionPlay  ActionKind = "play"
	ActionHeal  ActionKind = "heal"
	ActionClean ActionKind = "clean"
)

// AllActions lists every action kind in menu order.
var AllActions = []ActionKind{ActionFeed, ActionPlay, ActionHeal, ActionClean}

// Effect is the static per-action delta, cooldown and feedback phrases.
// The server re-clamps everything; these values only describe intent.
type Effect struct {
	Hunger      float64
	Energy      float64
	Happiness   float64
	Health      float64
	Cleanliness float64
	XP          int
	Cooldown    time.Duration
	Messages    []string
}

var actionEffects = map[ActionKind]Effect{
	ActionFeed: {
		Hunger:    25,
		Happiness: 5,
		XP:        10,
		Cooldown:  60 * time.Second,
		Messages: []string{
			"🍖 Yum!",
			"🍪 Crunch crunch...",
			"🥣 Bowl licked clean!",
		},
	},
	ActionPlay: {
		Happiness: 20,
		Energy:    -10,
		Hunger:    -5,
		XP:        15,
		Cooldown:  90 * time.Second,
		Messages: []string{
			"🎾 Wheee!",
			"🎉 So much fun!",
			"🪀 Again! Again!",
		},
	},
	ActionHeal: {
		Health:   25,
		Energy:   -5,
		XP:       5,
		Cooldown: 5 * time.Minute,
		Messages: []string{
			"💊 Feeling better already.",
			"🩹 All patched up.",
		},
	},
	ActionClean: {
		Cleanliness: 30,
		Happiness:   5,
		XP:          10,
		Cooldown:    2 * time.Minute,
		Messages: []string{
			"🛁 Squeaky clean!",
			"🫧 Bubble time!",
			"✨ So shiny now.",
		},
	},
}

// EffectFor returns the static effect table entry for kind.
func EffectFor(kind ActionKind) (Effect, bool) {
	e, ok := actionEffects[kind]
	return e, ok
}

// Idle phrases cached on the aggregate per species.
var speciesPhrases = map[string][]string{
	"cat": {
		"Purrrr...",
		"Staring at the window again.",
		"Knocked something off the shelf. No regrets.",
		"Dreaming of endless treats...",
	},
	"dog": {
		"Woof! Woof!",
		"Is it walk time yet?",
		"Best. Day. Ever.",
		"Guarding the house very seriously.",
	},
	"hamster": {
		"Stuffing cheeks for later.",
		"The wheel calls.",
		"Tiny but mighty!",
	},
}

var defaultPhrases = []string{
	"...",
	"Doing pet things.",
	"Happy to see you!",
}

// SpeciesPhrases returns the phrase list for a species, falling back to the
// generic set for species without one.
func SpeciesPhrases(species string) []string {
	if phrases, ok := speciesPhrases[species]; ok {
		return phrases
	}
	return defaultPhrases
}
