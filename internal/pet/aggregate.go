// Package pet holds the single in-memory record for the owned pet and the
// commands that mutate it. The server is authoritative for stats, mood and
// XP; this package composes the raw record with the display-level leveling
// curve and never predicts stat changes locally.
package pet

import (
	"math"
	"math/rand"
	"time"

	"petmate/internal/api"
	"petmate/internal/level"
)

// Testable time and random functions
var (
	TimeNow     = func() time.Time { return time.Now().UTC() }
	RandFloat64 = rand.Float64
)

// Mood is the server-reported pet state.
type Mood string

const (
	MoodNeutral      Mood = "neutral"
	MoodSad          Mood = "sad"
	MoodSleeping     Mood = "sleeping"
	MoodPlayful      Mood = "playful"
	MoodSickMild     Mood = "sick-mild"
	MoodSickModerate Mood = "sick-moderate"
	MoodSickSevere   Mood = "sick-severe"
)

// Aggregate is the whole current pet. It is replaced wholesale on every
// authoritative response, never mutated field by field (rename being the one
// documented exception).
type Aggregate struct {
	ID        int       `json:"pet_id"`
	Name      string    `json:"pet_name"`
	Species   string    `json:"pet_species"`
	Character string    `json:"pet_character"`
	Feature   string    `json:"pet_feature"`
	Color     string    `json:"pet_color"`
	CreatedAt time.Time `json:"created_at"`

	Hunger      int `json:"hunger"`
	Energy      int `json:"energy"`
	Happiness   int `json:"happiness"`
	Health      int `json:"health"`
	Cleanliness int `json:"cleanliness"`

	Level     int `json:"level"`
	CurrentXP int `json:"current_xp"`
	XPToNext  int `json:"xp_to_next"`
	TotalXP   int `json:"total_xp"`

	Mood           Mood      `json:"mood"`
	LastInteracted time.Time `json:"last_interacted"`

	// Presentation-only phrase rotation, cached per species.
	Phrases     []string `json:"-"`
	PhraseIndex int      `json:"-"`
}

// Sleeping reports whether the pet is asleep. Derived, never stored.
func (a *Aggregate) Sleeping() bool {
	return a.Mood == MoodSleeping
}

// Sick reports whether the pet is in any of the sick states.
func (a *Aggregate) Sick() bool {
	switch a.Mood {
	case MoodSickMild, MoodSickModerate, MoodSickSevere:
		return true
	}
	return false
}

// Phrase returns the current idle phrase, or "" when the species has none.
func (a *Aggregate) Phrase() string {
	if len(a.Phrases) == 0 {
		return ""
	}
	return a.Phrases[a.PhraseIndex%len(a.Phrases)]
}

// AdvancePhrase moves the rotation to the next cached phrase.
func (a *Aggregate) AdvancePhrase() {
	if len(a.Phrases) == 0 {
		return
	}
	a.PhraseIndex = (a.PhraseIndex + 1) % len(a.Phrases)
}

// moodFromState maps the wire pet_state to a Mood. Unknown states read as
// neutral rather than failing the whole refresh.
func moodFromState(state string) Mood {
	switch state {
	case api.StateSad:
		return MoodSad
	case api.StateSleep:
		return MoodSleeping
	case api.StatePlay:
		return MoodPlayful
	case api.StateSickMild:
		return MoodSickMild
	case api.StateSickModerate:
		return MoodSickModerate
	case api.StateSickSevere:
		return MoodSickSevere
	default:
		return MoodNeutral
	}
}

func clampStat(v float64) int {
	n := int(math.Round(v))
	if n < MinStat {
		return MinStat
	}
	if n > MaxStat {
		return MaxStat
	}
	return n
}

// fromRecord composes an authoritative record into a display aggregate.
// prev, when non-nil, carries over the presentation-only phrase rotation and
// the last optimistic interaction time.
func fromRecord(rec *api.Pet, prev *Aggregate) *Aggregate {
	progress := level.Of(rec.XP)

	agg := &Aggregate{
		ID:        rec.ID,
		Name:      rec.Name,
		Species:   rec.Species,
		Character: rec.Character,
		Feature:   rec.Feature,
		Color:     rec.Color,
		CreatedAt: rec.CreatedAt,

		Hunger:      clampStat(rec.Hunger),
		Energy:      clampStat(rec.Energy),
		Happiness:   clampStat(rec.Happiness),
		Health:      clampStat(rec.Health),
		Cleanliness: clampStat(rec.Cleanliness),

		Level:     progress.Level,
		CurrentXP: progress.Current,
		XPToNext:  progress.Next,
		TotalXP:   rec.XP,

		Mood: moodFromState(rec.State),

		Phrases: SpeciesPhrases(rec.Species),
	}

	if prev != nil && prev.ID == rec.ID {
		agg.PhraseIndex = prev.PhraseIndex
		agg.LastInteracted = prev.LastInteracted
	}
	if rec.LastUpdated != nil && agg.LastInteracted.IsZero() {
		agg.LastInteracted = *rec.LastUpdated
	}
	return agg
}
