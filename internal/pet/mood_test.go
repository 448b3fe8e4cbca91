package pet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeciesEmoji(t *testing.T) {
	assert.Equal(t, "🐱", SpeciesEmoji("cat"))
	assert.Equal(t, "🐶", SpeciesEmoji("dog"))
	assert.Equal(t, "🐹", SpeciesEmoji("hamster"))
	assert.Equal(t, "🐾", SpeciesEmoji("capuchin"), "unknown species fall back to paws")
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "😴 Sleeping", StatusLine(&Aggregate{Mood: MoodSleeping}))
	assert.Equal(t, "🙂 Content", StatusLine(&Aggregate{Mood: MoodNeutral}))
	assert.Empty(t, StatusLine(nil))
}
