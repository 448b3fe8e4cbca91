package pet

// MoodEmoji returns the status emoji for a mood.
func MoodEmoji(m Mood) string {
	switch m {
	case MoodSad:
		return "😿"
	case MoodSleeping:
		return "😴"
	case MoodPlayful:
		return "😸"
	case MoodSickMild:
		return "🤧"
	case MoodSickModerate:
		return "🤒"
	case MoodSickSevere:
		return "🤢"
	default:
		return "🙂"
	}
}

// MoodLabel returns the display label for a mood.
func MoodLabel(m Mood) string {
	switch m {
	case MoodSad:
		return "Sad"
	case MoodSleeping:
		return "Sleeping"
	case MoodPlayful:
		return "Playful"
	case MoodSickMild:
		return "Under the weather"
	case MoodSickModerate:
		return "Sick"
	case MoodSickSevere:
		return "Very sick"
	default:
		return "Content"
	}
}

// SpeciesEmoji returns the avatar emoji for a species, used wherever the pet
// speaks.
func SpeciesEmoji(species string) string {
	switch species {
	case "cat":
		return "🐱"
	case "dog":
		return "🐶"
	case "hamster":
		return "🐹"
	default:
		return "🐾"
	}
}

// StatusLine renders the emoji + label pair used across the UI.
func StatusLine(a *Aggregate) string {
	if a == nil {
		return ""
	}
	return MoodEmoji(a.Mood) + " " + MoodLabel(a.Mood)
}
