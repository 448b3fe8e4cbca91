package api

import "time"

// Pet character tags understood by the server.
const (
	CharacterPlayful   = "playful"
	CharacterLazy      = "lazy"
	CharacterEnergetic = "energetic"
	CharacterCurious   = "curious"
	CharacterShy       = "shy"
)

// Cosmetic features a pet can be born with. CreatePet draws one uniformly
// when the caller leaves it empty.
var Features = []string{
	"normal",
	"rain_lover",
	"cold_lover",
	"day_lover",
	"hot_hater",
	"sun_hater",
	"rain_hater",
}

// Pet states as reported by the server. The server owns this value; the
// client never computes it.
const (
	StateNeutral      = "neutral"
	StateSad          = "sad"
	StateSleep        = "sleep"
	StatePlay         = "play"
	StateSickMild     = "sick1"
	StateSickModerate = "sick2"
	StateSickSevere   = "sick3"
)

// Message sender types on the wire.
const (
	MessageTypeHuman = "human"
	MessageTypeAI    = "ai"
)

// Pet is the authoritative pet record as returned by the server.
type Pet struct {
	ID          int        `json:"pet_id"`
	Name        string     `json:"pet_name"`
	Species     string     `json:"pet_species"`
	Color       string     `json:"pet_color"`
	Character   string     `json:"pet_character"`
	Feature     string     `json:"pet_feature"`
	State       string     `json:"pet_state"`
	Hunger      float64    `json:"pet_hunger"`
	Energy      float64    `json:"pet_energy"`
	Happiness   float64    `json:"pet_happiness"`
	Cleanliness float64    `json:"pet_cleanliness"`
	Health      float64    `json:"pet_health"`
	XP          int        `json:"pet_xp"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUpdated *time.Time `json:"last_updated"`
	OwnerID     int        `json:"owner_id"`
}

// CreatePetRequest is the descriptor for a new pet.
type CreatePetRequest struct {
	Name      string `json:"pet_name"`
	Species   string `json:"pet_species"`
	Color     string `json:"pet_color"`
	Character string `json:"pet_character"`
	Feature   string `json:"pet_feature"`
}

// StatsDelta is a partial stat/XP adjustment. Nil fields are left untouched
// by the server; set fields are added to the current value and clamped
// server-side.
type StatsDelta struct {
	Hunger      *float64 `json:"pet_hunger,omitempty"`
	Energy      *float64 `json:"pet_energy,omitempty"`
	Happiness   *float64 `json:"pet_happiness,omitempty"`
	Cleanliness *float64 `json:"pet_cleanliness,omitempty"`
	Health      *float64 `json:"pet_health,omitempty"`
	XP          *int     `json:"pet_xp,omitempty"`
}

// IsZero reports whether the delta would change nothing.
func (d StatsDelta) IsZero() bool {
	return d.Hunger == nil && d.Energy == nil && d.Happiness == nil &&
		d.Cleanliness == nil && d.Health == nil && d.XP == nil
}

type renameRequest struct {
	Name string `json:"pet_name"`
}

// ChatRoom is a chat session bound to a single pet.
type ChatRoom struct {
	ID            int        `json:"chat_id"`
	UserID        int        `json:"user_id"`
	PetID         int        `json:"pet_id"`
	CreatedAt     time.Time  `json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at"`
}

type createChatRequest struct {
	PetID int `json:"pet_id"`
}

// Message is a single chat message. The server assigns IDs; ordering is
// whatever the server returns.
type Message struct {
	ID        int        `json:"message_id"`
	ChatID    int        `json:"chat_id"`
	Type      string     `json:"message_type"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	IsEdited  bool       `json:"is_edited"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}
