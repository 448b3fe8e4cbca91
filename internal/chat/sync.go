// Package chat keeps the message list for the pet's chat session in step
// with the server. Outgoing messages are echoed optimistically from the
// server's acknowledgment; the pet's reply arrives through a delayed
// re-fetch that deduplicates on message identity, so interleaving with later
// sends is harmless.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"petmate/internal/api"
)

// ReplyDelay is how long after a send the caller should re-fetch history,
// leaving the server time to generate the pet's reply.
const ReplyDelay = 4 * time.Second

// ErrEmptyMessage rejects whitespace-only sends before any remote call.
var ErrEmptyMessage = errors.New("chat: message is empty")

// ErrNoSession is returned when history or sends are requested before a
// session was resolved.
var ErrNoSession = errors.New("chat: no session resolved")

// Sender tags who wrote a message.
type Sender string

const (
	SenderOwner Sender = "owner"
	SenderPet   Sender = "pet"
)

// Message is one chat message as the presentation layer sees it.
type Message struct {
	ID        int
	Sender    Sender
	Text      string
	CreatedAt time.Time
	Edited    bool
}

// ChatAPI is the slice of the remote API the synchronizer depends on.
type ChatAPI interface {
	ListChats(ctx context.Context) ([]api.ChatRoom, error)
	CreateChat(ctx context.Context, petID int) (*api.ChatRoom, error)
	ListMessages(ctx context.Context, chatID int) ([]api.Message, error)
	SendMessage(ctx context.Context, chatID int, content string) (*api.Message, error)
}

// Sync owns the in-memory message sequence for the active session.
type Sync struct {
	client ChatAPI

	mu             sync.Mutex
	sessionID      int
	petID          int
	messages       []Message
	pendingRefetch bool
	subs           []chan struct{}
}

// NewSync builds an unresolved synchronizer.
func NewSync(client ChatAPI) *Sync {
	return &Sync{client: client}
}

// SessionID returns the resolved session, or 0.
func (s *Sync) SessionID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Messages returns a copy of the current message list.
func (s *Sync) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Subscribe returns a channel signalled (coalesced) after every list change.
func (s *Sync) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Sync) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// EnsureSession resolves the chat session for petID, creating one only when
// the lookup finds none. After a create it re-queries and reuses the first
// match, so a double-create on the server side still converges on one
// session. Repeated calls for the same pet are no-ops.
func (s *Sync) EnsureSession(ctx context.Context, petID int) error {
	s.mu.Lock()
	if s.sessionID != 0 && s.petID == petID {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if found, err := s.lookupSession(ctx, petID); err != nil {
		return err
	} else if found != 0 {
		s.adoptSession(petID, found)
		return nil
	}

	created, err := s.client.CreateChat(ctx, petID)
	if err != nil {
		return err
	}

	// Re-query and prefer the first match in case the create raced another
	// client for the same pet.
	sessionID := created.ID
	if found, err := s.lookupSession(ctx, petID); err == nil && found != 0 {
		sessionID = found
	}
	s.adoptSession(petID, sessionID)
	log.Printf("chat: session %d ready for pet %d", sessionID, petID)
	return nil
}

func (s *Sync) lookupSession(ctx context.Context, petID int) (int, error) {
	chats, err := s.client.ListChats(ctx)
	if err != nil {
		return 0, err
	}
	for _, chat := range chats {
		if chat.PetID == petID {
			return chat.ID, nil
		}
	}
	return 0, nil
}

func (s *Sync) adoptSession(petID, sessionID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID == sessionID && s.petID == petID {
		return
	}
	s.sessionID = sessionID
	s.petID = petID
	s.messages = nil
	s.pendingRefetch = false
	s.notifyLocked()
}

// LoadHistory replaces the local list wholesale with the server's.
func (s *Sync) LoadHistory(ctx context.Context) error {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == 0 {
		return ErrNoSession
	}

	wire, err := s.client.ListMessages(ctx, sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = fromWire(wire)
	s.pendingRefetch = false
	s.notifyLocked()
	return nil
}

// Send submits text and appends the acknowledged message locally. The
// caller is expected to invoke Reconcile after ReplyDelay; if an earlier
// reconcile failed it is retried here first.
func (s *Sync) Send(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	sessionID := s.sessionID
	retry := s.pendingRefetch
	s.mu.Unlock()
	if sessionID == 0 {
		return Message{}, ErrNoSession
	}

	if retry {
		if err := s.Reconcile(ctx); err != nil {
			log.Printf("chat: deferred reconcile still failing: %v", err)
		}
	}

	ack, err := s.client.SendMessage(ctx, sessionID, text)
	if err != nil {
		return Message{}, err
	}

	msg := messageFromWire(*ack)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasMessageLocked(msg.ID) {
		s.messages = append(s.messages, msg)
		s.notifyLocked()
	}
	return msg, nil
}

// hasMessageLocked reports whether a message with id is already held.
// Callers must hold s.mu.
func (s *Sync) hasMessageLocked(id int) bool {
	for _, m := range s.messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Reconcile fetches the server's list and merges in messages not yet held,
// preserving the server's order. A failure is remembered and retried on the
// next Send or LoadHistory; it is never fatal.
func (s *Sync) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()
	if sessionID == 0 {
		return ErrNoSession
	}

	wire, err := s.client.ListMessages(ctx, sessionID)
	if err != nil {
		s.mu.Lock()
		s.pendingRefetch = true
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := fromWire(wire)
	onServer := make(map[int]bool, len(merged))
	for _, m := range merged {
		onServer[m.ID] = true
	}

	// Keep local messages the server list does not carry yet (an echo the
	// poll raced), appended after the server's order.
	for _, m := range s.messages {
		if !onServer[m.ID] {
			merged = append(merged, m)
		}
	}

	changed := len(merged) != len(s.messages)
	if !changed {
		for i := range merged {
			if merged[i].ID != s.messages[i].ID {
				changed = true
				break
			}
		}
	}

	s.messages = merged
	s.pendingRefetch = false
	if changed {
		s.notifyLocked()
	}
	return nil
}

// Clear drops the session and message list, e.g. after the pet is removed.
func (s *Sync) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = 0
	s.petID = 0
	s.messages = nil
	s.pendingRefetch = false
	s.notifyLocked()
}

func fromWire(wire []api.Message) []Message {
	out := make([]Message, 0, len(wire))
	for _, m := range wire {
		out = append(out, messageFromWire(m))
	}
	return out
}

func messageFromWire(m api.Message) Message {
	sender := SenderPet
	if m.Type == api.MessageTypeHuman {
		sender = SenderOwner
	}
	return Message{
		ID:        m.ID,
		Sender:    sender,
		Text:      m.Content,
		CreatedAt: m.CreatedAt,
		Edited:    m.IsEdited,
	}
}
