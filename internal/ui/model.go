package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"petmate/internal/chat"
	"petmate/internal/config"
	"petmate/internal/pet"
)

// Model drives the engine: it owns every interval timer and one-shot delay,
// and routes key presses into store/dispatcher/chat commands. All remote
// work runs inside tea.Cmd closures; results come back as messages.
type Model struct {
	cfg        config.Config
	store      *pet.Store
	dispatcher *pet.Dispatcher
	chat       *chat.Sync

	choice         int
	chatMode       bool
	renameMode     bool
	input          string
	message        string
	messageExpires time.Time
	quitting       bool
}

// Timer messages
type refreshTickMsg time.Time
type countdownTickMsg time.Time
type phraseTickMsg time.Time
type replyTickMsg struct{}

// Command results
type petLoadedMsg struct{ err error }
type petCreatedMsg struct{ err error }
type petRenamedMsg struct{ err error }
type petRemovedMsg struct{ err error }
type actionDoneMsg struct {
	kind    pet.ActionKind
	message string
	err     error
}
type sessionReadyMsg struct{ err error }
type historyLoadedMsg struct{ err error }
type messageSentMsg struct{ err error }
type reconciledMsg struct{ err error }

// NewModel wires the presentation layer to the engine.
func NewModel(cfg config.Config, store *pet.Store, dispatcher *pet.Dispatcher, chatSync *chat.Sync) Model {
	return Model{
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		chat:       chatSync,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadPetCmd(),
		refreshTick(m.cfg.RefreshInterval),
		countdownTick(m.cfg.TickInterval),
		phraseTick(m.cfg.PhraseInterval),
	)
}

func refreshTick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg { return refreshTickMsg(t) })
}

func countdownTick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg { return countdownTickMsg(t) })
}

func phraseTick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg { return phraseTickMsg(t) })
}

func replyTick() tea.Cmd {
	return tea.Tick(chat.ReplyDelay, func(time.Time) tea.Msg { return replyTickMsg{} })
}

func (m Model) loadPetCmd() tea.Cmd {
	return func() tea.Msg {
		return petLoadedMsg{err: m.store.Load(context.Background(), 0)}
	}
}

func (m Model) createPetCmd(name string) tea.Cmd {
	return func() tea.Msg {
		err := m.store.Create(context.Background(), name, "cat", "playful", "#FF75B5")
		return petCreatedMsg{err: err}
	}
}

func (m Model) renamePetCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return petRenamedMsg{err: m.store.Rename(context.Background(), name)}
	}
}

func (m Model) removePetCmd() tea.Cmd {
	return func() tea.Msg {
		return petRemovedMsg{err: m.store.Remove(context.Background())}
	}
}

func (m Model) actionCmd(kind pet.ActionKind) tea.Cmd {
	return func() tea.Msg {
		message, err := m.dispatcher.Do(context.Background(), kind)
		return actionDoneMsg{kind: kind, message: message, err: err}
	}
}

func (m Model) ensureSessionCmd(petID int) tea.Cmd {
	return func() tea.Msg {
		return sessionReadyMsg{err: m.chat.EnsureSession(context.Background(), petID)}
	}
}

func (m Model) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{err: m.chat.LoadHistory(context.Background())}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.chat.Send(context.Background(), text)
		return messageSentMsg{err: err}
	}
}

func (m Model) reconcileCmd() tea.Cmd {
	return func() tea.Msg {
		return reconciledMsg{err: m.chat.Reconcile(context.Background())}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshTickMsg:
		// Background poll for server-side passive decay.
		return m, tea.Batch(m.loadPetCmd(), refreshTick(m.cfg.RefreshInterval))

	case countdownTickMsg:
		// Redraw only: the scheduler answers remaining time on read.
		return m, countdownTick(m.cfg.TickInterval)

	case phraseTickMsg:
		m.store.RotatePhrase()
		return m, phraseTick(m.cfg.PhraseInterval)

	case replyTickMsg:
		return m, m.reconcileCmd()

	case petLoadedMsg:
		if msg.err != nil {
			// Transport failures keep the last known-good aggregate; the
			// next poll retries.
			return m, nil
		}
		if agg, held := m.store.Snapshot(); held {
			return m, m.ensureSessionCmd(agg.ID)
		}
		return m, nil

	case petCreatedMsg:
		if msg.err != nil {
			m.setMessage("😞 Could not adopt: " + msg.err.Error())
			return m, nil
		}
		m.input = ""
		if agg, held := m.store.Snapshot(); held {
			m.setMessage("🎉 Welcome home, " + agg.Name + "!")
			return m, m.ensureSessionCmd(agg.ID)
		}
		return m, nil

	case petRenamedMsg:
		if msg.err != nil {
			m.setMessage("😞 Could not rename: " + msg.err.Error())
			return m, nil
		}
		if agg, held := m.store.Snapshot(); held {
			m.setMessage("✏️  Now answering to " + agg.Name + ".")
		}
		return m, nil

	case petRemovedMsg:
		if msg.err != nil {
			m.setMessage("😞 Could not say goodbye: " + msg.err.Error())
			return m, nil
		}
		m.chat.Clear()
		m.chatMode = false
		m.setMessage("👋 Farewell...")
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case sessionReadyMsg:
		if msg.err != nil {
			return m, nil // retried on the next successful load
		}
		return m, m.loadHistoryCmd()

	case historyLoadedMsg:
		return m, nil

	case messageSentMsg:
		if msg.err != nil {
			if errors.Is(msg.err, chat.ErrEmptyMessage) {
				return m, nil
			}
			m.setMessage("📵 Message not sent: " + msg.err.Error())
			return m, nil
		}
		// Leave the server time to generate the pet's reply, then merge.
		return m, replyTick()

	case reconciledMsg:
		// Failures are remembered by the synchronizer and retried later.
		return m, nil
	}

	return m, nil
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err == nil:
		if msg.message != "" {
			m.setMessage(msg.message)
		}
	case errors.Is(msg.err, pet.ErrAsleep):
		m.setMessage("💤 Shh... the pet is asleep.")
	case errors.Is(msg.err, pet.ErrOnCooldown):
		m.setMessage("⏳ Not yet! Try again in a bit.")
	case errors.Is(msg.err, pet.ErrNoPet):
		m.setMessage("🐾 Adopt a pet first.")
	default:
		m.setMessage("😞 " + msg.err.Error())
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	_, held := m.store.Snapshot()

	// Adopt prompt: type a name, enter to create.
	if !held {
		switch msg.Type {
		case tea.KeyEnter:
			name := strings.TrimSpace(m.input)
			if name == "" {
				return m, nil
			}
			return m, m.createPetCmd(name)
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
			return m, nil
		case tea.KeyRunes, tea.KeySpace:
			if msg.String() == "q" && m.input == "" {
				m.quitting = true
				return m, tea.Quit
			}
			m.input += msg.String()
			return m, nil
		}
		return m, nil
	}

	if m.chatMode {
		return m.handleChatKey(msg)
	}
	if m.renameMode {
		return m.handleRenameKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "t":
		m.chatMode = true
		return m, nil
	case "n":
		m.renameMode = true
		m.input = ""
		return m, nil
	case "D":
		// Capitalized on purpose; goodbyes should not happen by accident.
		return m, m.removePetCmd()
	case "up", "k":
		if m.choice > 0 {
			m.choice--
		}
	case "down", "j":
		if m.choice < len(pet.AllActions)-1 {
			m.choice++
		}
	case "enter", " ":
		return m, m.actionCmd(pet.AllActions[m.choice])
	case "f":
		return m, m.actionCmd(pet.ActionFeed)
	case "p":
		return m, m.actionCmd(pet.ActionPlay)
	case "h":
		return m, m.actionCmd(pet.ActionHeal)
	case "c":
		return m, m.actionCmd(pet.ActionClean)
	case "r":
		return m, m.loadPetCmd()
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.renameMode = false
		m.input = ""
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input)
		m.renameMode = false
		m.input = ""
		if name == "" {
			return m, nil
		}
		return m, m.renamePetCmd(name)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeyRunes, tea.KeySpace:
		m.input += msg.String()
		return m, nil
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.chatMode = false
		m.input = ""
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input)
		m.input = ""
		if text == "" {
			return m, nil
		}
		return m, m.sendCmd(text)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeyRunes, tea.KeySpace:
		m.input += msg.String()
		return m, nil
	}
	return m, nil
}

func (m *Model) setMessage(msg string) {
	m.message = msg
	m.messageExpires = pet.TimeNow().Add(5 * time.Second)
}

func (m Model) currentMessage() string {
	if m.message == "" || pet.TimeNow().After(m.messageExpires) {
		return ""
	}
	return m.message
}
