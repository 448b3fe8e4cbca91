package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmate/internal/api"
)

type fakeChatAPI struct {
	listChats    func(ctx context.Context) ([]api.ChatRoom, error)
	createChat   func(ctx context.Context, petID int) (*api.ChatRoom, error)
	listMessages func(ctx context.Context, chatID int) ([]api.Message, error)
	sendMessage  func(ctx context.Context, chatID int, content string) (*api.Message, error)
}

func (f *fakeChatAPI) ListChats(ctx context.Context) ([]api.ChatRoom, error) {
	if f.listChats == nil {
		return nil, errors.New("listChats not configured")
	}
	return f.listChats(ctx)
}

func (f *fakeChatAPI) CreateChat(ctx context.Context, petID int) (*api.ChatRoom, error) {
	if f.createChat == nil {
		return nil, errors.New("createChat not configured")
	}
	return f.createChat(ctx, petID)
}

func (f *fakeChatAPI) ListMessages(ctx context.Context, chatID int) ([]api.Message, error) {
	if f.listMessages == nil {
		return nil, errors.New("listMessages not configured")
	}
	return f.listMessages(ctx, chatID)
}

func (f *fakeChatAPI) SendMessage(ctx context.Context, chatID int, content string) (*api.Message, error) {
	if f.sendMessage == nil {
		return nil, errors.New("sendMessage not configured")
	}
	return f.sendMessage(ctx, chatID, content)
}

func wireMsg(id int, msgType, content string) api.Message {
	return api.Message{
		ID:        id,
		ChatID:    4,
		Type:      msgType,
		Content:   content,
		CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Second),
	}
}

func TestEnsureSessionReusesExisting(t *testing.T) {
	created := 0
	fake := &fakeChatAPI{
		listChats: func(context.Context) ([]api.ChatRoom, error) {
			return []api.ChatRoom{{ID: 9, PetID: 3}, {ID: 4, PetID: 7}}, nil
		},
		createChat: func(context.Context, int) (*api.ChatRoom, error) {
			created++
			return &api.ChatRoom{ID: 100, PetID: 7}, nil
		},
	}
	s := NewSync(fake)

	require.NoError(t, s.EnsureSession(context.Background(), 7))
	assert.Equal(t, 4, s.SessionID())
	assert.Zero(t, created, "existing session must be reused, not recreated")

	// Idempotent: a repeat resolves without touching the server.
	fake.listChats = func(context.Context) ([]api.ChatRoom, error) {
		t.Fatal("repeated EnsureSession must not hit the server")
		return nil, nil
	}
	require.NoError(t, s.EnsureSession(context.Background(), 7))
}

func TestEnsureSessionCreatesWhenMissing(t *testing.T) {
	var chats []api.ChatRoom
	fake := &fakeChatAPI{
		listChats: func(context.Context) ([]api.ChatRoom, error) { return chats, nil },
		createChat: func(_ context.Context, petID int) (*api.ChatRoom, error) {
			room := api.ChatRoom{ID: 42, PetID: petID}
			chats = append(chats, room)
			return &room, nil
		},
	}
	s := NewSync(fake)

	require.NoError(t, s.EnsureSession(context.Background(), 7))
	assert.Equal(t, 42, s.SessionID())
}

func TestEnsureSessionPrefersFirstMatchAfterRacedCreate(t *testing.T) {
	calls := 0
	fake := &fakeChatAPI{
		listChats: func(context.Context) ([]api.ChatRoom, error) {
			calls++
			if calls == 1 {
				return nil, nil // nothing yet
			}
			// Another client created session 30 for the same pet first.
			return []api.ChatRoom{{ID: 30, PetID: 7}, {ID: 42, PetID: 7}}, nil
		},
		createChat: func(context.Context, int) (*api.ChatRoom, error) {
			return &api.ChatRoom{ID: 42, PetID: 7}, nil
		},
	}
	s := NewSync(fake)

	require.NoError(t, s.EnsureSession(context.Background(), 7))
	assert.Equal(t, 30, s.SessionID(), "first match wins after a raced create")
}

func TestLoadHistoryReplacesWholesale(t *testing.T) {
	fake := &fakeChatAPI{
		listChats: func(context.Context) ([]api.ChatRoom, error) {
			return []api.ChatRoom{{ID: 4, PetID: 7}}, nil
		},
		listMessages: func(context.Context, int) ([]api.Message, error) {
			return []api.Message{
				wireMsg(101, api.MessageTypeHuman, "hi"),
				wireMsg(102, api.MessageTypeAI, "meow"),
			}, nil
		},
	}
	s := NewSync(fake)
	require.NoError(t, s.EnsureSession(context.Background(), 7))
	require.NoError(t, s.LoadHistory(context.Background()))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, SenderOwner, msgs[0].Sender)
	assert.Equal(t, SenderPet, msgs[1].Sender)
	assert.Equal(t, "meow", msgs[1].Text)
}

func TestLoadHistoryWithoutSession(t *testing.T) {
	s := NewSync(&fakeChatAPI{})
	assert.ErrorIs(t, s.LoadHistory(context.Background()), ErrNoSession)
}

func TestSendRejectsEmptyText(t *testing.T) {
	s := NewSync(&fakeChatAPI{})
	_, err := s.Send(context.Background(), "   \n\t")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendEchoesAckAndReconcileDeduplicates(t *testing.T) {
	serverList := []api.Message{}
	fake := &fakeChatAPI{
		listChats: func(context.Context) ([]api.ChatRoom, error) {
			return []api.ChatRoom{{ID: 4, PetID: 7}}, nil
		},
		sendMessage: func(_ context.Context, _ int, content string) (*api.Message, error) {
			msg := wireMsg(101, api.MessageTypeHuman, content)
			serverList = append(serverList, msg)
			return &msg, nil
		},
		listMessages: func(context.Context, int) ([]api.Message, error) {
			return serverList, nil
		},
	}
	s := NewSync(fake)
	require.NoError(t, s.EnsureSession(context.Background(), 7))

	sent, err := s.Send(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, 101, sent.ID)
	require.Len(t, s.Messages(), 1, "ack is echoed immediately")

	// The pet's reply appears server-side before the delayed re-fetch.
	serverList = append(serverList, wireMsg(102, api.MessageTypeAI, "Hello!"))
	require.NoError(t, s.Reconcile(context.Background()))

	msgs := s.Messages()
	require.Len(t, msgs, 2, "101 must not be duplicated")
	assert.Equal(t, 101, msgs[0].ID)
	assert.Equal(t, 102, msgs[1].ID)
}

func TestReconcileKeepsLocalEchoWhenServerLags(t *testing.T) {
	fake := &fakeChatAPI{
		listChats: func(context.Context) ([]api.ChatRoom, error) {
			return []api.ChatRoom{{ID: 4, PetID: 7}}, nil
		},
		sendMessage: func(_ context.Context, _ int, content string) (*api.Message, error) {
			msg := wireMsg(103, api.MessageTypeHuman, content)
			return &msg, nil
		},
		listMessages: func(context.Context, int) ([]api.Message, error) {
			// Stale cache on the server side: the new message is missing.
			return []api.Message{wireMsg(101, api.MessageTypeHuman, "hi")}, nil
		},
	}
	s := NewSync(fake)
	require.NoError(t, s.EnsureSession(context.Background(), 7))
	require.NoError(t, s.LoadHistory(context.Background()))

	_, err := s.Send(context.Background(), "are you there?")
	require.NoError(t, err)
	require.NoError(t, s.Reconcile(context.Background()))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, 101, msgs[0].ID)
	assert.Equal(t, 103, msgs[1].ID, "the optimistic echo survives a lagging poll")
}

func TestFailedReconcileIsRetriedOnNextSend(t *testing.T) {
	listCalls := 0
	listErr := errors.New("network down")
	serverList := []api.Message{wireMsg(101, api.MessageTypeHuman, "hi")}
	fake := &fakeChatAPI{
		listChats: func(context.Context) ([]api.ChatRoom, error) {
			return []api.ChatRoom{{ID: 4, PetID: 7}}, nil
		},
		listMessages: func(context.Context, int) ([]api.Message, error) {
			listCalls++
			if listErr != nil {
				return nil, listErr
			}
			return serverList, nil
		},
		sendMessage: func(_ context.Context, _ int, content string) (*api.Message, error) {
			msg := wireMsg(110, api.MessageTypeHuman, content)
			serverList = append(serverList, msg)
			return &msg, nil
		},
	}
	s := NewSync(fake)
	require.NoError(t, s.EnsureSession(context.Background(), 7))

	require.Error(t, s.Reconcile(context.Background()))
	before := listCalls

	// The failure is not fatal; the next send retries the fetch first.
	listErr = nil
	_, err := s.Send(context.Background(), "still there?")
	require.NoError(t, err)
	assert.Greater(t, listCalls, before, "pending reconcile must be retried")

	ids := []int{}
	for _, m := range s.Messages() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int{101, 110}, ids)
}

func TestClearDropsSessionState(t *testing.T) {
	fake := &fakeChatAPI{
		listChats: func(context.Context) ([]api.ChatRoom, error) {
			return []api.ChatRoom{{ID: 4, PetID: 7}}, nil
		},
		listMessages: func(context.Context, int) ([]api.Message, error) {
			return []api.Message{wireMsg(101, api.MessageTypeHuman, "hi")}, nil
		},
	}
	s := NewSync(fake)
	require.NoError(t, s.EnsureSession(context.Background(), 7))
	require.NoError(t, s.LoadHistory(context.Background()))

	s.Clear()
	assert.Zero(t, s.SessionID())
	assert.Empty(t, s.Messages())
}
