package pet

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmate/internal/api"
	"petmate/internal/cooldown"
)

func newDispatcher(t *testing.T, fake *fakeAPI) (*Dispatcher, *Store, *cooldown.Scheduler) {
	t.Helper()
	store := NewStore(fake, "")
	sched := cooldown.Load(filepath.Join(t.TempDir(), "cooldowns.json"))
	return NewDispatcher(store, sched), store, sched
}

func TestDoRejectsWithoutPet(t *testing.T) {
	d, _, sched := newDispatcher(t, &fakeAPI{})

	_, err := d.Do(context.Background(), ActionFeed)
	assert.ErrorIs(t, err, ErrNoPet)
	assert.False(t, sched.IsActive(string(ActionFeed)))
}

func TestDoRejectsWhileAsleep(t *testing.T) {
	rec := testRecord()
	rec.State = api.StateSleep
	patched := 0
	fake := &fakeAPI{
		myPets: func(context.Context) ([]api.Pet, error) { return []api.Pet{rec}, nil },
		patch: func(context.Context, int, api.StatsDelta) (*api.Pet, error) {
			patched++
			return &rec, nil
		},
	}
	d, store, sched := newDispatcher(t, fake)
	require.NoError(t, store.Load(context.Background(), 0))

	for _, kind := range AllActions {
		_, err := d.Do(context.Background(), kind)
		assert.ErrorIs(t, err, ErrAsleep, "action %s", kind)
		assert.False(t, sched.IsActive(string(kind)), "no cooldown armed for %s", kind)
	}
	assert.Zero(t, patched, "sleeping pet must never trigger a remote update")
}

func TestDoRejectsOnCooldown(t *testing.T) {
	rec := testRecord()
	patched := 0
	fake := &fakeAPI{
		myPets: func(context.Context) ([]api.Pet, error) { return []api.Pet{rec}, nil },
		patch: func(context.Context, int, api.StatsDelta) (*api.Pet, error) {
			patched++
			return &rec, nil
		},
	}
	d, store, _ := newDispatcher(t, fake)
	require.NoError(t, store.Load(context.Background(), 0))

	_, err := d.Do(context.Background(), ActionFeed)
	require.NoError(t, err)
	require.Equal(t, 1, patched)

	_, err = d.Do(context.Background(), ActionFeed)
	assert.ErrorIs(t, err, ErrOnCooldown)
	assert.Equal(t, 1, patched, "rejected action must not reach the server")

	// Other kinds are independent.
	_, err = d.Do(context.Background(), ActionClean)
	assert.NoError(t, err)
}

func TestDoSendsEffectTableDelta(t *testing.T) {
	origNow := cooldown.TimeNow
	fixed := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	cooldown.TimeNow = func() time.Time { return fixed }
	defer func() { cooldown.TimeNow = origNow }()

	rec := testRecord()
	var got api.StatsDelta
	fake := &fakeAPI{
		myPets: func(context.Context) ([]api.Pet, error) { return []api.Pet{rec}, nil },
		patch: func(_ context.Context, _ int, delta api.StatsDelta) (*api.Pet, error) {
			got = delta
			return &rec, nil
		},
	}
	d, store, sched := newDispatcher(t, fake)
	require.NoError(t, store.Load(context.Background(), 0))

	msg, err := d.Do(context.Background(), ActionFeed)
	require.NoError(t, err)

	effect, _ := EffectFor(ActionFeed)
	assert.Contains(t, effect.Messages, msg, "message comes from the per-kind phrase list")

	require.NotNil(t, got.Hunger)
	assert.InDelta(t, effect.Hunger, *got.Hunger, 0.001)
	require.NotNil(t, got.XP)
	assert.Equal(t, effect.XP, *got.XP)
	assert.Nil(t, got.Energy, "stats the effect does not touch stay unset")
	assert.Nil(t, got.Health)

	assert.True(t, sched.IsActive(string(ActionFeed)))
	assert.Equal(t, 100, d.Progress(ActionFeed))
	assert.Equal(t, int(effect.Cooldown/time.Second), d.Remaining(ActionFeed))
}

func TestDoRemoteFailureStillArmsAndAnswers(t *testing.T) {
	rec := testRecord()
	fake := &fakeAPI{
		myPets: func(context.Context) ([]api.Pet, error) { return []api.Pet{rec}, nil },
		// patch left unconfigured: the update fails
	}
	d, store, sched := newDispatcher(t, fake)
	require.NoError(t, store.Load(context.Background(), 0))

	msg, err := d.Do(context.Background(), ActionPlay)
	require.NoError(t, err, "the update is fire-and-forget")
	assert.NotEmpty(t, msg)
	assert.True(t, sched.IsActive(string(ActionPlay)))

	agg, _ := store.Snapshot()
	assert.Equal(t, 70, agg.Happiness, "failed update leaves the aggregate unchanged")
}

func TestDoZeroCooldownArmsNothing(t *testing.T) {
	orig := actionEffects[ActionFeed]
	zeroed := orig
	zeroed.Cooldown = 0
	actionEffects[ActionFeed] = zeroed
	defer func() { actionEffects[ActionFeed] = orig }()

	rec := testRecord()
	fake := &fakeAPI{
		myPets: func(context.Context) ([]api.Pet, error) { return []api.Pet{rec}, nil },
		patch:  func(context.Context, int, api.StatsDelta) (*api.Pet, error) { return &rec, nil },
	}
	d, store, sched := newDispatcher(t, fake)
	require.NoError(t, store.Load(context.Background(), 0))

	_, err := d.Do(context.Background(), ActionFeed)
	require.NoError(t, err)
	assert.False(t, sched.IsActive(string(ActionFeed)))
	assert.Equal(t, 0, d.Progress(ActionFeed))
}

func TestPickMessageUniform(t *testing.T) {
	origRand := RandFloat64
	defer func() { RandFloat64 = origRand }()

	msgs := []string{"a", "b", "c"}

	RandFloat64 = func() float64 { return 0.0 }
	assert.Equal(t, "a", pickMessage(msgs))

	RandFloat64 = func() float64 { return 0.5 }
	assert.Equal(t, "b", pickMessage(msgs))

	RandFloat64 = func() float64 { return 0.999 }
	assert.Equal(t, "c", pickMessage(msgs))

	assert.Empty(t, pickMessage(nil))
}
