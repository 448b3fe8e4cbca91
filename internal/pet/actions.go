package pet

import (
	"context"
	"errors"
	"log"

	"petmate/internal/api"
	"petmate/internal/cooldown"
)

// Dispatcher rejection reasons, surfaced to the caller as messages.
var (
	ErrAsleep     = errors.New("pet is asleep")
	ErrOnCooldown = errors.New("action is on cooldown")
)

// Dispatcher validates care actions against sleep and cooldown state, turns
// accepted ones into stat deltas and arms the per-kind cooldown.
type Dispatcher struct {
	store     *Store
	cooldowns *cooldown.Scheduler
}

// NewDispatcher wires a dispatcher to its store and scheduler.
func NewDispatcher(store *Store, cooldowns *cooldown.Scheduler) *Dispatcher {
	return &Dispatcher{store: store, cooldowns: cooldowns}
}

// Do runs one action. Rejections (no pet, asleep, on cooldown, unknown kind)
// return an error and touch nothing: no cooldown armed, no remote call. On
// acceptance the delta is forwarded fire-and-forget, the cooldown is armed
// and a randomly picked per-kind message is returned.
func (d *Dispatcher) Do(ctx context.Context, kind ActionKind) (string, error) {
	effect, ok := EffectFor(kind)
	if !ok {
		return "", errors.New("pet: unknown action " + string(kind))
	}

	agg, held := d.store.Snapshot()
	if !held {
		return "", ErrNoPet
	}
	if agg.Sleeping() {
		return "", ErrAsleep
	}
	if d.cooldowns.IsActive(string(kind)) {
		return "", ErrOnCooldown
	}

	if effect.Cooldown > 0 {
		d.cooldowns.Arm(string(kind), effect.Cooldown)
	}

	// Fire-and-forget: the aggregate only changes when the authoritative
	// response lands, so a failure here needs no rollback.
	if err := d.store.ApplyDelta(ctx, effect.delta()); err != nil {
		log.Printf("pet: %s update not applied: %v", kind, err)
	}

	return pickMessage(effect.Messages), nil
}

// Remaining returns whole seconds left on kind's cooldown.
func (d *Dispatcher) Remaining(kind ActionKind) int {
	return d.cooldowns.Remaining(string(kind))
}

// Progress returns 0..100 of kind's cooldown still ahead.
func (d *Dispatcher) Progress(kind ActionKind) int {
	effect, ok := EffectFor(kind)
	if !ok || effect.Cooldown <= 0 {
		return 0
	}
	return d.cooldowns.Progress(string(kind), effect.Cooldown)
}

// OnCooldown reports whether kind is currently armed.
func (d *Dispatcher) OnCooldown(kind ActionKind) bool {
	return d.cooldowns.IsActive(string(kind))
}

func pickMessage(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	idx := int(RandFloat64() * float64(len(messages)))
	if idx >= len(messages) {
		idx = len(messages) - 1
	}
	return messages[idx]
}

// delta converts the effect table entry into the wire shape, leaving
// untouched stats unset.
func (e Effect) delta() api.StatsDelta {
	var d api.StatsDelta
	if e.Hunger != 0 {
		v := e.Hunger
		d.Hunger = &v
	}
	if e.Energy != 0 {
		v := e.Energy
		d.Energy = &v
	}
	if e.Happiness != 0 {
		v := e.Happiness
		d.Happiness = &v
	}
	if e.Health != 0 {
		v := e.Health
		d.Health = &v
	}
	if e.Cleanliness != 0 {
		v := e.Cleanliness
		d.Cleanliness = &v
	}
	if e.XP != 0 {
		v := e.XP
		d.XP = &v
	}
	return d
}
