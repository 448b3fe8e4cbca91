package pet

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"petmate/internal/api"
)

// ErrNoPet is returned by commands that need a loaded aggregate.
var ErrNoPet = errors.New("no pet loaded")

// RecordAPI is the slice of the remote API the store depends on.
type RecordAPI interface {
	MyPets(ctx context.Context) ([]api.Pet, error)
	GetPet(ctx context.Context, petID int) (*api.Pet, error)
	CreatePet(ctx context.Context, req api.CreatePetRequest) (*api.Pet, error)
	PatchStats(ctx context.Context, petID int, delta api.StatsDelta) (*api.Pet, error)
	RenamePet(ctx context.Context, petID int, name string) (*api.Pet, error)
	DeletePet(ctx context.Context, petID int) error
}

// Store owns the current aggregate. Commands run their remote call outside
// the lock and apply the result through a sequence check, so an older
// in-flight response can never overwrite one produced by a newer request
// that already resolved.
type Store struct {
	client    RecordAPI
	cachePath string

	mu      sync.Mutex
	agg     *Aggregate
	issued  uint64 // tickets handed to started operations
	applied uint64 // ticket of the last result that was applied
	subs    []chan struct{}
}

// NewStore builds a store, pre-filling the aggregate from the local cache
// when one exists. The cached copy is display-only: the first remote result
// replaces it unconditionally.
func NewStore(client RecordAPI, cachePath string) *Store {
	s := &Store{client: client, cachePath: cachePath}
	s.agg = loadCachedAggregate(cachePath)
	return s
}

// Snapshot returns a copy of the current aggregate and whether one is held.
func (s *Store) Snapshot() (Aggregate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.agg == nil {
		return Aggregate{}, false
	}
	return *s.agg, true
}

// Subscribe returns a channel that receives a (coalesced) signal after every
// applied change. Observers re-read via Snapshot.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// begin hands out a ticket for a starting operation.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// commit applies fn unless a newer operation already resolved. It returns
// whether the result was applied.
func (s *Store) commit(ticket uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket < s.applied {
		log.Printf("pet: discarding stale response (ticket %d < applied %d)", ticket, s.applied)
		return false
	}
	s.applied = ticket
	fn()
	s.saveCacheLocked()
	s.notifyLocked()
	return true
}

// Load fetches the pet with petID, or the caller's first owned pet when
// petID is 0. Absence clears the aggregate; a transport failure leaves the
// last known-good aggregate in place and is reported to the caller, who may
// ignore it on a background refresh.
func (s *Store) Load(ctx context.Context, petID int) error {
	ticket := s.begin()

	var rec *api.Pet
	if petID == 0 {
		pets, err := s.client.MyPets(ctx)
		if err != nil {
			log.Printf("pet: refresh failed, keeping current aggregate: %v", err)
			return err
		}
		if len(pets) > 0 {
			rec = &pets[0]
		}
	} else {
		got, err := s.client.GetPet(ctx, petID)
		if err != nil && !api.IsNotFound(err) {
			log.Printf("pet: refresh failed, keeping current aggregate: %v", err)
			return err
		}
		rec = got
	}

	if rec == nil {
		s.commit(ticket, func() { s.agg = nil })
		return nil
	}

	s.commit(ticket, func() { s.agg = fromRecord(rec, s.agg) })
	return nil
}

// Create submits a new-pet descriptor and adopts the returned record. The
// cosmetic feature is drawn uniformly from the server's fixed set.
func (s *Store) Create(ctx context.Context, name, species, character, color string) error {
	ticket := s.begin()

	feature := api.Features[int(RandFloat64()*float64(len(api.Features)))%len(api.Features)]
	rec, err := s.client.CreatePet(ctx, api.CreatePetRequest{
		Name:      strings.TrimSpace(name),
		Species:   species,
		Character: character,
		Color:     color,
		Feature:   feature,
	})
	if err != nil {
		return err
	}

	s.commit(ticket, func() { s.agg = fromRecord(rec, nil) })
	log.Printf("pet: created %q (id %d, feature %s)", rec.Name, rec.ID, feature)
	return nil
}

// ApplyDelta sends a partial stat/XP delta and, on success, replaces the
// aggregate with the authoritative record the server returned. Nothing is
// applied locally beforehand, so a failure needs no rollback.
func (s *Store) ApplyDelta(ctx context.Context, delta api.StatsDelta) error {
	s.mu.Lock()
	if s.agg == nil {
		s.mu.Unlock()
		return ErrNoPet
	}
	petID := s.agg.ID
	s.mu.Unlock()

	ticket := s.begin()
	rec, err := s.client.PatchStats(ctx, petID, delta)
	if err != nil {
		log.Printf("pet: stat update failed, aggregate unchanged: %v", err)
		return err
	}

	s.commit(ticket, func() {
		s.agg = fromRecord(rec, s.agg)
		s.agg.LastInteracted = TimeNow()
	})
	return nil
}

// Rename submits a name change. On success only the name field is touched,
// then a full reload reconciles any other server-side effects.
func (s *Store) Rename(ctx context.Context, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.New("pet: name must not be empty")
	}

	s.mu.Lock()
	if s.agg == nil {
		s.mu.Unlock()
		return ErrNoPet
	}
	petID := s.agg.ID
	s.mu.Unlock()

	ticket := s.begin()
	rec, err := s.client.RenamePet(ctx, petID, newName)
	if err != nil {
		return err
	}

	s.commit(ticket, func() {
		if s.agg != nil {
			s.agg.Name = rec.Name
		}
	})
	return s.Load(ctx, petID)
}

// Remove deletes the pet remotely and clears the aggregate and its cache.
func (s *Store) Remove(ctx context.Context) error {
	s.mu.Lock()
	if s.agg == nil {
		s.mu.Unlock()
		return ErrNoPet
	}
	petID := s.agg.ID
	s.mu.Unlock()

	ticket := s.begin()
	if err := s.client.DeletePet(ctx, petID); err != nil {
		return err
	}

	s.commit(ticket, func() { s.agg = nil })
	log.Printf("pet: removed pet %d", petID)
	return nil
}

// RotatePhrase advances the presentation-only phrase rotation.
func (s *Store) RotatePhrase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.agg == nil {
		return
	}
	s.agg.AdvancePhrase()
	s.notifyLocked()
}

// Cache persistence: one JSON file holding the last known aggregate, read
// once at startup so the first paint is not blank. Best-effort both ways.

func loadCachedAggregate(path string) *Aggregate {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var agg Aggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		log.Printf("pet: parsing cached aggregate: %v", err)
		return nil
	}
	if agg.ID == 0 {
		return nil
	}
	agg.Phrases = SpeciesPhrases(agg.Species)
	return &agg
}

func (s *Store) saveCacheLocked() {
	if s.cachePath == "" {
		return
	}
	if s.agg == nil {
		if err := os.Remove(s.cachePath); err != nil && !os.IsNotExist(err) {
			log.Printf("pet: removing cached aggregate: %v", err)
		}
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0o755); err != nil {
		log.Printf("pet: creating cache dir: %v", err)
		return
	}
	data, err := json.MarshalIndent(s.agg, "", "  ")
	if err != nil {
		log.Printf("pet: encoding cached aggregate: %v", err)
		return
	}
	if err := os.WriteFile(s.cachePath, data, 0o644); err != nil {
		log.Printf("pet: writing cached aggregate: %v", err)
	}
}
