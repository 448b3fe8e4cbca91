// Package cooldown tracks the next-eligible instant per action kind and
// persists the map across restarts. Expiries are stored as absolute instants
// (milliseconds since epoch) so the purge-on-load check stays a plain
// wall-clock comparison no matter how long the process was down.
package cooldown

import (
	"encoding/json"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimeNow is swapped out in tests for deterministic clocks.
var TimeNow = func() time.Time { return time.Now().UTC() }

// Scheduler owns the cooldown map and is the only writer to its persisted
// form. Persistence is best-effort: a failed read or write degrades to an
// in-memory map, never to an error for the caller. Queries run on the render
// path while commands arrive from background goroutines, so the map is
// guarded by a mutex.
type Scheduler struct {
	path string

	mu      sync.Mutex
	expires map[string]int64 // action kind -> expiry, ms since epoch
}

// Load reads the persisted map from path, dropping every entry whose expiry
// already passed while the process was down. An unreadable or malformed file
// yields an empty scheduler.
func Load(path string) *Scheduler {
	s := &Scheduler{path: path, expires: make(map[string]int64)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cooldown: reading %s: %v (starting empty)", path, err)
		}
		return s
	}

	var stored map[string]int64
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("cooldown: parsing %s: %v (starting empty)", path, err)
		return s
	}

	now := TimeNow().UnixMilli()
	for kind, expiry := range stored {
		if expiry > now {
			s.expires[kind] = expiry
		}
	}
	return s
}

// Arm starts a cooldown for kind ending at now + duration and persists the
// full map.
func (s *Scheduler) Arm(kind string, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[kind] = TimeNow().Add(duration).UnixMilli()
	s.saveLocked()
}

// IsActive reports whether kind has a cooldown whose expiry is still ahead.
func (s *Scheduler) IsActive(kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isActiveLocked(kind)
}

func (s *Scheduler) isActiveLocked(kind string) bool {
	expiry, ok := s.expires[kind]
	if !ok {
		return false
	}
	if expiry <= TimeNow().UnixMilli() {
		delete(s.expires, kind)
		return false
	}
	return true
}

// Remaining returns whole seconds until kind's expiry, rounded up, or 0 when
// no cooldown is active.
func (s *Scheduler) Remaining(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActiveLocked(kind) {
		return 0
	}
	leftMs := s.expires[kind] - TimeNow().UnixMilli()
	return int(math.Ceil(float64(leftMs) / 1000.0))
}

// Progress returns how much of the original duration is still ahead as a
// 0..100 value: 100 right after Arm, 0 once expired or inactive.
func (s *Scheduler) Progress(kind string, duration time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if duration <= 0 || !s.isActiveLocked(kind) {
		return 0
	}
	leftMs := s.expires[kind] - TimeNow().UnixMilli()
	pct := int(float64(leftMs) / float64(duration.Milliseconds()) * 100.0)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Reset clears the cooldown for kind, if any, and persists the map.
func (s *Scheduler) Reset(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expires[kind]; !ok {
		return
	}
	delete(s.expires, kind)
	s.saveLocked()
}

func (s *Scheduler) saveLocked() {
	if s.path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Printf("cooldown: creating dir for %s: %v", s.path, err)
		return
	}
	data, err := json.MarshalIndent(s.expires, "", "  ")
	if err != nil {
		log.Printf("cooldown: encoding state: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("cooldown: writing %s: %v", s.path, err)
	}
}
