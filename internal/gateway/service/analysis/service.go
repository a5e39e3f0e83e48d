package analysis

import (
	"fmt"
	"sync"
	"time"

	memcache "rafters/internal/cache/memory"
	"rafters/internal/impact"
	"rafters/internal/registry"
)

// Event notifies watch subscribers that the served snapshot changed.
type Event struct {
	Type    string `json:"type"`
	Version string `json:"version"`
	Tokens  int    `json:"tokens"`
	Edges   int    `json:"edges"`
}

const (
	impactCacheSize = 512
	impactCacheTTL  = 5 * time.Minute
)

// Service serves token analysis from the current snapshot. Reload swaps
// the snapshot atomically; readers always see a complete one, so no
// request-level locking is needed beyond the pointer swap.
type Service struct {
	mu   sync.RWMutex
	snap *registry.Snapshot

	impactCache *memcache.LRUTTL[string, impact.Report]

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

func New(snap *registry.Snapshot) *Service {
	return &Service{
		snap:        snap,
		impactCache: memcache.NewLRUTTL[string, impact.Report](impactCacheSize, impactCacheTTL),
		subs:        make(map[int]chan Event),
	}
}

// Snapshot returns the currently served snapshot.
func (s *Service) Snapshot() *registry.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Reload swaps in a new snapshot, drops cached reports and notifies
// subscribers.
func (s *Service) Reload(snap *registry.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.impactCache.Clear()
	s.publish(Event{
		Type:    "snapshot",
		Version: snap.Version(),
		Tokens:  len(snap.Tokens()),
		Edges:   len(snap.Edges()),
	})
}

// Impact predicts the cascade impact of a change, memoizing per
// snapshot version.
func (s *Service) Impact(name, newValue string) (impact.Report, error) {
	snap := s.Snapshot()
	key := fmt.Sprintf("%s|%s|%s", snap.Version(), name, newValue)
	if report, ok := s.impactCache.Get(key); ok {
		return report, nil
	}
	report, err := snap.PredictImpact(name, newValue)
	if err != nil {
		return impact.Report{}, err
	}
	s.impactCache.Set(key, report)
	return report, nil
}

// Subscribe registers a watch subscriber. The returned cancel func must
// be called when the subscriber goes away. Slow subscribers drop events
// rather than block Reload.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 8)
	s.subs[id] = ch
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Service) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
