package cart

import (
	"context"
	"math"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/blobstore"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
)

// TopicChanged is published with the new cart version after every mutation.
const TopicChanged = "cart:changed"

// State owns the line-item quantities. It references catalog entries by id
// only and never checks that they exist.
type State struct {
	mu         sync.RWMutex
	quantities domain.Quantities
	version    uint64

	blob blobstore.Store
	key  string
	bus  EventBus.Bus
}

func NewState(blob blobstore.Store, key string, bus EventBus.Bus) *State {
	return &State{blob: blob, key: key, bus: bus, quantities: domain.Quantities{}}
}

// Load restores the persisted cart. Absence means an empty cart; a failed
// or corrupt read also starts empty and is reported as a PersistenceError.
func (s *State) Load(ctx context.Context) error {
	q := domain.Quantities{}
	var loadErr error
	data, err := s.blob.Get(ctx, s.key)
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
	case err != nil:
		loadErr = &domain.PersistenceError{Op: "get", Key: s.key, Err: err}
	default:
		restored, err := DecodeSnapshot(data)
		if err != nil {
			loadErr = &domain.PersistenceError{Op: "get", Key: s.key, Err: err}
		} else {
			q = restored
		}
	}

	s.mu.Lock()
	s.quantities = q
	s.version++
	s.mu.Unlock()
	return loadErr
}

// Adjust sets the quantity of id to max(0, current+delta) and returns it.
// The sum saturates at math.MaxInt. Entries reaching zero are removed.
func (s *State) Adjust(ctx context.Context, id domain.LineID, delta int) (int, error) {
	s.mu.Lock()
	current := s.quantities.Get(id)
	next := current + delta
	switch {
	case delta > 0 && current > math.MaxInt-delta:
		next = math.MaxInt
	case next < 0:
		next = 0
	}
	if next == current {
		s.mu.Unlock()
		return next, nil
	}
	q := s.quantities.Clone()
	if next == 0 {
		delete(q, id)
	} else {
		q[id] = next
	}
	version := s.swap(q)
	s.mu.Unlock()

	return next, s.afterMutation(ctx, version)
}

// Purge removes the given ids. Unknown ids are ignored.
func (s *State) Purge(ctx context.Context, ids []domain.LineID) error {
	s.mu.Lock()
	q := s.quantities.Clone()
	changed := false
	for _, id := range ids {
		if _, ok := q[id]; ok {
			delete(q, id)
			changed = true
		}
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	version := s.swap(q)
	s.mu.Unlock()

	return s.afterMutation(ctx, version)
}

// Compact purges every entry that resolves reports as unknown and returns
// how many were dropped.
func (s *State) Compact(ctx context.Context, resolves func(domain.LineID) bool) (int, error) {
	var stale []domain.LineID
	for id := range s.Snapshot() {
		if !resolves(id) {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	return len(stale), s.Purge(ctx, stale)
}

// Clear empties the cart.
func (s *State) Clear(ctx context.Context) error {
	s.mu.Lock()
	if len(s.quantities) == 0 {
		s.mu.Unlock()
		return nil
	}
	version := s.swap(domain.Quantities{})
	s.mu.Unlock()

	return s.afterMutation(ctx, version)
}

// Snapshot returns a copy of the quantities.
func (s *State) Snapshot() domain.Quantities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantities.Clone()
}

// Quantity returns the current quantity of id.
func (s *State) Quantity(id domain.LineID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantities.Get(id)
}

func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *State) swap(q domain.Quantities) uint64 {
	s.quantities = q
	s.version++
	return s.version
}

func (s *State) afterMutation(ctx context.Context, version uint64) error {
	err := s.persist(ctx)
	if s.bus != nil {
		s.bus.Publish(TopicChanged, version)
	}
	return err
}

func (s *State) persist(ctx context.Context) error {
	data, err := EncodeSnapshot(s.Snapshot())
	if err == nil {
		err = s.blob.Set(ctx, s.key, data)
	}
	if err != nil {
		zap.L().Error("cart snapshot not persisted", zap.String("key", s.key), zap.Error(err))
		return &domain.PersistenceError{Op: "set", Key: s.key, Err: err}
	}
	return nil
}
