package catalog

import (
	"context"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/blobstore"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// TopicChanged is published on the bus with the new catalog version after
// every mutation.
const TopicChanged = "catalog:changed"

// Purger drops cart entries whose line-item ids left the catalog.
type Purger interface {
	Purge(ctx context.Context, ids []domain.LineID) error
}

// Store owns the product list. Every mutation swaps in a new slice; List
// hands out deep copies.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	version  uint64

	blob   blobstore.Store
	key    string
	bus    EventBus.Bus
	purger Purger
}

func NewStore(blob blobstore.Store, key string, bus EventBus.Bus) *Store {
	return &Store{blob: blob, key: key, bus: bus, products: Seed()}
}

// SetPurger wires the cart that must forget removed line items.
func (s *Store) SetPurger(p Purger) {
	s.purger = p
}

// Load restores the persisted catalog. An absent key means the seed
// catalog. A failed or corrupt read also falls back to the seed and is
// returned as a PersistenceError so the caller can warn about it.
func (s *Store) Load(ctx context.Context) error {
	products := Seed()
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
			products = restored
		}
	}

	s.mu.Lock()
	s.products = products
	s.version++
	s.mu.Unlock()
	return loadErr
}

// List returns a copy of the products in catalog order.
func (s *Store) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// Version increases by one on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Get looks a product up by id.
func (s *Store) Get(id domain.ProductID) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.products, id); i >= 0 {
		return s.products[i].Clone(), true
	}
	return domain.Product{}, false
}

// Upsert replaces the product with the same id in place, or appends it.
// Nothing changes when the product is invalid.
func (s *Store) Upsert(ctx context.Context, p domain.Product) error {
	return s.UpsertAll(ctx, []domain.Product{p})
}

// UpsertAll applies every product as Upsert does, as a single mutation.
// The merged catalog is validated before anything is committed, so either
// all products land or none do.
func (s *Store) UpsertAll(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	incoming := make([]domain.Product, len(products))
	for i, p := range products {
		p = p.Normalize()
		if err := p.Validate(); err != nil {
			return err
		}
		incoming[i] = p
	}

	s.mu.Lock()
	next := cloneProducts(s.products)
	for _, p := range incoming {
		if i := indexOf(next, p.ID); i >= 0 {
			next[i] = p
		} else {
			next = append(next, p)
		}
	}
	if err := domain.ValidateCatalog(next); err != nil {
		s.mu.Unlock()
		return err
	}
	stale := staleIDs(s.products, next)
	version := s.swap(next)
	s.mu.Unlock()

	return s.afterMutation(ctx, version, stale)
}

// Remove deletes the product and purges its line items from the cart.
// Removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id domain.ProductID) error {
	s.mu.Lock()
	i := indexOf(s.products, id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	next := make([]domain.Product, 0, len(s.products)-1)
	next = append(next, s.products[:i]...)
	next = append(next, s.products[i+1:]...)
	stale := staleIDs(s.products, next)
	version := s.swap(next)
	s.mu.Unlock()

	return s.afterMutation(ctx, version, stale)
}

// ResetToDefault replaces the whole catalog with the seed set.
func (s *Store) ResetToDefault(ctx context.Context) error {
	s.mu.Lock()
	next := Seed()
	stale := staleIDs(s.products, next)
	version := s.swap(next)
	s.mu.Unlock()

	return s.afterMutation(ctx, version, stale)
}

// Resolves reports whether id names an orderable line item.
func (s *Store) Resolves(id domain.LineID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		for _, lid := range p.LineIDs() {
			if lid == id {
				return true
			}
		}
	}
	return false
}

func (s *Store) swap(next []domain.Product) uint64 {
	s.products = next
	s.version++
	return s.version
}

// afterMutation runs outside the lock: subscribers may read the store.
func (s *Store) afterMutation(ctx context.Context, version uint64, stale []domain.LineID) error {
	err := s.persist(ctx)
	if len(stale) > 0 && s.purger != nil {
		if perr := s.purger.Purge(ctx, stale); perr != nil {
			err = multierr.Append(err, errors.Wrap(perr, "purge removed line items"))
		}
	}
	if s.bus != nil {
		s.bus.Publish(TopicChanged, version)
	}
	return err
}

func (s *Store) persist(ctx context.Context) error {
	data, err := EncodeSnapshot(s.List())
	if err == nil {
		err = s.blob.Set(ctx, s.key, data)
	}
	if err != nil {
		zap.L().Error("catalog snapshot not persisted", zap.String("key", s.key), zap.Error(err))
		return &domain.PersistenceError{Op: "set", Key: s.key, Err: err}
	}
	return nil
}

func indexOf(products []domain.Product, id domain.ProductID) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneProducts(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

// staleIDs lists the line-item ids exposed by before but not by after.
func staleIDs(before, after []domain.Product) []domain.LineID {
	live := make(map[domain.LineID]struct{})
	for _, p := range after {
		for _, id := range p.LineIDs() {
			live[id] = struct{}{}
		}
	}
	var stale []domain.LineID
	for _, p := range before {
		for _, id := range p.LineIDs() {
			if _, ok := live[id]; !ok {
				stale = append(stale, id)
			}
		}
	}
	return stale
}
