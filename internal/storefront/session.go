package storefront

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/cart"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/order"
	"go.uber.org/zap"
)

// View is everything the storefront renders, derived from one catalog
// snapshot and one cart snapshot.
type View struct {
	Products []domain.Product  `json:"products"`
	Groups   []CategoryGroup   `json:"groups"`
	Lines    []domain.CartLine `json:"lines"`
	Summary  order.Summary     `json:"summary"`

	CatalogVersion uint64 `json:"catalogVersion"`
	CartVersion    uint64 `json:"cartVersion"`
}

// Checkout is the result of handing an order to the sink.
type Checkout struct {
	Message string        `json:"message"`
	Link    string        `json:"link"`
	Summary order.Summary `json:"summary"`
}

type Options struct {
	Catalog   *catalog.Store
	Cart      *cart.State
	Bus       EventBus.Bus
	Formatter order.Formatter
	Sink      order.Sink
	ShopName  string
	Priority  []string
}

// Session serializes mutations and derivations for one storefront. The
// last View is memoized until the catalog or the cart publishes a change.
type Session struct {
	mu   sync.Mutex
	opts Options
	view *View

	dirty    atomic.Bool
	onChange func(uint64)
}

func NewSession(opts Options) (*Session, error) {
	if opts.Catalog == nil || opts.Cart == nil {
		return nil, errors.New("storefront session needs a catalog and a cart")
	}
	s := &Session{opts: opts}
	s.dirty.Store(true)
	s.onChange = func(uint64) { s.dirty.Store(true) }
	if opts.Bus != nil {
		if err := opts.Bus.Subscribe(catalog.TopicChanged, s.onChange); err != nil {
			return nil, errors.Wrap(err, "subscribe catalog changes")
		}
		if err := opts.Bus.Subscribe(cart.TopicChanged, s.onChange); err != nil {
			return nil, errors.Wrap(err, "subscribe cart changes")
		}
	}
	return s, nil
}

// Close detaches the session from the bus.
func (s *Session) Close() {
	if s.opts.Bus == nil {
		return
	}
	_ = s.opts.Bus.Unsubscribe(catalog.TopicChanged, s.onChange)
	_ = s.opts.Bus.Unsubscribe(cart.TopicChanged, s.onChange)
}

func (s *Session) Catalog() *catalog.Store { return s.opts.Catalog }

func (s *Session) Cart() *cart.State { return s.opts.Cart }

func (s *Session) Formatter() order.Formatter { return s.opts.Formatter }

// View returns the current derived view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	if !s.dirty.Swap(false) && s.view != nil && s.opts.Bus != nil {
		return *s.view
	}
	catalogVersion := s.opts.Catalog.Version()
	cartVersion := s.opts.Cart.Version()
	products := s.opts.Catalog.List()
	lines := DeriveCart(products, s.opts.Cart.Snapshot())
	v := &View{
		Products:       products,
		Groups:         ProjectCategories(products, s.opts.Priority),
		Lines:          lines,
		Summary:        s.opts.Formatter.Format(lines),
		CatalogVersion: catalogVersion,
		CartVersion:    cartVersion,
	}
	s.view = v
	return *v
}

// Adjust changes the quantity of a line item by delta.
func (s *Session) Adjust(ctx context.Context, id domain.LineID, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Cart.Adjust(ctx, id, delta)
}

func (s *Session) Upsert(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Catalog.Upsert(ctx, p)
}

// UpsertAll applies a batch of products as one catalog mutation.
func (s *Session) UpsertAll(ctx context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Catalog.UpsertAll(ctx, products)
}

func (s *Session) Remove(ctx context.Context, id domain.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Catalog.Remove(ctx, id)
}

func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Catalog.ResetToDefault(ctx)
}

// ClearCart empties the cart.
func (s *Session) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Cart.Clear(ctx)
}

// Compact drops cart entries that no longer resolve in the catalog.
func (s *Session) Compact(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Cart.Compact(ctx, s.opts.Catalog.Resolves)
}

// Checkout formats the current cart and hands it to the sink. The cart is
// kept: the customer still has to confirm the order on the other side.
func (s *Session) Checkout(ctx context.Context) (Checkout, error) {
	s.mu.Lock()
	v := s.viewLocked()
	s.mu.Unlock()

	msg, err := s.opts.Formatter.Message(s.opts.ShopName, v.Lines)
	if err != nil {
		return Checkout{}, err
	}
	out := Checkout{Message: msg, Summary: v.Summary}
	if s.opts.Sink == nil {
		return out, nil
	}
	link, err := s.opts.Sink.Send(ctx, msg)
	if err != nil {
		zap.L().Error("order not delivered", zap.Error(err))
		return out, errors.Wrap(err, "send order")
	}
	out.Link = link
	return out, nil
}
