package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// ServiceParams wires the session cart service.
type ServiceParams struct {
	Storage Storage
	// KeyFor maps a session id onto a storage key.
	KeyFor  func(sessionID string) string
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
	Now     func() time.Time
}

// Service runs cart operations for browsing sessions. Mutations on the same
// session are serialized within the process.
type Service struct {
	storage Storage
	keyFor  func(string) string
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	keyFor := params.KeyFor
	if keyFor == nil {
		keyFor = func(sessionID string) string { return "cart:" + sessionID }
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		storage: params.Storage,
		keyFor:  keyFor,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     now,
		locks:   map[string]*sessionLock{},
	}, nil
}

func (s *Service) Get(ctx context.Context, sessionID string) State {
	return s.open(ctx, sessionID).State()
}

func (s *Service) AddItem(ctx context.Context, sessionID string, product Product, quantity int, selectedColor *string) State {
	defer s.lock(sessionID)()
	s.metrics.IncCartMutation("add")
	return s.open(ctx, sessionID).AddItem(ctx, product, quantity, selectedColor)
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) State {
	defer s.lock(sessionID)()
	s.metrics.IncCartMutation("remove")
	return s.open(ctx, sessionID).RemoveItem(ctx, productID)
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) State {
	defer s.lock(sessionID)()
	s.metrics.IncCartMutation("update_quantity")
	return s.open(ctx, sessionID).UpdateQuantity(ctx, productID, quantity)
}

func (s *Service) Clear(ctx context.Context, sessionID string) State {
	defer s.lock(sessionID)()
	s.metrics.IncCartMutation("clear")
	return s.open(ctx, sessionID).ClearCart(ctx)
}

func (s *Service) SetOpen(ctx context.Context, sessionID string, open bool) State {
	defer s.lock(sessionID)()
	s.metrics.IncCartMutation("set_open")
	return s.open(ctx, sessionID).SetOpen(ctx, open)
}

// PreferenceItems serializes the session's cart into checkout line items.
func (s *Service) PreferenceItems(ctx context.Context, sessionID string) []checkout.LineItem {
	return ToPreferenceItems(s.Get(ctx, sessionID))
}

func (s *Service) open(ctx context.Context, sessionID string) *Store {
	ctx = s.logg.WithCartSession(ctx, sessionID)
	return NewStore(ctx, s.storage, s.keyFor(sessionID), s.logg, WithClock(s.now))
}

func (s *Service) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}
