package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Storage persists a cart blob under a key. Load returns nil, nil when nothing is stored.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
}

// Store holds one cart, applies mutations through the reducers and writes every
// new state back to Storage. Persistence is best-effort: failures are logged and
// the in-memory state stays authoritative.
type Store struct {
	mu      sync.Mutex
	state   State
	storage Storage
	key     string
	logg    *logger.Logger
	now     func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore rehydrates the cart stored under key. A missing, unreadable or
// undecodable blob yields the empty cart.
func NewStore(ctx context.Context, storage Storage, key string, logg *logger.Logger, opts ...Option) *Store {
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{
		state:   Default(),
		storage: storage,
		key:     key,
		logg:    logg,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = s.rehydrate(ctx)
	return s
}

// State returns a snapshot of the current cart.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state)
}

func (s *Store) AddItem(ctx context.Context, product Product, quantity int, selectedColor *string) State {
	return s.apply(ctx, "add", func(st State) State {
		return AddItem(st, product, quantity, selectedColor, s.now())
	})
}

func (s *Store) RemoveItem(ctx context.Context, productID string) State {
	return s.apply(ctx, "remove", func(st State) State {
		return RemoveItem(st, productID)
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) State {
	return s.apply(ctx, "update_quantity", func(st State) State {
		return UpdateQuantity(st, productID, quantity)
	})
}

func (s *Store) ClearCart(ctx context.Context) State {
	return s.apply(ctx, "clear", ClearCart)
}

func (s *Store) SetOpen(ctx context.Context, open bool) State {
	return s.apply(ctx, "set_open", func(st State) State {
		return SetOpen(st, open)
	})
}

func (s *Store) apply(ctx context.Context, op string, fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.state)
	s.state = next
	s.persist(ctx, op, next)
	return snapshot(next)
}

func (s *Store) persist(ctx context.Context, op string, st State) {
	if s.storage == nil {
		return
	}
	blob, err := json.Marshal(st)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "cart_op", op), "cart.persist.encode_failed", err)
		return
	}
	if err := s.storage.Save(ctx, s.key, blob); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "cart_op", op), "cart.persist_failed", err)
	}
}

func (s *Store) rehydrate(ctx context.Context) State {
	if s.storage == nil {
		return Default()
	}
	blob, err := s.storage.Load(ctx, s.key)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.rehydrate.load_failed")
		return Default()
	}
	if len(blob) == 0 {
		return Default()
	}

	st := Default()
	if err := json.Unmarshal(blob, &st); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.rehydrate.decode_failed")
		return Default()
	}
	return normalize(st)
}

func snapshot(st State) State {
	st.Items = cloneItems(st.Items)
	return st
}
