package mercadopagowebhook

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type guardStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	WebhookKey(provider, id string) string
}

const provider = "mercadopago"

// IdempotencyGuard remembers processed deliveries for ttl.
type IdempotencyGuard struct {
	store guardStore
	ttl   time.Duration
}

func NewIdempotencyGuard(store guardStore, ttl time.Duration) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &IdempotencyGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark marks deliveryID as seen and reports whether it already was.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, deliveryID string) (bool, error) {
	if deliveryID == "" {
		return false, errors.New("delivery id is required")
	}
	set, err := g.store.SetNX(ctx, g.store.WebhookKey(provider, deliveryID), "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set webhook guard: %w", err)
	}
	return !set, nil
}

// Delete releases the guard so the processor's retry is processed.
func (g *IdempotencyGuard) Delete(ctx context.Context, deliveryID string) error {
	if deliveryID == "" {
		return errors.New("delivery id is required")
	}
	return g.store.Del(ctx, g.store.WebhookKey(provider, deliveryID))
}
