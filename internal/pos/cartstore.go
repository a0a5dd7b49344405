package pos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CartStore persists session carts in Redis. Each checkout session owns
// exactly one cart; carts expire with the session TTL.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore constructs the store.
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &CartStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "pos:cart:" + sessionID
}

// Load fetches the cart for the session, returning an empty cart when none
// exists yet.
func (s *CartStore) Load(ctx context.Context, sessionID string) (Cart, error) {
	if sessionID == "" {
		return Cart{}, errors.New("pos: session id required")
	}
	payload, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewCart(sessionID), nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("pos: load cart: %w", err)
	}
	var cart Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		return Cart{}, fmt.Errorf("pos: decode cart: %w", err)
	}
	cart.SessionID = sessionID
	return cart, nil
}

// Save writes the cart back with a refreshed TTL.
func (s *CartStore) Save(ctx context.Context, cart Cart) error {
	if cart.SessionID == "" {
		return errors.New("pos: session id required")
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("pos: encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(cart.SessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("pos: save cart: %w", err)
	}
	return nil
}

// Delete discards the session cart.
func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("pos: delete cart: %w", err)
	}
	return nil
}
