// Package cache provides a TTL read-through cache in front of the card
// repository. It replaces the old process-wide cache: the store is an explicit
// collaborator and the clock is injectable, so expiry is testable.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kioku-app/kioku/internal/card"
)

type entry struct {
	cards     []card.Card
	expiresAt time.Time
}

// CardRepository decorates a card.Repository with per-user caching of the
// full collection read. Writes invalidate the owning user's entry, reads of
// other kinds pass through.
type CardRepository struct {
	inner card.Repository
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

var _ card.Repository = (*CardRepository)(nil)

// NewCardRepository wraps inner with a TTL cache. A nil clock defaults to
// wall time. A zero ttl disables caching entirely.
func NewCardRepository(inner card.Repository, ttl time.Duration, clock func() time.Time) *CardRepository {
	if clock == nil {
		clock = time.Now
	}
	return &CardRepository{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// FindAllByUser serves from the cache while the entry is fresh.
func (r *CardRepository) FindAllByUser(ctx context.Context, userID string) ([]card.Card, error) {
	if r.ttl <= 0 {
		return r.inner.FindAllByUser(ctx, userID)
	}

	now := r.clock()
	r.mu.Lock()
	if e, ok := r.entries[userID]; ok && now.Before(e.expiresAt) {
		cards := make([]card.Card, len(e.cards))
		copy(cards, e.cards)
		r.mu.Unlock()
		return cards, nil
	}
	r.mu.Unlock()

	cards, err := r.inner.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cached := make([]card.Card, len(cards))
	copy(cached, cards)
	r.mu.Lock()
	r.entries[userID] = entry{cards: cached, expiresAt: now.Add(r.ttl)}
	r.mu.Unlock()

	return cards, nil
}

// Create passes through and invalidates the user's entry.
func (r *CardRepository) Create(ctx context.Context, c *card.Card) error {
	if err := r.inner.Create(ctx, c); err != nil {
		return err
	}
	r.invalidate(c.UserID)
	return nil
}

// FindByID passes through; single-card reads precede writes and must be fresh.
func (r *CardRepository) FindByID(ctx context.Context, userID string, id int64) (*card.Card, error) {
	return r.inner.FindByID(ctx, userID, id)
}

// UpdateReviewState passes through and invalidates the user's entry.
func (r *CardRepository) UpdateReviewState(ctx context.Context, c *card.Card, expectedVersion int) error {
	if err := r.inner.UpdateReviewState(ctx, c, expectedVersion); err != nil {
		return err
	}
	r.invalidate(c.UserID)
	return nil
}

// DeleteAllByUser passes through and invalidates the user's entry.
func (r *CardRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	if err := r.inner.DeleteAllByUser(ctx, userID); err != nil {
		return err
	}
	r.invalidate(userID)
	return nil
}

// CountByUser passes through.
func (r *CardRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	return r.inner.CountByUser(ctx, userID)
}

// ListUserIDs passes through.
func (r *CardRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	return r.inner.ListUserIDs(ctx)
}

func (r *CardRepository) invalidate(userID string) {
	r.mu.Lock()
	delete(r.entries, userID)
	r.mu.Unlock()
}
