// Package cache holds the optional redis cache for dashboard listings.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kylejryan/receipt-reimbursement-portal/internal/models"
)

const listingTTL = 60 * time.Second

// Listings caches each owner's receipt list. A nil *Listings is a valid
// disabled cache; every method is a no-op on it.
type Listings struct {
	rdb *redis.Client
}

// NewListings connects to redis and verifies the connection.
func NewListings(ctx context.Context, addr, password string, db int) (*Listings, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Listings{rdb: rdb}, nil
}

func listingKey(ownerID uint) string {
	return fmt.Sprintf("cache:receipts:%d", ownerID)
}

// Get returns the cached listing for an owner, if present.
func (c *Listings) Get(ctx context.Context, ownerID uint) ([]models.Receipt, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, listingKey(ownerID)).Bytes()
	if err != nil {
		return nil, false
	}
	var recs []models.Receipt
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false
	}
	return recs, true
}

// Set stores an owner's listing with a short TTL.
func (c *Listings) Set(ctx context.Context, ownerID uint, recs []models.Receipt) {
	if c == nil {
		return
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, listingKey(ownerID), data, listingTTL).Err(); err != nil {
		log.Printf("cache: set listing for %d: %v", ownerID, err)
	}
}

// Invalidate drops an owner's cached listing after any mutation.
func (c *Listings) Invalidate(ctx context.Context, ownerID uint) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, listingKey(ownerID)).Err(); err != nil {
		log.Printf("cache: invalidate listing for %d: %v", ownerID, err)
	}
}
