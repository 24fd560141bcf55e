package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/models"
)

const FeaturedKey = "featured_products"

// Featured holds the featured-products view. Entries never expire; the
// catalog service overwrites them on every change that affects the view.
type Featured struct {
	rdb redis.Cmdable
}

func NewFeatured(rdb redis.Cmdable) *Featured {
	return &Featured{rdb: rdb}
}

// Get reports a miss with ok == false.
func (f *Featured) Get(ctx context.Context) (products []models.Product, ok bool, err error) {
	raw, err := f.rdb.Get(ctx, FeaturedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("featured cache get: %w", err)
	}
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, fmt.Errorf("featured cache decode: %w", err)
	}
	return products, true, nil
}

func (f *Featured) Set(ctx context.Context, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("featured cache encode: %w", err)
	}
	if err := f.rdb.Set(ctx, FeaturedKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("featured cache set: %w", err)
	}
	return nil
}
