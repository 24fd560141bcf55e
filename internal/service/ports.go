package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

type FeaturedCache interface {
	Get(ctx context.Context) ([]models.Product, bool, error)
	Set(ctx context.Context, products []models.Product) error
}

type RefreshStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Matches(ctx context.Context, userID, token string) (bool, error)
	Delete(ctx context.Context, userID string) error
}

type ImageStore interface {
	Upload(ctx context.Context, image string) (string, error)
	Delete(ctx context.Context, url string) error
}
