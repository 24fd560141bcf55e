package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const recommendationCount = 4

type CatalogService struct {
	Repo     *repo.GormRepo
	Featured FeaturedCache
	Images   ImageStore
	Events   events.Publisher
	Topic    string
}

func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, offset, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// FeaturedProducts reads through the cache. A broken cache degrades to the database.
func (s *CatalogService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.featured")

	cached, ok, err := s.Featured.Get(ctx)
	if err != nil {
		l.Warn("featured_cache_read_failed", "error", err)
	}
	if ok {
		return cached, nil
	}

	products, err := s.Repo.FeaturedProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Featured.Set(ctx, products); err != nil {
		l.Warn("featured_cache_write_failed", "error", err)
	}
	return products, nil
}

func (s *CatalogService) Recommendations(ctx context.Context) ([]models.Product, error) {
	return s.Repo.RandomProducts(ctx, recommendationCount)
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	return s.Repo.ProductsByCategory(ctx, category)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" {
		return nil, fmt.Errorf("%w: name and category are required", ErrValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}

	image := ""
	if req.Image != "" {
		url, err := s.Images.Upload(ctx, req.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: image upload: %v", ErrValidation, err)
		}
		image = url
	}

	sizes := make([]string, 0, len(req.Sizes))
	for _, sz := range req.Sizes {
		if sz = strings.TrimSpace(sz); sz != "" {
			sizes = append(sizes, sz)
		}
	}

	p := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       image,
		Category:    req.Category,
		Sizes:       sizes,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	l.Info("product_created", "product_id", p.ID)
	publish(ctx, s.Events, s.Topic, events.New("product_created", p.ID.String(), p))
	return p, nil
}

func (s *CatalogService) ToggleFeatured(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.ToggleFeatured(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, err
	}
	s.refreshFeatured(ctx)
	publish(ctx, s.Events, s.Topic, events.New("product_updated", p.ID.String(), p))
	return p, nil
}

// DeleteProduct removes the product from the catalog and from every cart.
// Failing to delete the hosted image does not stop the deletion.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if p.Image != "" {
		if err := s.Images.Delete(ctx, p.Image); err != nil {
			l.Warn("image_delete_failed", "image", p.Image, "error", err)
		}
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if notFound(err) {
			return fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return err
	}

	if p.IsFeatured {
		s.refreshFeatured(ctx)
	}
	l.Info("product_deleted")
	publish(ctx, s.Events, s.Topic, events.New("product_deleted", id.String(), nil))
	return nil
}

func (s *CatalogService) refreshFeatured(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "catalog.refresh_featured")

	products, err := s.Repo.FeaturedProducts(ctx)
	if err != nil {
		l.Error("featured_cache_refresh_failed", "error", err)
		return
	}
	if err := s.Featured.Set(ctx, products); err != nil {
		l.Error("featured_cache_refresh_failed", "error", err)
	}
}
