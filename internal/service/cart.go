package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartService struct {
	Repo *repo.GormRepo
}

// GetCart joins each line with its product. Lines whose product no longer
// exists are left out.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]transport.CartLine, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []transport.CartLine{}, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]transport.CartLine, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, transport.CartLine{Product: p, Quantity: it.Quantity, Size: it.Size})
	}
	return lines, nil
}

func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, req transport.AddToCartRequest) ([]transport.CartLine, error) {
	size := strings.TrimSpace(req.Size)
	if size == "" {
		return nil, fmt.Errorf("%w: size is required", ErrValidation)
	}
	if req.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: productId is required", ErrValidation)
	}

	p, err := s.Repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: product not found", ErrNotFound)
		}
		return nil, err
	}
	if len(p.Sizes) > 0 && !slices.Contains(p.Sizes, size) {
		return nil, fmt.Errorf("%w: size %q is not available", ErrValidation, size)
	}

	if _, err := s.Repo.AddToCart(ctx, userID, p.ID, size); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveFromCart clears the cart when no product is given, drops one
// (product, size) line when both are given and every size of the product
// otherwise.
func (s *CartService) RemoveFromCart(ctx context.Context, userID uuid.UUID, req transport.RemoveFromCartRequest) ([]transport.CartLine, error) {
	var err error
	size := strings.TrimSpace(req.Size)
	switch {
	case req.ProductID == nil:
		err = s.Repo.ClearCart(ctx, userID)
	case size != "":
		err = s.Repo.RemoveCartLine(ctx, userID, *req.ProductID, size)
	default:
		err = s.Repo.RemoveProductFromCart(ctx, userID, *req.ProductID)
	}
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, req transport.UpdateQuantityRequest) ([]transport.CartLine, error) {
	size := strings.TrimSpace(req.Size)
	if size == "" {
		return nil, fmt.Errorf("%w: size is required", ErrValidation)
	}
	if err := s.Repo.UpdateCartQuantity(ctx, userID, productID, size, req.Quantity); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: product not found in cart", ErrNotFound)
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}
