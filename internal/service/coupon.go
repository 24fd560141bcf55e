package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CouponService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func (s *CouponService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GetCoupon returns the user's active coupon, or nil when there is none.
func (s *CouponService) GetCoupon(ctx context.Context, userID uuid.UUID) (*models.Coupon, error) {
	c, err := s.Repo.ActiveCouponByUser(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// ValidateCoupon deactivates a coupon it finds expired.
func (s *CouponService) ValidateCoupon(ctx context.Context, userID uuid.UUID, code string) (*models.Coupon, error) {
	l := logging.FromContext(ctx).With("svc", "coupon.validate")

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrValidation)
	}

	c, err := s.Repo.FindActiveCoupon(ctx, code, userID)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: coupon not found", ErrNotFound)
		}
		return nil, err
	}

	if c.Expired(s.now()) {
		if err := s.Repo.DeactivateCoupon(ctx, userID, c.Code); err != nil {
			return nil, err
		}
		l.Info("coupon_expired", "code", c.Code, "user_id", userID)
		return nil, ErrCouponExpired
	}
	return c, nil
}
