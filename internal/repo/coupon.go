package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ActiveCouponByUser(ctx context.Context, userID uuid.UUID) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) FindActiveCoupon(ctx context.Context, code string, userID uuid.UUID) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.DB.WithContext(ctx).
		Where("code = ? AND user_id = ? AND is_active = ?", code, userID, true).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// DeactivateCoupon is a no-op when the coupon is already inactive or missing.
func (r *GormRepo) DeactivateCoupon(ctx context.Context, userID uuid.UUID, code string) error {
	return r.DB.WithContext(ctx).Model(&models.Coupon{}).
		Where("code = ? AND user_id = ?", code, userID).
		Update("is_active", false).Error
}
