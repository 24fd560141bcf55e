package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestCoupon_Validate(t *testing.T) {
	r, db := newRepo(t)
	svc := &CouponService{Repo: r, Now: func() time.Time { return fixedNow }}
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "ana@example.com", models.RoleCustomer)
	require.NoError(t, db.Create(&models.Coupon{
		Code: "SAVE10", DiscountPercentage: 10, ExpirationDate: fixedNow.Add(time.Hour), IsActive: true, UserID: u.ID,
	}).Error)

	c, err := svc.ValidateCoupon(ctx, u.ID, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.DiscountPercentage)

	_, err = svc.ValidateCoupon(ctx, u.ID, "NOPE")
	require.ErrorIs(t, err, ErrNotFound)

	other := testutil.CreateUser(t, db, "bob@example.com", models.RoleCustomer)
	_, err = svc.ValidateCoupon(ctx, other.ID, "SAVE10")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ValidateCoupon(ctx, u.ID, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCoupon_ExpiredIsDeactivated(t *testing.T) {
	r, db := newRepo(t)
	svc := &CouponService{Repo: r, Now: func() time.Time { return fixedNow }}
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "ana@example.com", models.RoleCustomer)
	require.NoError(t, db.Create(&models.Coupon{
		Code: "OLD", DiscountPercentage: 10, ExpirationDate: fixedNow.Add(-time.Hour), IsActive: true, UserID: u.ID,
	}).Error)

	_, err := svc.ValidateCoupon(ctx, u.ID, "OLD")
	require.ErrorIs(t, err, ErrCouponExpired)

	var stored models.Coupon
	require.NoError(t, db.Where("code = ?", "OLD").First(&stored).Error)
	assert.False(t, stored.IsActive)

	// once inactive it is simply not found
	_, err = svc.ValidateCoupon(ctx, u.ID, "OLD")
	require.ErrorIs(t, err, ErrNotFound)

	got, err := svc.GetCoupon(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
