package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CouponHTTP struct {
	Svc *service.CouponService
}

func (h *CouponHTTP) GetCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.get")

	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c, "get_coupon_error", err)
	}

	coupon, err := h.Svc.GetCoupon(ctx, userID)
	if err != nil {
		return fail(l, "get_coupon_error", err)
	}
	if coupon == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, coupon)
}

func (h *CouponHTTP) ValidateCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.validate")

	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c, "validate_coupon_error", err)
	}

	var req transport.ValidateCouponRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "validate_coupon_error", "invalid body", err)
	}

	coupon, err := h.Svc.ValidateCoupon(ctx, userID, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrCouponExpired) {
			l.Info("validate_coupon_error", "status", http.StatusNotFound, "reason", "coupon expired")
			return echo.NewHTTPError(http.StatusNotFound, "coupon expired")
		}
		return fail(l, "validate_coupon_error", err)
	}

	return c.JSON(http.StatusOK, transport.ValidateCouponResponse{
		Message:            "Coupon is valid",
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
	})
}
