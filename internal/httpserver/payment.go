package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type PaymentHTTP struct {
	Svc *service.CheckoutService
}

func (h *PaymentHTTP) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create_checkout_session")

	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c, "create_checkout_session_error", err)
	}

	var req transport.CreateCheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_checkout_session_error", "invalid body", err)
	}

	res, err := h.Svc.CreateSession(ctx, userID, req)
	if err != nil {
		return fail(l, "create_checkout_session_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PaymentHTTP) CheckoutSuccess(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.checkout_success")

	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c, "checkout_success_error", err)
	}

	var req transport.CheckoutSuccessRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout_success_error", "invalid body", err)
	}

	res, err := h.Svc.ConfirmSession(ctx, userID, req.SessionID)
	if err != nil {
		return fail(l, "checkout_success_error", err)
	}

	l.Info("checkout_success", "order_id", res.OrderID, "order_number", res.OrderNumber)
	return c.JSON(http.StatusOK, res)
}
