package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/service"
)

var statusBySentinel = []struct {
	err  error
	code int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrPaymentNotCompleted, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrCouponExpired, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
}

// message strips the sentinel prefix so clients see only the detail.
func message(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != msg {
		return trimmed
	}
	return msg
}

// fail logs err under event and converts it into the HTTP error the client sees.
func fail(l *slog.Logger, event string, err error) error {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			msg := message(err, s.err)
			l.Warn(event, "status", s.code, "reason", msg, "error", err)
			return echo.NewHTTPError(s.code, msg)
		}
	}
	if errors.Is(err, payment.ErrProvider) {
		l.Error(event, "status", http.StatusInternalServerError, "reason", "payment provider", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{"message": "payment provider error", "error": err.Error()})
	}
	l.Error(event, "status", http.StatusInternalServerError, "reason", "server error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{"message": "server error", "error": err.Error()})
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
