package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	Auth      *AuthHTTP
	Catalog   *CatalogHTTP
	Cart      *CartHTTP
	Coupons   *CouponHTTP
	Payments  *PaymentHTTP
	Orders    *OrderHTTP
	Analytics *AnalyticsHTTP

	JWTSecret []byte
	// Ready reports whether the backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

// Refresher lets the auth middleware rotate tokens through the auth service.
func Refresher(svc *service.AuthService) authmw.Refresher {
	return authmw.RefresherFunc(func(ctx context.Context, refreshToken string) (*authmw.Tokens, error) {
		res, err := svc.Rotate(ctx, refreshToken)
		if err != nil {
			return nil, err
		}
		return &authmw.Tokens{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
			AccessExp:    res.AccessExp,
			RefreshExp:   res.RefreshExp,
		}, nil
	})
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, Refresher(d.Auth.Svc))
	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", d.Auth.Signup)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)
	auth.POST("/refresh-token", d.Auth.RefreshToken)
	auth.GET("/profile", d.Auth.Profile, authMW.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.Catalog.GetProducts, authMW.RequireAdmin)
	products.GET("/featured", d.Catalog.GetFeatured)
	products.GET("/recommendations", d.Catalog.GetRecommendations)
	products.GET("/category/:category", d.Catalog.GetByCategory)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, authMW.RequireAdmin)
	products.PATCH("/:id", d.Catalog.ToggleFeatured, authMW.RequireAdmin)
	products.DELETE("/:id", d.Catalog.DeleteProduct, authMW.RequireAdmin)

	cart := api.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.DELETE("", d.Cart.RemoveFromCart)
	cart.PUT("/:id", d.Cart.UpdateQuantity)

	coupons := api.Group("/coupons", authMW.RequireAuth)
	coupons.GET("", d.Coupons.GetCoupon)
	coupons.POST("/validate", d.Coupons.ValidateCoupon)

	payments := api.Group("/payments", authMW.RequireAuth)
	payments.POST("/create-checkout-session", d.Payments.CreateCheckoutSession)
	payments.POST("/checkout-success", d.Payments.CheckoutSuccess)

	orders := api.Group("/orders")
	orders.GET("/my-orders", d.Orders.MyOrders, authMW.RequireAuth)
	orders.PATCH("/:id/confirm-delivery", d.Orders.ConfirmDelivery, authMW.RequireAuth)
	orders.GET("/all", d.Orders.AllOrders, authMW.RequireAdmin)
	orders.PATCH("/:id/status", d.Orders.UpdateStatus, authMW.RequireAdmin)
	orders.DELETE("/:id", d.Orders.DeleteOrder, authMW.RequireAdmin)

	api.GET("/analytics", d.Analytics.GetAnalytics, authMW.RequireAdmin)
}
