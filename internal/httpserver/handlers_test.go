package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.serve(http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.serve(http.MethodGet, "/health/ready", nil).Code)
}

func TestSignupThenProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.serve(http.MethodPost, "/api/auth/signup", transport.SignupRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)

	var cookies []*http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == jwthelp.AccessCookie || ck.Name == jwthelp.RefreshCookie {
			assert.True(t, ck.HttpOnly)
			cookies = append(cookies, &http.Cookie{Name: ck.Name, Value: ck.Value})
		}
	}
	require.Len(t, cookies, 2)

	rec = env.serve(http.MethodGet, "/api/auth/profile", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, user.ID, profile.ID)

	rec = env.serve(http.MethodPost, "/api/auth/refresh-token", nil, cookies...)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.serve(http.MethodPost, "/api/auth/logout", nil, cookies...)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.serve(http.MethodPost, "/api/auth/refresh-token", nil, cookies...)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupDuplicateAndBadLogin(t *testing.T) {
	env := newTestEnv(t)
	body := transport.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"}

	require.Equal(t, http.StatusCreated, env.serve(http.MethodPost, "/api/auth/signup", body).Code)

	rec := env.serve(http.MethodPost, "/api/auth/signup", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user already exists")

	rec = env.serve(http.MethodPost, "/api/auth/login", transport.LoginRequest{Email: "ana@example.com", Password: "nope-nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")

	rec = env.serve(http.MethodPost, "/api/auth/refresh-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.serve(http.MethodPost, "/api/auth/signup",
		transport.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"}).Code)
	require.Equal(t, http.StatusCreated, env.serve(http.MethodPost, "/api/auth/signup",
		transport.SignupRequest{Name: "Root", Email: "root@example.com", Password: "secret1"}).Code)
	require.NoError(t, env.DB.Model(&models.User{}).Where("email = ?", "root@example.com").Update("role", models.RoleAdmin).Error)

	testutil.CreateProduct(t, env.DB, "tee", "camisetas", 10, false)

	assert.Equal(t, http.StatusUnauthorized, env.serve(http.MethodGet, "/api/products", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.serve(http.MethodGet, "/api/products", nil, env.login(t, "ana@example.com", "secret1")...).Code)

	rec := env.serve(http.MethodGet, "/api/products?page=1&size=10", nil, env.login(t, "root@example.com", "secret1")...)
	require.Equal(t, http.StatusOK, rec.Code)
	var page transport.ProductPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Products, 1)
	assert.EqualValues(t, 1, page.Meta.Total)
	assert.Equal(t, 10, page.Meta.Size)
	assert.False(t, page.Meta.HasNext)

	assert.Equal(t, http.StatusForbidden, env.serve(http.MethodGet, "/api/analytics", nil, env.login(t, "ana@example.com", "secret1")...).Code)
	assert.Equal(t, http.StatusOK, env.serve(http.MethodGet, "/api/analytics", nil, env.login(t, "root@example.com", "secret1")...).Code)
}

func TestAdminOrderRoutesRefreshExpiredAccess(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.serve(http.MethodPost, "/api/auth/signup",
		transport.SignupRequest{Name: "Root", Email: "root@example.com", Password: "secret1"}).Code)
	require.NoError(t, env.DB.Model(&models.User{}).Where("email = ?", "root@example.com").Update("role", models.RoleAdmin).Error)

	res, err := env.Deps.Auth.Svc.Login(context.Background(), "root@example.com", "secret1")
	require.NoError(t, err)
	expired, err := tokens.NewAccessToken(env.Deps.JWTSecret, res.User.ID.String(), models.RoleAdmin, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	rec := env.serve(http.MethodGet, "/api/orders/all", nil,
		&http.Cookie{Name: jwthelp.AccessCookie, Value: expired},
		&http.Cookie{Name: jwthelp.RefreshCookie, Value: res.RefreshToken},
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := map[string]string{}
	for _, ck := range rec.Result().Cookies() {
		cookies[ck.Name] = ck.Value
	}
	assert.NotEmpty(t, cookies[jwthelp.AccessCookie])
	assert.NotEmpty(t, cookies[jwthelp.RefreshCookie])
	assert.NotEqual(t, res.RefreshToken, cookies[jwthelp.RefreshCookie])
}

func TestGetFeatured(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodGet, "/api/products/featured", nil, nil)
	err := env.Deps.Catalog.GetFeatured(c)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))

	p := testutil.CreateProduct(t, env.DB, "tee", "camisetas", 10, false)
	_, c = env.doJSONRequest(http.MethodPatch, "/api/products/"+p.ID.String(), nil, nil)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	require.NoError(t, env.Deps.Catalog.ToggleFeatured(c))

	rec, c := env.doJSONRequest(http.MethodGet, "/api/products/featured", nil, nil)
	require.NoError(t, env.Deps.Catalog.GetFeatured(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"tee"`)
}

func TestGetProductBadID(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodGet, "/api/products/1", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, env.Deps.Catalog.GetProduct(c)))
}

func TestCartHandlers(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.DB, "ana@example.com", models.RoleCustomer)
	p := testutil.CreateProduct(t, env.DB, "tee", "camisetas", 10, false)

	_, c := env.doJSONRequest(http.MethodPost, "/api/cart", transport.AddToCartRequest{ProductID: p.ID}, u)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, env.Deps.Cart.AddToCart(c)))

	rec, c := env.doJSONRequest(http.MethodPost, "/api/cart", transport.AddToCartRequest{ProductID: p.ID, Size: "M"}, u)
	require.NoError(t, env.Deps.Cart.AddToCart(c))
	var lines []transport.CartLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, "M", lines[0].Size)

	_, c = env.doJSONRequest(http.MethodPut, "/api/cart/"+p.ID.String(), transport.UpdateQuantityRequest{Quantity: 2, Size: "G"}, u)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	assert.Equal(t, http.StatusNotFound, httpStatus(t, env.Deps.Cart.UpdateQuantity(c)))

	rec, c = env.doJSONRequest(http.MethodDelete, "/api/cart", nil, u)
	require.NoError(t, env.Deps.Cart.RemoveFromCart(c))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCouponHandlers(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.DB, "ana@example.com", models.RoleCustomer)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/coupons", nil, u)
	require.NoError(t, env.Deps.Coupons.GetCoupon(c))
	assert.Equal(t, "null", string(rec.Body.Bytes()[:4]))

	require.NoError(t, env.DB.Create(&models.Coupon{
		Code: "OLD", DiscountPercentage: 10, ExpirationDate: time.Now().Add(-time.Hour), IsActive: true, UserID: u.ID,
	}).Error)

	_, c = env.doJSONRequest(http.MethodPost, "/api/coupons/validate", transport.ValidateCouponRequest{Code: "OLD"}, u)
	err := env.Deps.Coupons.ValidateCoupon(c)
	require.Equal(t, http.StatusNotFound, httpStatus(t, err))
	assert.Equal(t, "coupon expired", err.(*echo.HTTPError).Message)

	_, c = env.doJSONRequest(http.MethodPost, "/api/coupons/validate", transport.ValidateCouponRequest{Code: "OLD"}, u)
	err = env.Deps.Coupons.ValidateCoupon(c)
	require.Equal(t, http.StatusNotFound, httpStatus(t, err))
	assert.Equal(t, "coupon not found", err.(*echo.HTTPError).Message)
}

func TestCheckoutHandlers(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.DB, "ana@example.com", models.RoleCustomer)
	p := testutil.CreateProduct(t, env.DB, "tee", "camisetas", 10, false)

	_, c := env.doJSONRequest(http.MethodPost, "/api/payments/create-checkout-session", transport.CreateCheckoutSessionRequest{
		Products: []transport.CheckoutProduct{{ID: p.ID.String(), Quantity: 2}},
	}, u)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, env.Deps.Payments.CreateCheckoutSession(c)))

	rec, c := env.doJSONRequest(http.MethodPost, "/api/payments/create-checkout-session", transport.CreateCheckoutSessionRequest{
		Products:        []transport.CheckoutProduct{{ID: p.ID.String(), Quantity: 2}},
		ShippingAddress: &payment.Address{Street: "Rua A", City: "Recife", PostalCode: "50000-000", Country: "BR"},
	}, u)
	require.NoError(t, env.Deps.Payments.CreateCheckoutSession(c))
	var session transport.CreateCheckoutSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, 40.0, session.TotalAmount)

	_, c = env.doJSONRequest(http.MethodPost, "/api/payments/checkout-success", transport.CheckoutSuccessRequest{SessionID: session.ID}, u)
	err := env.Deps.Payments.CheckoutSuccess(c)
	require.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	assert.Equal(t, "payment not completed", err.(*echo.HTTPError).Message)

	env.Provider.MarkPaid(session.ID)
	rec, c = env.doJSONRequest(http.MethodPost, "/api/payments/checkout-success", transport.CheckoutSuccessRequest{SessionID: session.ID}, u)
	require.NoError(t, env.Deps.Payments.CheckoutSuccess(c))
	var out transport.CheckoutSuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.OrderNumber)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/orders/my-orders", nil, u)
	require.NoError(t, env.Deps.Orders.MyOrders(c))
	var orders []transport.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, out.OrderID, orders[0].ID)
	assert.Equal(t, 40.0, orders[0].TotalAmount)
}

func TestOrderHandlers(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.DB, "ana@example.com", models.RoleCustomer)
	other := testutil.CreateUser(t, env.DB, "bob@example.com", models.RoleCustomer)
	admin := testutil.CreateUser(t, env.DB, "root@example.com", models.RoleAdmin)
	p := testutil.CreateProduct(t, env.DB, "tee", "camisetas", 10, false)

	order := &models.Order{
		OrderNumber:     "P1Q1CCABC123",
		UserID:          owner.ID,
		Items:           []models.OrderItem{{ProductID: p.ID, Quantity: 1, Price: 10}},
		TotalAmount:     30,
		StripeSessionID: "cs_test_handlers",
		ShippingCost:    20,
		PaymentMethod:   "card",
	}
	require.NoError(t, env.DB.Create(order).Error)
	id := order.ID.String()

	patch := func(status models.OrderStatus) error {
		_, c := env.doJSONRequest(http.MethodPatch, "/api/orders/"+id+"/status", transport.UpdateOrderStatusRequest{Status: status}, admin)
		c.SetParamNames("id")
		c.SetParamValues(id)
		return env.Deps.Orders.UpdateStatus(c)
	}
	confirm := func(u *models.User) error {
		_, c := env.doJSONRequest(http.MethodPatch, "/api/orders/"+id+"/confirm-delivery", nil, u)
		c.SetParamNames("id")
		c.SetParamValues(id)
		return env.Deps.Orders.ConfirmDelivery(c)
	}

	assert.Equal(t, http.StatusBadRequest, httpStatus(t, patch("delivered")))
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, confirm(owner)))
	require.NoError(t, patch(models.OrderStatusShipped))
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, patch(models.OrderStatusConfirmed)))
	assert.Equal(t, http.StatusForbidden, httpStatus(t, confirm(other)))
	require.NoError(t, confirm(owner))

	rec, c := env.doJSONRequest(http.MethodGet, "/api/orders/all", nil, admin)
	require.NoError(t, env.Deps.Orders.AllOrders(c))
	var all []transport.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, models.OrderStatusReceived, all[0].Status)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "ana@example.com", all[0].User.Email)

	_, c = env.doJSONRequest(http.MethodDelete, "/api/orders/"+id, nil, admin)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, env.Deps.Orders.DeleteOrder(c))

	_, c = env.doJSONRequest(http.MethodDelete, "/api/orders/"+id, nil, admin)
	c.SetParamNames("id")
	c.SetParamValues(id)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, env.Deps.Orders.DeleteOrder(c)))
}

func TestFail(t *testing.T) {
	l := slog.New(slog.NewJSONHandler(io.Discard, nil))

	err := fail(l, "x", fmt.Errorf("%w: product not found", service.ErrNotFound))
	he := err.(*echo.HTTPError)
	assert.Equal(t, http.StatusNotFound, he.Code)
	assert.Equal(t, "product not found", he.Message)

	he = fail(l, "x", errors.New("db down")).(*echo.HTTPError)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.Equal(t, echo.Map{"message": "server error", "error": "db down"}, he.Message)

	he = fail(l, "x", fmt.Errorf("%w: create session: card declined", payment.ErrProvider)).(*echo.HTTPError)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}
