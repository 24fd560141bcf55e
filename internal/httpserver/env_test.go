package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/images"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment/paymenttest"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/events"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type testEnv struct {
	DB       *gorm.DB
	Echo     *echo.Echo
	Deps     *Deps
	Provider *paymenttest.Provider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := repo.New(db)
	provider := paymenttest.New()
	coupons := &service.CouponService{Repo: r}

	deps := &Deps{
		Auth: &AuthHTTP{Svc: &service.AuthService{
			Repo:          r,
			Tokens:        cache.NewRefreshTokens(rdb),
			AccessSecret:  []byte("test-access-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		}},
		Catalog: &CatalogHTTP{Svc: &service.CatalogService{
			Repo:     r,
			Featured: cache.NewFeatured(rdb),
			Images:   images.Passthrough{},
			Events:   events.Nop{},
		}},
		Cart:    &CartHTTP{Svc: &service.CartService{Repo: r}},
		Coupons: &CouponHTTP{Svc: coupons},
		Payments: &PaymentHTTP{Svc: &service.CheckoutService{
			Repo:         r,
			Provider:     provider,
			OrderNumbers: service.NewOrderNumberGenerator(r),
			Events:       events.Nop{},
			ClientURL:    "http://localhost:5173",
		}},
		Orders:    &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: events.Nop{}}},
		Analytics: &AnalyticsHTTP{Svc: &service.AnalyticsService{Repo: r}},
		JWTSecret: []byte("test-access-secret"),
	}

	e := echo.New()
	Register(e, deps)
	return &testEnv{DB: db, Echo: e, Deps: deps, Provider: provider}
}

// doJSONRequest builds a context for calling a handler directly.
func (env *testEnv) doJSONRequest(method, path string, body any, user *models.User) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.Echo.NewContext(req, rec)
	if user != nil {
		c.Set(authmw.UserIDKey, user.ID.String())
		c.Set(authmw.RoleKey, user.Role)
	}
	return rec, c
}

// serve runs the request through the full router and middleware stack.
func (env *testEnv) serve(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.Echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, email, password string) []*http.Cookie {
	t.Helper()
	res, err := env.Deps.Auth.Svc.Login(context.Background(), email, password)
	require.NoError(t, err)
	return []*http.Cookie{
		{Name: jwthelp.AccessCookie, Value: res.AccessToken},
		{Name: jwthelp.RefreshCookie, Value: res.RefreshToken},
	}
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T: %v", err, err)
	return he.Code
}
