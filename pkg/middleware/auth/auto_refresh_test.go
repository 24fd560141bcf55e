package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var secret = []byte("test-access-secret")

func accessToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(secret, "user-1", role, exp)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, h echo.MiddlewareFunc, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return rec, c, err
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestRequireAuth_ValidAccessToken(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	tok := accessToken(t, "customer", time.Now().Add(time.Minute))

	rec, c, err := run(t, m.RequireAuth, &http.Cookie{Name: jwthelp.AccessCookie, Value: tok})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", c.Get(UserIDKey))
	assert.Equal(t, "customer", c.Get(RoleKey))
}

func TestRequireAuth_NoCookies(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	_, _, err := run(t, m.RequireAuth)
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	_, _, err := run(t, m.RequireAuth, &http.Cookie{Name: jwthelp.AccessCookie, Value: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestRequireAuth_ExpiredTokenIsRefreshed(t *testing.T) {
	var got string
	fresh := accessToken(t, "customer", time.Now().Add(15*time.Minute))
	m := NewAutoRefreshMiddleware(secret, RefresherFunc(func(_ context.Context, rt string) (*Tokens, error) {
		got = rt
		return &Tokens{
			AccessToken:  fresh,
			RefreshToken: "new-refresh",
			AccessExp:    time.Now().Add(15 * time.Minute),
			RefreshExp:   time.Now().Add(7 * 24 * time.Hour),
		}, nil
	}))

	expired := accessToken(t, "customer", time.Now().Add(-time.Minute))
	rec, c, err := run(t, m.RequireAuth,
		&http.Cookie{Name: jwthelp.AccessCookie, Value: expired},
		&http.Cookie{Name: jwthelp.RefreshCookie, Value: "old-refresh"},
	)
	require.NoError(t, err)
	assert.Equal(t, "old-refresh", got)
	assert.Equal(t, "user-1", c.Get(UserIDKey))

	cookies := map[string]string{}
	for _, ck := range rec.Result().Cookies() {
		cookies[ck.Name] = ck.Value
	}
	assert.Equal(t, fresh, cookies[jwthelp.AccessCookie])
	assert.Equal(t, "new-refresh", cookies[jwthelp.RefreshCookie])
}

func TestRequireAuth_RefreshFailure(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, RefresherFunc(func(context.Context, string) (*Tokens, error) {
		return nil, errors.New("revoked")
	}))

	_, _, err := run(t, m.RequireAuth, &http.Cookie{Name: jwthelp.RefreshCookie, Value: "old-refresh"})
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestRequireAdmin(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)

	_, _, err := run(t, m.RequireAdmin, &http.Cookie{Name: jwthelp.AccessCookie, Value: accessToken(t, "customer", time.Now().Add(time.Minute))})
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))

	rec, _, err := run(t, m.RequireAdmin, &http.Cookie{Name: jwthelp.AccessCookie, Value: accessToken(t, "admin", time.Now().Add(time.Minute))})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_AfterRequireAuthRotatesOnce(t *testing.T) {
	calls := 0
	fresh := accessToken(t, "admin", time.Now().Add(15*time.Minute))
	m := NewAutoRefreshMiddleware(secret, RefresherFunc(func(_ context.Context, rt string) (*Tokens, error) {
		calls++
		if rt != "old-refresh" {
			return nil, errors.New("revoked")
		}
		return &Tokens{
			AccessToken:  fresh,
			RefreshToken: "new-refresh",
			AccessExp:    time.Now().Add(15 * time.Minute),
			RefreshExp:   time.Now().Add(7 * 24 * time.Hour),
		}, nil
	}))
	stacked := func(next echo.HandlerFunc) echo.HandlerFunc { return m.RequireAuth(m.RequireAdmin(next)) }

	rec, c, err := run(t, stacked,
		&http.Cookie{Name: jwthelp.AccessCookie, Value: accessToken(t, "admin", time.Now().Add(-time.Minute))},
		&http.Cookie{Name: jwthelp.RefreshCookie, Value: "old-refresh"},
	)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "admin", c.Get(RoleKey))
}

func TestRequireAdmin_AfterRequireAuthRejectsCustomer(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, nil)
	stacked := func(next echo.HandlerFunc) echo.HandlerFunc { return m.RequireAuth(m.RequireAdmin(next)) }

	_, _, err := run(t, stacked, &http.Cookie{Name: jwthelp.AccessCookie, Value: accessToken(t, "customer", time.Now().Add(time.Minute))})
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))
}
