package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/elescandalo/teatro-tickets/internal/config"
	"github.com/elescandalo/teatro-tickets/internal/middleware"
)

func newCachedEcho(t *testing.T, maxBody int, body string) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: maxBody,
	}
	e := echo.New()
	e.GET("/funciones", func(c echo.Context) error {
		return c.String(http.StatusOK, body)
	}, middleware.NewRedisCache(cfg, rdb))
	return e, mr
}

func getFunciones(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/funciones", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCacheServesSecondRequestFromRedis(t *testing.T) {
	e, _ := newCachedEcho(t, 1<<20, `{"funciones":[]}`)

	first := getFunciones(e)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := getFunciones(e)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "HIT", second.Header().Get("X-Cache"))
	require.Equal(t, first.Body.String(), second.Body.String())
}

func TestCacheSkipsOversizedBody(t *testing.T) {
	body := `{"funciones":"` + strings.Repeat("x", 64) + `"}`
	e, mr := newCachedEcho(t, 16, body)

	first := getFunciones(e)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, body, first.Body.String())

	// Nothing may be stored: a clipped prefix would otherwise be
	// replayed as a complete response for the whole TTL.
	require.Empty(t, mr.Keys())

	second := getFunciones(e)
	require.Equal(t, "MISS", second.Header().Get("X-Cache"))
	require.Equal(t, body, second.Body.String())
}
